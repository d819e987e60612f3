package armature

import (
	"fmt"
	"log/slog"

	"github.com/armech/armature/internal/collision"
	"github.com/armech/armature/internal/compiler"
	"github.com/armech/armature/internal/kinematics"
	"github.com/armech/armature/internal/urdf"
	"github.com/armech/armature/pkg/domain"
	"github.com/armech/armature/pkg/ports"
	"github.com/armech/armature/pkg/spatial"
)

// Stats are the world's monotonic counters, for observability exporters.
type Stats struct {
	Version          uint64
	Mutations        uint64
	Compiles         uint64
	FKCacheHits      uint64
	FKCacheMisses    uint64
	ChainCacheHits   uint64
	ChainCacheMisses uint64
}

// World is the high-level entry point: one kinematic tree, an optional
// robot, free-standing objects, and a collision-request resolver bound to
// them. It wraps the internal tree engine and keeps the bookkeeping that
// distinguishes the robot from scenery.
type World struct {
	tree     *kinematics.Tree
	resolver *collision.Resolver
	logger   *slog.Logger

	robotName string
	// objects keeps registration order; catch-all body expansion walks it.
	objects []string
}

// New builds a world from functional options. Without options it contains a
// single root link and uses the built-in interpreter compiler.
func New(opts ...Option) (*World, error) {
	cfg := &config{
		rootLink: "map",
		compiler: compiler.New(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	w := &World{logger: cfg.logger}
	w.tree = kinematics.New(cfg.rootLink, cfg.compiler, cfg.logger)
	w.resolver = collision.New(w, cfg.logger)

	if cfg.volumeThreshold > 0 || cfg.surfaceThreshold > 0 {
		w.tree.SetSignificanceThresholds(cfg.volumeThreshold, cfg.surfaceThreshold)
	}
	if cfg.description != nil {
		if err := w.AddRobot(cfg.description); err != nil {
			return nil, err
		}
	}
	if cfg.controlled != nil {
		if err := w.tree.SetControlledJoints(cfg.controlled); err != nil {
			return nil, err
		}
	}
	w.tree.SetSelfCollisionOverrides(cfg.selfIgnored, cfg.selfAdded)
	return w, nil
}

// AddRobot parses a robot description and attaches it under the tree root.
// The document's name becomes the robot's name; only one robot can exist.
func (w *World) AddRobot(doc []byte) error {
	if w.robotName != "" {
		return fmt.Errorf("%w: robot %q already loaded", domain.ErrDuplicateName, w.robotName)
	}
	name, err := descriptionName(doc)
	if err != nil {
		return err
	}
	if err := w.tree.AddDescription(doc, "", "", name, spatial.Identity()); err != nil {
		return err
	}
	w.robotName = name
	return nil
}

// AddDescription attaches a description document as scenery under
// parentLink (the root when empty), optionally prefixed and registered as a
// group.
func (w *World) AddDescription(doc []byte, prefix string, parentLink domain.LinkName, groupName string) error {
	if err := w.tree.AddDescription(doc, prefix, parentLink, groupName, spatial.Identity()); err != nil {
		return err
	}
	if groupName != "" {
		w.objects = append(w.objects, groupName)
	}
	return nil
}

// AddBody attaches a free-standing body at pose and records it as an
// object for collision-request expansion.
func (w *World) AddBody(spec domain.BodySpec, pose spatial.Pose, parentLink domain.LinkName) error {
	if spec.Name == w.robotName && w.robotName != "" {
		return fmt.Errorf("%w: body %q collides with the robot name", domain.ErrDuplicateName, spec.Name)
	}
	if err := w.tree.AddBody(spec, pose, parentLink); err != nil {
		return err
	}
	w.objects = append(w.objects, spec.Name)
	return nil
}

// DeleteGroup removes a group and, when the group owns a whole attached
// subtree, that subtree too.
func (w *World) DeleteGroup(name string) error {
	g, err := w.tree.Group(name)
	if err != nil {
		return err
	}
	root := g.RootLink()
	if root != w.tree.RootLink() {
		if err := w.tree.DeleteBranch(root); err != nil {
			return err
		}
	}
	// The branch delete already dropped groups rooted inside the subtree;
	// an aliasing group rooted elsewhere is removed explicitly.
	if w.tree.HasGroup(name) {
		if err := w.tree.DeleteGroup(name); err != nil {
			return err
		}
	}
	w.objects = removeString(w.objects, name)
	if name == w.robotName {
		w.robotName = ""
	}
	return nil
}

// MoveGroup re-parents a group's subtree, freezing its world pose.
func (w *World) MoveGroup(name string, newParent domain.LinkName) error {
	return w.tree.MoveGroup(name, newParent)
}

// MoveBranch re-parents the subtree below a fixed joint, freezing its world
// pose.
func (w *World) MoveBranch(joint domain.JointName, newParent domain.LinkName) error {
	return w.tree.MoveBranch(joint, newParent)
}

// DeleteBranchAt removes a joint and its whole subtree.
func (w *World) DeleteBranchAt(joint domain.JointName) error {
	if err := w.tree.DeleteBranchAt(joint); err != nil {
		return err
	}
	w.pruneObjects()
	return nil
}

func (w *World) pruneObjects() {
	kept := w.objects[:0]
	for _, name := range w.objects {
		if w.tree.HasGroup(name) {
			kept = append(kept, name)
		}
	}
	w.objects = kept
	if w.robotName != "" && !w.tree.HasGroup(w.robotName) {
		w.robotName = ""
	}
}

// RegisterGroup registers a derived group view rooted at an existing link.
func (w *World) RegisterGroup(name string, root domain.LinkName) error {
	return w.tree.RegisterGroup(name, root)
}

// Group returns the named group view.
func (w *World) Group(name string) (*kinematics.Group, error) {
	return w.tree.Group(name)
}

// GroupNames returns all group names, sorted.
func (w *World) GroupNames() []string {
	return w.tree.GroupNames()
}

// Tree exposes the underlying kinematic tree for advanced queries.
func (w *World) Tree() *kinematics.Tree {
	return w.tree
}

// Version returns the structural version of the tree.
func (w *World) Version() uint64 {
	return w.tree.Version()
}

// Stats returns a snapshot of the world's counters.
func (w *World) Stats() Stats {
	s := w.tree.Stats()
	return Stats{
		Version:          s.Version,
		Mutations:        s.Mutations,
		Compiles:         s.Compiles,
		FKCacheHits:      s.FKCacheHits,
		FKCacheMisses:    s.FKCacheMisses,
		ChainCacheHits:   s.ChainCacheHits,
		ChainCacheMisses: s.ChainCacheMisses,
	}
}

// SetJointPosition writes one joint position. Joint state never changes the
// structural version.
func (w *World) SetJointPosition(name domain.JointName, value float32) error {
	return w.tree.SetJointPosition(name, value)
}

// SetJointPositions writes a batch of joint positions atomically.
func (w *World) SetJointPositions(positions map[domain.JointName]float32) error {
	return w.tree.SetJointPositions(positions)
}

// JointPosition reads one joint position, deriving mimic joints from their
// source.
func (w *World) JointPosition(name domain.JointName) (float32, error) {
	return w.tree.JointPosition(name)
}

// ComputeFK returns the pose of tip in root's frame at the current state.
func (w *World) ComputeFK(root, tip domain.LinkName) (spatial.Pose, error) {
	return w.tree.ComputeFK(root, tip)
}

// ComputeAllFKs returns the world pose of every collision-bearing link in
// one batched evaluation.
func (w *World) ComputeAllFKs() (map[domain.LinkName]spatial.Pose, error) {
	return w.tree.ComputeAllFKs()
}

// SetControlledJoints declares the actively commanded joints.
func (w *World) SetControlledJoints(names []domain.JointName) error {
	return w.tree.SetControlledJoints(names)
}

// ControlledJoints returns the effective controlled set, sorted.
func (w *World) ControlledJoints() []domain.JointName {
	return w.tree.ControlledJoints()
}

// ApplyJointLimits tightens joint limits from symmetric linear/angular
// bounds.
func (w *World) ApplyJointLimits(order int, linear, angular map[domain.JointName]float32) {
	w.tree.ApplyJointLimits(order, linear, angular)
}

// JointLimits returns one joint's bounds at the given derivative order.
func (w *World) JointLimits(name domain.JointName, order int) (lower, upper *float32, err error) {
	return w.tree.JointLimits(name, order)
}

// AllJointPositionLimits returns the position bounds of every free joint.
func (w *World) AllJointPositionLimits() map[domain.JointName]domain.LimitPair {
	return w.tree.AllJointPositionLimits()
}

// ResolveCollisionGoals expands a collision request list into the exact
// distance table. The world is only read; a failed resolution changes
// nothing.
func (w *World) ResolveCollisionGoals(requests []domain.CollisionRequest) (domain.DistanceTable, error) {
	if w.robotName == "" {
		return nil, fmt.Errorf("%w: no robot loaded", domain.ErrUnknownBody)
	}
	return w.resolver.Resolve(requests)
}

// RobotName returns the loaded robot's name, empty when none is loaded.
func (w *World) RobotName() string {
	return w.robotName
}

// ObjectNames returns the names of free-standing objects in registration
// order.
func (w *World) ObjectNames() []string {
	return append([]string(nil), w.objects...)
}

// HasBody reports whether the name refers to the robot or a registered
// object.
func (w *World) HasBody(name string) bool {
	if name == "" {
		return false
	}
	if name == w.robotName {
		return true
	}
	for _, o := range w.objects {
		if o == name {
			return true
		}
	}
	return false
}

// BodyLinkNames returns every link of the named body.
func (w *World) BodyLinkNames(body string) ([]domain.LinkName, error) {
	g, err := w.tree.Group(body)
	if err != nil {
		return nil, err
	}
	return g.LinkNames(), nil
}

// BodyCollisionLinks returns the collision-bearing links of the named body.
func (w *World) BodyCollisionLinks(body string) ([]domain.LinkName, error) {
	g, err := w.tree.Group(body)
	if err != nil {
		return nil, err
	}
	return g.LinkNamesWithCollisions(), nil
}

// ControlledRobotLinks returns the collision-bearing links downstream of
// any controlled joint.
func (w *World) ControlledRobotLinks() ([]domain.LinkName, error) {
	return w.tree.ControlledLinksWithCollisions()
}

// PossibleSelfCollisions returns the self-collision partners of one robot
// link.
func (w *World) PossibleSelfCollisions(link domain.LinkName) ([]domain.LinkName, error) {
	return w.tree.PossibleSelfCollisions(link)
}

// SelfCollisionPairs returns the derived self-collision matrix.
func (w *World) SelfCollisionPairs() ([]domain.LinkPair, error) {
	return w.tree.SelfCollisionPairs()
}

// compile-time check: World satisfies the resolver's world view.
var _ collision.WorldView = (*World)(nil)

// compile-time check: the interpreter satisfies the compiler port.
var _ ports.Compiler = (*compiler.Compiler)(nil)

func descriptionName(doc []byte) (string, error) {
	d, err := urdf.Parse(doc)
	if err != nil {
		return "", err
	}
	return d.Name, nil
}

func removeString(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
