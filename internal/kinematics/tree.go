// Package kinematics implements the mutable kinematic world tree: link/joint
// maps owned by a single Tree value, named derived group views, chain and
// branch traversals, and cached compiled forward kinematics.
//
// The tree has two conceptual states: stable (all caches valid for the
// current version) and dirty (a structural mutation just bumped the
// version). Every cache is invalidated in one place, bumpVersion, and is
// rebuilt lazily by the next query.
package kinematics

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/armech/armature/pkg/domain"
	"github.com/armech/armature/pkg/ports"
)

// connectionSuffix names the synthesized fixed joint that attaches an
// imported description or body to its parent link.
const connectionSuffix = "connection"

// Stats are monotonic counters for observability. Mutations counts version
// bumps; Compiles counts expression compilations.
type Stats struct {
	Version          uint64
	Mutations        uint64
	Compiles         uint64
	FKCacheHits      uint64
	FKCacheMisses    uint64
	ChainCacheHits   uint64
	ChainCacheMisses uint64
}

// Tree owns the links and joints of one world. All cross-references between
// links and joints are name lookups into the tree's maps, never pointers, so
// the structure stays serializable and cycle-free.
type Tree struct {
	logger   *slog.Logger
	compiler ports.Compiler

	root   domain.LinkName
	links  map[domain.LinkName]*domain.Link
	joints map[domain.JointName]*domain.Joint
	groups map[string]*Group

	state      map[domain.JointName]float32
	controlled map[domain.JointName]bool

	volumeThreshold  float32
	surfaceThreshold float32

	version uint64
	stats   Stats

	// Caches, cleared together on version bump.
	fkEvals        map[fkPair]ports.Evaluator
	splitChains    map[splitKey]splitChain
	controlledDesc map[domain.JointName][]domain.LinkName
	collisionLinks []domain.LinkName
	allFKs         *batchFKs
	selfPairs      []domain.LinkPair

	selfIgnored []domain.LinkPair
	selfAdded   []domain.LinkPair
}

// New creates a tree containing only the root link. The compiler is the
// injected expression backend used for forward kinematics.
func New(root domain.LinkName, compiler ports.Compiler, logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t := &Tree{
		logger:           logger,
		compiler:         compiler,
		root:             root,
		links:            map[domain.LinkName]*domain.Link{root: domain.NewLink(root)},
		joints:           make(map[domain.JointName]*domain.Joint),
		groups:           make(map[string]*Group),
		state:            make(map[domain.JointName]float32),
		volumeThreshold:  domain.DefaultVolumeThreshold,
		surfaceThreshold: domain.DefaultSurfaceThreshold,
	}
	t.resetCaches()
	return t
}

// SetSignificanceThresholds overrides the geometry significance thresholds
// that gate which links count as collision-bearing.
func (t *Tree) SetSignificanceThresholds(volume, surface float32) {
	t.volumeThreshold = volume
	t.surfaceThreshold = surface
	t.bumpVersion()
}

// Version returns the structural version. It strictly increases on every
// structural mutation and never changes on queries.
func (t *Tree) Version() uint64 {
	return t.version
}

// Stats returns a snapshot of the tree's counters.
func (t *Tree) Stats() Stats {
	s := t.stats
	s.Version = t.version
	return s
}

// bumpVersion marks the tree dirty: the version increases and every derived
// cache is discarded, to be rebuilt by the next query.
func (t *Tree) bumpVersion() {
	t.version++
	t.stats.Mutations++
	t.resetCaches()
}

func (t *Tree) resetCaches() {
	t.fkEvals = make(map[fkPair]ports.Evaluator)
	t.splitChains = make(map[splitKey]splitChain)
	t.controlledDesc = make(map[domain.JointName][]domain.LinkName)
	t.collisionLinks = nil
	t.allFKs = nil
	t.selfPairs = nil
}

// RootLink returns the name of the fixed tree root.
func (t *Tree) RootLink() domain.LinkName {
	return t.root
}

// Link returns the named link.
func (t *Tree) Link(name domain.LinkName) (*domain.Link, error) {
	l, ok := t.links[name]
	if !ok {
		return nil, fmt.Errorf("%w: link %q", domain.ErrUnknownBody, name)
	}
	return l, nil
}

// Joint returns the named joint.
func (t *Tree) Joint(name domain.JointName) (*domain.Joint, error) {
	j, ok := t.joints[name]
	if !ok {
		return nil, fmt.Errorf("%w: joint %q", domain.ErrUnknownBody, name)
	}
	return j, nil
}

// HasLink reports whether the tree contains the named link.
func (t *Tree) HasLink(name domain.LinkName) bool {
	_, ok := t.links[name]
	return ok
}

// HasJoint reports whether the tree contains the named joint.
func (t *Tree) HasJoint(name domain.JointName) bool {
	_, ok := t.joints[name]
	return ok
}

// LinkNames returns all link names, sorted.
func (t *Tree) LinkNames() []domain.LinkName {
	names := make([]domain.LinkName, 0, len(t.links))
	for name := range t.links {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// JointNames returns all joint names, sorted.
func (t *Tree) JointNames() []domain.JointName {
	names := make([]domain.JointName, 0, len(t.joints))
	for name := range t.joints {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// MovableJoints returns the names of all joints carrying a degree of
// freedom, sorted.
func (t *Tree) MovableJoints() []domain.JointName {
	var names []domain.JointName
	for name, j := range t.joints {
		if j.Movable() {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// LinkNamesWithCollisions returns the names of links bearing significant
// collision geometry, sorted. Memoized per version.
func (t *Tree) LinkNamesWithCollisions() []domain.LinkName {
	if t.collisionLinks == nil {
		names := make([]domain.LinkName, 0)
		for name, l := range t.links {
			if l.HasCollisions(t.volumeThreshold, t.surfaceThreshold) {
				names = append(names, name)
			}
		}
		sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
		t.collisionLinks = names
	}
	return t.collisionLinks
}

// HasLinkCollisions reports whether the named link bears significant
// collision geometry.
func (t *Tree) HasLinkCollisions(name domain.LinkName) bool {
	l, ok := t.links[name]
	return ok && l.HasCollisions(t.volumeThreshold, t.surfaceThreshold)
}

// ParentLinkOfLink returns the parent link of the named link.
func (t *Tree) ParentLinkOfLink(name domain.LinkName) (domain.LinkName, error) {
	l, err := t.Link(name)
	if err != nil {
		return "", err
	}
	if l.ParentJoint == "" {
		return "", fmt.Errorf("%w: link %q is the root", domain.ErrNoPath, name)
	}
	return t.joints[l.ParentJoint].Parent, nil
}

// linkJointToLinks inserts a (joint, child link) pair under the joint's
// parent link. Uniqueness is validated before any map is touched, so a
// failed insert leaves no partial state.
func (t *Tree) linkJointToLinks(joint *domain.Joint, child *domain.Link) error {
	parent, ok := t.links[joint.Parent]
	if !ok {
		return fmt.Errorf("%w: parent link %q", domain.ErrUnknownBody, joint.Parent)
	}
	if _, dup := t.joints[joint.Name]; dup {
		return fmt.Errorf("%w: joint %q", domain.ErrDuplicateName, joint.Name)
	}
	if _, dup := t.links[child.Name]; dup {
		return fmt.Errorf("%w: link %q", domain.ErrDuplicateName, child.Name)
	}
	child.ParentJoint = joint.Name
	t.joints[joint.Name] = joint
	t.links[child.Name] = child
	parent.ChildJoints = append(parent.ChildJoints, joint.Name)
	return nil
}

// MoveBranch re-parents a fixed joint's subtree under a new parent link. The
// joint's origin is recomputed as the forward kinematics between the new
// parent and the joint's child at this instant, so the subtree's world pose
// is frozen across the move.
func (t *Tree) MoveBranch(jointName domain.JointName, newParent domain.LinkName) error {
	j, err := t.Joint(jointName)
	if err != nil {
		return err
	}
	if j.Movable() {
		return fmt.Errorf("move branch: joint %q is %s; only fixed joints can be re-parented", jointName, j.Kind)
	}
	parent, err := t.Link(newParent)
	if err != nil {
		return err
	}
	// Re-parenting into the moved subtree would detach it from the root and
	// close a cycle.
	for l := parent; ; l = t.links[t.joints[l.ParentJoint].Parent] {
		if l.Name == j.Child {
			return fmt.Errorf("move branch: new parent %q is inside the subtree of %q", newParent, jointName)
		}
		if l.ParentJoint == "" {
			break
		}
	}
	origin, err := t.fkMatrix(newParent, j.Child)
	if err != nil {
		return err
	}
	oldParent := t.links[j.Parent]
	oldParent.ChildJoints = removeJointName(oldParent.ChildJoints, jointName)
	j.Parent = newParent
	j.Origin = origin
	parent.ChildJoints = append(parent.ChildJoints, jointName)
	t.bumpVersion()
	return nil
}

// MoveGroup re-parents the named group's subtree. Fails when the group is
// already attached to the target link.
func (t *Tree) MoveGroup(groupName string, newParent domain.LinkName) error {
	g, err := t.Group(groupName)
	if err != nil {
		return err
	}
	jointName := t.links[g.rootLink].ParentJoint
	if jointName == "" {
		return fmt.Errorf("move group: group %q is rooted at the tree root", groupName)
	}
	if t.joints[jointName].Parent == newParent {
		return fmt.Errorf("%w: group %q is already attached to %q", domain.ErrDuplicateName, groupName, newParent)
	}
	return t.MoveBranch(jointName, newParent)
}

// DeleteBranchAt removes the named joint and every descendant link and
// joint. Groups rooted inside the removed subtree are deleted as a side
// effect.
func (t *Tree) DeleteBranchAt(jointName domain.JointName) error {
	j, err := t.Joint(jointName)
	if err != nil {
		return err
	}
	delete(t.joints, jointName)
	delete(t.controlled, jointName)
	parent := t.links[j.Parent]
	parent.ChildJoints = removeJointName(parent.ChildJoints, jointName)
	t.deleteLinkRecursive(j.Child)
	t.bumpVersion()
	return nil
}

// DeleteBranch removes the subtree attached above the named link.
func (t *Tree) DeleteBranch(linkName domain.LinkName) error {
	l, err := t.Link(linkName)
	if err != nil {
		return err
	}
	if l.ParentJoint == "" {
		return fmt.Errorf("delete branch: cannot delete the root link %q", linkName)
	}
	return t.DeleteBranchAt(l.ParentJoint)
}

func (t *Tree) deleteLinkRecursive(linkName domain.LinkName) {
	l := t.links[linkName]
	delete(t.links, linkName)
	delete(t.state, l.ParentJoint)
	for name, g := range t.groups {
		if g.rootLink == linkName {
			delete(t.groups, name)
			t.logger.Info("deleted group because its root link was removed", "group", name, "link", linkName)
		}
	}
	for _, childJoint := range l.ChildJoints {
		cj := t.joints[childJoint]
		delete(t.joints, childJoint)
		delete(t.controlled, childJoint)
		t.deleteLinkRecursive(cj.Child)
	}
}

func removeJointName(names []domain.JointName, name domain.JointName) []domain.JointName {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// RegisterGroup registers a derived group view rooted at the named link.
func (t *Tree) RegisterGroup(name string, root domain.LinkName) error {
	if _, dup := t.groups[name]; dup {
		return fmt.Errorf("%w: group %q", domain.ErrDuplicateName, name)
	}
	if !t.HasLink(root) {
		return fmt.Errorf("%w: link %q", domain.ErrUnknownBody, root)
	}
	t.groups[name] = &Group{name: name, rootLink: root, tree: t}
	t.bumpVersion()
	return nil
}

// DeleteGroup removes a group view without touching the tree structure.
func (t *Tree) DeleteGroup(name string) error {
	if _, ok := t.groups[name]; !ok {
		return fmt.Errorf("%w: group %q", domain.ErrUnknownBody, name)
	}
	delete(t.groups, name)
	t.bumpVersion()
	return nil
}

// Group returns the named group view.
func (t *Tree) Group(name string) (*Group, error) {
	g, ok := t.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: group %q", domain.ErrUnknownBody, name)
	}
	return g, nil
}

// HasGroup reports whether the named group exists.
func (t *Tree) HasGroup(name string) bool {
	_, ok := t.groups[name]
	return ok
}

// GroupNames returns all registered group names, sorted.
func (t *Tree) GroupNames() []string {
	names := make([]string, 0, len(t.groups))
	for name := range t.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupOfLink returns the name of the smallest registered group containing
// the link, preferring deeper group roots.
func (t *Tree) GroupOfLink(link domain.LinkName) (string, error) {
	if !t.HasLink(link) {
		return "", fmt.Errorf("%w: link %q", domain.ErrUnknownBody, link)
	}
	best := ""
	bestDepth := -1
	for name, g := range t.groups {
		if !g.ContainsLink(link) {
			continue
		}
		d := t.linkDepth(g.rootLink)
		if d > bestDepth || (d == bestDepth && name < best) {
			best, bestDepth = name, d
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: link %q belongs to no group", domain.ErrUnknownBody, link)
	}
	return best, nil
}

func (t *Tree) linkDepth(link domain.LinkName) int {
	d := 0
	for link != t.root {
		link = t.joints[t.links[link].ParentJoint].Parent
		d++
	}
	return d
}

// SetControlledJoints declares which movable joints are actively commanded.
// Every name must refer to an existing joint with a free variable.
func (t *Tree) SetControlledJoints(names []domain.JointName) error {
	set := make(map[domain.JointName]bool, len(names))
	for _, name := range names {
		j, err := t.Joint(name)
		if err != nil {
			return err
		}
		if !j.HasFreeVariable() {
			return fmt.Errorf("controlled joints: joint %q is %s and carries no free variable", name, j.Kind)
		}
		set[name] = true
	}
	t.controlled = set
	t.bumpVersion()
	return nil
}

// ControlledJoints returns the effective controlled set, sorted. When none
// was declared, every joint with a free variable counts as controlled.
func (t *Tree) ControlledJoints() []domain.JointName {
	if t.controlled == nil {
		return t.freeJoints()
	}
	names := make([]domain.JointName, 0, len(t.controlled))
	for name := range t.controlled {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (t *Tree) freeJoints() []domain.JointName {
	var names []domain.JointName
	for name, j := range t.joints {
		if j.HasFreeVariable() {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// IsJointControlled reports whether the joint is in the effective controlled
// set.
func (t *Tree) IsJointControlled(name domain.JointName) bool {
	if t.controlled != nil {
		return t.controlled[name]
	}
	j, ok := t.joints[name]
	return ok && j.HasFreeVariable()
}

// IsJointFixed reports whether the joint carries no degree of freedom.
func (t *Tree) IsJointFixed(name domain.JointName) bool {
	j, ok := t.joints[name]
	return ok && !j.Movable()
}

// IsJointMovable reports whether the joint carries a degree of freedom.
func (t *Tree) IsJointMovable(name domain.JointName) bool {
	j, ok := t.joints[name]
	return ok && j.Movable()
}

// IsJointRotational reports whether the joint's degree of freedom is
// angular.
func (t *Tree) IsJointRotational(name domain.JointName) bool {
	j, ok := t.joints[name]
	return ok && j.Rotational()
}

// IsJointMimic reports whether the joint follows another joint's variable.
func (t *Tree) IsJointMimic(name domain.JointName) bool {
	j, ok := t.joints[name]
	return ok && j.Kind == domain.JointMimic
}

// SetJointPosition writes a single joint position. Changing joint state
// never bumps the structural version: compiled kinematics stay valid and are
// simply re-evaluated with the new values.
func (t *Tree) SetJointPosition(name domain.JointName, value float32) error {
	j, err := t.Joint(name)
	if err != nil {
		return err
	}
	if !j.HasFreeVariable() {
		return fmt.Errorf("set position: joint %q is %s and carries no free variable", name, j.Kind)
	}
	t.state[name] = value
	return nil
}

// SetJointPositions writes a batch of joint positions. Validation runs over
// the whole batch before any value is written.
func (t *Tree) SetJointPositions(positions map[domain.JointName]float32) error {
	for name := range positions {
		j, err := t.Joint(name)
		if err != nil {
			return err
		}
		if !j.HasFreeVariable() {
			return fmt.Errorf("set position: joint %q is %s and carries no free variable", name, j.Kind)
		}
	}
	for name, v := range positions {
		t.state[name] = v
	}
	return nil
}

// JointPosition returns the current position of a joint's free variable.
// Unset joints read as zero; mimic joints derive from their source.
func (t *Tree) JointPosition(name domain.JointName) (float32, error) {
	j, err := t.Joint(name)
	if err != nil {
		return 0, err
	}
	if j.Kind == domain.JointMimic {
		src := t.state[j.Mimic.Of]
		return src*j.Mimic.Multiplier + j.Mimic.Offset, nil
	}
	return t.state[name], nil
}

// JointPositions returns a copy of the raw joint state.
func (t *Tree) JointPositions() map[domain.JointName]float32 {
	out := make(map[domain.JointName]float32, len(t.state))
	for name, v := range t.state {
		out[name] = v
	}
	return out
}

// valuesFor maps compiled parameter names to current state values. Unknown
// parameters read as zero.
func (t *Tree) valuesFor(params []string) []float32 {
	values := make([]float32, len(params))
	for i, p := range params {
		values[i] = t.state[domain.JointName(p)]
	}
	return values
}
