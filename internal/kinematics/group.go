package kinematics

import (
	"errors"
	"fmt"
	"sort"

	"github.com/armech/armature/pkg/domain"
	"github.com/armech/armature/pkg/spatial"
)

// ErrImmutableGroup rejects structural mutation through a group view.
// Groups are derived projections of the tree; all mutation goes through the
// owning Tree.
var ErrImmutableGroup = errors.New("groups are read-only views; mutate the owning tree")

// Group is a named view of the subtree rooted at a link. It holds no links
// or joints of its own: membership is derived from the tree on demand and
// memoized against the structural version, so a stale group never survives
// a mutation.
type Group struct {
	name     string
	rootLink domain.LinkName
	tree     *Tree

	memoVersion uint64
	memoValid   bool
	links       map[domain.LinkName]bool
	joints      map[domain.JointName]bool
}

// Name returns the group's registered name.
func (g *Group) Name() string {
	return g.name
}

// RootLink returns the link the group is rooted at.
func (g *Group) RootLink() domain.LinkName {
	return g.rootLink
}

func (g *Group) refresh() {
	if g.memoValid && g.memoVersion == g.tree.version {
		return
	}
	g.links = make(map[domain.LinkName]bool)
	g.joints = make(map[domain.JointName]bool)
	links, joints, err := g.tree.SearchBranch(g.rootLink, nil, nil,
		func(domain.JointName) bool { return true },
		func(domain.LinkName) bool { return true },
	)
	if err != nil {
		g.tree.logger.Warn("group root is missing from the tree; the view reads empty",
			"group", g.name, "root", g.rootLink, "error", err)
	} else {
		for _, l := range links {
			g.links[l] = true
		}
		for _, j := range joints {
			g.joints[j] = true
		}
	}
	g.memoVersion = g.tree.version
	g.memoValid = true
}

// ContainsLink reports whether the link is part of the group's subtree.
func (g *Group) ContainsLink(name domain.LinkName) bool {
	g.refresh()
	return g.links[name]
}

// ContainsJoint reports whether the joint is part of the group's subtree.
func (g *Group) ContainsJoint(name domain.JointName) bool {
	g.refresh()
	return g.joints[name]
}

// LinkNames returns the group's link names, sorted.
func (g *Group) LinkNames() []domain.LinkName {
	g.refresh()
	names := make([]domain.LinkName, 0, len(g.links))
	for name := range g.links {
		names = append(names, name)
	}
	sortLinkNames(names)
	return names
}

// JointNames returns the group's joint names, sorted.
func (g *Group) JointNames() []domain.JointName {
	g.refresh()
	names := make([]domain.JointName, 0, len(g.joints))
	for name := range g.joints {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// LinkNamesWithCollisions returns the group's collision-bearing link names,
// sorted.
func (g *Group) LinkNamesWithCollisions() []domain.LinkName {
	g.refresh()
	var names []domain.LinkName
	for name := range g.links {
		if g.tree.HasLinkCollisions(name) {
			names = append(names, name)
		}
	}
	sortLinkNames(names)
	return names
}

// MovableJoints returns the group's joints that carry a degree of freedom,
// sorted.
func (g *Group) MovableJoints() []domain.JointName {
	g.refresh()
	var names []domain.JointName
	for name := range g.joints {
		if g.tree.IsJointMovable(name) {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// BasePose returns the group root's pose in the tree root frame at the
// current joint state.
func (g *Group) BasePose() (spatial.Pose, error) {
	return g.tree.ComputeFK(g.tree.root, g.rootLink)
}

// AddBody always fails: groups cannot be mutated.
func (g *Group) AddBody(domain.BodySpec, spatial.Pose, domain.LinkName) error {
	return fmt.Errorf("group %q: %w", g.name, ErrImmutableGroup)
}

// DeleteBranchAt always fails: groups cannot be mutated.
func (g *Group) DeleteBranchAt(domain.JointName) error {
	return fmt.Errorf("group %q: %w", g.name, ErrImmutableGroup)
}

// RegisterGroup always fails: groups cannot be nested by mutation.
func (g *Group) RegisterGroup(string, domain.LinkName) error {
	return fmt.Errorf("group %q: %w", g.name, ErrImmutableGroup)
}
