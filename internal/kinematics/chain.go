package kinematics

import (
	"fmt"
	"sort"

	"github.com/armech/armature/pkg/domain"
)

// Chain is a root-to-tip name sequence. Depending on the flags it was built
// with it holds link names, joint names, or both interleaved.
type Chain []string

type splitKey struct {
	root, tip                           domain.LinkName
	joints, links, fixed, nonControlled bool
}

type splitChain struct {
	rootPart, connection, tipPart Chain
}

// ComputeChain walks from root down to tip and collects names along the way.
// joints and links select what enters the chain; fixed admits fixed joints
// and nonControlled admits joints outside the controlled set. Fails with
// ErrNoPath when root is not an ancestor of tip.
func (t *Tree) ComputeChain(root, tip domain.LinkName, joints, links, fixed, nonControlled bool) (Chain, error) {
	if !t.HasLink(root) {
		return nil, fmt.Errorf("%w: link %q", domain.ErrUnknownBody, root)
	}
	l, err := t.Link(tip)
	if err != nil {
		return nil, err
	}
	var chain Chain
	if links {
		chain = append(chain, string(tip))
	}
	for l.Name != root {
		if l.ParentJoint == "" {
			return nil, fmt.Errorf("%w: %q is not an ancestor of %q", domain.ErrNoPath, root, tip)
		}
		j := t.joints[l.ParentJoint]
		if joints {
			if (fixed || j.Movable()) && (nonControlled || t.IsJointControlled(j.Name)) {
				chain = append(chain, string(j.Name))
			}
		}
		l = t.links[j.Parent]
		if links {
			chain = append(chain, string(l.Name))
		}
	}
	reverseChain(chain)
	return chain, nil
}

// ComputeSplitChain splits the path between two arbitrary links at their
// lowest common ancestor. It returns the ascending part (first link first,
// LCA side last), the connection link, and the descending part. Results are
// memoized per structural version.
func (t *Tree) ComputeSplitChain(root, tip domain.LinkName, joints, links, fixed, nonControlled bool) (rootPart, connection, tipPart Chain, err error) {
	key := splitKey{root, tip, joints, links, fixed, nonControlled}
	if cached, ok := t.splitChains[key]; ok {
		t.stats.ChainCacheHits++
		return cached.rootPart, cached.connection, cached.tipPart, nil
	}
	t.stats.ChainCacheMisses++

	rootPart, connection, tipPart, err = t.computeSplitChain(root, tip, joints, links, fixed, nonControlled)
	if err != nil {
		return nil, nil, nil, err
	}
	t.splitChains[key] = splitChain{rootPart, connection, tipPart}
	return rootPart, connection, tipPart, nil
}

func (t *Tree) computeSplitChain(root, tip domain.LinkName, joints, links, fixed, nonControlled bool) (Chain, Chain, Chain, error) {
	if root == tip {
		return Chain{}, Chain{}, Chain{}, nil
	}
	rootChain, err := t.ComputeChain(t.root, root, false, true, true, true)
	if err != nil {
		return nil, nil, nil, err
	}
	tipChain, err := t.ComputeChain(t.root, tip, false, true, true, true)
	if err != nil {
		return nil, nil, nil, err
	}
	// First index where the two root-anchored link chains diverge; the
	// element before it is the lowest common ancestor.
	i := 0
	for i < len(rootChain) && i < len(tipChain) && rootChain[i] == tipChain[i] {
		i++
	}
	connection := domain.LinkName(tipChain[i-1])

	up, err := t.ComputeChain(connection, root, joints, links, fixed, nonControlled)
	if err != nil {
		return nil, nil, nil, err
	}
	down, err := t.ComputeChain(connection, tip, joints, links, fixed, nonControlled)
	if err != nil {
		return nil, nil, nil, err
	}
	if links {
		up = up[1:]
		down = down[1:]
	}
	reverseChain(up)
	var mid Chain
	if links {
		mid = Chain{string(connection)}
	} else {
		mid = Chain{}
	}
	return up, mid, down, nil
}

func reverseChain(c Chain) {
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
}

// SearchForParentJoint walks upward from the joint strictly above the given
// one until stop returns true, and returns that joint. Every iteration
// advances on the joint resolved in the previous step, so the walk moves at
// least one edge closer to the root each time and terminates at the root.
func (t *Tree) SearchForParentJoint(joint domain.JointName, stop func(domain.JointName) bool) (domain.JointName, error) {
	j, err := t.Joint(joint)
	if err != nil {
		return "", err
	}
	for {
		parentLink := t.links[j.Parent]
		if parentLink.ParentJoint == "" {
			return "", fmt.Errorf("%w: no matching joint above %q", domain.ErrNoPath, joint)
		}
		j = t.joints[parentLink.ParentJoint]
		if stop(j.Name) {
			return j.Name, nil
		}
	}
}

// ControlledParentJointOfJoint resolves the closest controlled joint
// strictly above the given joint.
func (t *Tree) ControlledParentJointOfJoint(joint domain.JointName) (domain.JointName, error) {
	return t.SearchForParentJoint(joint, t.IsJointControlled)
}

// ControlledParentJointOfLink resolves the closest controlled joint at or
// above the given link's parent joint.
func (t *Tree) ControlledParentJointOfLink(link domain.LinkName) (domain.JointName, error) {
	l, err := t.Link(link)
	if err != nil {
		return "", err
	}
	if l.ParentJoint == "" {
		return "", fmt.Errorf("%w: link %q is the root", domain.ErrNoPath, link)
	}
	if t.IsJointControlled(l.ParentJoint) {
		return l.ParentJoint, nil
	}
	return t.SearchForParentJoint(l.ParentJoint, t.IsJointControlled)
}

// MovableParentJoint resolves the closest movable joint at or above the
// given link's parent joint.
func (t *Tree) MovableParentJoint(link domain.LinkName) (domain.JointName, error) {
	l, err := t.Link(link)
	if err != nil {
		return "", err
	}
	if l.ParentJoint == "" {
		return "", fmt.Errorf("%w: link %q is the root", domain.ErrNoPath, link)
	}
	if t.IsJointMovable(l.ParentJoint) {
		return l.ParentJoint, nil
	}
	return t.SearchForParentJoint(l.ParentJoint, t.IsJointMovable)
}

// SearchBranch walks the subtree rooted at the given link and collects
// links and joints matching the collect predicates. A joint matching
// stopAtJoint is neither collected nor descended through; a link matching
// stopAtLink is collected (when its predicate matches) but its children are
// skipped. Nil predicates mean "never" for stops and "always skip" for
// collectors.
func (t *Tree) SearchBranch(start domain.LinkName,
	stopAtJoint func(domain.JointName) bool,
	stopAtLink func(domain.LinkName) bool,
	collectJoint func(domain.JointName) bool,
	collectLink func(domain.LinkName) bool,
) (links []domain.LinkName, joints []domain.JointName, err error) {
	if !t.HasLink(start) {
		return nil, nil, fmt.Errorf("%w: link %q", domain.ErrUnknownBody, start)
	}
	var walk func(linkName domain.LinkName)
	walk = func(linkName domain.LinkName) {
		l := t.links[linkName]
		if collectLink != nil && collectLink(linkName) {
			links = append(links, linkName)
		}
		if stopAtLink != nil && stopAtLink(linkName) {
			return
		}
		for _, child := range l.ChildJoints {
			if stopAtJoint != nil && stopAtJoint(child) {
				continue
			}
			if collectJoint != nil && collectJoint(child) {
				joints = append(joints, child)
			}
			walk(t.joints[child].Child)
		}
	}
	walk(start)
	return links, joints, nil
}

// DirectlyControlledChildLinksWithCollisions returns the collision-bearing
// links below the given controlled joint whose pose is determined by it
// alone: descent stops at the next controlled joint. Memoized per version.
func (t *Tree) DirectlyControlledChildLinksWithCollisions(joint domain.JointName) ([]domain.LinkName, error) {
	if cached, ok := t.controlledDesc[joint]; ok {
		return cached, nil
	}
	j, err := t.Joint(joint)
	if err != nil {
		return nil, err
	}
	links, _, err := t.SearchBranch(j.Child, t.IsJointControlled, nil, nil, t.HasLinkCollisions)
	if err != nil {
		return nil, err
	}
	sortLinkNames(links)
	t.controlledDesc[joint] = links
	return links, nil
}

// SiblingsWithCollisions returns the collision-bearing links that move
// rigidly with the given joint's parent: the links reachable from the child
// of the closest controlled joint above it without crossing another
// controlled joint. Empty when no controlled joint sits above.
func (t *Tree) SiblingsWithCollisions(joint domain.JointName) ([]domain.LinkName, error) {
	if _, err := t.Joint(joint); err != nil {
		return nil, err
	}
	parent, err := t.ControlledParentJointOfJoint(joint)
	if err != nil {
		return nil, nil
	}
	links, _, err := t.SearchBranch(t.joints[parent].Child, t.IsJointControlled, nil, nil, t.HasLinkCollisions)
	if err != nil {
		return nil, err
	}
	sortLinkNames(links)
	return links, nil
}

// ControlledLinksWithCollisions returns the union of collision-bearing links
// downstream of any controlled joint, sorted.
func (t *Tree) ControlledLinksWithCollisions() ([]domain.LinkName, error) {
	seen := make(map[domain.LinkName]bool)
	for _, joint := range t.ControlledJoints() {
		links, _, err := t.SearchBranch(t.joints[joint].Child, nil, nil, nil, t.HasLinkCollisions)
		if err != nil {
			return nil, err
		}
		for _, l := range links {
			seen[l] = true
		}
	}
	out := make([]domain.LinkName, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sortLinkNames(out)
	return out, nil
}

// ChainReducedToControlledJoints shrinks the path between two links to the
// segment whose pose actually depends on controlled joints: the links
// adjacent to the outermost controlled joints on each side. Fails with
// ErrNoPath when no controlled joint lies on the path.
func (t *Tree) ChainReducedToControlledJoints(a, b domain.LinkName) (domain.LinkName, domain.LinkName, error) {
	up, mid, down, err := t.ComputeSplitChain(a, b, true, true, true, true)
	if err != nil {
		return "", "", err
	}
	full := make(Chain, 0, len(up)+len(mid)+len(down))
	full = append(full, up...)
	full = append(full, mid...)
	full = append(full, down...)

	// The interleaved chain starts and ends with link names; joints sit at
	// odd indices.
	newA, newB := domain.LinkName(""), domain.LinkName("")
	for i := 1; i < len(full); i += 2 {
		if t.IsJointControlled(domain.JointName(full[i])) {
			newA = domain.LinkName(full[i-1])
			break
		}
	}
	for i := len(full) - 2; i >= 1; i -= 2 {
		if t.IsJointControlled(domain.JointName(full[i])) {
			newB = domain.LinkName(full[i+1])
			break
		}
	}
	if newA == "" || newB == "" {
		return "", "", fmt.Errorf("%w: no controlled joint between %q and %q", domain.ErrNoPath, a, b)
	}
	return newA, newB, nil
}

// AreLinked reports whether no joint separates the two links under the
// given admission flags: fixed joints are ignored when ignoreFixed is true,
// and joints outside the controlled set are ignored when ignoreNonControlled
// is true.
func (t *Tree) AreLinked(a, b domain.LinkName, ignoreFixed, ignoreNonControlled bool) (bool, error) {
	up, _, down, err := t.ComputeSplitChain(a, b, true, false, !ignoreFixed, !ignoreNonControlled)
	if err != nil {
		return false, err
	}
	return len(up) == 0 && len(down) == 0, nil
}

func sortLinkNames(names []domain.LinkName) {
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
}
