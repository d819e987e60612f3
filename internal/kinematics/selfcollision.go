package kinematics

import (
	"sort"

	"github.com/armech/armature/pkg/domain"
)

// SetSelfCollisionOverrides installs pair-level corrections for the derived
// self-collision matrix: ignored pairs are removed, added pairs are forced
// in. Pairs are canonicalized before use, so order within a pair does not
// matter.
func (t *Tree) SetSelfCollisionOverrides(ignored, added []domain.LinkPair) {
	t.selfIgnored = ignored
	t.selfAdded = added
	t.selfPairs = nil
}

// SelfCollisionPairs derives the self-collision matrix: for every controlled
// joint, its directly controlled collision-bearing links paired against the
// collision-bearing siblings that move rigidly with its parent. Pairs are
// canonical and sorted; the result is memoized per structural version.
func (t *Tree) SelfCollisionPairs() ([]domain.LinkPair, error) {
	if t.selfPairs != nil {
		return t.selfPairs, nil
	}
	set := make(map[domain.LinkPair]bool)
	for _, joint := range t.ControlledJoints() {
		moving, err := t.DirectlyControlledChildLinksWithCollisions(joint)
		if err != nil {
			return nil, err
		}
		siblings, err := t.SiblingsWithCollisions(joint)
		if err != nil {
			return nil, err
		}
		for _, a := range moving {
			for _, b := range siblings {
				if a == b {
					continue
				}
				set[t.CanonicalPair(a, b)] = true
			}
		}
	}
	for _, p := range t.selfIgnored {
		delete(set, t.CanonicalPair(p.A, p.B))
	}
	for _, p := range t.selfAdded {
		set[t.CanonicalPair(p.A, p.B)] = true
	}
	pairs := make([]domain.LinkPair, 0, len(set))
	for p := range set {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	t.selfPairs = pairs
	return pairs, nil
}

// PossibleSelfCollisions returns the partners the given link is paired with
// in the self-collision matrix, sorted.
func (t *Tree) PossibleSelfCollisions(link domain.LinkName) ([]domain.LinkName, error) {
	if _, err := t.Link(link); err != nil {
		return nil, err
	}
	pairs, err := t.SelfCollisionPairs()
	if err != nil {
		return nil, err
	}
	var partners []domain.LinkName
	for _, p := range pairs {
		switch link {
		case p.A:
			partners = append(partners, p.B)
		case p.B:
			partners = append(partners, p.A)
		}
	}
	sortLinkNames(partners)
	return partners, nil
}

// CanonicalPair orders two links into a canonical pair: links downstream of
// a controlled joint sort after links that are not, and name order breaks
// ties. Canonical ordering makes pair identity independent of argument
// order.
func (t *Tree) CanonicalPair(a, b domain.LinkName) domain.LinkPair {
	if t.LinkOrderLess(b, a) {
		a, b = b, a
	}
	return domain.LinkPair{A: a, B: b}
}

// LinkOrderLess is the canonical link order used for collision pairs.
func (t *Tree) LinkOrderLess(a, b domain.LinkName) bool {
	ca := t.hasControlledAncestor(a)
	cb := t.hasControlledAncestor(b)
	if ca != cb {
		return !ca
	}
	return a < b
}

func (t *Tree) hasControlledAncestor(link domain.LinkName) bool {
	_, err := t.ControlledParentJointOfLink(link)
	return err == nil
}
