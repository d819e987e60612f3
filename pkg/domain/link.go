package domain

// Link is a rigid body node in the world tree. Child joints keep declaration
// order; the parent joint is empty only for the tree root.
type Link struct {
	Name        LinkName
	Collisions  []*Geometry
	Visuals     []*Geometry
	ParentJoint JointName
	ChildJoints []JointName
}

// NewLink returns a bare link with no geometry and no connections.
func NewLink(name LinkName) *Link {
	return &Link{Name: name}
}

// HasCollisions reports whether at least one collision geometry is
// significant under the given thresholds. Links failing this predicate never
// enter collision-pair enumeration.
func (l *Link) HasCollisions(volumeThreshold, surfaceThreshold float32) bool {
	for _, g := range l.Collisions {
		if g.Significant(volumeThreshold, surfaceThreshold) {
			return true
		}
	}
	return false
}

// HasVisuals reports whether the link carries any visual geometry.
func (l *Link) HasVisuals() bool {
	return len(l.Visuals) > 0
}
