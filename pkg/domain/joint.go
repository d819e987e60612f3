package domain

import (
	"fmt"

	"cogentcore.org/core/math32"
)

// Derivative orders for joint limits and weights.
const (
	OrderPosition = 0
	OrderVelocity = 1
)

// JointKind enumerates the closed joint classification.
type JointKind int

const (
	JointFixed JointKind = iota
	JointPrismatic
	JointRevolute
	JointContinuous
	JointMimic
)

func (k JointKind) String() string {
	switch k {
	case JointFixed:
		return "fixed"
	case JointPrismatic:
		return "prismatic"
	case JointRevolute:
		return "revolute"
	case JointContinuous:
		return "continuous"
	case JointMimic:
		return "mimic"
	}
	return fmt.Sprintf("JointKind(%d)", int(k))
}

// Mimic couples a joint to another joint's degree of freedom:
// q = Multiplier*q_source + Offset. Rotational records whether the mimicking
// joint itself rotates or translates along its axis.
type Mimic struct {
	Of         JointName
	Multiplier float32
	Offset     float32
	Rotational bool
}

// LimitPair holds the lower and upper bound for one derivative order. A nil
// bound means unbounded (e.g. position of a continuous joint).
type LimitPair struct {
	Lower *float32
	Upper *float32
}

// Joint is a tree edge between two links. Origin is the parent→child
// transform at the zero position; movable kinds parametrize it by one scalar
// degree of freedom along or about Axis.
type Joint struct {
	Name   JointName
	Kind   JointKind
	Parent LinkName
	Child  LinkName
	Origin math32.Matrix4
	Axis   math32.Vector3
	Mimic  *Mimic

	// Limits and Weights are keyed by derivative order (position, velocity, ...).
	Limits  map[int]*LimitPair
	Weights map[int]float32
}

// NewFixedJoint returns a fixed joint with the given parent→child transform.
func NewFixedJoint(name JointName, parent, child LinkName, origin math32.Matrix4) *Joint {
	return &Joint{Name: name, Kind: JointFixed, Parent: parent, Child: child, Origin: origin}
}

// Movable reports whether the joint carries a degree of freedom.
func (j *Joint) Movable() bool {
	return j.Kind != JointFixed
}

// Rotational reports whether the degree of freedom rotates about Axis rather
// than translating along it.
func (j *Joint) Rotational() bool {
	switch j.Kind {
	case JointRevolute, JointContinuous:
		return true
	case JointMimic:
		return j.Mimic != nil && j.Mimic.Rotational
	}
	return false
}

// HasFreeVariable reports whether the joint owns a controller variable.
// Mimic joints move but follow another joint's variable.
func (j *Joint) HasFreeVariable() bool {
	return j.Movable() && j.Kind != JointMimic
}

// Limit returns the bounds for the given derivative order, or nil when none
// have been set.
func (j *Joint) Limit(order int) *LimitPair {
	if j.Limits == nil {
		return nil
	}
	return j.Limits[order]
}

// SetLimit replaces the bounds for the given derivative order.
func (j *Joint) SetLimit(order int, lower, upper *float32) {
	if j.Limits == nil {
		j.Limits = make(map[int]*LimitPair)
	}
	j.Limits[order] = &LimitPair{Lower: lower, Upper: upper}
}

// Float32 returns a pointer to v, for building limit pairs.
func Float32(v float32) *float32 { return &v }
