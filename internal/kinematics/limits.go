package kinematics

import (
	"fmt"

	"github.com/armech/armature/pkg/domain"
)

// ApplyJointLimits tightens joint limits of the given derivative order from
// symmetric bounds: angular bounds apply to rotational joints, linear bounds
// to prismatic ones. An existing tighter limit is kept; fixed and mimic
// joints are skipped. Joints absent from the relevant map are untouched.
func (t *Tree) ApplyJointLimits(order int, linear, angular map[domain.JointName]float32) {
	for name, j := range t.joints {
		if !j.HasFreeVariable() {
			continue
		}
		bounds := linear
		if j.Rotational() {
			bounds = angular
		}
		bound, ok := bounds[name]
		if !ok {
			continue
		}
		newLower, newUpper := -bound, bound
		if pair := j.Limit(order); pair != nil {
			if pair.Lower != nil && *pair.Lower > newLower {
				newLower = *pair.Lower
			}
			if pair.Upper != nil && *pair.Upper < newUpper {
				newUpper = *pair.Upper
			}
		}
		j.SetLimit(order, domain.Float32(newLower), domain.Float32(newUpper))
	}
}

// ApplyJointWeights overwrites the cost weight of the given derivative order
// for every free joint present in the map.
func (t *Tree) ApplyJointWeights(order int, weights map[domain.JointName]float32) {
	for name, j := range t.joints {
		if !j.HasFreeVariable() {
			continue
		}
		if w, ok := weights[name]; ok {
			if j.Weights == nil {
				j.Weights = make(map[int]float32)
			}
			j.Weights[order] = w
		}
	}
}

// JointLimits returns the lower and upper limit of a joint at the given
// derivative order. Either bound may be nil when unbounded. Mimic joints
// report their source joint's limits mapped through the mimic transform.
func (t *Tree) JointLimits(name domain.JointName, order int) (lower, upper *float32, err error) {
	j, err := t.Joint(name)
	if err != nil {
		return nil, nil, err
	}
	if j.Kind != domain.JointMimic {
		if pair := j.Limit(order); pair != nil {
			return pair.Lower, pair.Upper, nil
		}
		return nil, nil, nil
	}
	src, err := t.Joint(j.Mimic.Of)
	if err != nil {
		return nil, nil, fmt.Errorf("mimic source of %q: %w", name, err)
	}
	pair := src.Limit(order)
	if pair == nil {
		return nil, nil, nil
	}
	return mimicBound(pair.Lower, pair.Upper, j.Mimic)
}

// mimicBound maps source-joint bounds through value*multiplier+offset. A
// negative multiplier swaps which bound is lower.
func mimicBound(lo, hi *float32, m *domain.Mimic) (*float32, *float32, error) {
	scale := func(v *float32) *float32 {
		if v == nil {
			return nil
		}
		return domain.Float32(*v*m.Multiplier + m.Offset)
	}
	a, b := scale(lo), scale(hi)
	if m.Multiplier < 0 {
		a, b = b, a
	}
	return a, b, nil
}

// AllJointPositionLimits returns the position limits of every free joint.
func (t *Tree) AllJointPositionLimits() map[domain.JointName]domain.LimitPair {
	out := make(map[domain.JointName]domain.LimitPair)
	for name, j := range t.joints {
		if !j.HasFreeVariable() {
			continue
		}
		if pair := j.Limit(domain.OrderPosition); pair != nil {
			out[name] = *pair
		} else {
			out[name] = domain.LimitPair{}
		}
	}
	return out
}
