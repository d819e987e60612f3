package spatial

import "cogentcore.org/core/math32"

// Pose is a rigid transform expressed as position plus orientation.
type Pose struct {
	Pos  math32.Vector3 `yaml:"pos" json:"pos"`
	Quat math32.Quat    `yaml:"quat" json:"quat"`
}

// Identity returns the identity pose.
func Identity() Pose {
	p := Pose{}
	p.Quat.SetIdentity()
	return p
}

// NewPose returns a pose from a position and an orientation.
func NewPose(pos math32.Vector3, quat math32.Quat) Pose {
	return Pose{Pos: pos, Quat: quat}
}

// EulerPose returns a pose from a position and roll/pitch/yaw angles in
// radians.
func EulerPose(x, y, z, roll, pitch, yaw float32) Pose {
	return Pose{
		Pos:  math32.Vec3(x, y, z),
		Quat: math32.NewQuatEuler(math32.Vec3(roll, pitch, yaw)),
	}
}

// Matrix returns the pose as a homogeneous transform matrix.
func (p Pose) Matrix() math32.Matrix4 {
	var m math32.Matrix4
	q := p.Quat
	if q.IsNil() {
		q.SetIdentity()
	}
	m.SetTransform(p.Pos, q, math32.Vec3(1, 1, 1))
	return m
}

// PoseFromMatrix extracts the rigid part of a homogeneous transform.
func PoseFromMatrix(m *math32.Matrix4) Pose {
	pos, quat, _ := m.Decompose()
	return Pose{Pos: pos, Quat: quat}
}

// IdentityMatrix returns a fresh identity transform matrix.
func IdentityMatrix() math32.Matrix4 {
	return *math32.Identity4()
}
