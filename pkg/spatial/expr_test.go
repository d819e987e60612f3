package spatial

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeVarsSortedAndDeduplicated(t *testing.T) {
	expr := Mul(
		Rotate{Axis: math32.Vec3(0, 0, 1), Var: NewVar("b")},
		Translate{Axis: math32.Vec3(1, 0, 0), Var: NewVar("a")},
		Rotate{Axis: math32.Vec3(0, 1, 0), Var: NewVar("b")},
	)
	assert.Equal(t, []string{"a", "b"}, FreeVars(expr))
}

func TestFreeVarsIgnoresConstAndEmptyNames(t *testing.T) {
	assert.Empty(t, FreeVars(Const{M: IdentityMatrix()}))
	assert.Empty(t, FreeVars(Translate{Axis: math32.Vec3(1, 0, 0)}))
}

func TestFreeVarsSeesThroughInverse(t *testing.T) {
	expr := Inverse{X: Rotate{Axis: math32.Vec3(0, 0, 1), Var: NewVar("q")}}
	assert.Equal(t, []string{"q"}, FreeVars(expr))
}

func TestMulFlattensNestedProducts(t *testing.T) {
	a := Translate{Axis: math32.Vec3(1, 0, 0), Var: NewVar("a")}
	b := Translate{Axis: math32.Vec3(0, 1, 0), Var: NewVar("b")}
	c := Translate{Axis: math32.Vec3(0, 0, 1), Var: NewVar("c")}

	expr := Mul(Mul(a, b), c)
	p, ok := expr.(Product)
	require.True(t, ok)
	assert.Len(t, p.Factors, 3)
}

func TestMulSingleFactorCollapses(t *testing.T) {
	a := Translate{Axis: math32.Vec3(1, 0, 0), Var: NewVar("a")}
	assert.Equal(t, a, Mul(a))
}

func TestPoseMatrixRoundTrip(t *testing.T) {
	p := EulerPose(1, 2, 3, 0.1, 0.2, 0.3)
	m := p.Matrix()
	back := PoseFromMatrix(&m)
	assert.InDelta(t, float64(p.Pos.X), float64(back.Pos.X), 1e-5)
	assert.InDelta(t, float64(p.Pos.Y), float64(back.Pos.Y), 1e-5)
	assert.InDelta(t, float64(p.Pos.Z), float64(back.Pos.Z), 1e-5)
	assert.InDelta(t, float64(p.Quat.W), float64(back.Quat.W), 1e-5)
}

func TestZeroPoseMatrixIsIdentity(t *testing.T) {
	var p Pose
	m := p.Matrix()
	id := IdentityMatrix()
	assert.Equal(t, id, m)
}
