package kinematics_test

import (
	"math"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armech/armature/internal/kinematics"
	"github.com/armech/armature/internal/testutils"
	"github.com/armech/armature/pkg/domain"
	"github.com/armech/armature/pkg/spatial"
)

func newTinyTree(t *testing.T) *kinematics.Tree {
	t.Helper()
	tree := testutils.NewTree(t)
	require.NoError(t, tree.AddDescription(
		[]byte(testutils.TinyDescription), "", "", "tiny", spatial.Identity()))
	return tree
}

func TestComputeFKPrismatic(t *testing.T) {
	tree := newTinyTree(t)

	pose, err := tree.ComputeFK("map", "tip")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, float64(pose.Pos.X), 1e-5, "joint origin alone at zero")

	require.NoError(t, tree.SetJointPosition("slide", 0.5))
	pose, err = tree.ComputeFK("map", "tip")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, float64(pose.Pos.X), 1e-5)
	assert.InDelta(t, 0, float64(pose.Pos.Y), 1e-5)
	assert.InDelta(t, 0, float64(pose.Pos.Z), 1e-5)
}

func TestComputeFKInverseDirection(t *testing.T) {
	tree := newTinyTree(t)
	require.NoError(t, tree.SetJointPosition("slide", 0.5))

	pose, err := tree.ComputeFK("tip", "map")
	require.NoError(t, err)
	assert.InDelta(t, -1.5, float64(pose.Pos.X), 1e-5)
}

func TestComputeFKSameLinkIsIdentity(t *testing.T) {
	tree := newTinyTree(t)
	pose, err := tree.ComputeFK("tip", "tip")
	require.NoError(t, err)
	assert.InDelta(t, 0, float64(pose.Pos.Length()), 1e-6)
	assert.InDelta(t, 1, float64(pose.Quat.W), 1e-6)
}

func TestComputeFKRevolute(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	require.NoError(t, tree.SetJointPosition("l_shoulder", math.Pi/2))

	// Rotating the shoulder about y swings the elbow offset (0,0,0.3) onto
	// the x axis.
	pose, err := tree.ComputeFK("torso", "l_forearm")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, float64(pose.Pos.X), 1e-5)
	assert.InDelta(t, 0.15, float64(pose.Pos.Y), 1e-5)
	assert.InDelta(t, 0.4, float64(pose.Pos.Z), 1e-5)
}

func TestComputeFKAcrossBranches(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	require.NoError(t, tree.SetJointPosition("torso_lift", 0.2))

	// Both arms hang off the torso; the lift cancels out between them.
	pose, err := tree.ComputeFK("l_upper_arm", "r_upper_arm")
	require.NoError(t, err)
	assert.InDelta(t, 0, float64(pose.Pos.X), 1e-5)
	assert.InDelta(t, -0.3, float64(pose.Pos.Y), 1e-5)
	assert.InDelta(t, 0, float64(pose.Pos.Z), 1e-5)

	// Against the world root the lift shows up.
	pose, err = tree.ComputeFK("map", "torso")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, float64(pose.Pos.Z), 1e-5)
}

func TestComputeFKMimic(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	require.NoError(t, tree.SetJointPosition("l_wrist_roll", 0.4))

	pose, err := tree.ComputeFK("l_wrist", "l_finger")
	require.NoError(t, err)
	assert.InDelta(t, 0, float64(pose.Pos.X), 1e-5)
	assert.InDelta(t, 0, float64(pose.Pos.Y), 1e-5)
	assert.InDelta(t, 0.05, float64(pose.Pos.Z), 1e-5)

	// The finger follows 0.5*wrist+0.1 about its x axis.
	want := math32.NewQuatAxisAngle(math32.Vec3(1, 0, 0), 0.5*0.4+0.1)
	assert.InDelta(t, float64(want.X), float64(pose.Quat.X), 1e-5)
	assert.InDelta(t, float64(want.W), float64(pose.Quat.W), 1e-5)
}

func TestComputeFKUnknownLink(t *testing.T) {
	tree := newTinyTree(t)
	_, err := tree.ComputeFK("map", "ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownBody)
	_, err = tree.ComputeFK("ghost", "tip")
	assert.ErrorIs(t, err, domain.ErrUnknownBody)
}

func TestFKCompileCaching(t *testing.T) {
	tree := newTinyTree(t)

	_, err := tree.ComputeFK("map", "tip")
	require.NoError(t, err)
	compiles := tree.Stats().Compiles
	assert.Greater(t, compiles, uint64(0))

	// State changes re-evaluate the compiled expression without recompiling.
	require.NoError(t, tree.SetJointPosition("slide", 0.25))
	_, err = tree.ComputeFK("map", "tip")
	require.NoError(t, err)
	assert.Equal(t, compiles, tree.Stats().Compiles)

	// A structural mutation forces a fresh compile.
	require.NoError(t, tree.RegisterGroup("aux", "tip"))
	_, err = tree.ComputeFK("map", "tip")
	require.NoError(t, err)
	assert.Greater(t, tree.Stats().Compiles, compiles)
}

func TestComputeAllFKs(t *testing.T) {
	tree := newTinyTree(t)
	require.NoError(t, tree.SetJointPosition("slide", 0.5))

	poses, err := tree.ComputeAllFKs()
	require.NoError(t, err)
	require.Len(t, poses, 2, "only collision-bearing links are batched")

	tip, ok := poses["tip"]
	require.True(t, ok)
	assert.InDelta(t, 1.5, float64(tip.Pos.X), 1e-5)

	root, ok := poses["root"]
	require.True(t, ok)
	assert.InDelta(t, 0, float64(root.Pos.X), 1e-5)
}

func TestComposeFKParams(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	expr, err := tree.ComposeFK("map", "l_forearm")
	require.NoError(t, err)
	assert.Equal(t, []string{"l_elbow", "l_shoulder", "torso_lift"}, spatial.FreeVars(expr))
}
