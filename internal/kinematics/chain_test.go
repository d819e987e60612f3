package kinematics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armech/armature/internal/kinematics"
	"github.com/armech/armature/internal/testutils"
	"github.com/armech/armature/pkg/domain"
)

func TestComputeChainLinksAndJoints(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	chain, err := tree.ComputeChain("map", "l_forearm", true, true, true, true)
	require.NoError(t, err)
	assert.Equal(t, kinematics.Chain{
		"map", "testbot/connection", "base_link", "torso_lift", "torso",
		"l_shoulder", "l_upper_arm", "l_elbow", "l_forearm",
	}, chain)

	joints, err := tree.ComputeChain("map", "l_forearm", true, false, false, true)
	require.NoError(t, err)
	assert.Equal(t, kinematics.Chain{"torso_lift", "l_shoulder", "l_elbow"}, joints)

	links, err := tree.ComputeChain("torso", "l_forearm", false, true, true, true)
	require.NoError(t, err)
	assert.Equal(t, kinematics.Chain{"torso", "l_upper_arm", "l_forearm"}, links)
}

func TestComputeChainSameLink(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	chain, err := tree.ComputeChain("torso", "torso", true, true, true, true)
	require.NoError(t, err)
	assert.Equal(t, kinematics.Chain{"torso"}, chain)
}

func TestComputeChainRequiresAncestry(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	_, err := tree.ComputeChain("l_forearm", "torso", true, true, true, true)
	assert.ErrorIs(t, err, domain.ErrNoPath)
	_, err = tree.ComputeChain("ghost", "torso", true, true, true, true)
	assert.ErrorIs(t, err, domain.ErrUnknownBody)
	_, err = tree.ComputeChain("map", "ghost", true, true, true, true)
	assert.ErrorIs(t, err, domain.ErrUnknownBody)
}

func TestComputeSplitChainAcrossArms(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	up, mid, down, err := tree.ComputeSplitChain("l_forearm", "r_forearm", false, true, true, true)
	require.NoError(t, err)
	assert.Equal(t, kinematics.Chain{"l_forearm", "l_upper_arm"}, up)
	assert.Equal(t, kinematics.Chain{"torso"}, mid)
	assert.Equal(t, kinematics.Chain{"r_upper_arm", "r_forearm"}, down)
}

func TestComputeSplitChainStraightLine(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	// Tip below root: everything lands in the descending part.
	up, mid, down, err := tree.ComputeSplitChain("torso", "l_forearm", true, false, false, true)
	require.NoError(t, err)
	assert.Empty(t, up)
	assert.Empty(t, mid)
	assert.Equal(t, kinematics.Chain{"l_shoulder", "l_elbow"}, down)

	// Root below tip: everything lands in the ascending part.
	up, mid, down, err = tree.ComputeSplitChain("l_forearm", "torso", true, false, false, true)
	require.NoError(t, err)
	assert.Equal(t, kinematics.Chain{"l_elbow", "l_shoulder"}, up)
	assert.Empty(t, mid)
	assert.Empty(t, down)
}

func TestComputeSplitChainSameLink(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	up, mid, down, err := tree.ComputeSplitChain("torso", "torso", true, true, true, true)
	require.NoError(t, err)
	assert.Empty(t, up)
	assert.Empty(t, mid)
	assert.Empty(t, down)
}

func TestSplitChainMemoization(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	_, _, _, err := tree.ComputeSplitChain("l_forearm", "r_forearm", false, true, true, true)
	require.NoError(t, err)
	misses := tree.Stats().ChainCacheMisses

	_, _, _, err = tree.ComputeSplitChain("l_forearm", "r_forearm", false, true, true, true)
	require.NoError(t, err)
	stats := tree.Stats()
	assert.Equal(t, misses, stats.ChainCacheMisses)
	assert.Greater(t, stats.ChainCacheHits, uint64(0))
	assert.Zero(t, stats.FKCacheHits, "split-chain lookups never touch the FK evaluator cache")
	assert.Zero(t, stats.FKCacheMisses, "split-chain lookups never touch the FK evaluator cache")

	// A structural mutation discards the memo.
	require.NoError(t, tree.RegisterGroup("left_arm", "l_upper_arm"))
	_, _, _, err = tree.ComputeSplitChain("l_forearm", "r_forearm", false, true, true, true)
	require.NoError(t, err)
	assert.Greater(t, tree.Stats().ChainCacheMisses, misses)
}

func TestControlledParentJointIsStrictlyAbove(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	// l_shoulder is itself controlled, but the search must not return it.
	got, err := tree.ControlledParentJointOfJoint("l_shoulder")
	require.NoError(t, err)
	assert.Equal(t, domain.JointName("torso_lift"), got)

	_, err = tree.ControlledParentJointOfJoint("torso_lift")
	assert.ErrorIs(t, err, domain.ErrNoPath)
}

func TestControlledParentJointOfLink(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	got, err := tree.ControlledParentJointOfLink("l_upper_arm")
	require.NoError(t, err)
	assert.Equal(t, domain.JointName("l_shoulder"), got)

	// The finger's own parent joint is a mimic, so the search climbs past it.
	got, err = tree.ControlledParentJointOfLink("l_finger")
	require.NoError(t, err)
	assert.Equal(t, domain.JointName("l_wrist_roll"), got)

	_, err = tree.ControlledParentJointOfLink("map")
	assert.ErrorIs(t, err, domain.ErrNoPath)
}

func TestMovableParentJoint(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	got, err := tree.MovableParentJoint("l_finger")
	require.NoError(t, err)
	assert.Equal(t, domain.JointName("l_finger_joint"), got)

	_, err = tree.MovableParentJoint("base_link")
	assert.ErrorIs(t, err, domain.ErrNoPath)
}

func TestSearchBranchStopsAndCollects(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	require.NoError(t, tree.SetControlledJoints([]domain.JointName{"l_shoulder", "l_elbow"}))

	links, joints, err := tree.SearchBranch("l_upper_arm",
		tree.IsJointControlled, nil,
		func(domain.JointName) bool { return true },
		tree.HasLinkCollisions)
	require.NoError(t, err)
	// l_elbow is controlled: neither collected nor descended through.
	assert.Equal(t, []domain.LinkName{"l_upper_arm"}, links)
	assert.Empty(t, joints)

	links, joints, err = tree.SearchBranch("l_forearm",
		nil, nil,
		func(domain.JointName) bool { return true },
		func(domain.LinkName) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, []domain.LinkName{"l_forearm", "l_wrist", "l_finger"}, links)
	assert.Equal(t, []domain.JointName{"l_wrist_roll", "l_finger_joint"}, joints)

	_, _, err = tree.SearchBranch("ghost", nil, nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownBody)
}

func TestSearchBranchStopAtLinkKeepsTheLink(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	links, _, err := tree.SearchBranch("l_forearm",
		nil,
		func(l domain.LinkName) bool { return l == "l_wrist" },
		nil,
		func(domain.LinkName) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, []domain.LinkName{"l_forearm", "l_wrist"}, links)
}

func TestDirectlyControlledChildLinksWithCollisions(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	require.NoError(t, tree.SetControlledJoints([]domain.JointName{
		"torso_lift", "l_shoulder", "l_elbow", "r_shoulder",
	}))

	got, err := tree.DirectlyControlledChildLinksWithCollisions("torso_lift")
	require.NoError(t, err)
	assert.Equal(t, []domain.LinkName{"torso"}, got)

	// Below l_elbow no further controlled joint stops the walk, so the
	// finger counts even though the wrist roll and mimic sit in between.
	got, err = tree.DirectlyControlledChildLinksWithCollisions("l_elbow")
	require.NoError(t, err)
	assert.Equal(t, []domain.LinkName{"l_finger", "l_forearm"}, got)

	_, err = tree.DirectlyControlledChildLinksWithCollisions("ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownBody)
}

func TestSiblingsWithCollisions(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	require.NoError(t, tree.SetControlledJoints([]domain.JointName{
		"torso_lift", "l_shoulder", "l_elbow", "r_shoulder",
	}))

	got, err := tree.SiblingsWithCollisions("l_elbow")
	require.NoError(t, err)
	assert.Equal(t, []domain.LinkName{"l_upper_arm"}, got)

	// r_elbow is not controlled, so the right arm below r_shoulder moves as
	// one rigid sibling set.
	got, err = tree.SiblingsWithCollisions("r_elbow")
	require.NoError(t, err)
	assert.Equal(t, []domain.LinkName{"r_forearm", "r_upper_arm"}, got)

	// No controlled joint above the lift: no siblings, no error.
	got, err = tree.SiblingsWithCollisions("torso_lift")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestControlledLinksWithCollisions(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	got, err := tree.ControlledLinksWithCollisions()
	require.NoError(t, err)
	assert.Equal(t, []domain.LinkName{
		"l_finger", "l_forearm", "l_upper_arm",
		"r_forearm", "r_upper_arm", "torso",
	}, got, "base_link sits above every controlled joint")
}

func TestChainReducedToControlledJoints(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	require.NoError(t, tree.SetControlledJoints([]domain.JointName{"l_shoulder", "l_elbow"}))

	a, b, err := tree.ChainReducedToControlledJoints("base_link", "l_finger")
	require.NoError(t, err)
	assert.Equal(t, domain.LinkName("torso"), a)
	assert.Equal(t, domain.LinkName("l_forearm"), b)

	_, _, err = tree.ChainReducedToControlledJoints("r_upper_arm", "r_forearm")
	assert.ErrorIs(t, err, domain.ErrNoPath, "no controlled joint on the path")
}

func TestAreLinked(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	linked, err := tree.AreLinked("map", "base_link", true, false)
	require.NoError(t, err)
	assert.True(t, linked, "only a fixed joint separates them")

	linked, err = tree.AreLinked("map", "base_link", false, false)
	require.NoError(t, err)
	assert.False(t, linked)

	// The mimic finger joint is movable but not controlled.
	linked, err = tree.AreLinked("l_wrist", "l_finger", true, true)
	require.NoError(t, err)
	assert.True(t, linked)

	linked, err = tree.AreLinked("l_forearm", "l_wrist", true, true)
	require.NoError(t, err)
	assert.False(t, linked, "the wrist roll is controlled")
}
