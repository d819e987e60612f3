package armature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armech/armature"
	"github.com/armech/armature/internal/logging"
	"github.com/armech/armature/internal/testutils"
	"github.com/armech/armature/pkg/domain"
	"github.com/armech/armature/pkg/spatial"
)

func newRobotWorld(t *testing.T, opts ...armature.Option) *armature.World {
	t.Helper()
	opts = append([]armature.Option{
		armature.WithLogger(logging.NewNop()),
		armature.WithRobotDescription([]byte(testutils.RobotDescription)),
	}, opts...)
	w, err := armature.New(opts...)
	require.NoError(t, err)
	return w
}

func TestNewEmptyWorld(t *testing.T) {
	w, err := armature.New(armature.WithLogger(logging.NewNop()))
	require.NoError(t, err)

	assert.Empty(t, w.RobotName())
	assert.Empty(t, w.ObjectNames())
	assert.Empty(t, w.GroupNames())
	assert.Equal(t, domain.LinkName("map"), w.Tree().RootLink())

	_, err = w.ResolveCollisionGoals(nil)
	assert.ErrorIs(t, err, domain.ErrUnknownBody, "no robot loaded")
}

func TestNewWithOptions(t *testing.T) {
	w, err := armature.New(
		armature.WithLogger(logging.NewNop()),
		armature.WithRootLink("world"),
		armature.WithRobotDescription([]byte(testutils.RobotDescription)),
		armature.WithControlledJoints("l_shoulder", "l_elbow"),
	)
	require.NoError(t, err)

	assert.Equal(t, "testbot", w.RobotName())
	assert.Equal(t, domain.LinkName("world"), w.Tree().RootLink())
	assert.Equal(t, []domain.JointName{"l_elbow", "l_shoulder"}, w.ControlledJoints())
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := armature.New(
		armature.WithLogger(logging.NewNop()),
		armature.WithRobotDescription([]byte("<robot")),
	)
	assert.Error(t, err)

	_, err = armature.New(
		armature.WithLogger(logging.NewNop()),
		armature.WithRobotDescription([]byte(testutils.RobotDescription)),
		armature.WithControlledJoints("ghost"),
	)
	assert.ErrorIs(t, err, domain.ErrUnknownBody)
}

func TestAddRobotOnlyOnce(t *testing.T) {
	w := newRobotWorld(t)
	err := w.AddRobot([]byte(testutils.TinyDescription))
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
	assert.Equal(t, "testbot", w.RobotName())
}

func TestObjectsTrackRegistrationOrder(t *testing.T) {
	w := newRobotWorld(t)

	require.NoError(t, w.AddBody(testutils.BoxBody("crate"), spatial.Identity(), ""))
	require.NoError(t, w.AddDescription([]byte(testutils.TinyDescription), "cam", "torso", "camera"))
	require.NoError(t, w.AddBody(testutils.BoxBody("ball"), spatial.Identity(), ""))

	assert.Equal(t, []string{"crate", "camera", "ball"}, w.ObjectNames())
	assert.True(t, w.HasBody("testbot"))
	assert.True(t, w.HasBody("camera"))
	assert.False(t, w.HasBody("ghost"))
	assert.False(t, w.HasBody(""))
}

func TestAddBodyRejectsRobotNameClash(t *testing.T) {
	w := newRobotWorld(t)
	err := w.AddBody(testutils.BoxBody("testbot"), spatial.Identity(), "")
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
	assert.Empty(t, w.ObjectNames())
}

func TestDeleteGroupRemovesObjectAndSubtree(t *testing.T) {
	w := newRobotWorld(t)
	require.NoError(t, w.AddBody(testutils.BoxBody("crate"), spatial.Identity(), ""))

	require.NoError(t, w.DeleteGroup("crate"))
	assert.Empty(t, w.ObjectNames())
	assert.False(t, w.Tree().HasLink("crate"))

	assert.ErrorIs(t, w.DeleteGroup("crate"), domain.ErrUnknownBody)
}

func TestDeleteGroupOfRobotClearsRobot(t *testing.T) {
	w := newRobotWorld(t)

	require.NoError(t, w.DeleteGroup("testbot"))
	assert.Empty(t, w.RobotName())
	assert.False(t, w.Tree().HasLink("base_link"))

	_, err := w.ResolveCollisionGoals(nil)
	assert.ErrorIs(t, err, domain.ErrUnknownBody)
}

func TestDeleteBranchAtPrunesObjects(t *testing.T) {
	w := newRobotWorld(t)
	require.NoError(t, w.AddBody(testutils.BoxBody("crate"), spatial.Identity(), "l_forearm"))
	require.NoError(t, w.AddBody(testutils.BoxBody("ball"), spatial.Identity(), ""))

	// Cutting the arm takes the crate with it; the ball survives.
	require.NoError(t, w.DeleteBranchAt("l_shoulder"))
	assert.Equal(t, []string{"ball"}, w.ObjectNames())
	assert.Equal(t, "testbot", w.RobotName())
}

func TestWorldFKAndState(t *testing.T) {
	w := newRobotWorld(t)
	require.NoError(t, w.SetJointPositions(map[domain.JointName]float32{"torso_lift": 0.2}))

	pose, err := w.ComputeFK("map", "torso")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, float64(pose.Pos.Z), 1e-5)

	got, err := w.JointPosition("torso_lift")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, float64(got), 1e-6)

	poses, err := w.ComputeAllFKs()
	require.NoError(t, err)
	assert.Contains(t, poses, domain.LinkName("torso"))
	assert.NotContains(t, poses, domain.LinkName("l_wrist"), "no collision geometry")
}

func TestWorldVersionAndStats(t *testing.T) {
	w := newRobotWorld(t)
	v := w.Version()

	require.NoError(t, w.SetJointPosition("torso_lift", 0.1))
	assert.Equal(t, v, w.Version())

	require.NoError(t, w.AddBody(testutils.BoxBody("crate"), spatial.Identity(), ""))
	assert.Equal(t, v+1, w.Version())

	_, err := w.ComputeFK("map", "crate")
	require.NoError(t, err)
	stats := w.Stats()
	assert.Equal(t, w.Version(), stats.Version)
	assert.Greater(t, stats.Compiles, uint64(0))
}

func TestWorldBodyViews(t *testing.T) {
	w := newRobotWorld(t)
	require.NoError(t, w.AddBody(testutils.BoxBody("crate"), spatial.Identity(), ""))

	links, err := w.BodyLinkNames("crate")
	require.NoError(t, err)
	assert.Equal(t, []domain.LinkName{"crate"}, links)

	links, err = w.BodyCollisionLinks("testbot")
	require.NoError(t, err)
	assert.Contains(t, links, domain.LinkName("torso"))
	assert.NotContains(t, links, domain.LinkName("l_wrist"))

	_, err = w.BodyLinkNames("ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownBody)
}

func TestResolveCollisionGoalsEndToEnd(t *testing.T) {
	w := newRobotWorld(t, armature.WithControlledJoints("l_shoulder", "l_elbow"))
	require.NoError(t, w.AddBody(testutils.BoxBody("crate"), spatial.Identity(), ""))

	table, err := w.ResolveCollisionGoals([]domain.CollisionRequest{
		{Kind: domain.AvoidAllCollisions, MinDist: 0.05},
		{Kind: domain.AllowCollision,
			RobotLinks: []domain.LinkName{"l_finger"},
			BodyB:      "crate",
			LinkBs:     []domain.LinkName{"crate"}},
	})
	require.NoError(t, err)

	// Every controlled collision link against the crate, minus the allowed
	// finger, plus the self-collision matrix.
	assert.Equal(t, float32(0.05),
		table[domain.CollisionTriple{RobotLink: "l_forearm", Body: "crate", LinkB: "crate"}])
	assert.Equal(t, float32(0.05),
		table[domain.CollisionTriple{RobotLink: "l_upper_arm", Body: "crate", LinkB: "crate"}])
	assert.NotContains(t, table,
		domain.CollisionTriple{RobotLink: "l_finger", Body: "crate", LinkB: "crate"})
	assert.Equal(t, float32(0.05),
		table[domain.CollisionTriple{RobotLink: "l_finger", Body: "testbot", LinkB: "l_upper_arm"}])
}

func TestWorldSelfCollisionOverrides(t *testing.T) {
	w, err := armature.New(
		armature.WithLogger(logging.NewNop()),
		armature.WithRobotDescription([]byte(testutils.RobotDescription)),
		armature.WithControlledJoints("l_shoulder", "l_elbow"),
		armature.WithIgnoredSelfCollisions(domain.LinkPair{A: "l_forearm", B: "l_upper_arm"}),
	)
	require.NoError(t, err)

	pairs, err := w.SelfCollisionPairs()
	require.NoError(t, err)
	assert.Equal(t, []domain.LinkPair{{A: "l_finger", B: "l_upper_arm"}}, pairs)
}
