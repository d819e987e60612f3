package kinematics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armech/armature/internal/testutils"
	"github.com/armech/armature/pkg/domain"
	"github.com/armech/armature/pkg/spatial"
)

func TestAddDescriptionWithPrefix(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	require.NoError(t, tree.AddDescription(
		[]byte(testutils.TinyDescription), "t2", "l_forearm", "gripper-cam", spatial.Identity()))

	assert.True(t, tree.HasLink("t2/root"))
	assert.True(t, tree.HasLink("t2/tip"))
	assert.True(t, tree.HasJoint("t2/slide"))
	assert.True(t, tree.HasJoint("t2/tiny/connection"))
	assert.True(t, tree.HasGroup("gripper-cam"))

	parent, err := tree.ParentLinkOfLink("t2/root")
	require.NoError(t, err)
	assert.Equal(t, domain.LinkName("l_forearm"), parent)
}

func TestAddDescriptionAtPose(t *testing.T) {
	tree := testutils.NewTree(t)
	require.NoError(t, tree.AddDescription(
		[]byte(testutils.TinyDescription), "", "", "tiny", spatial.EulerPose(0, 2, 0, 0, 0, 0)))

	pose, err := tree.ComputeFK("map", "root")
	require.NoError(t, err)
	assert.InDelta(t, 2, float64(pose.Pos.Y), 1e-5)
}

func TestAddDescriptionIsAtomic(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	v := tree.Version()
	linkCount := len(tree.LinkNames())

	// Unprefixed, the fixture names collide with the already attached robot.
	err := tree.AddDescription(
		[]byte(testutils.RobotDescription), "", "", "again", spatial.Identity())
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
	assert.Equal(t, v, tree.Version())
	assert.Len(t, tree.LinkNames(), linkCount, "a rejected document leaves no partial state")
	assert.False(t, tree.HasGroup("again"))
}

func TestAddDescriptionRejectsBadGeometryAtomically(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	v := tree.Version()
	linkCount := len(tree.LinkNames())

	// The missing mesh file is only discovered while converting a child
	// link, after the document root has already been validated.
	doc := `
<robot name="cart">
  <link name="cart_base"/>
  <link name="wheel">
    <collision><geometry><mesh filename="/nonexistent/wheel.stl"/></geometry></collision>
  </link>
  <joint name="axle" type="fixed">
    <parent link="cart_base"/>
    <child link="wheel"/>
  </joint>
</robot>`
	err := tree.AddDescription([]byte(doc), "", "", "cart", spatial.Identity())
	assert.ErrorIs(t, err, domain.ErrCorruptShape)
	assert.Equal(t, v, tree.Version())
	assert.Len(t, tree.LinkNames(), linkCount, "a rejected document leaves no partial state")
	assert.False(t, tree.HasLink("cart_base"))
	assert.False(t, tree.HasJoint("cart/connection"))
	assert.False(t, tree.HasGroup("cart"))
}

func TestAddDescriptionRejectsDuplicateJointInDocument(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	v := tree.Version()
	linkCount := len(tree.LinkNames())

	doc := `
<robot name="dup">
  <link name="dup_root"/>
  <link name="dup_a"/>
  <link name="dup_b"/>
  <joint name="dup_j" type="fixed">
    <parent link="dup_root"/>
    <child link="dup_a"/>
  </joint>
  <joint name="dup_j" type="fixed">
    <parent link="dup_root"/>
    <child link="dup_b"/>
  </joint>
</robot>`
	err := tree.AddDescription([]byte(doc), "", "", "dup", spatial.Identity())
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
	assert.Equal(t, v, tree.Version())
	assert.Len(t, tree.LinkNames(), linkCount, "a rejected document leaves no partial state")
	assert.False(t, tree.HasLink("dup_a"))
	assert.False(t, tree.HasLink("dup_b"))
}

func TestAddDescriptionRejections(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	err := tree.AddDescription([]byte("<robot"), "", "", "", spatial.Identity())
	assert.Error(t, err)

	err = tree.AddDescription(
		[]byte(testutils.TinyDescription), "t", "ghost", "", spatial.Identity())
	assert.ErrorIs(t, err, domain.ErrUnknownBody)

	err = tree.AddDescription(
		[]byte(testutils.TinyDescription), "t", "", "testbot", spatial.Identity())
	assert.ErrorIs(t, err, domain.ErrDuplicateName, "group name already taken")
}

func TestAddBody(t *testing.T) {
	tree := testutils.NewRobotTree(t)
	v := tree.Version()

	require.NoError(t, tree.AddBody(testutils.BoxBody("crate"),
		spatial.EulerPose(1, 2, 0.05, 0, 0, 0), ""))

	assert.Equal(t, v+1, tree.Version())
	assert.True(t, tree.HasLink("crate"))
	assert.True(t, tree.HasJoint("crate/connection"))
	assert.True(t, tree.IsJointFixed("crate/connection"))
	assert.True(t, tree.HasGroup("crate"))
	assert.True(t, tree.HasLinkCollisions("crate"))

	pose, err := tree.ComputeFK("map", "crate")
	require.NoError(t, err)
	assert.InDelta(t, 1, float64(pose.Pos.X), 1e-5)
	assert.InDelta(t, 2, float64(pose.Pos.Y), 1e-5)
	assert.InDelta(t, 0.05, float64(pose.Pos.Z), 1e-5)
}

func TestAddBodyKinds(t *testing.T) {
	tree := testutils.NewTree(t)

	require.NoError(t, tree.AddBody(domain.BodySpec{
		Name: "pillar", Kind: domain.BodyCylinder, Radius: 0.2, Height: 1.2,
	}, spatial.Identity(), ""))
	require.NoError(t, tree.AddBody(domain.BodySpec{
		Name: "ball", Kind: domain.BodySphere, Radius: 0.1,
	}, spatial.Identity(), ""))

	link, err := tree.Link("pillar")
	require.NoError(t, err)
	require.Len(t, link.Collisions, 1)
	assert.Equal(t, domain.GeometryCylinder, link.Collisions[0].Kind)

	link, err = tree.Link("ball")
	require.NoError(t, err)
	require.Len(t, link.Collisions, 1)
	assert.Equal(t, domain.GeometrySphere, link.Collisions[0].Kind)
}

func TestAddBodyDescriptionKind(t *testing.T) {
	tree := testutils.NewTree(t)

	require.NoError(t, tree.AddBody(domain.BodySpec{
		Name:        "tiny",
		Kind:        domain.BodyDescription,
		Description: testutils.TinyDescription,
	}, spatial.EulerPose(0, 0, 1, 0, 0, 0), ""))

	assert.True(t, tree.HasGroup("tiny"))
	assert.True(t, tree.HasLink("tip"))

	pose, err := tree.ComputeFK("map", "root")
	require.NoError(t, err)
	assert.InDelta(t, 1, float64(pose.Pos.Z), 1e-5)
}

func TestAddBodyRejections(t *testing.T) {
	tree := testutils.NewRobotTree(t)

	err := tree.AddBody(domain.BodySpec{Kind: domain.BodyBox}, spatial.Identity(), "")
	assert.ErrorIs(t, err, domain.ErrMalformedRequest)

	err = tree.AddBody(testutils.BoxBody("testbot"), spatial.Identity(), "")
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	err = tree.AddBody(domain.BodySpec{Name: "blob", Kind: "wobble"}, spatial.Identity(), "")
	assert.ErrorIs(t, err, domain.ErrCorruptShape)
	assert.False(t, tree.HasLink("blob"))
	assert.False(t, tree.HasGroup("blob"))

	err = tree.AddBody(testutils.BoxBody("crate"), spatial.Identity(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownBody)
}
