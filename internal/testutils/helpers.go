// Package testutils holds shared fixtures for world tests: a small two-arm
// robot description and tree builders around it.
package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/armech/armature/internal/compiler"
	"github.com/armech/armature/internal/kinematics"
	"github.com/armech/armature/internal/logging"
	"github.com/armech/armature/pkg/domain"
	"github.com/armech/armature/pkg/spatial"
)

// RobotDescription is a small fixture robot: a torso on a prismatic lift,
// two revolute arms with collision geometry, a continuous wrist roll on the
// left arm and a mimic finger following the left wrist.
const RobotDescription = `
<robot name="testbot">
  <link name="base_link">
    <collision>
      <geometry><box size="0.4 0.4 0.2"/></geometry>
    </collision>
  </link>
  <link name="torso">
    <collision>
      <geometry><cylinder radius="0.12" length="0.5"/></geometry>
    </collision>
  </link>
  <link name="l_upper_arm">
    <collision>
      <geometry><cylinder radius="0.05" length="0.3"/></geometry>
    </collision>
  </link>
  <link name="l_forearm">
    <collision>
      <geometry><cylinder radius="0.04" length="0.25"/></geometry>
    </collision>
  </link>
  <link name="l_wrist"/>
  <link name="l_finger">
    <collision>
      <geometry><box size="0.02 0.02 0.08"/></geometry>
    </collision>
  </link>
  <link name="r_upper_arm">
    <collision>
      <geometry><cylinder radius="0.05" length="0.3"/></geometry>
    </collision>
  </link>
  <link name="r_forearm">
    <collision>
      <geometry><cylinder radius="0.04" length="0.25"/></geometry>
    </collision>
  </link>
  <joint name="torso_lift" type="prismatic">
    <parent link="base_link"/>
    <child link="torso"/>
    <origin xyz="0 0 0.1"/>
    <axis xyz="0 0 1"/>
    <limit lower="0" upper="0.35" velocity="0.1"/>
  </joint>
  <joint name="l_shoulder" type="revolute">
    <parent link="torso"/>
    <child link="l_upper_arm"/>
    <origin xyz="0 0.15 0.4"/>
    <axis xyz="0 1 0"/>
    <limit lower="-2.0" upper="2.0" velocity="1.0"/>
  </joint>
  <joint name="l_elbow" type="revolute">
    <parent link="l_upper_arm"/>
    <child link="l_forearm"/>
    <origin xyz="0 0 0.3"/>
    <axis xyz="0 1 0"/>
    <limit lower="-2.5" upper="0" velocity="1.0"/>
  </joint>
  <joint name="l_wrist_roll" type="continuous">
    <parent link="l_forearm"/>
    <child link="l_wrist"/>
    <origin xyz="0 0 0.25"/>
    <axis xyz="0 0 1"/>
    <limit velocity="2.0"/>
  </joint>
  <joint name="l_finger_joint" type="revolute">
    <parent link="l_wrist"/>
    <child link="l_finger"/>
    <origin xyz="0 0 0.05"/>
    <axis xyz="1 0 0"/>
    <mimic joint="l_wrist_roll" multiplier="0.5" offset="0.1"/>
    <limit lower="-1.0" upper="1.0" velocity="1.0"/>
  </joint>
  <joint name="r_shoulder" type="revolute">
    <parent link="torso"/>
    <child link="r_upper_arm"/>
    <origin xyz="0 -0.15 0.4"/>
    <axis xyz="0 1 0"/>
    <limit lower="-2.0" upper="2.0" velocity="1.0"/>
  </joint>
  <joint name="r_elbow" type="revolute">
    <parent link="r_upper_arm"/>
    <child link="r_forearm"/>
    <origin xyz="0 0 0.3"/>
    <axis xyz="0 1 0"/>
    <limit lower="-2.5" upper="0" velocity="1.0"/>
  </joint>
</robot>
`

// TinyDescription is a one-joint robot for focused tests.
const TinyDescription = `
<robot name="tiny">
  <link name="root">
    <collision>
      <geometry><box size="0.1 0.1 0.1"/></geometry>
    </collision>
  </link>
  <link name="tip">
    <collision>
      <geometry><sphere radius="0.05"/></geometry>
    </collision>
  </link>
  <joint name="slide" type="prismatic">
    <parent link="root"/>
    <child link="tip"/>
    <origin xyz="1 0 0"/>
    <axis xyz="1 0 0"/>
    <limit lower="-1" upper="1" velocity="0.5"/>
  </joint>
</robot>
`

// NewTree builds a bare tree rooted at "map" with the interpreter compiler
// and a silent logger.
func NewTree(t *testing.T) *kinematics.Tree {
	t.Helper()
	return kinematics.New("map", compiler.New(), logging.NewNop())
}

// NewRobotTree builds a tree with the fixture robot attached and registered
// as the group "testbot".
func NewRobotTree(t *testing.T) *kinematics.Tree {
	t.Helper()
	tree := NewTree(t)
	require.NoError(t, tree.AddDescription([]byte(RobotDescription), "", "", "testbot", spatial.Identity()))
	return tree
}

// BoxBody returns a 10cm cube body spec with the given name.
func BoxBody(name string) domain.BodySpec {
	return domain.BodySpec{
		Name:   name,
		Kind:   domain.BodyBox,
		Depth:  0.1,
		Width:  0.1,
		Height: 0.1,
	}
}
