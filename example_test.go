package armature_test

import (
	"fmt"
	"log"

	"github.com/armech/armature"
	"github.com/armech/armature/pkg/domain"
	"github.com/armech/armature/pkg/spatial"
)

const exampleDescription = `
<robot name="cart">
  <link name="base">
    <collision>
      <geometry><box size="0.4 0.3 0.2"/></geometry>
    </collision>
  </link>
  <link name="mast">
    <collision>
      <geometry><cylinder radius="0.03" length="0.6"/></geometry>
    </collision>
  </link>
  <joint name="mast_lift" type="prismatic">
    <parent link="base"/>
    <child link="mast"/>
    <origin xyz="0 0 0.2"/>
    <axis xyz="0 0 1"/>
    <limit lower="0" upper="0.5" velocity="0.2"/>
  </joint>
</robot>
`

// ExampleNew builds a world from a description, moves a joint and reads the
// resulting pose.
func ExampleNew() {
	world, err := armature.New(
		armature.WithRobotDescription([]byte(exampleDescription)),
	)
	if err != nil {
		log.Fatal(err)
	}

	if err := world.SetJointPosition("mast_lift", 0.3); err != nil {
		log.Fatal(err)
	}

	pose, err := world.ComputeFK("map", "mast")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("robot: %s\n", world.RobotName())
	fmt.Printf("mast height: %.1f\n", pose.Pos.Z)
	// Output:
	// robot: cart
	// mast height: 0.5
}

// ExampleWorld_ResolveCollisionGoals turns a request list into the exact
// distance table for a robot next to one obstacle.
func ExampleWorld_ResolveCollisionGoals() {
	world, err := armature.New(
		armature.WithRobotDescription([]byte(exampleDescription)),
	)
	if err != nil {
		log.Fatal(err)
	}
	crate := domain.BodySpec{Name: "crate", Kind: domain.BodyBox, Depth: 0.2, Width: 0.2, Height: 0.2}
	if err := world.AddBody(crate, spatial.EulerPose(1, 0, 0.1, 0, 0, 0), ""); err != nil {
		log.Fatal(err)
	}

	table, err := world.ResolveCollisionGoals([]domain.CollisionRequest{
		{Kind: domain.AvoidAllCollisions, MinDist: 0.05},
	})
	if err != nil {
		log.Fatal(err)
	}
	for _, row := range table.Entries() {
		fmt.Printf("%s vs %s/%s at %.2f\n", row.RobotLink, row.Body, row.LinkB, row.MinDist)
	}
	// Output:
	// mast vs crate/crate at 0.05
}
