/*
Package armature manages a kinematic world tree and resolves collision
avoidance goals against it.

The world is a single connected tree of rigid links joined by one-DOF
joints. Robot descriptions and free-standing bodies attach anywhere in the
tree; named groups give read-only views of subtrees. Forward kinematics is
expressed symbolically and compiled once per tree shape through an injected
compiler port, so repeated pose queries only re-evaluate with fresh joint
values.

# Concept

Structural mutations (attach, delete, re-parent, group changes) bump a
monotonic version and drop every derived cache in one place; joint state
changes never do, which keeps compiled kinematics hot across motion. The
collision resolver turns loose, wildcard-laden avoidance requests into an
exact table of link pairs with minimum distances, validated fully before
anything is expanded.

# Usage

Construct a world with functional options, then mutate and query it:

	package main

	import (
		"log"

		"github.com/armech/armature"
		"github.com/armech/armature/pkg/domain"
	)

	func main() {
		w, err := armature.New(
			armature.WithRobotDescription(robotDoc),
			armature.WithControlledJoints("arm_lift", "arm_pan"),
		)
		if err != nil {
			log.Fatal(err)
		}

		if err := w.SetJointPosition("arm_lift", 0.3); err != nil {
			log.Fatal(err)
		}
		pose, err := w.ComputeFK(w.Tree().RootLink(), "gripper")
		if err != nil {
			log.Fatal(err)
		}
		log.Println("gripper at", pose.Pos)

		table, err := w.ResolveCollisionGoals([]domain.CollisionRequest{
			{Kind: domain.AvoidAllCollisions, MinDist: 0.05},
		})
		if err != nil {
			log.Fatal(err)
		}
		for _, row := range table.Entries() {
			log.Println(row.RobotLink, row.Body, row.LinkB, row.MinDist)
		}
	}
*/
package armature
