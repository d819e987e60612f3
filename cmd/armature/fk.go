package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/armech/armature/pkg/domain"
)

var fkCmd = &cobra.Command{
	Use:   "fk",
	Short: "Compute the pose of one link relative to another",
	Long:  `Evaluates forward kinematics between two links at the given joint state.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runFK(cmd); err != nil {
			fmt.Printf("FK failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	fkCmd.Flags().String("root", "", "Root link of the query (default: world root)")
	fkCmd.Flags().String("tip", "", "Tip link of the query (required)")
	fkCmd.Flags().StringSlice("set", nil, "Joint positions as name=value")
	rootCmd.AddCommand(fkCmd)
}

func runFK(cmd *cobra.Command) error {
	w, err := buildWorld(cmd)
	if err != nil {
		return err
	}
	tip, _ := cmd.Flags().GetString("tip")
	if tip == "" {
		return fmt.Errorf("--tip is required")
	}
	root, _ := cmd.Flags().GetString("root")
	if root == "" {
		root = string(w.Tree().RootLink())
	}

	assignments, _ := cmd.Flags().GetStringSlice("set")
	positions := make(map[domain.JointName]float32, len(assignments))
	for _, a := range assignments {
		name, raw, ok := strings.Cut(a, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q, expected name=value", a)
		}
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return fmt.Errorf("invalid --set %q: %w", a, err)
		}
		positions[domain.JointName(name)] = float32(v)
	}
	if len(positions) > 0 {
		if err := w.SetJointPositions(positions); err != nil {
			return err
		}
	}

	pose, err := w.ComputeFK(domain.LinkName(root), domain.LinkName(tip))
	if err != nil {
		return err
	}
	fmt.Printf("%s -> %s\n", root, tip)
	fmt.Printf("position:    [%.6f, %.6f, %.6f]\n", pose.Pos.X, pose.Pos.Y, pose.Pos.Z)
	fmt.Printf("orientation: [%.6f, %.6f, %.6f, %.6f]\n", pose.Quat.X, pose.Quat.Y, pose.Quat.Z, pose.Quat.W)
	return nil
}
