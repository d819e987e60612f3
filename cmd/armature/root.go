package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/armech/armature"
	"github.com/armech/armature/internal/logging"
	"github.com/armech/armature/pkg/domain"
)

var rootCmd = &cobra.Command{
	Use:   "armature",
	Short: "Armature manages a kinematic world tree and resolves collision goals",
	Long: `Armature loads robot descriptions into a kinematic world tree, answers
forward kinematics queries and expands collision-avoidance requests into
exact link-pair constraints.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("description", "", "Path to the robot description file")
	rootCmd.PersistentFlags().String("root-link", "map", "Name of the fixed root frame")
	rootCmd.PersistentFlags().StringSlice("controlled", nil, "Controlled joint names (default: all free joints)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

// buildWorld constructs a world from the persistent flags.
func buildWorld(cmd *cobra.Command) (*armature.World, error) {
	descPath, _ := cmd.Flags().GetString("description")
	rootLink, _ := cmd.Flags().GetString("root-link")
	controlled, _ := cmd.Flags().GetStringSlice("controlled")
	level, _ := cmd.Flags().GetString("log-level")

	opts := []armature.Option{
		armature.WithLogger(logging.New(logging.ParseLevel(level))),
		armature.WithRootLink(domain.LinkName(rootLink)),
	}
	if descPath != "" {
		doc, err := os.ReadFile(descPath)
		if err != nil {
			return nil, fmt.Errorf("read description: %w", err)
		}
		opts = append(opts, armature.WithRobotDescription(doc))
	}
	if len(controlled) > 0 {
		names := make([]domain.JointName, len(controlled))
		for i, c := range controlled {
			names[i] = domain.JointName(c)
		}
		opts = append(opts, armature.WithControlledJoints(names...))
	}
	return armature.New(opts...)
}
