package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [description file]",
	Short: "Check a robot description for consistency",
	Long:  `Parses the description, builds the world tree and reports its shape.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			cmd.Flags().Set("description", args[0])
		}
		if err := runValidate(cmd); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command) error {
	w, err := buildWorld(cmd)
	if err != nil {
		return err
	}
	if w.RobotName() == "" {
		return fmt.Errorf("no description given; pass a file or --description")
	}
	tree := w.Tree()
	fmt.Printf("Description is valid! ✅\n")
	fmt.Printf("robot:            %s\n", w.RobotName())
	fmt.Printf("links:            %d\n", len(tree.LinkNames()))
	fmt.Printf("joints:           %d\n", len(tree.JointNames()))
	fmt.Printf("movable joints:   %d\n", len(tree.MovableJoints()))
	fmt.Printf("collision links:  %d\n", len(tree.LinkNamesWithCollisions()))
	fmt.Printf("controlled:       %d\n", len(w.ControlledJoints()))
	return nil
}
