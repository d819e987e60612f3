package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/armech/armature/pkg/domain"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [requests file]",
	Short: "Resolve a collision request list into exact constraints",
	Long: `Reads a YAML list of collision requests, resolves it against the world
and prints the resulting link-pair constraints.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("a requests file is required")
			os.Exit(1)
		}
		if err := runResolve(cmd, args[0]); err != nil {
			fmt.Printf("Resolve failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	resolveCmd.Flags().Bool("yaml", false, "Print the result as YAML instead of a table")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read requests: %w", err)
	}
	var requests []domain.CollisionRequest
	if err := yaml.Unmarshal(raw, &requests); err != nil {
		return fmt.Errorf("parse requests: %w", err)
	}

	w, err := buildWorld(cmd)
	if err != nil {
		return err
	}
	table, err := w.ResolveCollisionGoals(requests)
	if err != nil {
		return err
	}

	rows := table.Entries()
	asYAML, _ := cmd.Flags().GetBool("yaml")
	if asYAML {
		out, err := yaml.Marshal(rows)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}
	fmt.Printf("%-30s %-20s %-30s %s\n", "ROBOT LINK", "BODY", "LINK B", "MIN DIST")
	for _, row := range rows {
		fmt.Printf("%-30s %-20s %-30s %.4f\n", row.RobotLink, row.Body, row.LinkB, row.MinDist)
	}
	fmt.Printf("%d constraints\n", len(rows))
	return nil
}
