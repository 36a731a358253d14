package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent transfer snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initTracker(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Tracker.Prune(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("pruned %d snapshots (keeping %d)\n", n, cfg.Tracker.SnapshotRetention)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
