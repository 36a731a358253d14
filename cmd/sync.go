package main

import (
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync fixtures and classify double/blank gameweeks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initTracker(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Tracker.SyncGameweeks(ctx)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
