package main

import (
	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Run one polling tick: snapshot, diff, accumulate",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initTracker(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Tracker.Track(ctx)
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)
}
