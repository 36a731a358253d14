package main

import (
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Freeze today's forecast set for later verification",
	Long:  "Persists the current prediction set under today's date. Verification scores this snapshot tomorrow; if capture never runs, verification is a permanent no-op.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initTracker(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Tracker.CaptureSnapshot(ctx)
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
}
