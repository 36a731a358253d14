package main

import (
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the daily transfer ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initTracker(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Tracker.ResetLedger(ctx)
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
