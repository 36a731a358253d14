package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/transferwatch/internal/engine"
)

var verifyKeepLedger bool

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify yesterday's predictions, then reset the daily ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initTracker(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Tracker.VerifyYesterday(ctx)
		if err != nil {
			return err
		}

		if !result.Verified {
			fmt.Printf("nothing to verify for %s (%s)\n", result.Date, engine.ReasonNoSnapshot)
		} else {
			fmt.Printf("verified %s: risers %d/%d, fallers %d/%d\n",
				result.Date,
				result.Risers.Correct, result.Risers.Total,
				result.Fallers.Correct, result.Fallers.Total,
			)
		}

		if verifyKeepLedger {
			return nil
		}
		return env.Tracker.ResetLedger(ctx)
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyKeepLedger, "keep-ledger", false, "skip the daily ledger reset after verification")
	rootCmd.AddCommand(verifyCmd)
}
