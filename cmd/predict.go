package main

import (
	"encoding/json"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/transferwatch/internal/model"
)

var predictJSON bool

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Print the current price-change forecast",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initTracker(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		set, err := env.Tracker.Predict(ctx)
		if err != nil {
			return err
		}

		if predictJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(set)
		}

		printPredictionSet(set)
		return nil
	},
}

// printPredictionSet renders the forecast as a table with grouped thousands
// in the transfer columns.
func printPredictionSet(set *model.PredictionSet) {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)

	p.Fprintf(w, "gameweek %d\tdiscount %.2f\tdouble %v\n\n", set.Meta.Event, set.Meta.DiscountApplied, set.Meta.IsDouble)

	section := func(title string, preds []model.Prediction) {
		p.Fprintf(w, "%s (%d)\n", title, len(preds))
		if len(preds) == 0 {
			p.Fprintf(w, "  (none)\n\n")
			return
		}
		p.Fprintf(w, "  player\tprice\tnet\teffective\tlikelihood\tconfidence\n")
		for _, pr := range preds {
			p.Fprintf(w, "  %s\t%.1f\t%d\t%d\t%d%%\t%s\n",
				pr.Name, float64(pr.Price)/10, pr.RawNet, pr.EffectiveNet, pr.Likelihood, pr.Confidence)
		}
		p.Fprintf(w, "\n")
	}

	section("RISERS", set.Risers)
	section("FALLERS", set.Fallers)
	section("WATCHLIST", set.Watchlist)

	_ = w.Flush()
}

func init() {
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "emit the forecast as JSON")
	rootCmd.AddCommand(predictCmd)
}
