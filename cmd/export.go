package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/transferwatch/internal/model"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the current forecast and accuracy history to an XLSX workbook",
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
		accuracy, err := env.Tracker.Accuracy(ctx)
		if err != nil {
			return err
		}

		file := xlsx.NewFile()
		if err := addPredictionSheet(file, set); err != nil {
			return err
		}
		if err := addAccuracySheet(file, accuracy); err != nil {
			return err
		}

		if err := file.Save(exportOut); err != nil {
			return eris.Wrapf(err, "export: save %s", exportOut)
		}
		fmt.Printf("wrote %s\n", exportOut)
		return nil
	},
}

func addPredictionSheet(file *xlsx.File, set *model.PredictionSet) error {
	sheet, err := file.AddSheet("Predictions")
	if err != nil {
		return eris.Wrap(err, "export: add predictions sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"group", "player", "price", "raw net", "effective net", "likelihood", "confidence", "predicted price"} {
		header.AddCell().Value = h
	}

	writeGroup := func(group string, preds []model.Prediction) {
		for _, p := range preds {
			row := sheet.AddRow()
			row.AddCell().Value = group
			row.AddCell().Value = p.Name
			row.AddCell().SetFloat(float64(p.Price) / 10)
			row.AddCell().SetInt(p.RawNet)
			row.AddCell().SetInt(p.EffectiveNet)
			row.AddCell().SetInt(p.Likelihood)
			row.AddCell().Value = string(p.Confidence)
			row.AddCell().SetFloat(float64(p.PredictedPrice) / 10)
		}
	}
	writeGroup("riser", set.Risers)
	writeGroup("faller", set.Fallers)
	writeGroup("watch", set.Watchlist)
	return nil
}

func addAccuracySheet(file *xlsx.File, ledger *model.AccuracyLedger) error {
	sheet, err := file.AddSheet("Accuracy")
	if err != nil {
		return eris.Wrap(err, "export: add accuracy sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"date", "risers correct", "risers total", "fallers correct", "fallers total", "overall correct", "overall total"} {
		header.AddCell().Value = h
	}

	for _, e := range ledger.History {
		row := sheet.AddRow()
		row.AddCell().Value = e.Date
		row.AddCell().SetInt(e.Risers.Correct)
		row.AddCell().SetInt(e.Risers.Total)
		row.AddCell().SetInt(e.Fallers.Correct)
		row.AddCell().SetInt(e.Fallers.Total)
		row.AddCell().SetInt(e.Overall.Correct)
		row.AddCell().SetInt(e.Overall.Total)
	}

	totals := sheet.AddRow()
	totals.AddCell().Value = "cumulative"
	totals.AddCell().SetInt(ledger.Risers.Correct)
	totals.AddCell().SetInt(ledger.Risers.Total)
	totals.AddCell().SetInt(ledger.Fallers.Correct)
	totals.AddCell().SetInt(ledger.Fallers.Total)
	totals.AddCell().SetInt(ledger.Overall.Correct)
	totals.AddCell().SetInt(ledger.Overall.Total)
	return nil
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "transferwatch.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
