package engine

import (
	"github.com/sells-group/transferwatch/internal/model"
)

// ReasonNoSnapshot is the VerifyResult reason when no prediction snapshot
// exists for the date under verification.
const ReasonNoSnapshot = "no prediction snapshot"

// Verify scores a prior day's prediction snapshot against current prices and
// folds the outcome into the accuracy ledger. A nil snapshot is a legitimate
// no-op: the result has Verified=false and the ledger is returned unchanged.
// Watchlist entries are never scored.
func Verify(snap *model.PredictionSnapshot, currentPrices map[int]int, ledger *model.AccuracyLedger, historyLimit int) (model.VerifyResult, *model.AccuracyLedger) {
	if ledger == nil {
		ledger = model.NewAccuracyLedger()
	}
	if snap == nil {
		return model.VerifyResult{Verified: false, Reason: ReasonNoSnapshot}, ledger
	}

	result := model.VerifyResult{Verified: true, Date: snap.Date}

	for _, p := range snap.Risers {
		result.Risers.Total++
		if now, ok := currentPrices[p.ID]; ok && now-p.Price > 0 {
			result.Risers.Correct++
		}
	}
	for _, p := range snap.Fallers {
		result.Fallers.Total++
		if now, ok := currentPrices[p.ID]; ok && now-p.Price < 0 {
			result.Fallers.Correct++
		}
	}
	result.Overall = model.AccuracyCount{
		Correct: result.Risers.Correct + result.Fallers.Correct,
		Total:   result.Risers.Total + result.Fallers.Total,
	}

	accumulate(&ledger.Risers, result.Risers)
	accumulate(&ledger.Fallers, result.Fallers)
	accumulate(&ledger.Overall, result.Overall)

	ledger.History = append(ledger.History, model.AccuracyEntry{
		Date:    snap.Date,
		Risers:  result.Risers,
		Fallers: result.Fallers,
		Overall: result.Overall,
	})
	if historyLimit > 0 && len(ledger.History) > historyLimit {
		ledger.History = ledger.History[len(ledger.History)-historyLimit:]
	}

	return result, ledger
}

// accumulate adds a day's counts into a running bucket and recomputes the
// rounded percentage.
func accumulate(bucket *model.AccuracyBucket, day model.AccuracyCount) {
	bucket.Correct += day.Correct
	bucket.Total += day.Total
	if bucket.Total > 0 {
		bucket.Accuracy = int(float64(bucket.Correct)/float64(bucket.Total)*100 + 0.5)
	} else {
		bucket.Accuracy = 0
	}
}
