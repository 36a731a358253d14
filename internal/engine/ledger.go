package engine

import (
	"time"

	"github.com/sells-group/transferwatch/internal/model"
)

// Fold accumulates deltas into the daily ledger in place and returns it.
// Counters add up; ownership, price and name are overwritten with the latest
// observed values. The ledger is created and persisted by the caller, with no
// ambient state.
func Fold(ledger *model.DailyLedger, deltas []model.PlayerDelta, now time.Time) *model.DailyLedger {
	if ledger.Players == nil {
		ledger.Players = make(map[int]*model.DailyEntry)
	}

	for _, d := range deltas {
		entry, ok := ledger.Players[d.ID]
		if !ok {
			entry = &model.DailyEntry{ID: d.ID}
			ledger.Players[d.ID] = entry
		}

		entry.DailyIn += d.TransfersInDelta
		entry.DailyOut += d.TransfersOutDelta
		entry.DailyNet += d.NetDelta

		entry.Name = d.Name
		entry.Ownership = d.Ownership
		entry.Price = d.Price
		entry.PriceChangesEvent = d.PriceChangesEvent
	}

	ledger.LastUpdated = &now
	return ledger
}
