package model

import "time"

// DailyEntry is one player's running totals since the last ledger reset.
// DailyNet is only ever incremented by fold operations, never recomputed
// from scratch; a bad tick therefore persists until the next reset.
type DailyEntry struct {
	ID                int     `json:"id"`
	Name              string  `json:"web_name"`
	DailyIn           int     `json:"daily_transfers_in"`
	DailyOut          int     `json:"daily_transfers_out"`
	DailyNet          int     `json:"daily_net_delta"`
	Ownership         float64 `json:"selected_by_percent"`
	Price             int     `json:"now_cost"`
	PriceChangesEvent int     `json:"price_changes_event"`
}

// DailyLedger accumulates per-player transfer deltas between daily resets.
// Single writer: the tracker owns all mutation.
type DailyLedger struct {
	LastReset   time.Time           `json:"last_reset"`
	LastUpdated *time.Time          `json:"last_updated,omitempty"`
	Players     map[int]*DailyEntry `json:"players"`
}

// NewDailyLedger returns a fresh empty ledger stamped with the reset instant.
func NewDailyLedger(now time.Time) *DailyLedger {
	return &DailyLedger{
		LastReset: now,
		Players:   make(map[int]*DailyEntry),
	}
}
