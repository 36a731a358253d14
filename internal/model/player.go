package model

import "time"

// PlayerSnapshot is one player's observable transfer state at a point in
// time. Counters are cumulative within the current gameweek; ownership and
// price are point-in-time. Immutable once captured.
type PlayerSnapshot struct {
	ID                int     `json:"id"`
	Name              string  `json:"web_name"`
	TransfersInEvent  int     `json:"transfers_in_event"`
	TransfersOutEvent int     `json:"transfers_out_event"`
	Ownership         float64 `json:"selected_by_percent"`
	Price             int     `json:"now_cost"`
	PriceChangesEvent int     `json:"cost_change_event"`
}

// Snapshot is a full-population capture taken on every polling tick.
// Event records the gameweek that was current at capture time, which lets
// the delta calculator detect gameweek rollover.
type Snapshot struct {
	ID         string           `json:"id,omitempty"`
	CapturedAt time.Time        `json:"captured_at"`
	Event      int              `json:"event"`
	Players    []PlayerSnapshot `json:"players"`
}

// PlayerDelta is a PlayerSnapshot plus the counter movement since the
// previous snapshot.
type PlayerDelta struct {
	PlayerSnapshot
	TransfersInDelta  int `json:"transfers_in_delta"`
	TransfersOutDelta int `json:"transfers_out_delta"`
	NetDelta          int `json:"net_delta"`
}
