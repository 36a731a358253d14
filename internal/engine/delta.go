// Package engine implements the price-change prediction pipeline: snapshot
// deltas, the daily accumulator, gameweek classification, the forecast
// calibration, and retrospective verification.
package engine

import "github.com/sells-group/transferwatch/internal/model"

// RolloverPolicy controls how deltas are computed across a gameweek boundary,
// where the upstream in-event counters reset to zero and a naive diff yields
// a large negative spike.
type RolloverPolicy string

const (
	// RolloverCarry diffs across the boundary untouched. This matches the
	// historical behavior: the first tick of a new gameweek can inject a
	// spurious negative delta into the daily ledger.
	RolloverCarry RolloverPolicy = "carry"
	// RolloverIgnore zeroes every delta on the first tick of a new gameweek.
	RolloverIgnore RolloverPolicy = "ignore"
)

// ComputeDeltas diffs the current player population against the previous
// snapshot. With no previous snapshot, or for players absent from it, all
// delta fields are zero: a first observation is never attributed.
func ComputeDeltas(current []model.PlayerSnapshot, prev *model.Snapshot, event int, policy RolloverPolicy) []model.PlayerDelta {
	deltas := make([]model.PlayerDelta, 0, len(current))

	if prev == nil || (policy == RolloverIgnore && prev.Event != event) {
		for _, p := range current {
			deltas = append(deltas, model.PlayerDelta{PlayerSnapshot: p})
		}
		return deltas
	}

	previous := make(map[int]model.PlayerSnapshot, len(prev.Players))
	for _, p := range prev.Players {
		previous[p.ID] = p
	}

	for _, p := range current {
		d := model.PlayerDelta{PlayerSnapshot: p}
		if before, ok := previous[p.ID]; ok {
			d.TransfersInDelta = p.TransfersInEvent - before.TransfersInEvent
			d.TransfersOutDelta = p.TransfersOutEvent - before.TransfersOutEvent
			d.NetDelta = d.TransfersInDelta - d.TransfersOutDelta
		}
		deltas = append(deltas, d)
	}
	return deltas
}
