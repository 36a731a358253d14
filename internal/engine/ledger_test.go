package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/transferwatch/internal/model"
)

func someDeltas() []model.PlayerDelta {
	return []model.PlayerDelta{
		{
			PlayerSnapshot:    model.PlayerSnapshot{ID: 1, Name: "Salah", Ownership: 45.2, Price: 131},
			TransfersInDelta:  500,
			TransfersOutDelta: 100,
			NetDelta:          400,
		},
		{
			PlayerSnapshot:    model.PlayerSnapshot{ID: 2, Name: "Gordon", Ownership: 8.1, Price: 62},
			TransfersInDelta:  50,
			TransfersOutDelta: 300,
			NetDelta:          -250,
		},
	}
}

func TestFold_CreatesEntries(t *testing.T) {
	now := time.Now()
	ledger := model.NewDailyLedger(now)

	Fold(ledger, someDeltas(), now)

	require.Len(t, ledger.Players, 2)
	assert.Equal(t, 400, ledger.Players[1].DailyNet)
	assert.Equal(t, -250, ledger.Players[2].DailyNet)
	assert.Equal(t, "Salah", ledger.Players[1].Name)
	require.NotNil(t, ledger.LastUpdated)
	assert.Equal(t, now, *ledger.LastUpdated)
}

func TestFold_IsAdditive(t *testing.T) {
	now := time.Now()
	ledger := model.NewDailyLedger(now)

	Fold(ledger, someDeltas(), now)
	Fold(ledger, someDeltas(), now.Add(30*time.Minute))

	assert.Equal(t, 800, ledger.Players[1].DailyNet)
	assert.Equal(t, 1000, ledger.Players[1].DailyIn)
	assert.Equal(t, -500, ledger.Players[2].DailyNet)
}

func TestFold_OverwritesPointInTimeFields(t *testing.T) {
	now := time.Now()
	ledger := model.NewDailyLedger(now)
	Fold(ledger, someDeltas(), now)

	updated := someDeltas()
	updated[0].Ownership = 46.0
	updated[0].Price = 132
	updated[0].PriceChangesEvent = 1
	Fold(ledger, updated, now.Add(time.Hour))

	entry := ledger.Players[1]
	assert.Equal(t, 46.0, entry.Ownership)
	assert.Equal(t, 132, entry.Price)
	assert.Equal(t, 1, entry.PriceChangesEvent)
	// Counters still accumulate.
	assert.Equal(t, 800, entry.DailyNet)
}

func TestNewDailyLedger_ResetClearsState(t *testing.T) {
	now := time.Now()
	ledger := model.NewDailyLedger(now.Add(-24 * time.Hour))
	Fold(ledger, someDeltas(), now.Add(-time.Hour))

	fresh := model.NewDailyLedger(now)

	assert.Empty(t, fresh.Players)
	assert.Equal(t, now, fresh.LastReset)
	assert.Nil(t, fresh.LastUpdated)
}
