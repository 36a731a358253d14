package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/transferwatch/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLite_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	snap := &model.Snapshot{
		CapturedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Event:      10,
		Players: []model.PlayerSnapshot{
			{ID: 1, Name: "Salah", TransfersInEvent: 100, TransfersOutEvent: 40, Ownership: 45.2, Price: 131},
		},
	}
	require.NoError(t, st.SaveSnapshot(ctx, snap))
	assert.NotEmpty(t, snap.ID, "save assigns an id")

	got, err := st.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, 10, got.Event)
	require.Len(t, got.Players, 1)
	assert.Equal(t, "Salah", got.Players[0].Name)
	assert.Equal(t, 45.2, got.Players[0].Ownership)
}

func TestSQLite_LatestSnapshotEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.LatestSnapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_LatestSnapshotOrdering(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	base := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, st.SaveSnapshot(ctx, &model.Snapshot{
			CapturedAt: base.Add(time.Duration(i) * 30 * time.Minute),
			Event:      i,
		}))
	}

	got, err := st.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Event)
}

func TestSQLite_PruneSnapshots(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	base := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		require.NoError(t, st.SaveSnapshot(ctx, &model.Snapshot{
			CapturedAt: base.Add(time.Duration(i) * time.Minute),
			Event:      i,
		}))
	}

	deleted, err := st.PruneSnapshots(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, deleted)

	// The newest snapshot survives the prune.
	got, err := st.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Event)

	deleted, err = st.PruneSnapshots(ctx, 4)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestSQLite_DailyLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	missing, err := st.DailyLedger(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	now := time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)
	ledger := model.NewDailyLedger(now)
	ledger.Players[1] = &model.DailyEntry{ID: 1, Name: "Salah", DailyIn: 500, DailyOut: 100, DailyNet: 400, Ownership: 45.2, Price: 131}
	require.NoError(t, st.SaveDailyLedger(ctx, ledger))

	got, err := st.DailyLedger(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.LastReset.Equal(now))
	assert.Equal(t, 400, got.Players[1].DailyNet)

	// Saving again overwrites the single document.
	ledger.Players[1].DailyNet = 900
	require.NoError(t, st.SaveDailyLedger(ctx, ledger))
	got, err = st.DailyLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, 900, got.Players[1].DailyNet)
}

func TestSQLite_GameweekInfoRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	missing, err := st.GameweekInfo(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	info := map[int]model.GameweekInfo{
		34: {Event: 34, IsDouble: true, TeamsWithDouble: []int{1, 2}, TotalFixtures: 12},
		29: {Event: 29, IsBlank: true, TotalFixtures: 4},
	}
	require.NoError(t, st.SaveGameweekInfo(ctx, info))

	got, err := st.GameweekInfo(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[34].IsDouble)
	assert.Equal(t, []int{1, 2}, got[34].TeamsWithDouble)
	assert.True(t, got[29].IsBlank)
}

func TestSQLite_PredictionSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	missing, err := st.PredictionSnapshot(ctx, "2026-03-14")
	require.NoError(t, err)
	assert.Nil(t, missing)

	snap := &model.PredictionSnapshot{
		Date:       "2026-03-14",
		CapturedAt: time.Date(2026, 3, 14, 1, 30, 0, 0, time.UTC),
		Risers:     []model.Prediction{{ID: 1, Name: "Salah", Price: 131, Verdict: model.VerdictRise}},
	}
	require.NoError(t, st.SavePredictionSnapshot(ctx, snap))

	got, err := st.PredictionSnapshot(ctx, "2026-03-14")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Risers, 1)
	assert.Equal(t, "Salah", got.Risers[0].Name)

	// Re-capturing the same date upserts.
	snap.Risers = append(snap.Risers, model.Prediction{ID: 2, Name: "Gordon", Price: 62})
	require.NoError(t, st.SavePredictionSnapshot(ctx, snap))
	got, err = st.PredictionSnapshot(ctx, "2026-03-14")
	require.NoError(t, err)
	assert.Len(t, got.Risers, 2)
}

func TestSQLite_AccuracyLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	missing, err := st.AccuracyLedger(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	ledger := model.NewAccuracyLedger()
	ledger.Overall = model.AccuracyBucket{Correct: 7, Total: 10, Accuracy: 70}
	ledger.History = append(ledger.History, model.AccuracyEntry{
		Date:    "2026-03-14",
		Overall: model.AccuracyCount{Correct: 7, Total: 10},
	})
	require.NoError(t, st.SaveAccuracyLedger(ctx, ledger))

	got, err := st.AccuracyLedger(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 70, got.Overall.Accuracy)
	require.Len(t, got.History, 1)
	assert.Equal(t, "2026-03-14", got.History[0].Date)
}
