package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/transferwatch/internal/config"
	"github.com/sells-group/transferwatch/internal/fpl"
	"github.com/sells-group/transferwatch/internal/model"
	"github.com/sells-group/transferwatch/internal/store"
)

// Feed is the upstream data source consumed by the tracker.
type Feed interface {
	Bootstrap(ctx context.Context) (*fpl.Bootstrap, error)
	Fixtures(ctx context.Context) ([]model.Fixture, error)
}

// Tracker owns every write to the persisted engine documents. A single mutex
// serializes the scheduled jobs so correctness never depends on wall-clock
// ordering between them.
type Tracker struct {
	mu    sync.Mutex
	cfg   config.TrackerConfig
	store store.Store
	feed  Feed
	cal   Calibration
	now   func() time.Time
}

// NewTracker wires a tracker over a store and an upstream feed.
func NewTracker(cfg config.TrackerConfig, st store.Store, feed Feed) *Tracker {
	return &Tracker{
		cfg:   cfg,
		store: st,
		feed:  feed,
		cal:   CalibrationFromConfig(cfg),
		now:   time.Now,
	}
}

// Track performs one polling tick: fetch the population, diff against the
// last snapshot, persist the new snapshot, fold the deltas into the daily
// ledger. A failure anywhere aborts the tick and leaves prior state
// untouched; the next scheduled tick retries from scratch.
func (t *Tracker) Track(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, err := t.feed.Bootstrap(ctx)
	if err != nil {
		return eris.Wrap(err, "tracker: fetch bootstrap")
	}

	prev, err := t.store.LatestSnapshot(ctx)
	if err != nil {
		return eris.Wrap(err, "tracker: load latest snapshot")
	}

	deltas := ComputeDeltas(b.Players, prev, b.CurrentEvent, RolloverPolicy(t.cfg.RolloverPolicy))

	now := t.now()
	snap := &model.Snapshot{
		CapturedAt: now,
		Event:      b.CurrentEvent,
		Players:    b.Players,
	}
	if err := t.store.SaveSnapshot(ctx, snap); err != nil {
		return eris.Wrap(err, "tracker: save snapshot")
	}

	ledger, err := t.store.DailyLedger(ctx)
	if err != nil {
		return eris.Wrap(err, "tracker: load daily ledger")
	}
	if ledger == nil {
		ledger = model.NewDailyLedger(now)
	}
	Fold(ledger, deltas, now)

	if err := t.store.SaveDailyLedger(ctx, ledger); err != nil {
		return eris.Wrap(err, "tracker: save daily ledger")
	}

	active := 0
	for _, e := range ledger.Players {
		if e.DailyNet != 0 {
			active++
		}
	}
	zap.L().Info("tracker: tick complete",
		zap.Int("players", len(b.Players)),
		zap.Int("event", b.CurrentEvent),
		zap.Int("active_players", active),
	)
	return nil
}

// SyncGameweeks refreshes the double/blank gameweek classification from the
// fixture feed.
func (t *Tracker) SyncGameweeks(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	fixtures, err := t.feed.Fixtures(ctx)
	if err != nil {
		return eris.Wrap(err, "tracker: fetch fixtures")
	}

	info := ClassifyGameweeks(fixtures, t.cfg.BlankFixtureFloor)
	if err := t.store.SaveGameweekInfo(ctx, info); err != nil {
		return eris.Wrap(err, "tracker: save gameweek info")
	}

	doubles, blanks := 0, 0
	for _, gw := range info {
		if gw.IsDouble {
			doubles++
		}
		if gw.IsBlank {
			blanks++
		}
	}
	zap.L().Info("tracker: gameweek sync complete",
		zap.Int("gameweeks", len(info)),
		zap.Int("doubles", doubles),
		zap.Int("blanks", blanks),
	)
	return nil
}

// Predict builds the current forecast set from live accumulator state. Read
// path: every call is a fresh classification.
func (t *Tracker) Predict(ctx context.Context) (*model.PredictionSet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.predictLocked(ctx)
}

func (t *Tracker) predictLocked(ctx context.Context) (*model.PredictionSet, error) {
	ledger, err := t.store.DailyLedger(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "tracker: load daily ledger")
	}

	event := 0
	if snap, err := t.store.LatestSnapshot(ctx); err != nil {
		return nil, eris.Wrap(err, "tracker: load latest snapshot")
	} else if snap != nil {
		event = snap.Event
	}

	var gw *model.GameweekInfo
	info, err := t.store.GameweekInfo(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "tracker: load gameweek info")
	}
	if g, ok := info[event]; ok {
		gw = &g
	}

	return BuildPredictionSet(ledger, gw, event, t.cal, t.now()), nil
}

// CaptureSnapshot freezes today's forecast set for tomorrow's verification.
// The daemon must schedule this ahead of VerifyYesterday or verification
// stays a permanent no-op.
func (t *Tracker) CaptureSnapshot(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, err := t.predictLocked(ctx)
	if err != nil {
		return err
	}

	now := t.now()
	snap := &model.PredictionSnapshot{
		Date:       now.Format("2006-01-02"),
		CapturedAt: now,
		Risers:     set.Risers,
		Fallers:    set.Fallers,
		Watchlist:  set.Watchlist,
	}
	if err := t.store.SavePredictionSnapshot(ctx, snap); err != nil {
		return eris.Wrap(err, "tracker: save prediction snapshot")
	}

	zap.L().Info("tracker: prediction snapshot captured",
		zap.String("date", snap.Date),
		zap.Int("risers", len(snap.Risers)),
		zap.Int("fallers", len(snap.Fallers)),
		zap.Int("watchlist", len(snap.Watchlist)),
	)
	return nil
}

// VerifyYesterday scores yesterday's prediction snapshot against current
// prices and updates the accuracy ledger. Missing snapshot is an observable
// no-op, not an error.
func (t *Tracker) VerifyYesterday(ctx context.Context) (model.VerifyResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	date := t.now().AddDate(0, 0, -1).Format("2006-01-02")

	snap, err := t.store.PredictionSnapshot(ctx, date)
	if err != nil {
		return model.VerifyResult{}, eris.Wrap(err, "tracker: load prediction snapshot")
	}
	if snap == nil {
		zap.L().Info("tracker: nothing to verify", zap.String("date", date))
		return model.VerifyResult{Verified: false, Reason: ReasonNoSnapshot, Date: date}, nil
	}

	b, err := t.feed.Bootstrap(ctx)
	if err != nil {
		return model.VerifyResult{}, eris.Wrap(err, "tracker: fetch bootstrap")
	}
	prices := make(map[int]int, len(b.Players))
	for _, p := range b.Players {
		prices[p.ID] = p.Price
	}

	ledger, err := t.store.AccuracyLedger(ctx)
	if err != nil {
		return model.VerifyResult{}, eris.Wrap(err, "tracker: load accuracy ledger")
	}

	result, ledger := Verify(snap, prices, ledger, t.cfg.HistoryLimit)
	if err := t.store.SaveAccuracyLedger(ctx, ledger); err != nil {
		return model.VerifyResult{}, eris.Wrap(err, "tracker: save accuracy ledger")
	}

	zap.L().Info("tracker: verification complete",
		zap.String("date", date),
		zap.Int("correct", result.Overall.Correct),
		zap.Int("total", result.Overall.Total),
		zap.Int("cumulative_accuracy", ledger.Overall.Accuracy),
	)
	return result, nil
}

// ResetLedger replaces the daily ledger with a fresh one stamped now.
func (t *Tracker) ResetLedger(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.SaveDailyLedger(ctx, model.NewDailyLedger(t.now())); err != nil {
		return eris.Wrap(err, "tracker: reset daily ledger")
	}
	zap.L().Info("tracker: daily ledger reset")
	return nil
}

// Prune deletes all but the configured number of most recent snapshots.
// The retention window is "last N snapshots", so it tracks polling cadence.
func (t *Tracker) Prune(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.store.PruneSnapshots(ctx, t.cfg.SnapshotRetention)
	if err != nil {
		return 0, eris.Wrap(err, "tracker: prune snapshots")
	}
	if n > 0 {
		zap.L().Info("tracker: pruned snapshots", zap.Int("deleted", n))
	}
	return n, nil
}

// Accuracy returns the persisted accuracy ledger, or an empty one.
func (t *Tracker) Accuracy(ctx context.Context) (*model.AccuracyLedger, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ledger, err := t.store.AccuracyLedger(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "tracker: load accuracy ledger")
	}
	if ledger == nil {
		ledger = model.NewAccuracyLedger()
	}
	return ledger, nil
}
