package store

import (
	"context"

	"github.com/sells-group/transferwatch/internal/model"
)

// Document keys for the singleton persisted documents. Each is overwritten
// wholesale on save; there are no partial updates.
const (
	keyDailyLedger    = "daily-ledger"
	keyGameweekInfo   = "gameweek-info"
	keyAccuracyLedger = "accuracy-ledger"
)

// Store defines the persistence interface for the prediction engine.
// Missing documents are returned as (nil, nil): absence is a cold-start
// condition, never an error.
type Store interface {
	// Transfer snapshots
	SaveSnapshot(ctx context.Context, snap *model.Snapshot) error
	LatestSnapshot(ctx context.Context) (*model.Snapshot, error)
	PruneSnapshots(ctx context.Context, keep int) (int, error)

	// Daily ledger
	DailyLedger(ctx context.Context) (*model.DailyLedger, error)
	SaveDailyLedger(ctx context.Context, ledger *model.DailyLedger) error

	// Gameweek classification
	GameweekInfo(ctx context.Context) (map[int]model.GameweekInfo, error)
	SaveGameweekInfo(ctx context.Context, info map[int]model.GameweekInfo) error

	// Dated prediction snapshots
	PredictionSnapshot(ctx context.Context, date string) (*model.PredictionSnapshot, error)
	SavePredictionSnapshot(ctx context.Context, snap *model.PredictionSnapshot) error

	// Accuracy ledger
	AccuracyLedger(ctx context.Context) (*model.AccuracyLedger, error)
	SaveAccuracyLedger(ctx context.Context, ledger *model.AccuracyLedger) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
