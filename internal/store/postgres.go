package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/transferwatch/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id          TEXT PRIMARY KEY,
	captured_at TIMESTAMPTZ NOT NULL,
	event       INTEGER NOT NULL,
	players     JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS prediction_snapshots (
	date        TEXT PRIMARY KEY,
	payload     JSONB NOT NULL,
	captured_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_captured_at ON snapshots(captured_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}

	playersJSON, err := json.Marshal(snap.Players)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal players")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO snapshots (id, captured_at, event, players) VALUES ($1, $2, $3, $4)`,
		snap.ID, snap.CapturedAt.UTC(), snap.Event, string(playersJSON),
	)
	return eris.Wrap(err, "postgres: insert snapshot")
}

func (s *PostgresStore) LatestSnapshot(ctx context.Context) (*model.Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, captured_at, event, players FROM snapshots
		 ORDER BY captured_at DESC LIMIT 1`,
	)

	var snap model.Snapshot
	var playersJSON string
	err := row.Scan(&snap.ID, &snap.CapturedAt, &snap.Event, &playersJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest snapshot")
	}
	if err := json.Unmarshal([]byte(playersJSON), &snap.Players); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal players")
	}
	return &snap, nil
}

func (s *PostgresStore) PruneSnapshots(ctx context.Context, keep int) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY captured_at DESC LIMIT $1
		)`,
		keep,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: prune snapshots")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) DailyLedger(ctx context.Context) (*model.DailyLedger, error) {
	var ledger model.DailyLedger
	ok, err := s.getDocument(ctx, keyDailyLedger, &ledger)
	if err != nil || !ok {
		return nil, err
	}
	return &ledger, nil
}

func (s *PostgresStore) SaveDailyLedger(ctx context.Context, ledger *model.DailyLedger) error {
	return s.putDocument(ctx, keyDailyLedger, ledger)
}

func (s *PostgresStore) GameweekInfo(ctx context.Context) (map[int]model.GameweekInfo, error) {
	var info map[int]model.GameweekInfo
	ok, err := s.getDocument(ctx, keyGameweekInfo, &info)
	if err != nil || !ok {
		return nil, err
	}
	return info, nil
}

func (s *PostgresStore) SaveGameweekInfo(ctx context.Context, info map[int]model.GameweekInfo) error {
	return s.putDocument(ctx, keyGameweekInfo, info)
}

func (s *PostgresStore) AccuracyLedger(ctx context.Context) (*model.AccuracyLedger, error) {
	var ledger model.AccuracyLedger
	ok, err := s.getDocument(ctx, keyAccuracyLedger, &ledger)
	if err != nil || !ok {
		return nil, err
	}
	return &ledger, nil
}

func (s *PostgresStore) SaveAccuracyLedger(ctx context.Context, ledger *model.AccuracyLedger) error {
	return s.putDocument(ctx, keyAccuracyLedger, ledger)
}

func (s *PostgresStore) PredictionSnapshot(ctx context.Context, date string) (*model.PredictionSnapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT payload FROM prediction_snapshots WHERE date = $1`,
		date,
	)

	var payload string
	err := row.Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get prediction snapshot")
	}

	var snap model.PredictionSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal prediction snapshot")
	}
	return &snap, nil
}

func (s *PostgresStore) SavePredictionSnapshot(ctx context.Context, snap *model.PredictionSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal prediction snapshot")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO prediction_snapshots (date, payload, captured_at) VALUES ($1, $2, $3)
		 ON CONFLICT (date) DO UPDATE SET payload = EXCLUDED.payload, captured_at = EXCLUDED.captured_at`,
		snap.Date, string(payload), snap.CapturedAt.UTC(),
	)
	return eris.Wrap(err, "postgres: save prediction snapshot")
}

// document helpers

func (s *PostgresStore) getDocument(ctx context.Context, key string, out any) (bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT payload FROM documents WHERE key = $1`,
		key,
	)

	var payload string
	err := row.Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "postgres: get document %s", key)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, eris.Wrapf(err, "postgres: unmarshal document %s", key)
	}
	return true, nil
}

func (s *PostgresStore) putDocument(ctx context.Context, key string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal document %s", key)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (key, payload, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		key, string(payload), time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save document %s", key)
}
