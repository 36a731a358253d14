package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/transferwatch/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id          TEXT PRIMARY KEY,
	captured_at DATETIME NOT NULL,
	event       INTEGER NOT NULL,
	players     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS prediction_snapshots (
	date        TEXT PRIMARY KEY,
	payload     TEXT NOT NULL,
	captured_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_captured_at ON snapshots(captured_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}

	playersJSON, err := json.Marshal(snap.Players)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal players")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, captured_at, event, players) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.CapturedAt.UTC(), snap.Event, string(playersJSON),
	)
	return eris.Wrap(err, "sqlite: insert snapshot")
}

func (s *SQLiteStore) LatestSnapshot(ctx context.Context) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, captured_at, event, players FROM snapshots
		 ORDER BY captured_at DESC LIMIT 1`,
	)

	var snap model.Snapshot
	var playersJSON string
	err := row.Scan(&snap.ID, &snap.CapturedAt, &snap.Event, &playersJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest snapshot")
	}
	if err := json.Unmarshal([]byte(playersJSON), &snap.Players); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal players")
	}
	return &snap, nil
}

func (s *SQLiteStore) PruneSnapshots(ctx context.Context, keep int) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY captured_at DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune snapshots")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) DailyLedger(ctx context.Context) (*model.DailyLedger, error) {
	var ledger model.DailyLedger
	ok, err := s.getDocument(ctx, keyDailyLedger, &ledger)
	if err != nil || !ok {
		return nil, err
	}
	return &ledger, nil
}

func (s *SQLiteStore) SaveDailyLedger(ctx context.Context, ledger *model.DailyLedger) error {
	return s.putDocument(ctx, keyDailyLedger, ledger)
}

func (s *SQLiteStore) GameweekInfo(ctx context.Context) (map[int]model.GameweekInfo, error) {
	var info map[int]model.GameweekInfo
	ok, err := s.getDocument(ctx, keyGameweekInfo, &info)
	if err != nil || !ok {
		return nil, err
	}
	return info, nil
}

func (s *SQLiteStore) SaveGameweekInfo(ctx context.Context, info map[int]model.GameweekInfo) error {
	return s.putDocument(ctx, keyGameweekInfo, info)
}

func (s *SQLiteStore) AccuracyLedger(ctx context.Context) (*model.AccuracyLedger, error) {
	var ledger model.AccuracyLedger
	ok, err := s.getDocument(ctx, keyAccuracyLedger, &ledger)
	if err != nil || !ok {
		return nil, err
	}
	return &ledger, nil
}

func (s *SQLiteStore) SaveAccuracyLedger(ctx context.Context, ledger *model.AccuracyLedger) error {
	return s.putDocument(ctx, keyAccuracyLedger, ledger)
}

func (s *SQLiteStore) PredictionSnapshot(ctx context.Context, date string) (*model.PredictionSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM prediction_snapshots WHERE date = ?`,
		date,
	)

	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get prediction snapshot")
	}

	var snap model.PredictionSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal prediction snapshot")
	}
	return &snap, nil
}

func (s *SQLiteStore) SavePredictionSnapshot(ctx context.Context, snap *model.PredictionSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal prediction snapshot")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO prediction_snapshots (date, payload, captured_at) VALUES (?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET payload = excluded.payload, captured_at = excluded.captured_at`,
		snap.Date, string(payload), snap.CapturedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: save prediction snapshot")
}

// document helpers

func (s *SQLiteStore) getDocument(ctx context.Context, key string, out any) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE key = ?`,
		key,
	)

	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: get document %s", key)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, eris.Wrapf(err, "sqlite: unmarshal document %s", key)
	}
	return true, nil
}

func (s *SQLiteStore) putDocument(ctx context.Context, key string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal document %s", key)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, string(payload), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save document %s", key)
}
