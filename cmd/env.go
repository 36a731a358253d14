package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/transferwatch/internal/engine"
	"github.com/sells-group/transferwatch/internal/fpl"
	"github.com/sells-group/transferwatch/internal/store"
)

// trackerEnv holds the initialized store and tracker shared by the commands.
type trackerEnv struct {
	Store   store.Store
	Tracker *engine.Tracker
}

// Close releases resources held by the environment.
func (e *trackerEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// openStore creates the configured store backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// initTracker builds the tracker environment used by most commands.
func initTracker(ctx context.Context) (*trackerEnv, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	client := fpl.NewClient(cfg.FPL)
	return &trackerEnv{
		Store:   st,
		Tracker: engine.NewTracker(cfg.Tracker, st, client),
	}, nil
}
