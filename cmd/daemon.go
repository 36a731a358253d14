package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run all scheduled jobs in a single process",
	Long: "Runs the polling tick, fixture sync, forecast capture, verification and snapshot pruning on their configured schedules. " +
		"All writes flow through one tracker, so the jobs never race each other.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initTracker(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		g, gctx := errgroup.WithContext(ctx)

		trackEvery := time.Duration(cfg.Schedule.TrackIntervalMins) * time.Minute
		syncEvery := time.Duration(cfg.Schedule.SyncIntervalHours) * time.Hour

		g.Go(func() error {
			return runEvery(gctx, "track", trackEvery, true, func(c context.Context) error {
				return env.Tracker.Track(c)
			})
		})
		g.Go(func() error {
			return runEvery(gctx, "sync", syncEvery, true, func(c context.Context) error {
				return env.Tracker.SyncGameweeks(c)
			})
		})
		g.Go(func() error {
			return runDaily(gctx, "capture", cfg.Schedule.CaptureTime, func(c context.Context) error {
				return env.Tracker.CaptureSnapshot(c)
			})
		})
		// Verification must run after capture's time of day so yesterday's
		// snapshot exists, and before the first tick of the new day so the
		// reset lands on a clean ledger.
		g.Go(func() error {
			return runDaily(gctx, "verify", cfg.Schedule.VerifyTime, func(c context.Context) error {
				if _, err := env.Tracker.VerifyYesterday(c); err != nil {
					return err
				}
				return env.Tracker.ResetLedger(c)
			})
		})
		g.Go(func() error {
			return runDaily(gctx, "prune", cfg.Schedule.PruneTime, func(c context.Context) error {
				_, err := env.Tracker.Prune(c)
				return err
			})
		})

		zap.L().Info("daemon started",
			zap.Duration("track_interval", trackEvery),
			zap.Duration("sync_interval", syncEvery),
			zap.String("capture_time", cfg.Schedule.CaptureTime),
			zap.String("verify_time", cfg.Schedule.VerifyTime),
			zap.String("prune_time", cfg.Schedule.PruneTime),
		)
		return g.Wait()
	},
}

// runEvery invokes fn on a fixed interval until the context ends. Job errors
// are logged, not fatal: the next tick retries from scratch.
func runEvery(ctx context.Context, name string, every time.Duration, immediate bool, fn func(context.Context) error) error {
	if immediate {
		runJob(ctx, name, fn)
	}

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			runJob(ctx, name, fn)
		}
	}
}

// runDaily invokes fn once per day at the given local "HH:MM".
func runDaily(ctx context.Context, name string, at string, fn func(context.Context) error) error {
	hour, minute, err := parseClock(at)
	if err != nil {
		return eris.Wrapf(err, "daemon: schedule for %s", name)
	}

	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}

		t := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
			runJob(ctx, name, fn)
		}
	}
}

func runJob(ctx context.Context, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		zap.L().Error("daemon: job failed", zap.String("job", name), zap.Error(err))
	}
}

// parseClock parses a local "HH:MM" time of day.
func parseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "parse time of day %q", s)
	}
	return t.Hour(), t.Minute(), nil
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
