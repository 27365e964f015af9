package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/vitalvas/mathtrace/config"
	"github.com/vitalvas/mathtrace/recorder"
	"github.com/vitalvas/mathtrace/scheduler"
	"github.com/vitalvas/mathtrace/xcmd"
	"github.com/vitalvas/mathtrace/xlogger"
)

var errFinished = errors.New("finished")

func main() {
	configPath := flag.String("config", "mathtrace.yaml", "path to the configuration file")
	once := flag.Bool("once", false, "compute every trace once and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath, config.DefaultEnvPrefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	logger := xlogger.New(cfg.Logger)

	if err := run(context.Background(), cfg, logger, *once); err != nil {
		logger.Error("mathtrace failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, once bool) error {
	rec := openRecorder(cfg, logger)
	defer rec.Close()

	a := newApp(cfg, logger, rec)

	group, _ := xcmd.ErrGroup(ctx)

	group.Go(func(ctx context.Context) error {
		err := xcmd.WaitInterrupted(ctx)
		if errors.Is(err, xcmd.ErrInterrupted) {
			logger.Info("shutdown signal received, stopping", "reason", err)
			a.manager.CancelAll()
			return err
		}
		return nil
	})

	group.Go(func(ctx context.Context) error {
		err := a.computeAll(ctx)
		if once || cfg.Schedule.Cron == "" {
			if err != nil {
				return err
			}
			return errFinished
		}
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			logger.Error("initial computation failed", "error", err)
		}

		sched := scheduler.New(ctx, logger)
		if err := sched.Register("recompute", cfg.Schedule.Cron, a.computeAll); err != nil {
			return err
		}
		sched.Start()

		<-ctx.Done()
		<-sched.Stop().Done()
		return nil
	})

	err := group.Wait()
	if errors.Is(err, errFinished) || errors.Is(err, xcmd.ErrInterrupted) {
		return nil
	}
	return err
}

func openRecorder(cfg *config.Config, logger *slog.Logger) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}

	rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
	if err != nil {
		logger.Warn("init sqlite recorder failed, using noop", "error", err)
		return recorder.NewNoopRecorder()
	}
	return rec
}
