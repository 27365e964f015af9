package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/vitalvas/mathtrace/config"
	"github.com/vitalvas/mathtrace/recorder"
	"github.com/vitalvas/mathtrace/series"
	"github.com/vitalvas/mathtrace/tracecomp"
	"github.com/vitalvas/mathtrace/tracereg"
	"github.com/vitalvas/mathtrace/xcmd"
)

type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder recorder.Recorder
	manager  *tracereg.Manager
}

func newApp(cfg *config.Config, logger *slog.Logger, rec recorder.Recorder) *app {
	return &app{
		cfg:      cfg,
		logger:   logger,
		recorder: rec,
		manager:  tracereg.NewManager(tracereg.NewRegistry(), logger),
	}
}

// loadInputs reads every configured input file.
func (a *app) loadInputs() (map[string]*series.Series, error) {
	inputs := make(map[string]*series.Series, len(a.cfg.Inputs))

	for _, in := range a.cfg.Inputs {
		s, err := readSeries(in.File, in.Name)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", in.Name, err)
		}

		a.logger.Debug("input loaded", "input", in.Name, "points", s.Size())
		inputs[in.Name] = s
	}

	return inputs, nil
}

// computeAll recomputes every configured trace from freshly read inputs.
// A trace that cannot be computed is logged and reported in the returned
// error without stopping the others.
func (a *app) computeAll(ctx context.Context) error {
	inputs, err := a.loadInputs()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var (
		mu       sync.Mutex
		failures []error
	)

	group, _ := xcmd.ErrGroup(ctx)
	group.SetLimit(a.cfg.Workers)

	for _, tc := range a.cfg.Traces {
		tc := tc
		group.Go(func(ctx context.Context) error {
			trace, err := a.compute(ctx, tc, inputs)
			if err != nil {
				if errors.Is(err, tracecomp.ErrCancelled) {
					return err
				}

				a.logger.Error("trace failed", "trace", tc.Name, "error", err)

				mu.Lock()
				failures = append(failures, fmt.Errorf("trace %s: %w", tc.Name, err))
				mu.Unlock()
				return nil
			}

			return a.store(ctx, trace)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	return errors.Join(failures...)
}

func (a *app) compute(ctx context.Context, tc config.Trace, inputs map[string]*series.Series) (*series.Computed, error) {
	def := tracereg.Definition{
		Name:       tc.Name,
		Expression: tc.Expression,
		MaxGap:     a.cfg.TraceMaxGap(tc),
	}
	for variable, input := range tc.Variables {
		binding := tracereg.Binding{Name: variable}
		if s, ok := inputs[input]; ok {
			binding.Series = s
		}
		def.Variables = append(def.Variables, binding)
	}

	var editing string
	if a.manager.Registry().Has(tc.Name) {
		editing = tc.Name
	}

	logger := a.logger.With("trace", tc.Name)
	trace, _, err := a.manager.Create(ctx, def, editing, tracecomp.Hooks{
		OnProgress: func(percent int) {
			logger.Debug("computing", "progress", percent)
		},
	})
	return trace, err
}

// store writes the trace to its CSV file and the recorder.
func (a *app) store(ctx context.Context, trace *series.Computed) error {
	path := filepath.Join(a.cfg.OutputDir, trace.Label()+".csv")
	if err := writeSeries(path, trace.Series); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := a.recorder.SaveTrace(ctx, trace); err != nil {
		return fmt.Errorf("record %s: %w", trace.Label(), err)
	}

	a.logger.Info("trace written", "trace", trace.Label(), "path", path, "points", trace.Size())
	return nil
}

func readSeries(path, label string) (*series.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return series.ReadCSV(f, label)
}

func writeSeries(path string, s *series.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := series.WriteCSV(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
