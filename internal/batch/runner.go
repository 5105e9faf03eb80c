// Package batch analyses many fixtures concurrently
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/samijaber1/bloomwatch/internal/analysis"
	"github.com/samijaber1/bloomwatch/internal/metrics"
	"github.com/samijaber1/bloomwatch/internal/storage"
)

// DefaultConcurrency bounds the runs in flight when none is configured
const DefaultConcurrency = 4

// Source provides the inputs of a batch
type Source interface {
	Names() []string
	Input(name string) (analysis.Input, error)
	AbilityNames(name string) map[int]string
}

// NameStore receives ability names exported with the inputs
type NameStore interface {
	PutAll(names map[int]string) error
}

// Options configures a Runner. Every collaborator except the analyzer is optional.
type Options struct {
	Concurrency  int64
	SkipExisting bool
	Store        storage.AnalysisStorage
	Names        NameStore
	Recorder     *metrics.Recorder
	Logger       *zap.Logger
}

// Runner analyses fixtures with bounded concurrency. Runs share no mutable
// state apart from the cache, the store and the recorder.
type Runner struct {
	analyzer *analysis.Analyzer
	opts     Options
	sem      *semaphore.Weighted
	cache    *RunCache
	logger   *zap.Logger
}

// RunError is a failed run
type RunError struct {
	Name string
	Err  error
}

func (e RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e RunError) Unwrap() error {
	return e.Err
}

// Report summarizes a batch
type Report struct {
	Completed []*analysis.Result
	Skipped   []string
	Failed    []RunError
}

// NewRunner creates a runner
func NewRunner(analyzer *analysis.Analyzer, opts Options) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		analyzer: analyzer,
		opts:     opts,
		sem:      semaphore.NewWeighted(opts.Concurrency),
		cache:    NewRunCache(),
		logger:   logger,
	}
}

// Run analyses every input of src. A failed run is reported and does not
// stop the others; only context cancellation aborts the batch. The cache is
// reset on entry, so Run must not be called concurrently on one Runner.
func (r *Runner) Run(ctx context.Context, src Source) (*Report, error) {
	r.cache.Clear()
	names := src.Names()
	g, gctx := errgroup.WithContext(ctx)

	for _, name := range names {
		name := name
		if err := r.sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer r.sem.Release(1)
			r.runOne(gctx, src, name)
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return r.report(names), fmt.Errorf("batch cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return r.report(names), fmt.Errorf("batch cancelled: %w", err)
	}

	report := r.report(names)
	r.logger.Info("batch finished",
		zap.Int("completed", len(report.Completed)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("failed", len(report.Failed)),
		zap.Int("cached", r.cache.Size()))
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, src Source, name string) {
	log := r.logger.With(zap.String("fixture", name))

	in, err := src.Input(name)
	if err != nil {
		r.fail(name, fmt.Errorf("failed to load input: %w", err), 0)
		return
	}

	if r.opts.SkipExisting && r.opts.Store != nil {
		key := storage.RunKey{
			ReportCode:  in.ReportCode,
			FightID:     in.Fight.ID,
			Participant: in.Participant,
			Phase:       in.Phase,
		}
		exists, err := r.opts.Store.HasReport(ctx, key)
		if err != nil {
			log.Warn("failed to check stored runs", zap.Error(err))
		} else if exists {
			log.Debug("run already stored, skipping")
			r.cache.Set(name, &RunState{Skipped: true, UpdatedAt: time.Now()})
			if r.opts.Recorder != nil {
				r.opts.Recorder.ObserveSkip()
			}
			return
		}
	}

	if r.opts.Names != nil {
		if names := src.AbilityNames(name); len(names) > 0 {
			if err := r.opts.Names.PutAll(names); err != nil {
				log.Warn("failed to cache ability names", zap.Error(err))
			}
		}
	}

	start := time.Now()
	result, err := r.analyzer.Analyze(ctx, in)
	if err != nil {
		r.fail(name, err, time.Since(start))
		return
	}

	if r.opts.Store != nil {
		if err := r.opts.Store.SaveAnalysis(ctx, result); err != nil {
			r.fail(name, fmt.Errorf("failed to save analysis: %w", err), time.Since(start))
			return
		}
	}

	if r.opts.Recorder != nil {
		r.opts.Recorder.ObserveRun(result, time.Since(start))
	}
	r.cache.Set(name, &RunState{Result: result, UpdatedAt: time.Now()})
	log.Info("run finished",
		zap.String("run_id", result.RunID),
		zap.Int("rotations", len(result.Rotations)))
}

func (r *Runner) fail(name string, err error, elapsed time.Duration) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	r.logger.Warn("run failed", zap.String("fixture", name), zap.Error(err))
	if r.opts.Recorder != nil {
		r.opts.Recorder.ObserveRun(nil, elapsed)
	}
	r.cache.Set(name, &RunState{Err: err, UpdatedAt: time.Now()})
}

// report collects cached outcomes in input order
func (r *Runner) report(names []string) *Report {
	report := &Report{}
	states := r.cache.GetAll()
	for _, name := range names {
		state, ok := states[name]
		if !ok {
			continue
		}
		switch {
		case state.Skipped:
			report.Skipped = append(report.Skipped, name)
		case state.Err != nil:
			report.Failed = append(report.Failed, RunError{Name: name, Err: state.Err})
		case state.Result != nil:
			report.Completed = append(report.Completed, state.Result)
		}
	}
	return report
}

// Cache returns the run cache
func (r *Runner) Cache() *RunCache {
	return r.cache
}
