/*
refresher.go - Background projection refresher

PURPOSE:
  Keeps the default projection (today, configured horizon, all accounts)
  up to date while the household's data is being edited. Every mutation
  calls Invalidate; the refresher recomputes after a short debounce.

DESIGN:
  - Each input change bumps a generation counter
  - A run remembers the generation it started for
  - Invalidate cancels the in-flight run; a run that finishes for an
    older generation is discarded, never published
  - Latest always returns the newest published projection

USAGE:
  refresher := NewProjectionRefresher(engine, 60, 250*time.Millisecond, logger, metrics)
  go refresher.Run(ctx)
  // ... after an edit
  refresher.Invalidate()

SEE ALSO:
  - handlers.go: Mutating endpoints call Handler.invalidate
  - cli/serve.go: Runs the refresher next to the HTTP server
*/
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/logging"
)

// ErrSuperseded is returned by Refresh when newer input arrived while the
// run was in flight.
var ErrSuperseded = errors.New("projection superseded by newer input")

// ProjectionRefresher recomputes the default projection on input changes.
type ProjectionRefresher struct {
	Engine   *cashflow.ProjectionEngine
	Horizon  int
	Debounce time.Duration
	Logger   *logging.Logger
	Metrics  *Metrics

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	latest    *cashflow.Projection
	latestGen uint64

	trigger chan struct{}
	wg      sync.WaitGroup
}

// NewProjectionRefresher creates a refresher. A nil logger discards output;
// nil metrics are not recorded.
func NewProjectionRefresher(engine *cashflow.ProjectionEngine, horizon int, debounce time.Duration, logger *logging.Logger, metrics *Metrics) *ProjectionRefresher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ProjectionRefresher{
		Engine:   engine,
		Horizon:  horizon,
		Debounce: debounce,
		Logger:   logger.WithComponent(logging.ComponentRefresher),
		Metrics:  metrics,
		trigger:  make(chan struct{}, 1),
	}
}

// Invalidate marks the current projection stale, cancels any in-flight run
// and schedules a new one. It never blocks.
func (pr *ProjectionRefresher) Invalidate() {
	pr.mu.Lock()
	pr.gen++
	if pr.cancel != nil {
		pr.cancel()
		pr.cancel = nil
	}
	pr.mu.Unlock()

	select {
	case pr.trigger <- struct{}{}:
	default:
	}
}

// Generation returns the current input generation.
func (pr *ProjectionRefresher) Generation() uint64 {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.gen
}

// Latest returns the newest published projection and the generation it was
// computed for. The projection is nil until the first run completes.
func (pr *ProjectionRefresher) Latest() (*cashflow.Projection, uint64) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.latest, pr.latestGen
}

// Run computes once, then recomputes after each burst of invalidations
// until ctx is done. It waits for in-flight runs before returning.
func (pr *ProjectionRefresher) Run(ctx context.Context) error {
	pr.Logger.Info("refresher started", logging.FieldHorizon, pr.Horizon, "debounce", pr.Debounce)
	pr.spawn(ctx)

	for {
		select {
		case <-ctx.Done():
			pr.wg.Wait()
			pr.Logger.Info("refresher stopped")
			return nil
		case <-pr.trigger:
			if !pr.settle(ctx) {
				pr.wg.Wait()
				pr.Logger.Info("refresher stopped")
				return nil
			}
			pr.spawn(ctx)
		}
	}
}

// settle waits until no trigger has arrived for Debounce. It reports false
// when ctx ends first.
func (pr *ProjectionRefresher) settle(ctx context.Context) bool {
	if pr.Debounce <= 0 {
		return true
	}
	timer := time.NewTimer(pr.Debounce)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-pr.trigger:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(pr.Debounce)
		case <-timer.C:
			return true
		}
	}
}

func (pr *ProjectionRefresher) spawn(ctx context.Context) {
	pr.wg.Add(1)
	go func() {
		defer pr.wg.Done()
		if _, err := pr.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) && ctx.Err() == nil {
			pr.Logger.Error("refresh failed", logging.FieldError, err)
		}
	}()
}

// Refresh computes the default projection for the current generation and
// publishes it unless a newer generation exists by the time it finishes.
func (pr *ProjectionRefresher) Refresh(ctx context.Context) (*cashflow.Projection, error) {
	pr.mu.Lock()
	gen := pr.gen
	if pr.cancel != nil {
		pr.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	pr.cancel = cancel
	pr.mu.Unlock()
	defer cancel()

	start := time.Now()
	p, err := pr.Engine.Run(runCtx, cashflow.ProjectionRequest{Horizon: pr.Horizon})
	if pr.Metrics != nil {
		pr.Metrics.ObserveRun("refresher", pr.Horizon, time.Since(start), err)
	}
	if err != nil {
		if runCtx.Err() != nil && ctx.Err() == nil {
			pr.discarded(gen)
			return nil, ErrSuperseded
		}
		return nil, err
	}

	pr.mu.Lock()
	if gen != pr.gen || runCtx.Err() != nil {
		pr.mu.Unlock()
		pr.discarded(gen)
		return nil, ErrSuperseded
	}
	pr.latest = p
	pr.latestGen = gen
	pr.mu.Unlock()

	if pr.Metrics != nil {
		pr.Metrics.LatestGeneration.Set(float64(gen))
		pr.Metrics.LatestEndTotal.Set(p.Summary.TotalEnd.InexactFloat64())
	}
	pr.Logger.Debug("projection published",
		logging.FieldGen, gen,
		logging.FieldEvents, len(p.Events),
		logging.FieldDuration, time.Since(start).Milliseconds())
	return p, nil
}

func (pr *ProjectionRefresher) discarded(gen uint64) {
	if pr.Metrics != nil {
		pr.Metrics.RefreshDiscarded.Inc()
	}
	pr.Logger.Debug("stale projection discarded", logging.FieldGen, gen)
}
