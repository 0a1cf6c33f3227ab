// Package runner executes venue extraction jobs with a uniform lifecycle:
// venue registration, circuit-breaker gate, timed scrape, optional
// validation, ingestion handoff.  One venue's failure never disturbs
// another's: batch runs report a heterogeneous result set and partial
// success is a first-class outcome.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/filmbill/filmbill/internal/config"
	"github.com/filmbill/filmbill/internal/ingest"
	"github.com/filmbill/filmbill/internal/metrics"
	"github.com/filmbill/filmbill/internal/model"
	"github.com/filmbill/filmbill/internal/registry"
	"github.com/filmbill/filmbill/internal/scraper"
)

// ErrRunBlocked is returned when the health-derived circuit breaker
// suppresses a run.  The orchestrator should not retry until the venue's
// health recovers or an operator intervenes.
var ErrRunBlocked = errors.New("run blocked by health monitor")

// JobSource resolves the extraction job for a venue.  *scraper.Catalog
// satisfies it; tests substitute fakes.
type JobSource interface {
	ForVenue(canonicalID string) (scraper.Scraper, error)
}

// Ingestor is the pipeline contract the runner hands results to.
type Ingestor interface {
	EnsureVenueExists(ctx context.Context, v model.Venue) error
	SaveScreenings(ctx context.Context, venueID string, raws []model.RawScreening) (*ingest.SaveSummary, error)
}

// Gate is the circuit breaker consulted before each run.  The health
// monitor derives the answer from snapshot history at read time.
type Gate interface {
	ShouldBlock(ctx context.Context, venueID string) (blocked bool, reason string, err error)
}

// RunRecorder persists run history.  *repository.RunRepo satisfies it.
type RunRecorder interface {
	Insert(ctx context.Context, res model.RunResult) error
}

// Runner executes extraction jobs.  Construct with New.
type Runner struct {
	cfg      config.RunnerConfig
	reg      *registry.Registry
	jobs     JobSource
	pipeline Ingestor
	gate     Gate
	runs     RunRecorder
}

// New constructs a Runner.  gate and runs may be nil: a nil gate never
// blocks and a nil recorder keeps no history (both are handy in tests).
func New(cfg config.RunnerConfig, reg *registry.Registry, jobs JobSource, pipeline Ingestor, gate Gate, runs RunRecorder) *Runner {
	return &Runner{cfg: cfg, reg: reg, jobs: jobs, pipeline: pipeline, gate: gate, runs: runs}
}

// Run executes one venue's extraction job end to end and reports the
// outcome.  The caller may pass a canonical id or a legacy alias.  Any
// failure is contained here and reported in the result; Run never panics
// and never returns a half-applied state.
func (r *Runner) Run(ctx context.Context, venueID string) model.RunResult {
	started := time.Now()
	res := model.RunResult{RunID: uuid.NewString(), VenueID: venueID}

	canonical, err := r.reg.ResolveCanonical(venueID)
	if err != nil {
		res.Err = err
		return r.finish(ctx, res, started)
	}
	res.VenueID = canonical

	venue, err := r.reg.Venue(canonical)
	if err != nil {
		res.Err = err
		return r.finish(ctx, res, started)
	}

	// Registration first: the venue row must exist before any screening
	// row references it.
	if err := r.pipeline.EnsureVenueExists(ctx, venue); err != nil {
		res.Err = err
		return r.finish(ctx, res, started)
	}

	if r.gate != nil {
		blocked, reason, err := r.gate.ShouldBlock(ctx, canonical)
		if err != nil {
			log.Printf("runner: venue=%s gate check failed, proceeding: %v", canonical, err)
		} else if blocked {
			res.Err = fmt.Errorf("%w: %s", ErrRunBlocked, reason)
			return r.finish(ctx, res, started)
		}
	}

	raws, err := r.scrapeWithTimeout(ctx, canonical)
	if err != nil {
		res.Err = err
		return r.finish(ctx, res, started)
	}

	if r.cfg.ValidationEnabled {
		if err := validate(canonical, raws, r.cfg, time.Now()); err != nil {
			res.Err = err
			return r.finish(ctx, res, started)
		}
	}

	summary, err := r.pipeline.SaveScreenings(ctx, canonical, raws)
	if err != nil {
		res.Err = err
		return r.finish(ctx, res, started)
	}
	res.Count = summary.Saved
	for _, w := range summary.Warnings {
		log.Printf("runner: venue=%s data-quality: %s", canonical, w)
	}
	return r.finish(ctx, res, started)
}

// RunMany executes a batch of venue jobs with bounded concurrency.  Each
// venue is isolated: results come back in input order and a failure for
// one venue is recorded in its slot while the rest of the batch proceeds.
func (r *Runner) RunMany(ctx context.Context, venueIDs []string) []model.RunResult {
	results := make([]model.RunResult, len(venueIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.MaxConcurrency)
	for i, id := range venueIDs {
		g.Go(func() error {
			results[i] = r.Run(ctx, id)
			return nil // per-venue failures live in the result, never abort the batch
		})
	}
	_ = g.Wait()
	return results
}

// scrapeWithTimeout resolves the venue's job and runs it under the
// configured wall-clock bound.  A deadline hit is an ExtractionError, not
// a partial success, and a panicking job is contained the same way.
func (r *Runner) scrapeWithTimeout(ctx context.Context, canonical string) (raws []model.RawScreening, err error) {
	job, err := r.jobs.ForVenue(canonical)
	if err != nil {
		return nil, &scraper.ExtractionError{VenueID: canonical, Reason: "no extraction job", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.ScrapeTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			raws = nil
			err = &scraper.ExtractionError{VenueID: canonical, Reason: fmt.Sprintf("job panic: %v", rec)}
		}
	}()

	raws, err = job.Scrape(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &scraper.ExtractionError{VenueID: canonical, Reason: "scrape timed out", Err: err}
		}
		var ee *scraper.ExtractionError
		if errors.As(err, &ee) {
			return nil, err
		}
		return nil, &scraper.ExtractionError{VenueID: canonical, Reason: "scrape failed", Err: err}
	}
	return raws, nil
}

// finish stamps, records and instruments a run result.
func (r *Runner) finish(ctx context.Context, res model.RunResult, started time.Time) model.RunResult {
	res.Duration = time.Since(started)
	res.FinishedAt = time.Now().UTC()

	outcome := classify(res.Err)
	metrics.RunsTotal.WithLabelValues(res.VenueID, outcome).Inc()
	metrics.RunDuration.WithLabelValues(res.VenueID).Observe(res.Duration.Seconds())

	if res.Err != nil {
		log.Printf("runner: venue=%s run=%s failed (%s): %v", res.VenueID, res.RunID, outcome, res.Err)
	} else {
		log.Printf("runner: venue=%s run=%s saved %d screenings in %s", res.VenueID, res.RunID, res.Count, res.Duration.Round(time.Millisecond))
	}

	if r.runs != nil {
		if err := r.runs.Insert(ctx, res); err != nil {
			// History is best-effort; the run outcome stands either way.
			log.Printf("runner: venue=%s failed to record run %s: %v", res.VenueID, res.RunID, err)
		}
	}
	return res
}

// classify maps a run error onto a metrics outcome label.
func classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRunBlocked):
		return "blocked"
	case errors.Is(err, registry.ErrUnknownVenue):
		return "unknown_venue"
	default:
		var (
			ve *ValidationError
			pe *ingest.PersistenceError
			ee *scraper.ExtractionError
		)
		switch {
		case errors.As(err, &ve):
			return "validation_error"
		case errors.As(err, &pe):
			return "persistence_error"
		case errors.As(err, &ee):
			return "extraction_error"
		}
		return "error"
	}
}
