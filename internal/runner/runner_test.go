package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmbill/filmbill/internal/config"
	"github.com/filmbill/filmbill/internal/ingest"
	"github.com/filmbill/filmbill/internal/model"
	"github.com/filmbill/filmbill/internal/registry"
	"github.com/filmbill/filmbill/internal/scraper"
)

// scrapeFunc adapts a function to the Scraper contract.
type scrapeFunc func(ctx context.Context) ([]model.RawScreening, error)

func (f scrapeFunc) Scrape(ctx context.Context) ([]model.RawScreening, error) { return f(ctx) }

// fakeJobSource serves one scrape function per venue.
type fakeJobSource struct {
	jobs map[string]scrapeFunc
}

func (f *fakeJobSource) ForVenue(canonicalID string) (scraper.Scraper, error) {
	job, ok := f.jobs[canonicalID]
	if !ok {
		return nil, errors.New("no job configured")
	}
	return job, nil
}

// fakeIngestor records what reached the pipeline.
type fakeIngestor struct {
	mu      sync.Mutex
	venues  []string
	saved   map[string]int
	saveErr error
}

func newFakeIngestor() *fakeIngestor {
	return &fakeIngestor{saved: make(map[string]int)}
}

func (f *fakeIngestor) EnsureVenueExists(_ context.Context, v model.Venue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.venues = append(f.venues, v.ID)
	return nil
}

func (f *fakeIngestor) SaveScreenings(_ context.Context, venueID string, raws []model.RawScreening) (*ingest.SaveSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, &ingest.PersistenceError{VenueID: venueID, Err: f.saveErr}
	}
	f.saved[venueID] += len(raws)
	return &ingest.SaveSummary{Saved: len(raws)}, nil
}

// fakeGate blocks a fixed set of venues.
type fakeGate struct {
	blocked map[string]string // venue -> reason
	err     error
}

func (f *fakeGate) ShouldBlock(_ context.Context, venueID string) (bool, string, error) {
	if f.err != nil {
		return false, "", f.err
	}
	reason, ok := f.blocked[venueID]
	return ok, reason, nil
}

// fakeRecorder collects run history rows.
type fakeRecorder struct {
	mu   sync.Mutex
	rows []model.RunResult
}

func (f *fakeRecorder) Insert(_ context.Context, res model.RunResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, res)
	return nil
}

func testRunnerConfig() config.RunnerConfig {
	return config.RunnerConfig{
		ValidationEnabled: true,
		MaxConcurrency:    4,
		ScrapeTimeout:     5 * time.Second,
		ForwardWindowDays: 60,
	}
}

func screeningsAt(times ...time.Time) []model.RawScreening {
	out := make([]model.RawScreening, len(times))
	for i, ts := range times {
		out[i] = model.RawScreening{Title: "Some Film", StartsAt: ts}
	}
	return out
}

func TestRun_Success(t *testing.T) {
	soon := time.Now().Add(24 * time.Hour)
	jobs := &fakeJobSource{jobs: map[string]scrapeFunc{
		"eastlight": func(context.Context) ([]model.RawScreening, error) {
			return screeningsAt(soon, soon.Add(3*time.Hour)), nil
		},
	}}
	ing := newFakeIngestor()
	rec := &fakeRecorder{}
	r := New(testRunnerConfig(), registry.New(), jobs, ing, nil, rec)

	res := r.Run(context.Background(), "eastlight")

	require.NoError(t, res.Err)
	assert.Equal(t, "eastlight", res.VenueID)
	assert.Equal(t, 2, res.Count)
	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.FinishedAt.IsZero())
	assert.Equal(t, []string{"eastlight"}, ing.venues, "venue row must be ensured before saving")
	require.Len(t, rec.rows, 1)
	assert.Equal(t, res.RunID, rec.rows[0].RunID)
}

func TestRun_ResolvesAlias(t *testing.T) {
	soon := time.Now().Add(24 * time.Hour)
	jobs := &fakeJobSource{jobs: map[string]scrapeFunc{
		"eastlight": func(context.Context) ([]model.RawScreening, error) {
			return screeningsAt(soon), nil
		},
	}}
	ing := newFakeIngestor()
	r := New(testRunnerConfig(), registry.New(), jobs, ing, nil, nil)

	res := r.Run(context.Background(), "east-light")

	require.NoError(t, res.Err)
	assert.Equal(t, "eastlight", res.VenueID, "result must carry the canonical id")
	assert.Equal(t, 1, ing.saved["eastlight"])
}

func TestRun_UnknownVenue(t *testing.T) {
	r := New(testRunnerConfig(), registry.New(), &fakeJobSource{}, newFakeIngestor(), nil, nil)

	res := r.Run(context.Background(), "nope")
	require.ErrorIs(t, res.Err, registry.ErrUnknownVenue)
}

func TestRun_BlockedByGate(t *testing.T) {
	gate := &fakeGate{blocked: map[string]string{"eastlight": "latest health check critical"}}
	ing := newFakeIngestor()
	jobs := &fakeJobSource{jobs: map[string]scrapeFunc{
		"eastlight": func(context.Context) ([]model.RawScreening, error) {
			t.Fatal("blocked venue must never scrape")
			return nil, nil
		},
	}}
	r := New(testRunnerConfig(), registry.New(), jobs, ing, gate, nil)

	res := r.Run(context.Background(), "eastlight")

	require.ErrorIs(t, res.Err, ErrRunBlocked)
	assert.Contains(t, res.Err.Error(), "critical")
	assert.Zero(t, ing.saved["eastlight"])
}

func TestRun_GateErrorProceedsOpen(t *testing.T) {
	// A broken gate must not strand extraction; the run proceeds.
	soon := time.Now().Add(24 * time.Hour)
	gate := &fakeGate{err: errors.New("snapshot store down")}
	jobs := &fakeJobSource{jobs: map[string]scrapeFunc{
		"eastlight": func(context.Context) ([]model.RawScreening, error) {
			return screeningsAt(soon), nil
		},
	}}
	r := New(testRunnerConfig(), registry.New(), jobs, newFakeIngestor(), gate, nil)

	res := r.Run(context.Background(), "eastlight")
	require.NoError(t, res.Err)
}

func TestRun_ScrapeFailureIsExtractionError(t *testing.T) {
	jobs := &fakeJobSource{jobs: map[string]scrapeFunc{
		"eastlight": func(context.Context) ([]model.RawScreening, error) {
			return nil, errors.New("connection reset")
		},
	}}
	r := New(testRunnerConfig(), registry.New(), jobs, newFakeIngestor(), nil, nil)

	res := r.Run(context.Background(), "eastlight")

	var ee *scraper.ExtractionError
	require.ErrorAs(t, res.Err, &ee)
	assert.Equal(t, "eastlight", ee.VenueID)
}

func TestRun_PanicContained(t *testing.T) {
	jobs := &fakeJobSource{jobs: map[string]scrapeFunc{
		"eastlight": func(context.Context) ([]model.RawScreening, error) {
			panic("nil map write in a site parser")
		},
	}}
	r := New(testRunnerConfig(), registry.New(), jobs, newFakeIngestor(), nil, nil)

	var res model.RunResult
	require.NotPanics(t, func() {
		res = r.Run(context.Background(), "eastlight")
	})
	var ee *scraper.ExtractionError
	require.ErrorAs(t, res.Err, &ee)
	assert.Contains(t, ee.Reason, "panic")
}

func TestRun_ScrapeTimeout(t *testing.T) {
	cfg := testRunnerConfig()
	cfg.ScrapeTimeout = 20 * time.Millisecond
	jobs := &fakeJobSource{jobs: map[string]scrapeFunc{
		"eastlight": func(ctx context.Context) ([]model.RawScreening, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}}
	r := New(cfg, registry.New(), jobs, newFakeIngestor(), nil, nil)

	res := r.Run(context.Background(), "eastlight")

	var ee *scraper.ExtractionError
	require.ErrorAs(t, res.Err, &ee)
	assert.Contains(t, ee.Reason, "timed out")
}

func TestRun_ValidationRejectsGarbage(t *testing.T) {
	ing := newFakeIngestor()
	jobs := &fakeJobSource{jobs: map[string]scrapeFunc{
		"eastlight": func(context.Context) ([]model.RawScreening, error) {
			// Backdated programme: the scraper is reading the wrong fields.
			return screeningsAt(time.Now().AddDate(-1, 0, 0)), nil
		},
	}}
	r := New(testRunnerConfig(), registry.New(), jobs, ing, nil, nil)

	res := r.Run(context.Background(), "eastlight")

	var ve *ValidationError
	require.ErrorAs(t, res.Err, &ve)
	assert.Zero(t, ing.saved["eastlight"], "invalid batches must never reach the pipeline")
}

func TestRun_ValidationDisabledPassesThrough(t *testing.T) {
	cfg := testRunnerConfig()
	cfg.ValidationEnabled = false
	ing := newFakeIngestor()
	jobs := &fakeJobSource{jobs: map[string]scrapeFunc{
		"eastlight": func(context.Context) ([]model.RawScreening, error) {
			return screeningsAt(time.Now().AddDate(-1, 0, 0)), nil
		},
	}}
	r := New(cfg, registry.New(), jobs, ing, nil, nil)

	res := r.Run(context.Background(), "eastlight")
	require.NoError(t, res.Err)
}

func TestRunMany_IsolatesFailures(t *testing.T) {
	soon := time.Now().Add(24 * time.Hour)
	ok := func(context.Context) ([]model.RawScreening, error) {
		return screeningsAt(soon), nil
	}
	jobs := &fakeJobSource{jobs: map[string]scrapeFunc{
		"eastlight": ok,
		"stadtkino": func(context.Context) ([]model.RawScreening, error) {
			return nil, errors.New("site redesigned")
		},
		"cinelux-regent": ok,
	}}
	ing := newFakeIngestor()
	r := New(testRunnerConfig(), registry.New(), jobs, ing, nil, nil)

	results := r.RunMany(context.Background(), []string{"eastlight", "stadtkino", "cinelux-regent"})

	require.Len(t, results, 3)
	assert.Equal(t, "eastlight", results[0].VenueID, "results must come back in input order")
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err, "one venue's failure must not disturb the rest")
	assert.Equal(t, 1, ing.saved["eastlight"])
	assert.Equal(t, 1, ing.saved["cinelux-regent"])
}

func TestRunMany_BoundedConcurrency(t *testing.T) {
	cfg := testRunnerConfig()
	cfg.MaxConcurrency = 2

	var mu sync.Mutex
	inFlight, peak := 0, 0
	slow := func(context.Context) ([]model.RawScreening, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return screeningsAt(time.Now().Add(24 * time.Hour)), nil
	}
	jobs := &fakeJobSource{jobs: map[string]scrapeFunc{
		"eastlight":       slow,
		"stadtkino":       slow,
		"cinelux-regent":  slow,
		"cinelux-astoria": slow,
	}}
	r := New(cfg, registry.New(), jobs, newFakeIngestor(), nil, nil)

	r.RunMany(context.Background(), []string{"eastlight", "stadtkino", "cinelux-regent", "cinelux-astoria"})

	assert.LessOrEqual(t, peak, 2, "no more than MaxConcurrency scrapes in flight")
}

func TestValidate_EmptyBatch(t *testing.T) {
	err := validate("eastlight", nil, testRunnerConfig(), time.Now())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Violations[0], "zero screenings")
}

func TestValidate_ViolationCap(t *testing.T) {
	raws := make([]model.RawScreening, 50)
	for i := range raws {
		raws[i] = model.RawScreening{Title: ""} // every record violates
	}
	err := validate("eastlight", raws, testRunnerConfig(), time.Now())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Violations, maxReportedViolations)
}

func TestValidate_WindowBounds(t *testing.T) {
	cfg := testRunnerConfig()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		starts time.Time
		wantOK bool
	}{
		{"earlier today", now.Add(-2 * time.Hour), true},
		{"yesterday within grace", now.Add(-23 * time.Hour), true},
		{"two days ago", now.Add(-48 * time.Hour), false},
		{"window edge", now.AddDate(0, 0, cfg.ForwardWindowDays), true},
		{"beyond window", now.AddDate(0, 0, cfg.ForwardWindowDays+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate("eastlight", screeningsAt(tt.starts), cfg, now)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"blocked", ErrRunBlocked, "blocked"},
		{"unknown venue", registry.ErrUnknownVenue, "unknown_venue"},
		{"validation", &ValidationError{VenueID: "x"}, "validation_error"},
		{"persistence", &ingest.PersistenceError{VenueID: "x"}, "persistence_error"},
		{"extraction", &scraper.ExtractionError{VenueID: "x"}, "extraction_error"},
		{"other", errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}
