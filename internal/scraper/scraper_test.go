package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmbill/filmbill/internal/registry"
)

func TestClient_GetRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(nil)
	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_SetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(nil)
	_, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, gotUA, "filmbill-scraper")
}

func TestEastlight_Scrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"events":[
			{"title":"Stalker","year":1979,"directors":["Andrei Tarkovsky"],
			 "starts_at":"2026-09-04T19:30:00Z","ends_at":"2026-09-04T22:15:00Z",
			 "screen":"Screen 1","formats":["35mm"],"booking_url":"https://www.eastlightcinema.com/book/1"},
			{"title":"Amélie","year":2001,"starts_at":"2026-09-05T18:00:00+01:00"}
		]}`))
	}))
	defer srv.Close()

	s := NewEastlight(NewClient(nil), "eastlight", srv.URL)
	raws, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 2)

	assert.Equal(t, "Stalker", raws[0].Title)
	assert.Equal(t, 1979, raws[0].Year)
	assert.Equal(t, []string{"Andrei Tarkovsky"}, raws[0].Directors)
	assert.Equal(t, "Screen 1", raws[0].Screen)
	require.NotNil(t, raws[0].EndsAt)
	assert.Equal(t, "eastlight", raws[0].VenueID)

	assert.Equal(t, time.Date(2026, 9, 5, 17, 0, 0, 0, time.UTC), raws[1].StartsAt.UTC())
	assert.Nil(t, raws[1].EndsAt)
}

func TestEastlight_BadStartTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"events":[{"title":"Stalker","starts_at":"next tuesday"}]}`))
	}))
	defer srv.Close()

	s := NewEastlight(NewClient(nil), "eastlight", srv.URL)
	_, err := s.Scrape(context.Background())

	var ee *ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "eastlight", ee.VenueID)
}

func TestStadtkino_ParseLine(t *testing.T) {
	s := NewStadtkino(nil, "stadtkino", "", "Europe/Berlin")

	raw, err := s.parseLine("2026-03-01T19:30|Die Büchse der Pandora|1929|Saal 1|OmU,35mm|https://www.stadtkino-kanal.de/tickets/77")
	require.NoError(t, err)

	assert.Equal(t, "Die Büchse der Pandora", raw.Title)
	assert.Equal(t, 1929, raw.Year)
	assert.Equal(t, "Saal 1", raw.Screen)
	assert.Equal(t, []string{"OmU", "35mm"}, raw.Formats)
	assert.Equal(t, "https://www.stadtkino-kanal.de/tickets/77", raw.BookingURL)
	// 19:30 Berlin in March is CET (UTC+1).
	assert.Equal(t, time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC), raw.StartsAt)
}

func TestStadtkino_ParseLine_MinimalFields(t *testing.T) {
	s := NewStadtkino(nil, "stadtkino", "", "UTC")

	raw, err := s.parseLine("2026-03-01T19:30|Stalker||Saal 2")
	require.NoError(t, err)
	assert.Equal(t, "Stalker", raw.Title)
	assert.Zero(t, raw.Year)
	assert.Empty(t, raw.Formats)
	assert.Empty(t, raw.BookingURL)
}

func TestStadtkino_ParseLine_Malformed(t *testing.T) {
	s := NewStadtkino(nil, "stadtkino", "", "UTC")

	_, err := s.parseLine("just some text")
	require.Error(t, err)

	_, err = s.parseLine("01.03.2026|Stalker|1979|Saal 1")
	require.Error(t, err, "non-ISO dates mean the export format changed")
}

func TestStadtkino_ScrapeSkipsCommentsAndBlanks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("# Programm Export\n\n2026-03-01T19:30|Stalker|1979|Saal 1\n\n"))
	}))
	defer srv.Close()

	s := NewStadtkino(NewClient(nil), "stadtkino", srv.URL, "UTC")
	raws, err := s.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "Stalker", raws[0].Title)
}

func TestStadtkino_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	s := NewStadtkino(nil, "stadtkino", "", "Mars/Olympus_Mons")

	raw, err := s.parseLine("2026-03-01T19:30|Stalker|1979|Saal 1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC), raw.StartsAt)
}

func TestCatalog_CoversEveryRegisteredVenue(t *testing.T) {
	reg := registry.New()
	catalog, err := NewCatalog(NewClient(nil), reg)
	require.NoError(t, err)

	for _, v := range reg.Venues() {
		job, err := catalog.ForVenue(v.ID)
		require.NoError(t, err, "venue %q must have an extraction job", v.ID)
		assert.NotNil(t, job)
	}
}

func TestCatalog_UnknownVenue(t *testing.T) {
	catalog, err := NewCatalog(NewClient(nil), registry.New())
	require.NoError(t, err)

	_, err = catalog.ForVenue("nope")
	assert.Error(t, err)
}

func TestExtractionError_Unwrap(t *testing.T) {
	cause := context.DeadlineExceeded
	err := extractionErrf("eastlight", cause, "fetch programme feed")

	var ee *ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "eastlight", ee.VenueID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, ee.Error(), "eastlight")
}
