package handler

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/filmbill/filmbill/internal/ingest"
    "github.com/filmbill/filmbill/internal/model"
    "github.com/filmbill/filmbill/internal/registry"
    "github.com/filmbill/filmbill/internal/runner"
    "github.com/filmbill/filmbill/internal/scraper"
)

// Extractor is the runner contract the trigger endpoints need.
type Extractor interface {
    Run(ctx context.Context, venueID string) model.RunResult
    RunMany(ctx context.Context, venueIDs []string) []model.RunResult
}

// TriggerHandler exposes the orchestration boundary's run entry points.
// Both endpoints are idempotent to re-invocation: re-running a venue
// updates the same screening rows and never duplicates data.
type TriggerHandler struct {
    runner Extractor
}

// NewTriggerHandler constructs a TriggerHandler.
func NewTriggerHandler(r Extractor) *TriggerHandler {
    return &TriggerHandler{runner: r}
}

// runResponse is the JSON shape of one run outcome.
type runResponse struct {
    RunID      string `json:"run_id"`
    VenueID    string `json:"venue_id"`
    Count      int    `json:"count"`
    DurationMS int64  `json:"duration_ms"`
    Error      string `json:"error,omitempty"`
}

func toRunResponse(res model.RunResult) runResponse {
    out := runResponse{
        RunID:      res.RunID,
        VenueID:    res.VenueID,
        Count:      res.Count,
        DurationMS: res.Duration.Milliseconds(),
    }
    if res.Err != nil {
        out.Error = res.Err.Error()
    }
    return out
}

// RunVenue handles POST /v1/runs/:venue.  The path parameter may be a
// canonical id or a legacy alias.  The HTTP status reflects the typed
// failure so the scheduler can decide whether to retry: extraction errors
// are retryable (502), validation errors are not (422), a blocked venue is
// a conflict with monitor state (409), an unknown venue is the caller's
// bug (404).
func (h *TriggerHandler) RunVenue(c echo.Context) error {
    res := h.runner.Run(c.Request().Context(), c.Param("venue"))
    return c.JSON(statusFor(res.Err), toRunResponse(res))
}

// batchRequest is the body of POST /v1/runs.
type batchRequest struct {
    VenueIDs []string `json:"venue_ids"`
}

// RunBatch handles POST /v1/runs.  Venues run with bounded concurrency
// and independent failure: the response always carries one result per
// requested venue, and partial success returns 207 Multi-Status.
func (h *TriggerHandler) RunBatch(c echo.Context) error {
    var req batchRequest
    if err := c.Bind(&req); err != nil || len(req.VenueIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "venue_ids required"})
    }

    results := h.runner.RunMany(c.Request().Context(), req.VenueIDs)
    out := make([]runResponse, len(results))
    failed := 0
    for i, res := range results {
        out[i] = toRunResponse(res)
        if res.Err != nil {
            failed++
        }
    }

    status := http.StatusOK
    if failed == len(results) {
        status = http.StatusBadGateway
    } else if failed > 0 {
        status = http.StatusMultiStatus
    }
    return c.JSON(status, echo.Map{"results": out, "failed": failed})
}

// statusFor maps a run error onto an HTTP status.
func statusFor(err error) int {
    if err == nil {
        return http.StatusOK
    }
    var (
        ve *runner.ValidationError
        pe *ingest.PersistenceError
        ee *scraper.ExtractionError
    )
    switch {
    case errors.Is(err, registry.ErrUnknownVenue):
        return http.StatusNotFound
    case errors.Is(err, runner.ErrRunBlocked):
        return http.StatusConflict
    case errors.As(err, &ve):
        return http.StatusUnprocessableEntity
    case errors.As(err, &pe):
        return http.StatusInternalServerError
    case errors.As(err, &ee):
        return http.StatusBadGateway
    }
    return http.StatusInternalServerError
}
