package handler

import (
    "encoding/json"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/filmbill/filmbill/internal/config"
    "github.com/filmbill/filmbill/internal/health"
)

// HealthCheckHandler exposes the monitoring endpoints.  The latest report
// is cached in Redis so dashboards can poll GET /v1/health/report without
// forcing a fresh sweep of every venue.
type HealthCheckHandler struct {
    monitor  *health.Monitor
    redis    *redis.Client // nil when Redis is unavailable; caching is then skipped
    cacheCfg config.ReportCacheConfig
}

// NewHealthCheckHandler constructs a HealthCheckHandler.
func NewHealthCheckHandler(m *health.Monitor, rdb *redis.Client, cacheCfg config.ReportCacheConfig) *HealthCheckHandler {
    return &HealthCheckHandler{monitor: m, redis: rdb, cacheCfg: cacheCfg}
}

// reportEnvelope is the cached/returned JSON shape.
type reportEnvelope struct {
    Healthy   int               `json:"healthy"`
    Warning   int               `json:"warning"`
    Critical  int               `json:"critical"`
    Metrics   interface{}       `json:"metrics"`
    Errors    map[string]string `json:"errors,omitempty"`
    Summary   string            `json:"summary"`
    CheckedAt string            `json:"checked_at"`
}

// RunCheck handles POST /v1/health/check.  It sweeps every active venue,
// records snapshots, dispatches alerts, and returns the aggregate report.
func (h *HealthCheckHandler) RunCheck(c echo.Context) error {
    ctx := c.Request().Context()

    report, err := h.monitor.RunFullHealthCheck(ctx)
    if err != nil {
        log.Println("health: full check failed:", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "health check failed"})
    }

    env := reportEnvelope{
        Healthy:   report.Healthy,
        Warning:   report.Warning,
        Critical:  report.Critical,
        Metrics:   report.Metrics,
        Errors:    report.Errors,
        Summary:   h.monitor.GenerateHealthSummary(ctx, report),
        CheckedAt: report.CheckedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
    }

    if h.redis != nil && h.cacheCfg.Enabled {
        if payload, err := json.Marshal(env); err == nil {
            if err := h.redis.Set(ctx, h.cacheCfg.Key, payload, h.cacheCfg.TTL).Err(); err != nil {
                log.Println("health: failed to cache report:", err) // non-fatal
            }
        }
    }

    return c.JSON(http.StatusOK, env)
}

// LatestReport handles GET /v1/health/report.  It serves the cached report
// from the most recent check; when nothing is cached (or Redis is down) the
// caller gets a 404 and should trigger a fresh check instead.
func (h *HealthCheckHandler) LatestReport(c echo.Context) error {
    if h.redis == nil || !h.cacheCfg.Enabled {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "no cached report available"})
    }

    payload, err := h.redis.Get(c.Request().Context(), h.cacheCfg.Key).Bytes()
    if err == redis.Nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "no cached report available"})
    }
    if err != nil {
        log.Println("health: failed to read cached report:", err)
        return c.JSON(http.StatusNotFound, echo.Map{"error": "no cached report available"})
    }
    return c.JSONBlob(http.StatusOK, payload)
}

// VenueHistory handles GET /v1/health/:venue/history.  It returns the
// venue's snapshot trail for the last ?days=N days (default 30), newest
// first.
func (h *HealthCheckHandler) VenueHistory(c echo.Context) error {
    days := 30
    if raw := c.QueryParam("days"); raw != "" {
        n, err := strconv.Atoi(raw)
        if err != nil || n < 1 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "days must be a positive integer"})
        }
        days = n
    }

    since := time.Now().UTC().AddDate(0, 0, -days)
    snaps, err := h.monitor.History(c.Request().Context(), c.Param("venue"), since)
    if err != nil {
        return c.JSON(statusFor(err), echo.Map{"error": err.Error()})
    }
    return c.JSON(http.StatusOK, echo.Map{"since": since, "snapshots": snaps})
}

// VenueStatus handles GET /v1/health/:venue.  It evaluates a single venue
// without recording a snapshot or sending alerts.
func (h *HealthCheckHandler) VenueStatus(c echo.Context) error {
    hm, err := h.monitor.Evaluate(c.Request().Context(), c.Param("venue"))
    if err != nil {
        return c.JSON(statusFor(err), echo.Map{"error": err.Error()})
    }
    return c.JSON(http.StatusOK, hm)
}
