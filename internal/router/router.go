package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"                             // import the Echo web framework to handle routing
    "github.com/prometheus/client_golang/prometheus/promhttp" // promhttp serves the Prometheus scrape endpoint

    "github.com/filmbill/filmbill/internal/handler"    // import the handlers that implement business logic
    "github.com/filmbill/filmbill/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the liveness probe and the Prometheus metrics
// endpoint.  Neither says anything about venue extraction health; that
// lives under /v1/health.
func RegisterRoutes(e *echo.Echo) {
    // Map the GET request at path "/healthz" to the Health handler.  This
    // endpoint can be used by load balancers or monitoring systems to verify
    // that the service is up and running.
    e.GET("/healthz", handler.Health)
    // Expose Prometheus metrics for scraping.  promhttp.Handler is a plain
    // http.Handler, so it is wrapped for Echo.
    e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterCore registers the authenticated service API under /v1.  Every
// endpoint in this group requires a valid service token signed with
// jwtSecret and carrying an OPS or SCHEDULER role; these endpoints are
// called by the orchestration layer and by operators, never by end users.
func RegisterCore(e *echo.Echo, t *handler.TriggerHandler, hc *handler.HealthCheckHandler, v *handler.VenueHandler, m *handler.MaintenanceHandler, jwtSecret string) {
    // Create a group for routes that require a valid service token.  All
    // handlers registered on this group will execute the ServiceAuth
    // middleware before being invoked.
    core := e.Group("/v1")
    // Apply the ServiceAuth middleware to the protected group using the provided secret.
    core.Use(middleware.ServiceAuth(jwtSecret))
    // Both the scheduler and human operators may call every endpoint; the
    // middleware rejects requests with missing or unknown roles.
    core.Use(middleware.RequireRole("OPS", "SCHEDULER"))

    // Trigger a single extraction run for one venue (canonical id or alias).
    core.POST("/runs/:venue", t.RunVenue)
    // Trigger a bounded-concurrency batch run across several venues.
    core.POST("/runs", t.RunBatch)

    // Sweep every active venue, record snapshots and dispatch alerts.
    core.POST("/health/check", hc.RunCheck)
    // Serve the cached report from the most recent sweep.
    core.GET("/health/report", hc.LatestReport)
    // Evaluate one venue without recording a snapshot or alerting.
    core.GET("/health/:venue", hc.VenueStatus)
    // Snapshot trail for one venue over the last ?days=N days.
    core.GET("/health/:venue/history", hc.VenueHistory)

    // Venue identity lookups used by the orchestration layer.
    core.GET("/venues", v.ListVenues)
    core.GET("/venues/:id", v.GetVenue)

    // Offline repair of cross-chain booking link contamination.
    core.POST("/maintenance/repair-contamination", m.RepairContamination)
}
