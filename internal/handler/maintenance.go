package handler

import (
    "errors"
    "log"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/filmbill/filmbill/internal/ingest"
    "github.com/filmbill/filmbill/internal/registry"
)

// MaintenanceHandler exposes offline repair operations for operators.
type MaintenanceHandler struct {
    pipeline *ingest.Pipeline
}

// NewMaintenanceHandler constructs a MaintenanceHandler.
func NewMaintenanceHandler(p *ingest.Pipeline) *MaintenanceHandler {
    return &MaintenanceHandler{pipeline: p}
}

// repairRequest is the body of POST /v1/maintenance/repair-contamination.
// Leaving venue_id empty sweeps every venue.  dry_run reports what would
// be nulled without mutating anything.
type repairRequest struct {
    VenueID string `json:"venue_id"`
    DryRun  bool   `json:"dry_run"`
}

// RepairContamination handles POST /v1/maintenance/repair-contamination.
// It scans future screenings for booking links pointing at a different
// chain's booking domain and nulls them.  Past screenings are never
// touched.
func (h *MaintenanceHandler) RepairContamination(c echo.Context) error {
    var req repairRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    report, err := h.pipeline.RepairContamination(c.Request().Context(), ingest.RepairFilter{
        VenueID: req.VenueID,
        DryRun:  req.DryRun,
    })
    if err != nil {
        if errors.Is(err, registry.ErrUnknownVenue) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown venue"})
        }
        log.Println("maintenance: contamination repair failed:", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "repair failed"})
    }
    return c.JSON(http.StatusOK, report)
}
