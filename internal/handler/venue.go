package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/filmbill/filmbill/internal/model"
    "github.com/filmbill/filmbill/internal/registry"
)

// VenueHandler serves venue identity lookups.  This is the contract the
// scheduler relies on to translate its own venue references into the
// canonical ids used everywhere else in the system.
type VenueHandler struct {
    reg *registry.Registry
}

// NewVenueHandler constructs a VenueHandler.
func NewVenueHandler(reg *registry.Registry) *VenueHandler {
    return &VenueHandler{reg: reg}
}

// venueResponse is the JSON shape of one venue identity record.
type venueResponse struct {
    ID              string   `json:"id"`
    Name            string   `json:"name"`
    ShortName       string   `json:"short_name,omitempty"`
    Website         string   `json:"website,omitempty"`
    Address         string   `json:"address,omitempty"`
    Features        []string `json:"features,omitempty"`
    Latitude        *float64 `json:"latitude,omitempty"`
    Longitude       *float64 `json:"longitude,omitempty"`
    Active          bool     `json:"active"`
    OrchestrationID string   `json:"orchestration_id"`
    Chain           string   `json:"chain,omitempty"`
}

// GetVenue handles GET /v1/venues/:id.  The path parameter may be a
// canonical id or a legacy alias; the response always carries the
// canonical record.
func (h *VenueHandler) GetVenue(c echo.Context) error {
    canonical, err := h.reg.ResolveCanonical(c.Param("id"))
    if err != nil {
        if errors.Is(err, registry.ErrUnknownVenue) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown venue"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
    }

    v, err := h.reg.Venue(canonical)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown venue"})
    }
    orchID, _ := h.reg.OrchestrationID(canonical)

    return c.JSON(http.StatusOK, venueResponse{
        ID:              v.ID,
        Name:            v.Name,
        ShortName:       v.ShortName,
        Website:         v.Website,
        Address:         v.Address,
        Features:        v.Features,
        Latitude:        v.Latitude,
        Longitude:       v.Longitude,
        Active:          v.Active,
        OrchestrationID: orchID,
        Chain:           h.reg.ChainOf(canonical),
    })
}

// ListVenues handles GET /v1/venues.  Pass ?active=true to restrict the
// listing to venues eligible for scheduled runs.
func (h *VenueHandler) ListVenues(c echo.Context) error {
    var venues []model.Venue
    if c.QueryParam("active") == "true" {
        venues = h.reg.ActiveVenues()
    } else {
        venues = h.reg.Venues()
    }

    out := make([]venueResponse, 0, len(venues))
    for _, v := range venues {
        orchID, _ := h.reg.OrchestrationID(v.ID)
        out = append(out, venueResponse{
            ID:              v.ID,
            Name:            v.Name,
            ShortName:       v.ShortName,
            Active:          v.Active,
            OrchestrationID: orchID,
            Chain:           h.reg.ChainOf(v.ID),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"venues": out})
}
