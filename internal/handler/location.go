package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HapoSeiz/AlertShip/internal/geo"
	"github.com/HapoSeiz/AlertShip/pkg/errors"
	"github.com/HapoSeiz/AlertShip/pkg/response"
)

// draftStatus maps workflow errors onto HTTP codes.
func draftStatus(err error) int {
	switch {
	case errors.Is(err, geo.ErrDraftNotFound):
		return http.StatusNotFound
	case errors.Is(err, geo.ErrQueryTooShort):
		return http.StatusBadRequest
	case errors.Is(err, geo.ErrNoResults):
		return http.StatusNotFound
	case errors.Is(err, geo.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (h *Handlers) handleNewDraft(c *gin.Context) {
	response.Created(c, gin.H{"draft": h.workflow.NewDraft()})
}

func (h *Handlers) handleGetDraft(c *gin.Context) {
	draft, err := h.workflow.Get(c.Param("id"))
	if err != nil {
		response.Fail(c, draftStatus(err), errors.GetMessage(err))
		return
	}
	response.Success(c, gin.H{"draft": draft})
}

func (h *Handlers) handleDraftSearch(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	results, err := h.workflow.Search(c.Request.Context(), c.Param("id"), req.Query)
	if err != nil {
		response.Fail(c, draftStatus(err), errors.GetMessage(err))
		return
	}
	response.Success(c, gin.H{"results": results})
}

func (h *Handlers) handleDraftSelect(c *gin.Context) {
	var req struct {
		PlaceID string `json:"placeId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PlaceID == "" {
		response.Fail(c, http.StatusBadRequest, "placeId is required")
		return
	}
	draft, err := h.workflow.Select(c.Request.Context(), c.Param("id"), req.PlaceID)
	if err != nil {
		response.Fail(c, draftStatus(err), errors.GetMessage(err))
		return
	}
	response.Success(c, gin.H{"draft": draft})
}

func (h *Handlers) handleDraftBrowserLocation(c *gin.Context) {
	var req struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lng == nil {
		response.Fail(c, http.StatusBadRequest, "lat and lng are required")
		return
	}
	draft, err := h.workflow.UseBrowserLocation(c.Request.Context(), c.Param("id"),
		geo.Coordinates{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		if draft != nil {
			// Coordinates stuck; only the address lookup failed.
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"draft":   draft,
				"warning": "could not resolve an address for your location",
			})
			return
		}
		response.Fail(c, draftStatus(err), errors.GetMessage(err))
		return
	}
	response.Success(c, gin.H{"draft": draft})
}

func (h *Handlers) handleDraftClear(c *gin.Context) {
	draft, err := h.workflow.Clear(c.Param("id"))
	if err != nil {
		response.Fail(c, draftStatus(err), errors.GetMessage(err))
		return
	}
	response.Success(c, gin.H{"draft": draft})
}

func (h *Handlers) handleDraftDiscard(c *gin.Context) {
	h.workflow.Discard(c.Param("id"))
	response.Success(c, gin.H{})
}
