package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/HapoSeiz/AlertShip/internal/auth"
	"github.com/HapoSeiz/AlertShip/internal/models"
	"github.com/HapoSeiz/AlertShip/pkg/metrics"
	"github.com/HapoSeiz/AlertShip/pkg/middleware"
	"github.com/HapoSeiz/AlertShip/pkg/response"
)

type createReportRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`

	// DraftID points at a resolved location draft; when present the
	// server-held coordinates and address are authoritative.
	DraftID string `json:"draftId"`

	Locality string   `json:"locality"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	PinCode  string   `json:"pinCode"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Source   string   `json:"locationSource"`

	PlaceID      string `json:"placeId"`
	Premise      string `json:"premise"`
	Route        string `json:"route"`
	Neighborhood string `json:"neighborhood"`
	Sublocality  string `json:"sublocality"`
}

func (h *Handlers) handleCreateReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DraftID != "" {
		draft, err := h.workflow.Get(req.DraftID)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "location session expired, please set the location again")
			return
		}
		// Coordinates and their source come from the server-held draft;
		// address text the user edited after autofill wins over the
		// draft's derived values.
		req.Lat, req.Lng = draft.Lat, draft.Lng
		req.Source = string(draft.Source)
		fillFromDraft(&req.Locality, draft.Locality)
		fillFromDraft(&req.City, draft.City)
		fillFromDraft(&req.State, draft.State)
		fillFromDraft(&req.PinCode, draft.PinCode)
		fillFromDraft(&req.PlaceID, draft.PlaceID)
		fillFromDraft(&req.Premise, draft.Premise)
		fillFromDraft(&req.Route, draft.Route)
		fillFromDraft(&req.Neighborhood, draft.Neighborhood)
		fillFromDraft(&req.Sublocality, draft.Sublocality)
	}

	// Coordinates gate submission no matter what else is filled in.
	if req.Lat == nil || req.Lng == nil {
		response.Fail(c, http.StatusBadRequest,
			h.i18n.T(middleware.Lang(c), "report.locationRequired", nil))
		return
	}

	fields := map[string]string{}
	if !models.ValidOutageType(req.Type) {
		fields["type"] = "type must be electricity or water"
	}
	if req.Description == "" {
		fields["description"] = "description is required"
	}
	if req.Locality == "" {
		fields["locality"] = "locality is required"
	}
	if req.City == "" {
		fields["city"] = "city is required"
	}
	if req.State == "" {
		fields["state"] = "state is required"
	}
	if !auth.ValidPinCode(req.PinCode) {
		fields["pinCode"] = "pin code must be exactly 6 digits"
	}
	if len(fields) > 0 {
		response.FailFields(c, "please fix the highlighted fields", fields)
		return
	}

	report := &models.OutageReport{
		Type:        req.Type,
		Description: req.Description,
		Locality:    req.Locality,
		City:        req.City,
		State:       req.State,
		PinCode:     req.PinCode,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		Source:      req.Source,

		PlaceID:      req.PlaceID,
		Premise:      req.Premise,
		Route:        req.Route,
		Neighborhood: req.Neighborhood,
		Sublocality:  req.Sublocality,
	}
	if user := models.CurrentUser(c); user != nil {
		report.ReportedBy = &user.ID
	}

	if err := models.CreateOutageReport(h.db, report); err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not save report")
		return
	}
	metrics.RecordReportCreated()
	if req.DraftID != "" {
		h.workflow.Discard(req.DraftID)
	}

	response.Created(c, gin.H{
		"id":      report.PublicID,
		"message": h.i18n.T(middleware.Lang(c), "report.submitted", nil),
	})
}

func (h *Handlers) handleListReports(c *gin.Context) {
	reports, err := models.ListOutageReports(h.db, c.Query("city"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not load reports")
		return
	}
	response.Success(c, gin.H{"reports": reports})
}

func (h *Handlers) handleLatestReports(c *gin.Context) {
	// The homepage strip must never be served stale by intermediaries.
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Header("Surrogate-Control", "no-store")

	reports, err := models.LatestOutageReports(h.db)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not load reports")
		return
	}
	response.Success(c, gin.H{"reports": reports})
}

func (h *Handlers) handleEvents(c *gin.Context) {
	h.hub.Serve(c, uuid.NewString())
}

func fillFromDraft(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
