package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/HapoSeiz/AlertShip/internal/auth"
	"github.com/HapoSeiz/AlertShip/internal/models"
	"github.com/HapoSeiz/AlertShip/pkg/errors"
	"github.com/HapoSeiz/AlertShip/pkg/response"
)

func (h *Handlers) handleListSavedLocations(c *gin.Context) {
	user := models.CurrentUser(c)
	locations, err := models.ListSavedLocations(h.db, user.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not load saved locations")
		return
	}
	response.Success(c, gin.H{"locations": locations})
}

func (h *Handlers) handleCreateSavedLocation(c *gin.Context) {
	var req struct {
		Label    string   `json:"label"`
		DraftID  string   `json:"draftId"`
		Locality string   `json:"locality"`
		City     string   `json:"city"`
		State    string   `json:"state"`
		PinCode  string   `json:"pinCode"`
		Lat      *float64 `json:"lat"`
		Lng      *float64 `json:"lng"`

		PlaceID      string `json:"placeId"`
		Premise      string `json:"premise"`
		Route        string `json:"route"`
		Neighborhood string `json:"neighborhood"`
		Sublocality  string `json:"sublocality"`
	}
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
		req.Lat, req.Lng = draft.Lat, draft.Lng
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

	fields := map[string]string{}
	if req.Locality == "" {
		fields["locality"] = "locality is required"
	}
	if req.City == "" {
		fields["city"] = "city is required"
	}
	if req.PinCode != "" && !auth.ValidPinCode(req.PinCode) {
		fields["pinCode"] = "pin code must be exactly 6 digits"
	}
	if len(fields) > 0 {
		response.FailFields(c, "please fix the highlighted fields", fields)
		return
	}

	user := models.CurrentUser(c)
	loc := &models.SavedLocation{
		UserID:   user.ID,
		Label:    req.Label,
		Locality: req.Locality,
		City:     req.City,
		State:    req.State,
		PinCode:  req.PinCode,
		Lat:      req.Lat,
		Lng:      req.Lng,

		PlaceID:      req.PlaceID,
		Premise:      req.Premise,
		Route:        req.Route,
		Neighborhood: req.Neighborhood,
		Sublocality:  req.Sublocality,
	}
	if err := models.CreateSavedLocation(h.db, loc); err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not save location")
		return
	}
	if req.DraftID != "" {
		h.workflow.Discard(req.DraftID)
	}
	response.Created(c, gin.H{"location": loc})
}

func (h *Handlers) handleDeleteSavedLocation(c *gin.Context) {
	user := models.CurrentUser(c)
	id := cast.ToUint(c.Param("id"))
	if err := models.DeleteSavedLocation(h.db, user.ID, id); err != nil {
		response.Fail(c, http.StatusNotFound, errors.GetMessage(err))
		return
	}
	response.Success(c, gin.H{})
}

func (h *Handlers) handleListSubscriptions(c *gin.Context) {
	user := models.CurrentUser(c)
	subs, err := models.ListSubscriptions(h.db, user.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not load subscriptions")
		return
	}
	response.Success(c, gin.H{"subscriptions": subs})
}

func (h *Handlers) handleCreateSubscription(c *gin.Context) {
	var req struct {
		City string `json:"city"`
		Type string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.City == "" {
		response.Fail(c, http.StatusBadRequest, "city is required")
		return
	}
	if req.Type != "" && !models.ValidOutageType(req.Type) {
		response.Fail(c, http.StatusBadRequest, "type must be electricity or water")
		return
	}

	user := models.CurrentUser(c)
	sub := &models.Subscription{UserID: user.ID, City: req.City, Type: req.Type}
	if err := models.CreateSubscription(h.db, sub); err != nil {
		if errors.Is(err, models.ErrSubscriptionExists) {
			response.Fail(c, http.StatusConflict, errors.GetMessage(err))
			return
		}
		response.Fail(c, http.StatusInternalServerError, "could not subscribe")
		return
	}
	response.Created(c, gin.H{"subscription": sub})
}

func (h *Handlers) handleDeleteSubscription(c *gin.Context) {
	user := models.CurrentUser(c)
	id := cast.ToUint(c.Param("id"))
	if err := models.DeleteSubscription(h.db, user.ID, id); err != nil {
		response.Fail(c, http.StatusNotFound, errors.GetMessage(err))
		return
	}
	response.Success(c, gin.H{})
}
