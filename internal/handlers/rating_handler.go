package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/interfaces"
	"github.com/ternarybob/sovran/internal/models"
)

// defaultHistoryLimit caps the rating history page when no limit is given.
const defaultHistoryLimit = 20

// RatingHandler serves the rating pipeline endpoints: run, override,
// current and history.
type RatingHandler struct {
	engine  interfaces.RatingEngine
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

func NewRatingHandler(engine interfaces.RatingEngine, storage interfaces.StorageManager, logger arbor.ILogger) *RatingHandler {
	return &RatingHandler{engine: engine, storage: storage, logger: logger}
}

// RunHandler executes the full rating pipeline for one country.
func (h *RatingHandler) RunHandler(w http.ResponseWriter, r *http.Request, iso2 string) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	outcome, err := h.engine.RunRating(r.Context(), iso2)
	if err != nil {
		h.logger.Warn().Str("country", iso2).Err(err).Msg("Rating run failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, outcome)
}

// OverrideHandler applies an analyst's manual rating.
func (h *RatingHandler) OverrideHandler(w http.ResponseWriter, r *http.Request, iso2 string) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req models.OverrideRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	outcome, err := h.engine.ApplyOverride(r.Context(), iso2, &req)
	if err != nil {
		h.logger.Warn().Str("country", iso2).Err(err).Msg("Override rejected")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, outcome)
}

// CurrentHandler returns the country's authoritative rating, or 404 when
// the country is unrated.
func (h *RatingHandler) CurrentHandler(w http.ResponseWriter, r *http.Request, iso2 string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ctx := r.Context()
	country, err := h.storage.Countries().GetByISO2(ctx, iso2)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	rating, err := h.storage.Ratings().Current(ctx, country.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if rating == nil {
		WriteError(w, http.StatusNotFound, "country is unrated")
		return
	}

	WriteJSON(w, http.StatusOK, rating)
}

// HistoryHandler returns the country's rating history, newest first.
func (h *RatingHandler) HistoryHandler(w http.ResponseWriter, r *http.Request, iso2 string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ctx := r.Context()
	country, err := h.storage.Countries().GetByISO2(ctx, iso2)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	history, err := h.storage.Ratings().History(ctx, country.ID, GetLimitParam(r, defaultHistoryLimit))
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"country": country.ISO2,
		"history": history,
		"count":   len(history),
	})
}
