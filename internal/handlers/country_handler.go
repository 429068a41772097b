package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/interfaces"
	"github.com/ternarybob/sovran/internal/models"
)

// CountryHandler serves the country list and per-country detail views.
type CountryHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

func NewCountryHandler(storage interfaces.StorageManager, logger arbor.ILogger) *CountryHandler {
	return &CountryHandler{storage: storage, logger: logger}
}

// countryDetail is the detail view: the country with its current rating and
// latest fundamentals. Rating and fundamentals are null when absent.
type countryDetail struct {
	Country      *models.Country              `json:"country"`
	Rating       *models.Rating               `json:"rating"`
	Fundamentals *models.FundamentalsSnapshot `json:"fundamentals"`
}

// ListHandler returns all seeded countries.
func (h *CountryHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	countries, err := h.storage.Countries().List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list countries")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"countries": countries,
		"count":     len(countries),
	})
}

// GetHandler returns one country with its current rating and latest
// fundamentals.
func (h *CountryHandler) GetHandler(w http.ResponseWriter, r *http.Request, iso2 string) {
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
		h.logger.Error().Str("country", iso2).Err(err).Msg("Failed to load current rating")
		WriteServiceError(w, err)
		return
	}

	fundamentals, err := h.storage.Fundamentals().Latest(ctx, country.ID)
	if err != nil {
		h.logger.Error().Str("country", iso2).Err(err).Msg("Failed to load fundamentals")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, countryDetail{
		Country:      country,
		Rating:       rating,
		Fundamentals: fundamentals,
	})
}
