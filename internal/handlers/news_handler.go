package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/interfaces"
)

// defaultNewsLimit caps the headline listing when no limit is given.
const defaultNewsLimit = 10

// NewsHandler serves the headline cache endpoints.
type NewsHandler struct {
	service interfaces.NewsService
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

func NewNewsHandler(service interfaces.NewsService, storage interfaces.StorageManager, logger arbor.ILogger) *NewsHandler {
	return &NewsHandler{service: service, storage: storage, logger: logger}
}

// RefreshHandler fetches fresh headlines for one country.
func (h *NewsHandler) RefreshHandler(w http.ResponseWriter, r *http.Request, iso2 string) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	observed, err := h.service.FetchForCountry(r.Context(), iso2)
	if err != nil {
		h.logger.Warn().Str("country", iso2).Err(err).Msg("News refresh failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"country":  iso2,
		"observed": observed,
	})
}

// ListHandler returns the country's cached headlines.
func (h *NewsHandler) ListHandler(w http.ResponseWriter, r *http.Request, iso2 string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ctx := r.Context()
	country, err := h.storage.Countries().GetByISO2(ctx, iso2)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	items, err := h.storage.News().Recent(ctx, country.ID, GetLimitParam(r, defaultNewsLimit))
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"country": country.ISO2,
		"items":   items,
		"count":   len(items),
	})
}
