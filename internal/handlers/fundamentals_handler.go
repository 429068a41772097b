package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/interfaces"
)

// FundamentalsHandler serves the macro snapshot endpoints.
type FundamentalsHandler struct {
	service interfaces.FundamentalsService
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

func NewFundamentalsHandler(service interfaces.FundamentalsService, storage interfaces.StorageManager, logger arbor.ILogger) *FundamentalsHandler {
	return &FundamentalsHandler{service: service, storage: storage, logger: logger}
}

// SyncHandler reconciles the country's indicators into a fresh snapshot.
func (h *FundamentalsHandler) SyncHandler(w http.ResponseWriter, r *http.Request, iso2 string) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	snapshot, err := h.service.SyncCountry(r.Context(), iso2)
	if err != nil {
		h.logger.Warn().Str("country", iso2).Err(err).Msg("Fundamentals sync failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// ListHandler returns the country's snapshot history, newest year first.
func (h *FundamentalsHandler) ListHandler(w http.ResponseWriter, r *http.Request, iso2 string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ctx := r.Context()
	country, err := h.storage.Countries().GetByISO2(ctx, iso2)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	snapshots, err := h.storage.Fundamentals().ListByCountry(ctx, country.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"country":      country.ISO2,
		"fundamentals": snapshots,
		"count":        len(snapshots),
	})
}
