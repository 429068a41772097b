package handlers

import (
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/interfaces"
	"github.com/ternarybob/sovran/internal/models"
)

// MemoryHandler serves the rationale memory CRUD endpoints.
type MemoryHandler struct {
	service interfaces.MemoryService
	logger  arbor.ILogger
}

func NewMemoryHandler(service interfaces.MemoryService, logger arbor.ILogger) *MemoryHandler {
	return &MemoryHandler{service: service, logger: logger}
}

// ListHandler returns all notes, newest first.
func (h *MemoryHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.List(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"memories": notes,
		"count":    len(notes),
	})
}

// CreateHandler stores a new note.
func (h *MemoryHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var note models.MemoryNote
	if !DecodeJSON(w, r, &note) {
		return
	}

	created, err := h.service.Create(r.Context(), &note)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}

// GetHandler returns one note by id.
func (h *MemoryHandler) GetHandler(w http.ResponseWriter, r *http.Request, id int64) {
	note, err := h.service.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, note)
}

// UpdateHandler rewrites a note's mutable fields.
func (h *MemoryHandler) UpdateHandler(w http.ResponseWriter, r *http.Request, id int64) {
	var note models.MemoryNote
	if !DecodeJSON(w, r, &note) {
		return
	}
	note.ID = id

	updated, err := h.service.Update(r.Context(), &note)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, updated)
}

// DeleteHandler removes a note.
func (h *MemoryHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"id":     strconv.FormatInt(id, 10),
	})
}
