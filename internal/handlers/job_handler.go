package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/interfaces"
	"github.com/ternarybob/sovran/internal/models"
)

// JobHandler serves the batch job trigger and run observation endpoints.
type JobHandler struct {
	scheduler interfaces.SchedulerService
	logger    arbor.ILogger
}

func NewJobHandler(scheduler interfaces.SchedulerService, logger arbor.ILogger) *JobHandler {
	return &JobHandler{scheduler: scheduler, logger: logger}
}

// TriggerHandler launches a batch sweep in the background and returns its
// run handle immediately. Callers poll the run for completion.
func (h *JobHandler) TriggerHandler(w http.ResponseWriter, r *http.Request, kind string) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	run, err := h.scheduler.Trigger(models.JobKind(kind))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info().Str("job", kind).Str("run_id", run.ID).Msg("Job triggered")
	WriteJSON(w, http.StatusAccepted, run)
}

// ListRunsHandler returns all known runs, newest first.
func (h *JobHandler) ListRunsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	runs := h.scheduler.Runs()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRunHandler returns one run by id.
func (h *JobHandler) GetRunHandler(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	run, ok := h.scheduler.Run(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "run not found")
		return
	}

	WriteJSON(w, http.StatusOK, run)
}
