package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/sovran/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Countries and the per-country pipeline surface
	mux.HandleFunc("/api/countries", s.app.CountryHandler.ListHandler)
	mux.HandleFunc("/api/countries/", s.handleCountryRoutes)

	// API routes - Rationale memory
	mux.HandleFunc("/api/memory", s.handleMemoryCollection)
	mux.HandleFunc("/api/memory/", s.handleMemoryItem)

	// API routes - Batch jobs
	mux.HandleFunc("/api/jobs/runs", s.app.JobHandler.ListRunsHandler)
	mux.HandleFunc("/api/jobs/runs/", s.handleJobRunRoutes)
	mux.HandleFunc("/api/jobs/", s.handleJobTriggerRoutes)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// Catch-all for unknown API paths
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleCountryRoutes dispatches /api/countries/{iso2} and its subpaths.
func (s *Server) handleCountryRoutes(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/countries/")
	if len(parts) == 0 || parts[0] == "" {
		s.app.APIHandler.NotFoundHandler(w, r)
		return
	}

	iso2 := strings.ToUpper(parts[0])

	if len(parts) == 1 {
		s.app.CountryHandler.GetHandler(w, r, iso2)
		return
	}

	switch strings.Join(parts[1:], "/") {
	case "rate":
		s.app.RatingHandler.RunHandler(w, r, iso2)
	case "override":
		s.app.RatingHandler.OverrideHandler(w, r, iso2)
	case "rating":
		s.app.RatingHandler.CurrentHandler(w, r, iso2)
	case "ratings":
		s.app.RatingHandler.HistoryHandler(w, r, iso2)
	case "sync":
		s.app.FundamentalsHandler.SyncHandler(w, r, iso2)
	case "fundamentals":
		s.app.FundamentalsHandler.ListHandler(w, r, iso2)
	case "news":
		s.app.NewsHandler.ListHandler(w, r, iso2)
	case "news/refresh":
		s.app.NewsHandler.RefreshHandler(w, r, iso2)
	default:
		s.app.APIHandler.NotFoundHandler(w, r)
	}
}

// handleMemoryCollection dispatches /api/memory by method.
func (s *Server) handleMemoryCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.app.MemoryHandler.ListHandler(w, r)
	case http.MethodPost:
		s.app.MemoryHandler.CreateHandler(w, r)
	default:
		handlers.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleMemoryItem dispatches /api/memory/{id} by method.
func (s *Server) handleMemoryItem(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/memory/")
	if len(parts) != 1 {
		s.app.APIHandler.NotFoundHandler(w, r)
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "invalid memory id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.app.MemoryHandler.GetHandler(w, r, id)
	case http.MethodPut:
		s.app.MemoryHandler.UpdateHandler(w, r, id)
	case http.MethodDelete:
		s.app.MemoryHandler.DeleteHandler(w, r, id)
	default:
		handlers.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleJobRunRoutes dispatches /api/jobs/runs/{id}.
func (s *Server) handleJobRunRoutes(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/jobs/runs/")
	if len(parts) != 1 || parts[0] == "" {
		s.app.APIHandler.NotFoundHandler(w, r)
		return
	}
	s.app.JobHandler.GetRunHandler(w, r, parts[0])
}

// handleJobTriggerRoutes dispatches /api/jobs/{kind}/trigger.
func (s *Server) handleJobTriggerRoutes(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/jobs/")
	if len(parts) != 2 || parts[1] != "trigger" {
		s.app.APIHandler.NotFoundHandler(w, r)
		return
	}
	s.app.JobHandler.TriggerHandler(w, r, parts[0])
}

// splitPath strips the prefix and splits the remainder on slashes.
func splitPath(path, prefix string) []string {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}
