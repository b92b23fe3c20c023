package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/driftaldev/redline/internal/storage"
)

const defaultRunsLimit = 20

// RunsHandler serves the review run history.
type RunsHandler struct {
	store  storage.Store
	logger *slog.Logger
}

// NewRunsHandler creates a handler backed by the run history store.
func NewRunsHandler(store storage.Store, logger *slog.Logger) *RunsHandler {
	return &RunsHandler{store: store, logger: logger}
}

// List returns the most recent runs, newest first. The "limit" query
// parameter caps the result; it defaults to 20 and tops out at 100.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 100)
	}

	runs, err := h.store.GetRecentRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list review runs", "error", err)
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, runs)
}

// Get returns a single run by ID.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid run ID", http.StatusBadRequest)
		return
	}

	run, err := h.store.GetRunByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load review run", "id", id, "error", err)
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	writeJSON(w, h.logger, run)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
