package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fortuna/wicket/internal/scheduler"
	"github.com/fortuna/wicket/internal/store"
)

// defaultHistoryLimit caps ?history=N when the value is missing or absurd.
const defaultHistoryLimit = 20

// Controller is the scheduler surface the API exposes.
type Controller interface {
	Status() scheduler.Status
	RefreshMatchList(ctx context.Context) error
}

// MatchReader is the persisted read model behind the match endpoints.
type MatchReader interface {
	GetMatchList(ctx context.Context) ([]*store.Match, error)
	GetMatch(ctx context.Context, matchID string) (*store.Match, error)
	GetMatchData(ctx context.Context, matchID string) (*store.MatchData, error)
	GetLatestSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind) (*store.Snapshot, error)
	GetSnapshotHistory(ctx context.Context, matchID string, kind store.SnapshotKind, limit int) ([]*store.Snapshot, error)
	GetStorageStats(ctx context.Context) (*store.StorageStats, error)
}

// SnapshotCache is the read-through cache for latest live state. May be nil.
type SnapshotCache interface {
	GetLatestSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind) (json.RawMessage, error)
	HealthCheck(ctx context.Context) error
}

// HealthChecker reports whether the backing database is reachable.
type HealthChecker interface {
	HealthCheck() error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	controller Controller
	matches    MatchReader
	cache      SnapshotCache
	db         HealthChecker
}

// NewHandler creates a new handler
func NewHandler(controller Controller, matches MatchReader, cache SnapshotCache, db HealthChecker) *Handler {
	return &Handler{
		controller: controller,
		matches:    matches,
		cache:      cache,
		db:         db,
	}
}

// HealthCheck reports service health including database and cache liveness
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := map[string]string{}

	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			status = "degraded"
			checks["database"] = err.Error()
		} else {
			checks["database"] = "ok"
		}
	}
	if h.cache != nil {
		if err := h.cache.HealthCheck(r.Context()); err != nil {
			status = "degraded"
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{
		"status":  status,
		"service": "wicket",
		"checks":  checks,
	})
}

// GetStatus returns the scheduler summary plus storage stats
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := h.controller.Status()

	response := map[string]interface{}{
		"scheduler": status,
	}
	if stats, err := h.matches.GetStorageStats(r.Context()); err == nil {
		response["storage"] = stats
	}

	respondJSON(w, http.StatusOK, response)
}

// GetMatches returns the persisted match list
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matches.GetMatchList(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch matches", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

// GetMatchData returns a match with the latest snapshot of each kind.
// The live snapshot is read cache-first so in-play consumers skip Postgres.
func (h *Handler) GetMatchData(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	matchID := vars["matchID"]

	data, err := h.matches.GetMatchData(r.Context(), matchID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Match not found", err)
		return
	}

	if h.cache != nil {
		if cached, err := h.cache.GetLatestSnapshot(r.Context(), matchID, store.KindLive); err == nil && cached != nil {
			data.Live = cached
		}
	}

	respondJSON(w, http.StatusOK, data)
}

// GetSnapshot returns the latest snapshot of one kind, or with ?history=N
// up to N timestamped historical copies, newest first
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	matchID := vars["matchID"]

	kind, err := store.ParseKind(vars["kind"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid snapshot kind", err)
		return
	}

	if historyStr := r.URL.Query().Get("history"); historyStr != "" {
		limit := defaultHistoryLimit
		if n, err := strconv.Atoi(historyStr); err == nil && n > 0 && n <= 100 {
			limit = n
		}

		snapshots, err := h.matches.GetSnapshotHistory(r.Context(), matchID, kind, limit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to fetch snapshot history", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"snapshots": snapshots,
			"count":     len(snapshots),
		})
		return
	}

	snapshot, err := h.matches.GetLatestSnapshot(r.Context(), matchID, kind)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch snapshot", err)
		return
	}
	if snapshot == nil {
		respondError(w, http.StatusNotFound, "Snapshot not captured yet", nil)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// TriggerRefresh manually runs one discovery refresh
func (h *Handler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.RefreshMatchList(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, "Discovery refresh failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Match list refreshed",
		"status":  h.controller.Status(),
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
