// Package handler provides HTTP handlers for all API endpoints.
// Handlers call the tournament store through the Service interface; reads of
// standings, pairings and tournaments are cached with ETags and invalidated
// on every write.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/albapepper/swiss-tournament/internal/api/respond"
	"github.com/albapepper/swiss-tournament/internal/cache"
	"github.com/albapepper/swiss-tournament/internal/store"
	"github.com/albapepper/swiss-tournament/internal/swiss"
)

// Service is the set of tournament operations the API exposes.
type Service interface {
	ClearMatches(ctx context.Context) (int64, error)
	ClearPlayers(ctx context.Context) (int64, error)
	ClearTournaments(ctx context.Context) (int64, error)
	CountPlayers(ctx context.Context) (int, error)
	RegisterPlayer(ctx context.Context, name string) (store.Player, error)
	RegisterTournament(ctx context.Context, name string) (store.Tournament, error)
	Tournaments(ctx context.Context) ([]store.Tournament, error)
	Standings(ctx context.Context) ([]swiss.Standing, error)
	ReportMatch(ctx context.Context, r store.MatchReport) error
	Pairings(ctx context.Context) ([]swiss.Matchup, error)
}

// Pinger checks database connectivity.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	svc    Service
	db     Pinger
	cache  *cache.Cache
	logger *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(svc Service, db Pinger, c *cache.Cache, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		svc:    svc,
		db:     db,
		cache:  c,
		logger: logger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Swiss Tournament API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.logger.Warn("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// InvalidateReads drops cached standings, pairings and tournament lists.
func (h *Handler) InvalidateReads() {
	h.cache.InvalidatePrefix("")
}

// writeStoreError maps domain errors to client errors and hides the rest.
func (h *Handler) writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrDrawAgainstBye):
		respond.WriteError(w, http.StatusBadRequest, "DRAW_AGAINST_BYE", err.Error())
	case errors.Is(err, store.ErrUnknownPlayer):
		respond.WriteError(w, http.StatusNotFound, "UNKNOWN_PLAYER", "Match references a player that is not registered")
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write
	default:
		h.logger.Error("Store operation failed", "op", op, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to "+op)
	}
}
