// Package handler provides HTTP handlers for the dashboard API. Handlers
// drive the journey engine directly; there is no extra service layer.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jimbobirecode/streamsong-dashboard/internal/api/respond"
	"github.com/jimbobirecode/streamsong-dashboard/internal/cache"
	"github.com/jimbobirecode/streamsong-dashboard/internal/config"
	"github.com/jimbobirecode/streamsong-dashboard/internal/db"
	"github.com/jimbobirecode/streamsong-dashboard/internal/journey"
)

// StatsStore is the subset of the booking store the stats endpoint needs.
type StatsStore interface {
	CampaignStats(ctx context.Context, kind journey.Kind, playDate time.Time) (due, sent int, err error)
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	engine *journey.Engine
	stats  StatsStore
	pool   *db.Pool
	cache  *cache.Cache
	cfg    *config.Config
}

// New creates a Handler with shared dependencies.
func New(engine *journey.Engine, stats StatsStore, pool *db.Pool, c *cache.Cache, cfg *config.Config) *Handler {
	return &Handler{
		engine: engine,
		stats:  stats,
		pool:   pool,
		cache:  c,
		cfg:    cfg,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Streamsong Journey API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck reports process liveness.
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} respond.ErrorResponse
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "no database configured")
		return
	}
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// HealthCheckCache reports cache statistics.
// @Summary Cache health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.cache.Stats())
}
