package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jimbobirecode/streamsong-dashboard/internal/api/respond"
	"github.com/jimbobirecode/streamsong-dashboard/internal/cache"
	"github.com/jimbobirecode/streamsong-dashboard/internal/journey"
)

// kindParam parses the {kind} URL parameter.
func kindParam(r *http.Request) (journey.Kind, error) {
	return journey.ParseKind(chi.URLParam(r, "kind"))
}

// asOfParam parses an optional ?date=YYYY-MM-DD evaluation date.
func asOfParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse(time.DateOnly, raw)
}

// JourneyPreview runs a dry-run batch and returns the report, including the
// template fields that would be sent per booking.
// @Summary Preview a journey batch
// @Description Dry-run selection and field rendering for a campaign. Never contacts SendGrid or mutates markers.
// @Tags journey
// @Produce json
// @Param kind path string true "Campaign kind" Enums(pre-arrival, post-play)
// @Param club query string false "Restrict to one club"
// @Param date query string false "Evaluation date (YYYY-MM-DD), default today"
// @Success 200 {object} journey.BatchReport
// @Failure 400 {object} respond.ErrorResponse
// @Router /journey/{kind}/preview [get]
func (h *Handler) JourneyPreview(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "UNKNOWN_KIND", err.Error())
		return
	}
	asOf, err := asOfParam(r)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_DATE", err.Error())
		return
	}
	club := r.URL.Query().Get("club")

	cacheKey := fmt.Sprintf("preview:%s:%s:%s", kind, asOf.Format(time.DateOnly), club)
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLPreview, true)
		return
	}

	report, err := h.engine.ProcessBatch(r.Context(), kind, asOf, club, true)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "PREVIEW_FAILED", err.Error())
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", err.Error())
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLPreview)
	respond.WriteJSON(w, data, etag, cache.TTLPreview, false)
}

// runRequest is the POST body for JourneyRun.
type runRequest struct {
	DryRun bool   `json:"dry_run"`
	Club   string `json:"club"`
	Date   string `json:"date"` // YYYY-MM-DD, default today
}

// JourneyRun triggers one campaign batch.
// @Summary Run a journey batch
// @Description Selects due bookings and dispatches emails. With dry_run no email is sent and no marker is written.
// @Tags journey
// @Accept json
// @Produce json
// @Param kind path string true "Campaign kind" Enums(pre-arrival, post-play)
// @Param request body runRequest false "Run options"
// @Success 200 {object} journey.BatchReport
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /journey/{kind}/run [post]
func (h *Handler) JourneyRun(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "UNKNOWN_KIND", err.Error())
		return
	}

	var req runRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}
	}

	asOf := time.Now()
	if req.Date != "" {
		if asOf, err = time.Parse(time.DateOnly, req.Date); err != nil {
			respond.WriteError(w, http.StatusBadRequest, "BAD_DATE", err.Error())
			return
		}
	}

	// Configuration problems abort before any booking is touched.
	if !req.DryRun {
		if err := h.cfg.ValidateMail(kind); err != nil {
			respond.WriteError(w, http.StatusServiceUnavailable, "MAIL_NOT_CONFIGURED", err.Error())
			return
		}
	}

	report, err := h.engine.ProcessBatch(r.Context(), kind, asOf, req.Club, req.DryRun)
	if err != nil {
		if errors.Is(err, journey.ErrUnknownKind) {
			respond.WriteError(w, http.StatusBadRequest, "UNKNOWN_KIND", err.Error())
			return
		}
		respond.WriteError(w, http.StatusInternalServerError, "RUN_FAILED", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, report)
}

// campaignStats is one row of the stats response.
type campaignStats struct {
	Kind       journey.Kind `json:"kind"`
	TargetDate string       `json:"target_date"`
	Due        int          `json:"due"`
	Sent       int          `json:"sent"`
}

// JourneyStats reports due/sent counts for both campaigns at a date.
// @Summary Journey campaign stats
// @Tags journey
// @Produce json
// @Param date query string false "Evaluation date (YYYY-MM-DD), default today"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /journey/stats [get]
func (h *Handler) JourneyStats(w http.ResponseWriter, r *http.Request) {
	asOf, err := asOfParam(r)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_DATE", err.Error())
		return
	}

	cacheKey := fmt.Sprintf("stats:%s", asOf.Format(time.DateOnly))
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLStats, true)
		return
	}

	var stats []campaignStats
	for _, c := range h.cfg.Campaigns() {
		target := c.TargetDate(asOf)
		due, sent, err := h.stats.CampaignStats(r.Context(), c.Kind, target)
		if err != nil {
			respond.WriteError(w, http.StatusInternalServerError, "STATS_FAILED", err.Error())
			return
		}
		stats = append(stats, campaignStats{
			Kind:       c.Kind,
			TargetDate: target.Format(time.DateOnly),
			Due:        due,
			Sent:       sent,
		})
	}
	data, err := json.Marshal(map[string]interface{}{
		"as_of":     asOf.Format(time.DateOnly),
		"campaigns": stats,
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", err.Error())
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLStats)
	respond.WriteJSON(w, data, etag, cache.TTLStats, false)
}
