// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tomtom215/ratingsrec/internal/logging"
	"github.com/tomtom215/ratingsrec/internal/recommend"
	"github.com/tomtom215/ratingsrec/internal/service"
	"github.com/tomtom215/ratingsrec/internal/validation"
)

// Recommender is the part of service.Service the handlers use.
type Recommender interface {
	Recommend(ctx context.Context, mode service.Mode, user string, limit int) (service.Result, error)
	Popular(o recommend.Orientation, limit int) (recommend.RecommendationList, error)
	Ready() bool
}

// HandlerConfig holds request defaults.
type HandlerConfig struct {
	DefaultLimit   int
	Precision      int
	RequestTimeout time.Duration
}

// Handler serves the recommendation API.
type Handler struct {
	svc       Recommender
	config    HandlerConfig
	logger    zerolog.Logger
	startTime time.Time
}

// NewHandler creates a handler backed by svc.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(svc Recommender, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Handler{
		svc:       svc,
		config:    cfg,
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
	}
}

// recommendationRequest is validated before the service is called.
type recommendationRequest struct {
	Mode    string `validate:"required,oneof=item user item_based user_based"`
	User    string `validate:"ratingid"`
	Measure string `validate:"measure"`
	Limit   int    `validate:"gte=0,lte=100000"`
}

// recommendationData is the data payload of a recommendation response.
type recommendationData struct {
	User         string                       `json:"user"`
	Mode         service.Mode                 `json:"mode"`
	Personalized bool                         `json:"personalized"`
	Items        recommend.RecommendationList `json:"items"`
}

// Recommendations handles GET /api/v1/recommendations/{mode}/{user}.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, ok := h.limitParam(w, r)
	if !ok {
		return
	}
	req := recommendationRequest{
		Mode:    chi.URLParam(r, "mode"),
		User:    chi.URLParam(r, "user"),
		Measure: r.URL.Query().Get("measure"),
		Limit:   limit,
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}
	mode, err := service.ParseMode(req.Mode)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: err.Error()}, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
	defer cancel()

	res, err := h.svc.Recommend(ctx, mode, req.User, req.Limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("user", req.User).
		Str("mode", string(mode)).
		Bool("personalized", res.Personalized).
		Int("items", len(res.Items)).
		Msg("recommendations served")

	respondSuccess(w, r, start, recommendationData{
		User:         res.User,
		Mode:         res.Mode,
		Personalized: res.Personalized,
		Items:        res.Items.Rounded(h.config.Precision),
	})
}

// Popular handles GET /api/v1/popular?orientation=item|user&limit=k.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, ok := h.limitParam(w, r)
	if !ok {
		return
	}
	orientation := recommend.ItemOriented
	if s := r.URL.Query().Get("orientation"); s != "" {
		o, err := recommend.ParseOrientation(s)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: err.Error()}, nil)
			return
		}
		orientation = o
	}

	items, err := h.svc.Popular(orientation, limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, start, map[string]interface{}{
		"orientation": orientation.String(),
		"items":       items.Rounded(h.config.Precision),
	})
}

// HealthLive handles GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Time{}, map[string]interface{}{
		"status":         "alive",
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /api/v1/health/ready. It answers 503 until the item
// similarity cache is ready.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Ready() {
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    ErrCodeServiceUnavailable,
			Message: "item similarities are not loaded yet",
		}, nil)
		return
	}
	respondSuccess(w, r, time.Time{}, map[string]string{"status": "ready"})
}

// limitParam parses ?limit=, writing a 400 and returning false on garbage.
func (h *Handler) limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return h.config.DefaultLimit, true
	}
	limit, err := strconv.Atoi(s)
	if err != nil || limit < 0 {
		respondError(w, r, http.StatusBadRequest, &APIError{
			Code:    ErrCodeBadRequest,
			Message: "limit must be a non-negative integer",
		}, nil)
		return 0, false
	}
	return limit, true
}

func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondError(w, r, http.StatusBadRequest, &APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}, nil)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var storeErr *recommend.StoreError
	var cacheErr *recommend.CacheError
	switch {
	case errors.Is(err, recommend.ErrUnsupportedMeasure), errors.Is(err, service.ErrUnknownMode):
		respondError(w, r, http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: err.Error()}, nil)
	case errors.As(err, &storeErr):
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    ErrCodeDatasetUnavailable,
			Message: "rating dataset could not be loaded",
		}, err)
	case errors.As(err, &cacheErr), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    ErrCodeServiceUnavailable,
			Message: "item similarities are unavailable",
		}, err)
	default:
		respondError(w, r, http.StatusInternalServerError, &APIError{
			Code:    ErrCodeInternal,
			Message: "failed to generate recommendations",
		}, err)
	}
}
