// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// Warmer makes the item similarity cache ready.
type Warmer interface {
	Warm(ctx context.Context) error
}

// CacheWarmConfig controls the warm-up loop.
type CacheWarmConfig struct {
	// Timeout bounds a single warm attempt. Default: 30m.
	Timeout time.Duration

	// RetryInterval is the wait after a failed attempt. Default: 30s.
	RetryInterval time.Duration
}

// CacheWarmService loads or computes the item similarities at startup so the
// first item-based request does not pay for it. Once the cache is ready the
// service exits permanently.
type CacheWarmService struct {
	warmer Warmer
	config CacheWarmConfig
	logger zerolog.Logger
	name   string
}

// NewCacheWarmService creates the warm-up service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheWarmService(warmer Warmer, cfg CacheWarmConfig, logger zerolog.Logger) *CacheWarmService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 30 * time.Second
	}
	return &CacheWarmService{
		warmer: warmer,
		config: cfg,
		logger: logger.With().Str("service", "cache-warm").Logger(),
		name:   "cache-warm",
	}
}

// Serve retries Warm until it succeeds or ctx is canceled. It returns
// suture.ErrDoNotRestart after a successful warm.
func (s *CacheWarmService) Serve(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		start := time.Now()
		err := s.warm(ctx)
		if err == nil {
			s.logger.Info().
				Int("attempt", attempt).
				Dur("duration", time.Since(start)).
				Msg("item similarity cache ready")
			return suture.ErrDoNotRestart
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.logger.Warn().Err(err).
			Int("attempt", attempt).
			Dur("retry_in", s.config.RetryInterval).
			Msg("item similarity warm-up failed")

		timer := time.NewTimer(s.config.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *CacheWarmService) warm(ctx context.Context) error {
	warmCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	return s.warmer.Warm(warmCtx)
}

// String names the service in supervisor events.
func (s *CacheWarmService) String() string {
	return s.name
}
