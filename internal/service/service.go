// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/ratingsrec/internal/cache"
	"github.com/tomtom215/ratingsrec/internal/config"
	"github.com/tomtom215/ratingsrec/internal/metrics"
	"github.com/tomtom215/ratingsrec/internal/recommend"
	"github.com/tomtom215/ratingsrec/internal/store"
)

// Mode selects the recommendation algorithm.
type Mode string

const (
	ModeItem Mode = "item"
	ModeUser Mode = "user"
)

// ErrUnknownMode is returned for a mode other than item or user.
var ErrUnknownMode = errors.New("unknown recommendation mode")

// ParseMode accepts "item", "user", "item_based" and "user_based", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "item", "item_based", "item-based":
		return ModeItem, nil
	case "user", "user_based", "user-based":
		return ModeUser, nil
	default:
		return "", fmt.Errorf("%w: %q (want item or user)", ErrUnknownMode, s)
	}
}

// Orientation returns the dataset orientation the mode reads.
func (m Mode) Orientation() recommend.Orientation {
	if m == ModeUser {
		return recommend.UserOriented
	}
	return recommend.ItemOriented
}

// Options wires datasets and the similarity cache.
type Options struct {
	ItemDataset     string
	UserDataset     string
	CacheEnabled    bool
	CacheBackend    store.Backend
	CachePath       string
	Workers         int
	Measure         recommend.SimilarityMeasure
	PopularFallback bool

	// ResultCacheSize memoizes the ranked lists of that many users per
	// service. 0 disables memoization.
	ResultCacheSize int
}

// OptionsFromConfig maps the loaded configuration to Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ItemDataset:     cfg.Dataset.ItemPath,
		UserDataset:     cfg.Dataset.UserPath,
		CacheEnabled:    cfg.Cache.Enabled,
		CacheBackend:    store.Backend(cfg.Cache.Backend),
		CachePath:       cfg.Cache.Path,
		Workers:         cfg.Cache.Workers,
		Measure:         recommend.SimilarityMeasure(cfg.Recommend.Measure),
		PopularFallback: cfg.Recommend.PopularFallback,
		ResultCacheSize: cfg.Recommend.ResultCacheSize,
	}
}

// Result is one answered recommendation request. Personalized is false when
// Items holds the popularity fallback.
type Result struct {
	User         string                       `json:"user"`
	Mode         Mode                         `json:"mode"`
	Personalized bool                         `json:"personalized"`
	Items        recommend.RecommendationList `json:"items"`
}

// Service loads rating files on first use and answers recommendation and
// popularity requests for both modes. It is safe for concurrent use.
type Service struct {
	opts   Options
	logger zerolog.Logger

	warmMu sync.Mutex

	mu         sync.Mutex
	itemRec    *recommend.ItemBasedRecommender
	userRec    *recommend.UserBasedRecommender
	cacheStore store.SimilarityStore

	results *cache.LRU[recommend.RecommendationList]
}

// New creates a service. No file is read until the first request or Warm.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(opts Options, logger zerolog.Logger) *Service {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.CacheBackend == "" {
		opts.CacheBackend = store.BackendCSV
	}
	s := &Service{
		opts:   opts,
		logger: logger.With().Str("component", "recommend_service").Logger(),
	}
	if opts.ResultCacheSize > 0 {
		s.results = cache.NewLRU[recommend.RecommendationList](opts.ResultCacheSize, 0)
	}
	return s
}

// Warm loads the item dataset and makes the item similarity cache ready,
// from the persisted store when caching is enabled.
func (s *Service) Warm(ctx context.Context) error {
	rec, err := s.itemRecommender()
	if err != nil {
		return err
	}
	return s.warmItems(ctx, rec)
}

func (s *Service) warmItems(ctx context.Context, rec *recommend.ItemBasedRecommender) error {
	s.warmMu.Lock()
	defer s.warmMu.Unlock()
	if rec.Cache().Ready() {
		return nil
	}

	start := time.Now()
	if !s.opts.CacheEnabled {
		if err := rec.EnsureItemSimilarities(ctx); err != nil {
			metrics.RecordCacheOutcome("none", metrics.OutcomeError)
			return err
		}
		metrics.RecordCacheOutcome("none", string(recommend.CacheComputed))
		metrics.RecordSimilarityCompute(time.Since(start), rec.Cache().Matrix().Len())
		return nil
	}

	st, err := s.similarityStore()
	if err != nil {
		return err
	}
	backend := string(s.opts.CacheBackend)
	outcome, err := rec.LoadItemSimilarities(ctx, st)
	if err != nil {
		metrics.RecordCacheOutcome(backend, metrics.OutcomeError)
		return err
	}
	metrics.RecordCacheOutcome(backend, string(outcome))
	if outcome == recommend.CacheComputed {
		metrics.RecordSimilarityCompute(time.Since(start), rec.Cache().Matrix().Len())
	} else {
		metrics.SimilarityPairs.Set(float64(rec.Cache().Matrix().Len()))
	}
	return nil
}

// Ready reports whether item-based requests can be answered without computing.
func (s *Service) Ready() bool {
	s.mu.Lock()
	rec := s.itemRec
	s.mu.Unlock()
	return rec != nil && rec.Cache().Ready()
}

// Recommend answers a request for user in mode. With PopularFallback set, an
// empty personalized list is replaced by the popularity ranking of the same
// dataset. limit <= 0 returns every item.
func (s *Service) Recommend(ctx context.Context, mode Mode, user string, limit int) (Result, error) {
	start := time.Now()
	res := Result{User: user, Mode: mode}

	items, popular, err := s.personalized(ctx, mode, user)
	if err != nil {
		metrics.RecordRecommendation(string(mode), metrics.OutcomeError, 0, time.Since(start))
		return Result{}, err
	}

	outcome := metrics.OutcomePersonalized
	switch {
	case len(items) > 0:
		res.Personalized = true
		res.Items = items.Top(limit)
	case s.opts.PopularFallback:
		outcome = metrics.OutcomeFallback
		res.Items = popular().Top(limit)
	default:
		outcome = metrics.OutcomeEmpty
		res.Items = recommend.RecommendationList{}
	}

	metrics.RecordRecommendation(string(mode), outcome, len(res.Items), time.Since(start))
	s.logger.Debug().
		Str("user", user).
		Str("mode", string(mode)).
		Str("outcome", outcome).
		Int("items", len(res.Items)).
		Dur("duration", time.Since(start)).
		Msg("recommendation served")
	return res, nil
}

func (s *Service) personalized(ctx context.Context, mode Mode, user string) (recommend.RecommendationList, func() recommend.RecommendationList, error) {
	switch mode {
	case ModeItem:
		rec, err := s.itemRecommender()
		if err != nil {
			return nil, nil, err
		}
		if list, ok := s.cachedList(mode, user); ok {
			return list, rec.PopularItems, nil
		}
		if err := s.warmItems(ctx, rec); err != nil {
			return nil, nil, err
		}
		list, err := rec.Recommendations(ctx, user)
		if err == nil {
			s.storeList(mode, user, list)
		}
		return list, rec.PopularItems, err
	case ModeUser:
		rec, err := s.userRecommender()
		if err != nil {
			return nil, nil, err
		}
		if list, ok := s.cachedList(mode, user); ok {
			return list, rec.PopularItems, nil
		}
		list, err := rec.Recommendations(ctx, user, s.opts.Measure)
		if err == nil {
			s.storeList(mode, user, list)
		}
		return list, rec.PopularItems, err
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func resultKey(mode Mode, user string) string {
	return string(mode) + "\x00" + user
}

func (s *Service) cachedList(mode Mode, user string) (recommend.RecommendationList, bool) {
	if s.results == nil {
		return nil, false
	}
	list, ok := s.results.Get(resultKey(mode, user))
	metrics.RecordResultCacheLookup(string(mode), ok)
	return list, ok
}

func (s *Service) storeList(mode Mode, user string, list recommend.RecommendationList) {
	if s.results != nil {
		s.results.Add(resultKey(mode, user), list)
	}
}

// Popular ranks items by mean rating using the dataset of the given orientation.
func (s *Service) Popular(o recommend.Orientation, limit int) (recommend.RecommendationList, error) {
	if o == recommend.UserOriented {
		rec, err := s.userRecommender()
		if err != nil {
			return nil, err
		}
		return rec.PopularItems().Top(limit), nil
	}
	rec, err := s.itemRecommender()
	if err != nil {
		return nil, err
	}
	return rec.PopularItems().Top(limit), nil
}

// Close releases the similarity store.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cacheStore == nil {
		return nil
	}
	err := s.cacheStore.Close()
	s.cacheStore = nil
	return err
}

func (s *Service) itemRecommender() (*recommend.ItemBasedRecommender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.itemRec != nil {
		return s.itemRec, nil
	}

	items, err := s.loadDataset(s.opts.ItemDataset, recommend.ItemOriented)
	if err != nil {
		return nil, err
	}
	sims := recommend.NewItemSimilarityCache(recommend.CacheConfig{Workers: s.opts.Workers}, s.logger)
	rec, err := recommend.NewItemBasedRecommender(items, sims, s.logger)
	if err != nil {
		return nil, err
	}
	s.itemRec = rec
	return rec, nil
}

func (s *Service) userRecommender() (*recommend.UserBasedRecommender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userRec != nil {
		return s.userRec, nil
	}

	users, err := s.loadDataset(s.opts.UserDataset, recommend.UserOriented)
	if err != nil {
		return nil, err
	}
	rec, err := recommend.NewUserBasedRecommender(users, s.logger)
	if err != nil {
		return nil, err
	}
	s.userRec = rec
	return rec, nil
}

func (s *Service) similarityStore() (store.SimilarityStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cacheStore != nil {
		return s.cacheStore, nil
	}
	st, err := store.OpenSimilarityStore(s.opts.CacheBackend, s.opts.CachePath)
	if err != nil {
		return nil, err
	}
	s.cacheStore = st
	return st, nil
}

func (s *Service) loadDataset(path string, o recommend.Orientation) (*recommend.RatingMatrix, error) {
	start := time.Now()
	m, err := store.LoadRatingMatrix(path, o)
	if err != nil {
		metrics.RecordDatasetLoad(o.String(), 0, err)
		return nil, err
	}
	metrics.RecordDatasetLoad(o.String(), m.Len(), nil)
	s.logger.Info().
		Str("path", path).
		Str("orientation", o.String()).
		Int("rows", m.Len()).
		Int("columns", len(m.Columns())).
		Dur("duration", time.Since(start)).
		Msg("rating dataset loaded")
	return m, nil
}
