// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package recommend

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ItemBasedRecommender predicts ratings from the similarity of items the user already rated.
//
// For a target user u with mean rating avg(u) and candidate item j:
// score(u, j) = avg(u) + sum_i (r(u, i) - avg(u)) * sim(i, j) / sum_i sim(i, j)
//
// where i ranges over items u rated and sim(i, j) > 0 comes from the similarity cache.
type ItemBasedRecommender struct {
	items  *RatingMatrix
	cache  *ItemSimilarityCache
	logger zerolog.Logger

	usersOnce sync.Once
	users     *RatingMatrix
}

// NewItemBasedRecommender creates a recommender over item rows.
// A nil cache gets a sequential cache of its own.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewItemBasedRecommender(items *RatingMatrix, cache *ItemSimilarityCache, logger zerolog.Logger) (*ItemBasedRecommender, error) {
	if items.Orientation() != ItemOriented {
		return nil, fmt.Errorf("%w: item-based recommender needs item rows, got %s", ErrOrientation, items.Orientation())
	}
	if cache == nil {
		cache = NewItemSimilarityCache(DefaultCacheConfig(), logger)
	}
	return &ItemBasedRecommender{
		items:  items,
		cache:  cache,
		logger: logger.With().Str("component", "item_based").Logger(),
	}, nil
}

// Cache returns the similarity cache.
func (r *ItemBasedRecommender) Cache() *ItemSimilarityCache {
	return r.cache
}

// LoadItemSimilarities loads the similarity matrix from store, or computes and saves it.
func (r *ItemBasedRecommender) LoadItemSimilarities(ctx context.Context, store SimilarityStore) (CacheOutcome, error) {
	return r.cache.LoadOrCompute(ctx, store, r.items)
}

// EnsureItemSimilarities computes the similarity matrix without a store unless
// the cache is already ready.
func (r *ItemBasedRecommender) EnsureItemSimilarities(ctx context.Context) error {
	return r.cache.EnsureReady(ctx, r.items)
}

// Recommendations returns ranked predictions for items user has not rated.
// An unknown user yields an empty list.
func (r *ItemBasedRecommender) Recommendations(ctx context.Context, user string) (RecommendationList, error) {
	if !r.userExists(user) {
		r.logger.Debug().Str("user", user).Msg("user not found in dataset")
		return RecommendationList{}, nil
	}

	if err := r.cache.EnsureReady(ctx, r.items); err != nil {
		return nil, err
	}
	sims := r.cache.Matrix()

	ratings := r.userRatings(user)
	avg := ratings.Mean()

	acc := newAccumulator()
	for _, e := range ratings.Entries() {
		rating, ok := e.Rating.Value()
		if !ok {
			continue
		}
		for _, n := range sims.Neighbors(e.ID) {
			if ratings.Rated(n.ID) {
				continue
			}
			acc.add(n.ID, (rating-avg)*n.Similarity, n.Similarity)
		}
	}

	recs := acc.rank(avg)
	r.logger.Debug().
		Str("user", user).
		Int("rated", ratings.Len()).
		Int("results", len(recs)).
		Msg("item-based recommendations computed")
	return recs, nil
}

// PopularItems ranks items by mean rating over the user-oriented view.
func (r *ItemBasedRecommender) PopularItems() RecommendationList {
	r.usersOnce.Do(func() {
		r.users = r.items.Transpose()
	})
	return PopularItems(r.users)
}

// userExists reports whether user is a counterpart key of any item row.
func (r *ItemBasedRecommender) userExists(user string) bool {
	for _, row := range r.items.Rows() {
		if _, ok := row.Ratings.Get(user); ok {
			return true
		}
	}
	return false
}

// userRatings collects the numeric ratings user gave, keyed by item, in item order.
func (r *ItemBasedRecommender) userRatings(user string) *RatingVector {
	v := NewRatingVector(r.items.Len())
	for _, row := range r.items.Rows() {
		if rating, ok := row.Ratings.Get(user); ok && rating.IsRated() {
			v.Set(row.ID, rating)
		}
	}
	return v
}
