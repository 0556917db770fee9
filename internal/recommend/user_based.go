// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package recommend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// UserBasedRecommender predicts ratings from users with positively correlated tastes.
// Similarity is computed against every other user on each call and never persisted.
//
// For a target user u and candidate item i:
// score(u, i) = avg(u) + sum_v (r(v, i) - avg(v)) * sim(u, v) / sum_v sim(u, v)
//
// where v ranges over other users with sim(u, v) > 0 who rated i.
type UserBasedRecommender struct {
	users  *RatingMatrix
	logger zerolog.Logger
}

// NewUserBasedRecommender creates a recommender over user rows.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewUserBasedRecommender(users *RatingMatrix, logger zerolog.Logger) (*UserBasedRecommender, error) {
	if users.Orientation() != UserOriented {
		return nil, fmt.Errorf("%w: user-based recommender needs user rows, got %s", ErrOrientation, users.Orientation())
	}
	return &UserBasedRecommender{
		users:  users,
		logger: logger.With().Str("component", "user_based").Logger(),
	}, nil
}

// Recommendations returns ranked predictions for items user has not rated.
// measure may be empty or "pearson"; any other value returns ErrUnsupportedMeasure.
// An unknown user yields an empty list.
func (r *UserBasedRecommender) Recommendations(ctx context.Context, user string, measure SimilarityMeasure) (RecommendationList, error) {
	if _, err := ParseSimilarityMeasure(string(measure)); err != nil {
		return nil, err
	}

	target, ok := r.users.Row(user)
	if !ok {
		r.logger.Debug().Str("user", user).Msg("user not found in dataset")
		return RecommendationList{}, nil
	}
	avg := target.Mean()

	acc := newAccumulator()
	neighbors := 0
	for _, other := range r.users.Rows() {
		if other.ID == user {
			continue
		}
		if contextDone(ctx) {
			return nil, ctx.Err()
		}

		sim := PearsonCorrelation(target, other.Ratings)
		if sim <= 0 {
			continue
		}
		neighbors++

		otherAvg := other.Ratings.Mean()
		for _, e := range other.Ratings.Entries() {
			rating, ok := e.Rating.Value()
			if !ok || target.Rated(e.ID) {
				continue
			}
			acc.add(e.ID, (rating-otherAvg)*sim, sim)
		}
	}

	recs := acc.rank(avg)
	r.logger.Debug().
		Str("user", user).
		Int("neighbors", neighbors).
		Int("results", len(recs)).
		Msg("user-based recommendations computed")
	return recs, nil
}

// PopularItems ranks items by mean rating across all users.
func (r *UserBasedRecommender) PopularItems() RecommendationList {
	return PopularItems(r.users)
}
