// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

// Package recommend implements memory-based collaborative filtering over an
// explicit ratings matrix.
//
// # Components
//
//   - PearsonCorrelation: similarity of two rating vectors over their co-rated set
//   - ItemSimilarityCache: item x item similarity matrix, computed once or loaded
//     from a SimilarityStore
//   - ItemBasedRecommender: predictions from neighbor items
//   - UserBasedRecommender: predictions from neighbor users, computed per call
//   - PopularItems: mean-rating ranking used as the non-personalized fallback
//
// # Ratings
//
// A Rating is either Numeric or Unrated. Unrated cells are excluded from every
// mean, sum and similarity; they never count as 0. ParseRating rejects cells
// that are neither empty nor a finite number.
//
// # Ordering
//
// RecommendationList is sorted by score descending. Equal scores keep the order
// in which candidates were first accumulated, which follows row order in the
// dataset.
//
// # Usage
//
//	items, err := store.LoadRatingMatrix("datasets/data_item_based.csv", recommend.ItemOriented)
//	if err != nil {
//	    return err
//	}
//	rec, err := recommend.NewItemBasedRecommender(items, nil, logger)
//	if err != nil {
//	    return err
//	}
//	recs, err := rec.Recommendations(ctx, "User_1")
//	if len(recs) == 0 {
//	    recs = rec.PopularItems()
//	}
//
// # Thread Safety
//
// RatingMatrix and SimilarityMatrix are not modified after construction and may be
// shared. ItemSimilarityCache guards its state with a mutex, and LoadOrCompute calls
// for the same store key share a single compute+persist within the process.
package recommend
