// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

// Package metrics defines the Prometheus collectors for ratingsrec.
//
// Collectors are registered on the default registry with promauto and exposed
// by the HTTP server at /metrics. The recommend package stays free of metrics
// imports; callers record results with the Record* helpers:
//
//	start := time.Now()
//	outcome, err := rec.LoadItemSimilarities(ctx, store)
//	metrics.RecordCacheOutcome(backend, outcome.String())
//
// Metric families:
//   - ratingsrec_similarity_*: matrix computation time, pair count, cache outcomes
//   - ratingsrec_recommendation_*: requests by mode and outcome, latency, list size
//   - ratingsrec_dataset_*: rows loaded and load failures
//   - ratingsrec_api_*: HTTP requests by chi route pattern
package metrics
