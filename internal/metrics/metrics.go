// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation request outcomes.
const (
	OutcomePersonalized = "personalized"
	OutcomeEmpty        = "empty"
	OutcomeFallback     = "fallback"
	OutcomeError        = "error"
)

var (
	// Similarity Metrics
	SimilarityComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ratingsrec_similarity_compute_duration_seconds",
			Help:    "Time spent computing the item similarity matrix",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	SimilarityPairs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratingsrec_similarity_pairs",
			Help: "Number of positive item pairs in the active similarity matrix",
		},
	)

	SimilarityCacheOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratingsrec_similarity_cache_outcomes_total",
			Help: "Similarity cache resolutions by outcome (loaded, computed, shared, error)",
		},
		[]string{"backend", "outcome"},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratingsrec_recommendation_requests_total",
			Help: "Recommendation requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ratingsrec_recommendation_duration_seconds",
			Help:    "Recommendation latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"mode"},
	)

	RecommendationItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ratingsrec_recommendation_items",
			Help:    "Number of items returned per recommendation request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"mode"},
	)

	ResultCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratingsrec_result_cache_lookups_total",
			Help: "Memoized recommendation list lookups by mode and result (hit, miss)",
		},
		[]string{"mode", "result"},
	)

	// Dataset Metrics
	DatasetLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratingsrec_dataset_load_errors_total",
			Help: "Rating file load failures by orientation",
		},
		[]string{"orientation"},
	)

	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ratingsrec_dataset_rows",
			Help: "Rows in the loaded rating matrix by orientation",
		},
		[]string{"orientation"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratingsrec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ratingsrec_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratingsrec_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)
)

// RecordSimilarityCompute records a finished matrix computation.
func RecordSimilarityCompute(duration time.Duration, pairs int) {
	SimilarityComputeDuration.Observe(duration.Seconds())
	SimilarityPairs.Set(float64(pairs))
}

// RecordCacheOutcome counts one similarity cache resolution.
func RecordCacheOutcome(backend, outcome string) {
	SimilarityCacheOutcomes.WithLabelValues(backend, outcome).Inc()
}

// RecordRecommendation records a served recommendation request.
func RecordRecommendation(mode, outcome string, items int, duration time.Duration) {
	RecommendationRequests.WithLabelValues(mode, outcome).Inc()
	RecommendationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	RecommendationItems.WithLabelValues(mode).Observe(float64(items))
}

// RecordResultCacheLookup counts one memoized list lookup.
func RecordResultCacheLookup(mode string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ResultCacheLookups.WithLabelValues(mode, result).Inc()
}

// RecordDatasetLoad records a rating file load. err == nil updates the row gauge.
func RecordDatasetLoad(orientation string, rows int, err error) {
	if err != nil {
		DatasetLoadErrors.WithLabelValues(orientation).Inc()
		return
	}
	DatasetRows.WithLabelValues(orientation).Set(float64(rows))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
