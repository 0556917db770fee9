// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

// Package middleware provides HTTP middleware for the ratingsrec API.
//
// Both middlewares have the chi signature func(http.Handler) http.Handler:
//
//	r.Use(middleware.RequestID)
//	r.Use(middleware.PrometheusMetrics)
//
// RequestID must run before any handler that logs through logging.Ctx.
// PrometheusMetrics reads the chi route pattern after the handler returns, so
// it must be installed on a chi router.
package middleware
