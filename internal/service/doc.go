// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

// Package service composes datasets, the similarity store and both
// recommenders behind one entry point shared by the CLI, the HTTP API and the
// supervisor's cache warm-up service.
//
// Datasets are loaded lazily: a user-based request never reads the item file.
// Item-based requests make the similarity cache ready first, loading the
// persisted matrix when caching is enabled. Every request is recorded in the
// metrics package.
package service
