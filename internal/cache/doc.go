// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

// Package cache provides a generic in-memory LRU used to memoize ranked
// recommendation lists. Rating datasets are immutable once loaded, so entries
// never go stale; the TTL exists for callers that reload data.
package cache
