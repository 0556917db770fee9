// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

/*
Package services adapts long-running components to suture.Service.

  - HTTPServerService runs the API server and shuts it down on cancellation.
  - CacheWarmService loads or computes item similarities at startup, retrying
    on failure, and exits with suture.ErrDoNotRestart once the cache is ready.

Each wrapper implements String so suture events name the service.
*/
package services
