// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

/*
Package api serves recommendations over HTTP.

Routes:

	GET /api/v1/recommendations/{mode}/{user}?limit=k&measure=pearson
	GET /api/v1/popular?orientation=item|user&limit=k
	GET /api/v1/health/live
	GET /api/v1/health/ready
	GET /metrics

Every JSON response uses the APIResponse envelope:

	{"status":"success","data":{...},"metadata":{"timestamp":"...","request_id":"..."}}

Errors map as follows. Invalid parameters return 400 VALIDATION_ERROR or
BAD_REQUEST. A dataset that cannot be read returns 503 DATASET_UNAVAILABLE. A
similarity cache failure or timeout returns 503 SERVICE_UNAVAILABLE. Anything
else returns 500.

Scores are rounded to the configured precision before encoding. An unknown
user is not an error: the response carries the popularity fallback with
"personalized": false, or an empty list when the fallback is disabled.
*/
package api
