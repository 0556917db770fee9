// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built on first use and shared by the config
// loader, the dataset generator and the HTTP handlers. Field errors are
// translated to readable messages and can be converted to the API error payload.
//
// # Custom Tags
//
//   - ratingid: a user or item id usable as a CSV cell and a URL path segment
//     (non-empty, at most MaxIDLength bytes, no commas, quotes, slashes or
//     control characters)
//   - measure: a similarity measure name; empty or "pearson"
//
// # Usage
//
//	type recommendRequest struct {
//	    User    string `validate:"ratingid"`
//	    Measure string `validate:"measure"`
//	    Limit   int    `validate:"gte=0,lte=1000"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// # Thread Safety
//
// GetValidator and ValidateStruct are safe for concurrent use.
package validation
