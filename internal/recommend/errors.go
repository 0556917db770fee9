// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package recommend

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrInvalidRating is returned for a non-empty cell that is not a finite number.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrUnsupportedMeasure is returned for any similarity measure other than pearson.
	ErrUnsupportedMeasure = errors.New("unsupported similarity measure")

	// ErrDuplicateRowID is returned when two rows of one matrix share an id.
	ErrDuplicateRowID = errors.New("duplicate row id")

	// ErrOrientation is returned when a matrix has the wrong orientation for its consumer.
	ErrOrientation = errors.New("wrong matrix orientation")
)

// StoreError reports a malformed or missing dataset or cache file.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// CacheError reports a similarity cache that could not be computed, read or written.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("similarity cache %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
