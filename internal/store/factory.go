// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package store

import (
	"fmt"
	"io"

	"github.com/tomtom215/ratingsrec/internal/recommend"
)

// Backend selects a similarity store implementation.
type Backend string

const (
	// BackendCSV stores pairs in a CSV file (default).
	BackendCSV Backend = "csv"

	// BackendBadger stores pairs in a BadgerDB directory.
	BackendBadger Backend = "badger"

	// BackendDuckDB stores pairs in a DuckDB database file.
	BackendDuckDB Backend = "duckdb"
)

// SimilarityStore is a recommend.SimilarityStore that holds resources.
type SimilarityStore interface {
	recommend.SimilarityStore
	io.Closer
}

// OpenSimilarityStore opens the store for backend at path. An empty backend means csv.
func OpenSimilarityStore(backend Backend, path string) (SimilarityStore, error) {
	switch backend {
	case "", BackendCSV:
		return NewCSVSimilarityStore(path), nil
	case BackendBadger:
		return NewBadgerSimilarityStore(path)
	case BackendDuckDB:
		return NewDuckDBSimilarityStore(path)
	default:
		return nil, &recommend.StoreError{Op: "open", Path: path, Err: fmt.Errorf("unknown similarity store backend %q", backend)}
	}
}
