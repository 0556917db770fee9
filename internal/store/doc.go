// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

// Package store reads and writes the tabular files the recommenders consume
// and persists item similarity matrices.
//
// # Tables
//
// A Table is a CSV file with a unique header row. Every data row must have one
// cell per header; duplicate headers, short or long rows and empty files are
// load errors. Saves are atomic (temp file + rename).
//
// Dataset files have an id column ("item" or "user") followed by one column per
// counterpart id. Empty cells are Unrated.
//
// # Similarity stores
//
//   - csv: item1,item2,similarity rows (the default cache file format)
//   - badger: one JSON record per pair under sequence keys
//   - duckdb: an item_similarities table ordered by seq
//
// All errors are *recommend.StoreError values.
package store
