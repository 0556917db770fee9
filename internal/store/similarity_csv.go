// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/tomtom215/ratingsrec/internal/recommend"
)

// Similarity file columns.
const (
	Item1Column      = "item1"
	Item2Column      = "item2"
	SimilarityColumn = "similarity"
)

var similarityHeaders = []string{Item1Column, Item2Column, SimilarityColumn}

// CSVSimilarityStore persists a similarity matrix as a three-column CSV file.
type CSVSimilarityStore struct {
	path string
}

// NewCSVSimilarityStore creates a store for the file at path.
func NewCSVSimilarityStore(path string) *CSVSimilarityStore {
	return &CSVSimilarityStore{path: path}
}

// Key returns the file path.
func (s *CSVSimilarityStore) Key() string {
	return s.path
}

// Exists reports whether the file is present.
func (s *CSVSimilarityStore) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, &recommend.StoreError{Op: "stat", Path: s.path, Err: err}
}

// Load reads the matrix. The file must have exactly the item1, item2 and
// similarity columns, and every similarity must be a finite number.
func (s *CSVSimilarityStore) Load(ctx context.Context) (*recommend.SimilarityMatrix, error) {
	t, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	for _, h := range similarityHeaders {
		if !t.HasColumn(h) {
			return nil, &recommend.StoreError{Op: "load", Path: s.path, Err: fmt.Errorf("%w: missing %q", ErrColumnCount, h)}
		}
	}
	if len(t.Headers()) != len(similarityHeaders) {
		return nil, &recommend.StoreError{Op: "load", Path: s.path, Err: fmt.Errorf("%w: got %d columns, want 3", ErrColumnCount, len(t.Headers()))}
	}

	i1, i2, is := t.columns[Item1Column], t.columns[Item2Column], t.columns[SimilarityColumn]
	m := recommend.NewSimilarityMatrix()
	for n, row := range t.Rows() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		sim, err := strconv.ParseFloat(row[is], 64)
		if err != nil || math.IsNaN(sim) || math.IsInf(sim, 0) {
			return nil, &recommend.StoreError{
				Op:   "load",
				Path: s.path,
				Err:  fmt.Errorf("row %d: invalid similarity %q", n+1, row[is]),
			}
		}
		m.Set(row[i1], row[i2], sim)
	}
	return m, nil
}

// Save replaces the file with one row per pair.
func (s *CSVSimilarityStore) Save(ctx context.Context, m *recommend.SimilarityMatrix) error {
	t, err := newTable(s.path, similarityHeaders)
	if err != nil {
		return &recommend.StoreError{Op: "save", Path: s.path, Err: err}
	}
	for _, p := range m.Pairs() {
		t.rows = append(t.rows, []string{p.Item1, p.Item2, strconv.FormatFloat(p.Similarity, 'g', -1, 64)})
	}
	return t.Save()
}

// Close is a no-op.
func (s *CSVSimilarityStore) Close() error {
	return nil
}
