// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package store

import (
	"fmt"

	"github.com/tomtom215/ratingsrec/internal/recommend"
)

// Conventional id column names of the dataset files.
const (
	ItemColumn = "item"
	UserColumn = "user"
)

// IDColumn returns the conventional id column for an orientation.
func IDColumn(o recommend.Orientation) string {
	if o == recommend.UserOriented {
		return UserColumn
	}
	return ItemColumn
}

// LoadRatingMatrix reads a dataset file into a rating matrix.
func LoadRatingMatrix(path string, o recommend.Orientation) (*recommend.RatingMatrix, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	return RatingMatrixFromTable(t, o)
}

// RatingMatrixFromTable converts a table to a rating matrix.
//
// The id column is "item" for item-oriented and "user" for user-oriented tables,
// falling back to the first column. Every other column is a counterpart id.
// Empty cells become Unrated; any other non-numeric cell is a StoreError.
func RatingMatrixFromTable(t *Table, o recommend.Orientation) (*recommend.RatingMatrix, error) {
	headers := t.Headers()
	idCol := 0
	if i, ok := t.columns[IDColumn(o)]; ok {
		idCol = i
	}

	rows := make([]recommend.RatingRow, 0, t.Len())
	for n, cells := range t.Rows() {
		id := cells[idCol]
		v := recommend.NewRatingVector(len(headers) - 1)
		for i, cell := range cells {
			if i == idCol {
				continue
			}
			r, err := recommend.ParseRating(cell)
			if err != nil {
				return nil, &recommend.StoreError{
					Op:   "parse",
					Path: t.Path(),
					Err:  fmt.Errorf("row %d (%s) column %q: %w", n+1, id, headers[i], err),
				}
			}
			v.Set(headers[i], r)
		}
		rows = append(rows, recommend.RatingRow{ID: id, Ratings: v})
	}

	m, err := recommend.NewRatingMatrix(o, rows)
	if err != nil {
		return nil, &recommend.StoreError{Op: "parse", Path: t.Path(), Err: err}
	}
	return m, nil
}

// TableFromRatingMatrix lays a matrix out as a table at path without saving it.
// Keys a row does not hold become empty cells.
func TableFromRatingMatrix(path string, m *recommend.RatingMatrix) (*Table, error) {
	idColumn := IDColumn(m.Orientation())
	columns := m.Columns()

	t, err := newTable(path, append([]string{idColumn}, columns...))
	if err != nil {
		return nil, &recommend.StoreError{Op: "create", Path: path, Err: err}
	}

	for _, row := range m.Rows() {
		cells := make([]string, 0, len(columns)+1)
		cells = append(cells, row.ID)
		for _, c := range columns {
			r, _ := row.Ratings.Get(c)
			cells = append(cells, r.String())
		}
		t.rows = append(t.rows, cells)
	}
	return t, nil
}

// SaveRatingMatrix writes m to path.
func SaveRatingMatrix(path string, m *recommend.RatingMatrix) error {
	t, err := TableFromRatingMatrix(path, m)
	if err != nil {
		return err
	}
	return t.Save()
}
