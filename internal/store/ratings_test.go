// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tomtom215/ratingsrec/internal/recommend"
)

func TestLoadRatingMatrix(t *testing.T) {
	path := writeFile(t, "users.csv", "user,X,Y,Z\nA,5,3,\nB,4,,2\nC,2,5,4\n")
	m, err := LoadRatingMatrix(path, recommend.UserOriented)
	if err != nil {
		t.Fatalf("LoadRatingMatrix() error = %v", err)
	}
	if m.Len() != 3 || m.Orientation() != recommend.UserOriented {
		t.Fatalf("matrix = %d rows, %s", m.Len(), m.Orientation())
	}

	a, ok := m.Row("A")
	if !ok {
		t.Fatal("row A missing")
	}
	if r, present := a.Get("Z"); !present || r.IsRated() {
		t.Errorf("A[Z] = %+v present=%v, want present Unrated", r, present)
	}
	if r, _ := a.Get("X"); r != recommend.Numeric(5) {
		t.Errorf("A[X] = %+v, want 5", r)
	}
	if _, present := a.Get("user"); present {
		t.Error("id column must not be a counterpart key")
	}

	popular := recommend.PopularItems(m).Rounded(2)
	if !reflect.DeepEqual(popular.IDs(), []string{"Y", "X", "Z"}) || popular[1].Score != 3.67 {
		t.Errorf("PopularItems() = %v", popular)
	}
}

func TestRatingMatrixFromTable_IDColumn(t *testing.T) {
	tests := []struct {
		name    string
		content string
		o       recommend.Orientation
		wantIDs []string
	}{
		{"conventional item column", "item,U1,U2\nI1,1,2\nI2,3,\n", recommend.ItemOriented, []string{"I1", "I2"}},
		{"id column not first", "U1,item\n4,I9\n", recommend.ItemOriented, []string{"I9"}},
		{"falls back to first column", "name,I1\nbob,3\n", recommend.UserOriented, []string{"bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Read(strings.NewReader(tt.content), tt.name)
			if err != nil {
				t.Fatal(err)
			}
			m, err := RatingMatrixFromTable(tbl, tt.o)
			if err != nil {
				t.Fatalf("RatingMatrixFromTable() error = %v", err)
			}
			var ids []string
			for _, row := range m.Rows() {
				ids = append(ids, row.ID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("row ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}

func TestRatingMatrixFromTable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"garbage rating", "user,X\nA,five\n", recommend.ErrInvalidRating},
		{"duplicate row id", "user,X\nA,1\nA,2\n", recommend.ErrDuplicateRowID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRatingMatrix(writeFile(t, "bad.csv", tt.content), recommend.UserOriented)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			var storeErr *recommend.StoreError
			if !errors.As(err, &storeErr) {
				t.Errorf("error %T is not a *recommend.StoreError", err)
			}
		})
	}
}

func TestSaveRatingMatrix_RoundTrip(t *testing.T) {
	src := writeFile(t, "users.csv", "user,X,Y,Z\nA,5,3,\nB,4,,2.5\n")
	users, err := LoadRatingMatrix(src, recommend.UserOriented)
	if err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "items.csv")
	if err := SaveRatingMatrix(dst, users.Transpose()); err != nil {
		t.Fatalf("SaveRatingMatrix() error = %v", err)
	}

	tbl, err := Load(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tbl.Headers(), []string{"item", "A", "B"}) {
		t.Errorf("Headers() = %v", tbl.Headers())
	}
	wantRows := [][]string{{"X", "5", "4"}, {"Y", "3", ""}, {"Z", "", "2.5"}}
	if !reflect.DeepEqual(tbl.Rows(), wantRows) {
		t.Errorf("Rows() = %v, want %v", tbl.Rows(), wantRows)
	}

	items, err := RatingMatrixFromTable(tbl, recommend.ItemOriented)
	if err != nil {
		t.Fatal(err)
	}
	back := items.Transpose()
	for _, row := range users.Rows() {
		got, _ := back.Row(row.ID)
		if !reflect.DeepEqual(got.Entries(), row.Ratings.Entries()) {
			t.Errorf("row %s = %v, want %v", row.ID, got.Entries(), row.Ratings.Entries())
		}
	}
}
