// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package recommend

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
)

// cell is a test shorthand: nil means Unrated.
type cell *float64

func num(v float64) cell { return &v }

// kv is one counterpart rating in a test row.
type kv struct {
	id string
	r  cell
}

func vec(entries ...kv) *RatingVector {
	v := NewRatingVector(len(entries))
	for _, e := range entries {
		if e.r == nil {
			v.Set(e.id, Unrated)
			continue
		}
		v.Set(e.id, Numeric(*e.r))
	}
	return v
}

func mustMatrix(t *testing.T, o Orientation, rows ...RatingRow) *RatingMatrix {
	t.Helper()
	m, err := NewRatingMatrix(o, rows)
	if err != nil {
		t.Fatalf("NewRatingMatrix() error = %v", err)
	}
	return m
}

// abcUsers is the three-user fixture:
// A:{X=5,Y=3,Z=-} B:{X=4,Y=-,Z=2} C:{X=2,Y=5,Z=4}
func abcUsers(t *testing.T) *RatingMatrix {
	t.Helper()
	return mustMatrix(t, UserOriented,
		RatingRow{ID: "A", Ratings: vec(kv{"X", num(5)}, kv{"Y", num(3)}, kv{"Z", nil})},
		RatingRow{ID: "B", Ratings: vec(kv{"X", num(4)}, kv{"Y", nil}, kv{"Z", num(2)})},
		RatingRow{ID: "C", Ratings: vec(kv{"X", num(2)}, kv{"Y", num(5)}, kv{"Z", num(4)})},
	)
}

// tasteUsers has a target T whose tastes match U1 and U3 and oppose U2.
// T has not rated Z, and X and Z are perfectly correlated across U1..U3.
func tasteUsers(t *testing.T) *RatingMatrix {
	t.Helper()
	return mustMatrix(t, UserOriented,
		RatingRow{ID: "U1", Ratings: vec(kv{"X", num(5)}, kv{"Y", num(1)}, kv{"Z", num(5)})},
		RatingRow{ID: "U2", Ratings: vec(kv{"X", num(1)}, kv{"Y", num(5)}, kv{"Z", num(1)})},
		RatingRow{ID: "U3", Ratings: vec(kv{"X", num(4)}, kv{"Y", num(2)}, kv{"Z", num(4)})},
		RatingRow{ID: "T", Ratings: vec(kv{"X", num(5)}, kv{"Y", num(1)}, kv{"Z", nil})},
	)
}

// randomItems builds a seeded item-oriented matrix with roughly missing share of Unrated cells.
func randomItems(t *testing.T, items, users int, missing float64, seed int64) *RatingMatrix {
	t.Helper()
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic test data
	rows := make([]RatingRow, 0, items)
	for i := 1; i <= items; i++ {
		v := NewRatingVector(users)
		for u := 1; u <= users; u++ {
			id := fmt.Sprintf("User_%d", u)
			if rng.Float64() < missing {
				v.Set(id, Unrated)
				continue
			}
			v.Set(id, Numeric(float64(rng.Intn(5)+1)))
		}
		rows = append(rows, RatingRow{ID: fmt.Sprintf("Item_%d", i), Ratings: v})
	}
	return mustMatrix(t, ItemOriented, rows...)
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func assertList(t *testing.T, got RecommendationList, want RecommendationList) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d recommendations %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i].ID != want[i].ID || !approxEqual(got[i].Score, want[i].Score) {
			t.Errorf("recommendation[%d] = %s:%.6f, want %s:%.6f",
				i, got[i].ID, got[i].Score, want[i].ID, want[i].Score)
		}
	}
}
