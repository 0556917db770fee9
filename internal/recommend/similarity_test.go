// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package recommend

import (
	"errors"
	"testing"
)

func TestPearsonCorrelation(t *testing.T) {
	tests := []struct {
		name string
		a, b *RatingVector
		want float64
	}{
		{
			name: "no co-rated keys",
			a:    vec(kv{"x", num(1)}, kv{"y", num(2)}),
			b:    vec(kv{"z", num(3)}),
			want: 0,
		},
		{
			name: "single co-rated key",
			a:    vec(kv{"x", num(5)}, kv{"y", num(2)}),
			b:    vec(kv{"x", num(1)}, kv{"z", num(4)}),
			want: 0,
		},
		{
			name: "zero variance",
			a:    vec(kv{"x", num(3)}, kv{"y", num(3)}, kv{"z", num(3)}),
			b:    vec(kv{"x", num(1)}, kv{"y", num(4)}, kv{"z", num(5)}),
			want: 0,
		},
		{
			name: "perfect negative",
			a:    vec(kv{"x", num(5)}, kv{"y", num(3)}),
			b:    vec(kv{"x", num(2)}, kv{"y", num(5)}),
			want: -1,
		},
		{
			name: "unrated keys excluded from co-rated set",
			a:    vec(kv{"x", num(4)}, kv{"y", num(2)}, kv{"z", nil}),
			b:    vec(kv{"x", num(2)}, kv{"y", num(1)}, kv{"z", num(5)}),
			want: 1,
		},
		{
			name: "partial correlation",
			a:    vec(kv{"x", num(1)}, kv{"y", num(2)}, kv{"z", num(3)}),
			b:    vec(kv{"x", num(1)}, kv{"y", num(3)}, kv{"z", num(2)}),
			want: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PearsonCorrelation(tt.a, tt.b)
			if !approxEqual(got, tt.want) {
				t.Errorf("PearsonCorrelation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPearsonCorrelation_DegenerateIsExactlyZero(t *testing.T) {
	a := vec(kv{"x", num(4.2)}, kv{"y", num(1)})
	b := vec(kv{"x", num(2.7)}, kv{"w", num(3)})
	if got := PearsonCorrelation(a, b); got != 0 {
		t.Errorf("one co-rated key = %v, want exactly 0", got)
	}
	if got := PearsonCorrelation(NewRatingVector(0), b); got != 0 {
		t.Errorf("empty vector = %v, want exactly 0", got)
	}
}

func TestPearsonCorrelation_Symmetric(t *testing.T) {
	items := randomItems(t, 40, 60, 0.4, 7)
	rows := items.Rows()
	for i := range rows {
		for j := range rows {
			ab := PearsonCorrelation(rows[i].Ratings, rows[j].Ratings)
			ba := PearsonCorrelation(rows[j].Ratings, rows[i].Ratings)
			if ab != ba {
				t.Fatalf("sim(%s,%s)=%v != sim(%s,%s)=%v",
					rows[i].ID, rows[j].ID, ab, rows[j].ID, rows[i].ID, ba)
			}
		}
	}
}

func TestPearsonCorrelation_SelfSimilarityIsOne(t *testing.T) {
	items := randomItems(t, 30, 50, 0.3, 11)
	for _, row := range items.Rows() {
		values := row.Ratings.Numeric()
		if len(values) < 2 {
			continue
		}
		varies := false
		for _, v := range values[1:] {
			if v != values[0] {
				varies = true
				break
			}
		}
		if !varies {
			continue
		}
		if got := PearsonCorrelation(row.Ratings, row.Ratings); got != 1.0 {
			t.Errorf("self similarity of %s = %v, want exactly 1", row.ID, got)
		}
	}
}

func TestParseSimilarityMeasure(t *testing.T) {
	for _, s := range []string{"", "pearson", "Pearson "} {
		if m, err := ParseSimilarityMeasure(s); err != nil || m != MeasurePearson {
			t.Errorf("ParseSimilarityMeasure(%q) = %q, %v", s, m, err)
		}
	}
	for _, s := range []string{"cosine", "jaccard", "euclidean"} {
		if _, err := ParseSimilarityMeasure(s); !errors.Is(err, ErrUnsupportedMeasure) {
			t.Errorf("ParseSimilarityMeasure(%q) error = %v, want ErrUnsupportedMeasure", s, err)
		}
	}
}
