// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// SimilarityMeasure names a similarity function.
type SimilarityMeasure string

// MeasurePearson is the only supported measure.
const MeasurePearson SimilarityMeasure = "pearson"

// ParseSimilarityMeasure returns MeasurePearson for "" or "pearson" and
// ErrUnsupportedMeasure for anything else.
func ParseSimilarityMeasure(s string) (SimilarityMeasure, error) {
	switch SimilarityMeasure(strings.ToLower(strings.TrimSpace(s))) {
	case "", MeasurePearson:
		return MeasurePearson, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMeasure, s)
	}
}

// PearsonCorrelation returns the Pearson correlation of a and b over their
// co-rated set: keys present in both vectors with a numeric rating in each.
//
// It returns 0 when the co-rated set is empty or either side has zero variance.
// The result is not clamped to [-1, 1]. Co-rated keys are visited in sorted
// order so the result is bitwise identical for (a, b) and (b, a).
func PearsonCorrelation(a, b *RatingVector) float64 {
	keys := make([]string, 0, min(a.Len(), b.Len()))
	for _, e := range a.Entries() {
		if e.Rating.IsRated() && b.Rated(e.ID) {
			keys = append(keys, e.ID)
		}
	}
	sort.Strings(keys)

	xs := make([]float64, len(keys))
	ys := make([]float64, len(keys))
	for i, k := range keys {
		ra, _ := a.Get(k)
		rb, _ := b.Get(k)
		xs[i], _ = ra.Value()
		ys[i], _ = rb.Value()
	}
	return pearson(xs, ys)
}

// pearson computes the coefficient for two aligned samples.
//
// numerator   = sum(xy) - sum(x)sum(y)/n
// denominator = sqrt((sum(x^2) - sum(x)^2/n) * (sum(y^2) - sum(y)^2/n))
func pearson(xs, ys []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	n := float64(len(xs))

	sum1 := floats.Sum(xs)
	sum2 := floats.Sum(ys)
	sum1Sq := floats.Dot(xs, xs)
	sum2Sq := floats.Dot(ys, ys)
	pSum := floats.Dot(xs, ys)

	num := pSum - sum1*sum2/n
	den := math.Sqrt((sum1Sq - sum1*sum1/n) * (sum2Sq - sum2*sum2/n))
	if den == 0 || math.IsNaN(den) {
		return 0
	}
	return num / den
}
