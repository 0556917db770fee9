// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package recommend

import (
	"reflect"
	"testing"
)

func TestIDTable(t *testing.T) {
	ids := NewIDTable()
	if got := ids.Intern("a"); got != 0 {
		t.Errorf("Intern(a) = %d, want 0", got)
	}
	if got := ids.Intern("b"); got != 1 {
		t.Errorf("Intern(b) = %d, want 1", got)
	}
	if got := ids.Intern("a"); got != 0 {
		t.Errorf("second Intern(a) = %d, want 0", got)
	}
	if ids.Len() != 2 || ids.ID(1) != "b" {
		t.Errorf("Len()=%d ID(1)=%q", ids.Len(), ids.ID(1))
	}
	if _, ok := ids.Lookup("c"); ok {
		t.Error("Lookup(c) should miss")
	}
}

func TestSimilarityMatrix(t *testing.T) {
	m := NewSimilarityMatrix()
	m.Set("i1", "i2", 0.5)
	m.Set("i2", "i1", 0.5)
	m.Set("i1", "i3", 0.25)
	m.Set("i1", "i2", 0.75)

	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
	if got, ok := m.Get("i1", "i2"); !ok || got != 0.75 {
		t.Errorf("Get(i1,i2) = %v,%v want 0.75 (overwritten)", got, ok)
	}
	if _, ok := m.Get("i3", "i1"); ok {
		t.Error("Get(i3,i1) should miss: direction matters")
	}
	if _, ok := m.Get("nope", "i1"); ok {
		t.Error("Get on unknown id should miss")
	}

	wantNeighbors := []Neighbor{{"i2", 0.75}, {"i3", 0.25}}
	if got := m.Neighbors("i1"); !reflect.DeepEqual(got, wantNeighbors) {
		t.Errorf("Neighbors(i1) = %v, want %v", got, wantNeighbors)
	}
	if got := m.Neighbors("i3"); len(got) != 0 {
		t.Errorf("Neighbors(i3) = %v, want none", got)
	}

	wantPairs := []SimilarityPair{
		{"i1", "i2", 0.75},
		{"i2", "i1", 0.5},
		{"i1", "i3", 0.25},
	}
	if got := m.Pairs(); !reflect.DeepEqual(got, wantPairs) {
		t.Errorf("Pairs() = %v, want %v", got, wantPairs)
	}

	rebuilt := SimilarityMatrixFromPairs(m.Pairs())
	if !reflect.DeepEqual(rebuilt.Pairs(), wantPairs) {
		t.Errorf("rebuilt Pairs() = %v", rebuilt.Pairs())
	}

	var nilMatrix *SimilarityMatrix
	if nilMatrix.Len() != 0 || nilMatrix.Neighbors("i1") != nil {
		t.Error("nil matrix should behave as empty")
	}
}
