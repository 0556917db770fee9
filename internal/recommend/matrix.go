// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package recommend

// IDTable interns string ids into dense integers.
type IDTable struct {
	ids   []string
	index map[string]int
}

// NewIDTable creates an empty table.
func NewIDTable() *IDTable {
	return &IDTable{index: make(map[string]int)}
}

// Intern returns the index for id, assigning the next free index if needed.
func (t *IDTable) Intern(id string) int {
	if i, ok := t.index[id]; ok {
		return i
	}
	i := len(t.ids)
	t.ids = append(t.ids, id)
	t.index[id] = i
	return i
}

// Lookup returns the index for id.
func (t *IDTable) Lookup(id string) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

// ID returns the id at index i.
func (t *IDTable) ID(i int) string {
	return t.ids[i]
}

// Len returns the number of interned ids.
func (t *IDTable) Len() int {
	return len(t.ids)
}

// Neighbor is a similar id and its coefficient.
type Neighbor struct {
	ID         string
	Similarity float64
}

// SimilarityPair is one flattened matrix entry.
type SimilarityPair struct {
	Item1      string  `json:"item1"`
	Item2      string  `json:"item2"`
	Similarity float64 `json:"similarity"`
}

type neighborEntry struct {
	index      int
	similarity float64
}

type pairKey struct {
	from, to int
}

// SimilarityMatrix maps id1 -> id2 -> coefficient.
// Ids are interned; each row keeps its neighbors in insertion order and
// Pairs returns entries in the order they were first set.
type SimilarityMatrix struct {
	ids   *IDTable
	rows  [][]neighborEntry
	pos   map[pairKey]int
	order []pairKey
}

// NewSimilarityMatrix creates an empty matrix.
func NewSimilarityMatrix() *SimilarityMatrix {
	return &SimilarityMatrix{
		ids: NewIDTable(),
		pos: make(map[pairKey]int),
	}
}

// Set stores the coefficient for (id1, id2). Setting an existing pair overwrites it.
func (m *SimilarityMatrix) Set(id1, id2 string, similarity float64) {
	from := m.intern(id1)
	to := m.intern(id2)
	key := pairKey{from, to}
	if i, ok := m.pos[key]; ok {
		m.rows[from][i].similarity = similarity
		return
	}
	m.pos[key] = len(m.rows[from])
	m.rows[from] = append(m.rows[from], neighborEntry{index: to, similarity: similarity})
	m.order = append(m.order, key)
}

func (m *SimilarityMatrix) intern(id string) int {
	i := m.ids.Intern(id)
	for len(m.rows) <= i {
		m.rows = append(m.rows, nil)
	}
	return i
}

// Get returns the coefficient stored for (id1, id2).
func (m *SimilarityMatrix) Get(id1, id2 string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	from, ok := m.ids.Lookup(id1)
	if !ok {
		return 0, false
	}
	to, ok := m.ids.Lookup(id2)
	if !ok {
		return 0, false
	}
	i, ok := m.pos[pairKey{from, to}]
	if !ok {
		return 0, false
	}
	return m.rows[from][i].similarity, true
}

// Neighbors returns the neighbors of id in insertion order.
func (m *SimilarityMatrix) Neighbors(id string) []Neighbor {
	if m == nil {
		return nil
	}
	from, ok := m.ids.Lookup(id)
	if !ok {
		return nil
	}
	row := m.rows[from]
	out := make([]Neighbor, len(row))
	for i, n := range row {
		out[i] = Neighbor{ID: m.ids.ID(n.index), Similarity: n.similarity}
	}
	return out
}

// Pairs flattens the matrix to (item1, item2, similarity) records.
func (m *SimilarityMatrix) Pairs() []SimilarityPair {
	if m == nil {
		return nil
	}
	out := make([]SimilarityPair, len(m.order))
	for i, k := range m.order {
		out[i] = SimilarityPair{
			Item1:      m.ids.ID(k.from),
			Item2:      m.ids.ID(k.to),
			Similarity: m.rows[k.from][m.pos[k]].similarity,
		}
	}
	return out
}

// Len returns the number of stored pairs.
func (m *SimilarityMatrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// SimilarityMatrixFromPairs rebuilds a matrix from flattened records.
func SimilarityMatrixFromPairs(pairs []SimilarityPair) *SimilarityMatrix {
	m := NewSimilarityMatrix()
	for _, p := range pairs {
		m.Set(p.Item1, p.Item2, p.Similarity)
	}
	return m
}
