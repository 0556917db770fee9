// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package recommend

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// ========== Ratings ==========

// Rating is either a numeric rating or Unrated. The zero value is Unrated.
// Unrated values are excluded from every computation; they are never treated as 0.
type Rating struct {
	value float64
	rated bool
}

// Unrated is the rating of a cell with no value.
var Unrated = Rating{}

// Numeric returns a rated value.
func Numeric(v float64) Rating {
	return Rating{value: v, rated: true}
}

// Value returns the numeric value and whether the rating is set.
func (r Rating) Value() (float64, bool) {
	return r.value, r.rated
}

// IsRated reports whether r holds a numeric value.
func (r Rating) IsRated() bool {
	return r.rated
}

// String renders the rating the way the tabular store stores it.
func (r Rating) String() string {
	if !r.rated {
		return ""
	}
	return strconv.FormatFloat(r.value, 'g', -1, 64)
}

// ParseRating converts a table cell into a Rating.
// An empty cell is Unrated. Non-numeric or non-finite cells return ErrInvalidRating.
func ParseRating(cell string) (Rating, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return Unrated, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Unrated, fmt.Errorf("%w: %q", ErrInvalidRating, cell)
	}
	return Numeric(v), nil
}

// RatingEntry is one counterpart id and its rating.
type RatingEntry struct {
	ID     string
	Rating Rating
}

// RatingVector maps counterpart ids to ratings, preserving insertion order.
// Accumulation order decides tie order in ranked output, so iteration is
// always in the order entries were first set.
type RatingVector struct {
	entries []RatingEntry
	index   map[string]int
}

// NewRatingVector creates an empty vector with room for n entries.
func NewRatingVector(n int) *RatingVector {
	return &RatingVector{
		entries: make([]RatingEntry, 0, n),
		index:   make(map[string]int, n),
	}
}

// Set stores r under id. Setting an existing id overwrites its rating in place.
func (v *RatingVector) Set(id string, r Rating) {
	if i, ok := v.index[id]; ok {
		v.entries[i].Rating = r
		return
	}
	if v.index == nil {
		v.index = make(map[string]int)
	}
	v.index[id] = len(v.entries)
	v.entries = append(v.entries, RatingEntry{ID: id, Rating: r})
}

// Get returns the rating for id and whether the key is present.
// A present key may still hold Unrated.
func (v *RatingVector) Get(id string) (Rating, bool) {
	if v == nil {
		return Unrated, false
	}
	i, ok := v.index[id]
	if !ok {
		return Unrated, false
	}
	return v.entries[i].Rating, true
}

// Rated reports whether id holds a numeric rating.
func (v *RatingVector) Rated(id string) bool {
	r, _ := v.Get(id)
	return r.IsRated()
}

// Len returns the number of keys, rated or not.
func (v *RatingVector) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}

// Entries returns the entries in insertion order. The slice must not be modified.
func (v *RatingVector) Entries() []RatingEntry {
	if v == nil {
		return nil
	}
	return v.entries
}

// Numeric returns the numeric values in insertion order.
func (v *RatingVector) Numeric() []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, 0, len(v.entries))
	for _, e := range v.entries {
		if val, ok := e.Rating.Value(); ok {
			out = append(out, val)
		}
	}
	return out
}

// Mean returns the mean of the numeric ratings, or 0 when there are none.
func (v *RatingVector) Mean() float64 {
	values := v.Numeric()
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// ========== Rating matrix ==========

// Orientation says what a row of a RatingMatrix represents.
type Orientation int

const (
	// ItemOriented rows are items; counterpart keys are users.
	ItemOriented Orientation = iota
	// UserOriented rows are users; counterpart keys are items.
	UserOriented
)

// String returns the orientation name.
func (o Orientation) String() string {
	switch o {
	case ItemOriented:
		return "item"
	case UserOriented:
		return "user"
	default:
		return fmt.Sprintf("orientation(%d)", int(o))
	}
}

// Flip returns the opposite orientation.
func (o Orientation) Flip() Orientation {
	if o == ItemOriented {
		return UserOriented
	}
	return ItemOriented
}

// ParseOrientation parses "item" or "user".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "item":
		return ItemOriented, nil
	case "user":
		return UserOriented, nil
	default:
		return 0, fmt.Errorf("%w: unknown orientation %q", ErrOrientation, s)
	}
}

// RatingRow is a row id and its counterpart ratings.
type RatingRow struct {
	ID      string
	Ratings *RatingVector
}

// RatingMatrix is an ordered, immutable sequence of rating rows with a fixed orientation.
type RatingMatrix struct {
	orientation Orientation
	rows        []RatingRow
	index       map[string]int
}

// NewRatingMatrix builds a matrix from rows. Row ids must be unique.
func NewRatingMatrix(o Orientation, rows []RatingRow) (*RatingMatrix, error) {
	m := &RatingMatrix{
		orientation: o,
		rows:        make([]RatingRow, 0, len(rows)),
		index:       make(map[string]int, len(rows)),
	}
	for _, row := range rows {
		if _, dup := m.index[row.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRowID, row.ID)
		}
		if row.Ratings == nil {
			row.Ratings = NewRatingVector(0)
		}
		m.index[row.ID] = len(m.rows)
		m.rows = append(m.rows, row)
	}
	return m, nil
}

// Orientation returns the matrix orientation.
func (m *RatingMatrix) Orientation() Orientation {
	return m.orientation
}

// Len returns the number of rows.
func (m *RatingMatrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rows)
}

// Rows returns the rows in load order. The slice must not be modified.
func (m *RatingMatrix) Rows() []RatingRow {
	if m == nil {
		return nil
	}
	return m.rows
}

// Row returns the ratings for the row with the exact id.
func (m *RatingMatrix) Row(id string) (*RatingVector, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[id]
	if !ok {
		return nil, false
	}
	return m.rows[i].Ratings, true
}

// Columns returns every counterpart id in first-seen order.
func (m *RatingMatrix) Columns() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range m.rows {
		for _, e := range row.Ratings.Entries() {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			cols = append(cols, e.ID)
		}
	}
	return cols
}

// Transpose returns the opposite-orientation view of m.
// Unrated cells survive the transpose; new rows appear in first-seen column order.
func (m *RatingMatrix) Transpose() *RatingMatrix {
	cols := m.Columns()
	vectors := make(map[string]*RatingVector, len(cols))
	for _, c := range cols {
		vectors[c] = NewRatingVector(m.Len())
	}
	for _, row := range m.Rows() {
		for _, e := range row.Ratings.Entries() {
			vectors[e.ID].Set(row.ID, e.Rating)
		}
	}
	rows := make([]RatingRow, 0, len(cols))
	for _, c := range cols {
		rows = append(rows, RatingRow{ID: c, Ratings: vectors[c]})
	}
	// Column ids are unique by construction, so this cannot fail.
	t, _ := NewRatingMatrix(m.Orientation().Flip(), rows) //nolint:errcheck // ids are unique
	return t
}

// ========== Results ==========

// Recommendation is a predicted score for one id.
type Recommendation struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// RecommendationList is ordered by score descending, stable on ties.
type RecommendationList []Recommendation

// Top returns at most k entries. k <= 0 returns the full list.
func (l RecommendationList) Top(k int) RecommendationList {
	if k <= 0 || k >= len(l) {
		return l
	}
	return l[:k]
}

// Rounded returns a copy with every score rounded to places decimals.
func (l RecommendationList) Rounded(places int) RecommendationList {
	p := math.Pow(10, float64(places))
	out := make(RecommendationList, len(l))
	for i, r := range l {
		out[i] = Recommendation{ID: r.ID, Score: math.Round(r.Score*p) / p}
	}
	return out
}

// IDs returns the ids in rank order.
func (l RecommendationList) IDs() []string {
	ids := make([]string, len(l))
	for i, r := range l {
		ids[i] = r.ID
	}
	return ids
}

// sortByScore sorts descending by score. Equal scores keep their input order.
func sortByScore(l RecommendationList) {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].Score > l[j].Score
	})
}
