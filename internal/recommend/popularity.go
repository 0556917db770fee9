// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package recommend

// accumulator collects weighted deviations per candidate id in first-seen order.
type accumulator struct {
	order  []string
	score  map[string]float64
	weight map[string]float64
}

func newAccumulator() *accumulator {
	return &accumulator{
		score:  make(map[string]float64),
		weight: make(map[string]float64),
	}
}

func (a *accumulator) add(id string, score, weight float64) {
	if _, seen := a.weight[id]; !seen {
		a.order = append(a.order, id)
	}
	a.score[id] += score
	a.weight[id] += weight
}

// rank returns base + score/weight for every candidate with weight > 0,
// sorted by score descending with ties in first-seen order.
func (a *accumulator) rank(base float64) RecommendationList {
	out := make(RecommendationList, 0, len(a.order))
	for _, id := range a.order {
		w := a.weight[id]
		if w <= 0 {
			continue
		}
		out = append(out, Recommendation{ID: id, Score: base + a.score[id]/w})
	}
	sortByScore(out)
	return out
}

// PopularItems ranks items by their mean numeric rating across all user rows.
// Items nobody rated are left out. users must be user-oriented.
func PopularItems(users *RatingMatrix) RecommendationList {
	acc := newAccumulator()
	for _, row := range users.Rows() {
		for _, e := range row.Ratings.Entries() {
			if v, ok := e.Rating.Value(); ok {
				acc.add(e.ID, v, 1)
			}
		}
	}
	return acc.rank(0)
}
