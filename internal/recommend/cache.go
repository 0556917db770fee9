// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// CacheState is the lifecycle state of an ItemSimilarityCache.
type CacheState int

const (
	// CacheUninitialized means no matrix has been computed or loaded.
	CacheUninitialized CacheState = iota
	// CacheReady means the matrix is available. The state never reverts.
	CacheReady
)

// String returns the state name.
func (s CacheState) String() string {
	if s == CacheReady {
		return "ready"
	}
	return "uninitialized"
}

// CacheOutcome says how LoadOrCompute made the cache ready.
type CacheOutcome string

const (
	// CacheLoaded means a persisted matrix was read from the store.
	CacheLoaded CacheOutcome = "loaded"
	// CacheComputed means the matrix was computed and persisted.
	CacheComputed CacheOutcome = "computed"
	// CacheShared means another caller computed or loaded the matrix for the same key.
	CacheShared CacheOutcome = "shared"
)

// SimilarityStore persists a similarity matrix under a key.
type SimilarityStore interface {
	// Key identifies the persisted matrix (a path or a database location).
	Key() string

	// Exists reports whether a persisted matrix is present.
	Exists(ctx context.Context) (bool, error)

	// Load reads the persisted matrix.
	Load(ctx context.Context) (*SimilarityMatrix, error)

	// Save replaces the persisted matrix.
	Save(ctx context.Context, m *SimilarityMatrix) error
}

// CacheConfig configures the pairwise computation.
type CacheConfig struct {
	// Workers is the number of goroutines used to compute similarity rows.
	// Output is identical for every value.
	Workers int
}

// DefaultCacheConfig returns a sequential configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{Workers: 1}
}

// computeFlights serializes compute+persist per store key across every cache in the process.
var computeFlights singleflight.Group

type flightResult struct {
	owner   *ItemSimilarityCache
	matrix  *SimilarityMatrix
	outcome CacheOutcome
}

// ItemSimilarityCache owns the item x item similarity matrix.
// It is safe for concurrent use.
type ItemSimilarityCache struct {
	mu     sync.Mutex
	state  CacheState
	matrix *SimilarityMatrix
	config CacheConfig
	logger zerolog.Logger
}

// NewItemSimilarityCache creates an uninitialized cache.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewItemSimilarityCache(cfg CacheConfig, logger zerolog.Logger) *ItemSimilarityCache {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &ItemSimilarityCache{
		config: cfg,
		logger: logger.With().Str("component", "similarity_cache").Logger(),
	}
}

// State returns the current state.
func (c *ItemSimilarityCache) State() CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Ready reports whether the matrix is available.
func (c *ItemSimilarityCache) Ready() bool {
	return c.State() == CacheReady
}

// Matrix returns the matrix, or nil before the cache is ready.
func (c *ItemSimilarityCache) Matrix() *SimilarityMatrix {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matrix
}

// EnsureReady computes the matrix from items unless the cache is already ready.
// A cancelled computation leaves the cache uninitialized.
func (c *ItemSimilarityCache) EnsureReady(ctx context.Context, items *RatingMatrix) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureReadyLocked(ctx, items)
}

func (c *ItemSimilarityCache) ensureReadyLocked(ctx context.Context, items *RatingMatrix) error {
	if c.state == CacheReady {
		return nil
	}
	if items.Orientation() != ItemOriented {
		return fmt.Errorf("%w: similarity cache needs item rows, got %s", ErrOrientation, items.Orientation())
	}

	start := time.Now()
	m, err := ComputeItemSimilarities(ctx, items, c.config.Workers)
	if err != nil {
		return err
	}
	c.matrix = m
	c.state = CacheReady

	c.logger.Info().
		Int("items", items.Len()).
		Int("pairs", m.Len()).
		Int("workers", c.config.Workers).
		Dur("duration", time.Since(start)).
		Msg("item similarities computed")
	return nil
}

// LoadOrCompute makes the cache ready from store.
//
// If the store holds a persisted matrix it is loaded and trusted as-is; items is not
// consulted. Otherwise the matrix is computed from items (unless already ready) and
// saved. A matrix with no pairs is not saved. Overlapping calls for the same store key
// compute at most once; the other callers share the result.
func (c *ItemSimilarityCache) LoadOrCompute(ctx context.Context, store SimilarityStore, items *RatingMatrix) (CacheOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := store.Key()
	v, err, _ := computeFlights.Do(key, func() (interface{}, error) {
		return c.loadOrComputeLocked(ctx, store, items)
	})
	if err != nil {
		return "", err
	}

	res, ok := v.(flightResult)
	if !ok {
		return "", &CacheError{Op: "load", Key: key, Err: fmt.Errorf("unexpected flight result %T", v)}
	}
	c.matrix = res.matrix
	c.state = CacheReady

	if res.owner != c {
		c.logger.Debug().Str("key", key).Msg("similarity cache shared with concurrent caller")
		return CacheShared, nil
	}
	return res.outcome, nil
}

func (c *ItemSimilarityCache) loadOrComputeLocked(ctx context.Context, store SimilarityStore, items *RatingMatrix) (flightResult, error) {
	key := store.Key()

	exists, err := store.Exists(ctx)
	if err != nil {
		return flightResult{}, &CacheError{Op: "stat", Key: key, Err: err}
	}

	if exists {
		start := time.Now()
		m, err := store.Load(ctx)
		if err != nil {
			return flightResult{}, &CacheError{Op: "load", Key: key, Err: err}
		}
		c.logger.Info().
			Str("key", key).
			Int("pairs", m.Len()).
			Dur("duration", time.Since(start)).
			Msg("item similarities loaded")
		return flightResult{owner: c, matrix: m, outcome: CacheLoaded}, nil
	}

	if err := c.ensureReadyLocked(ctx, items); err != nil {
		return flightResult{}, &CacheError{Op: "compute", Key: key, Err: err}
	}

	if c.matrix.Len() > 0 {
		if err := store.Save(ctx, c.matrix); err != nil {
			return flightResult{}, &CacheError{Op: "save", Key: key, Err: err}
		}
		c.logger.Info().Str("key", key).Int("pairs", c.matrix.Len()).Msg("item similarities saved")
	} else {
		c.logger.Warn().Str("key", key).Msg("no positive similarities, nothing saved")
	}
	return flightResult{owner: c, matrix: c.matrix, outcome: CacheComputed}, nil
}

// ========== Pairwise computation ==========

type sparseCell struct {
	index int
	value float64
}

type similarityRow []neighborEntry

// ComputeItemSimilarities computes Pearson similarity for every ordered pair of
// distinct items and keeps coefficients > 0. Both directions of a pair are computed
// independently. Pairs are inserted row by row in item order, matching a sequential
// run regardless of workers.
func ComputeItemSimilarities(ctx context.Context, items *RatingMatrix, workers int) (*SimilarityMatrix, error) {
	if contextDone(ctx) {
		return nil, ctx.Err()
	}
	if workers <= 0 {
		workers = 1
	}

	vectors := sparseVectors(items)
	results := make([]similarityRow, len(vectors))

	var wg sync.WaitGroup
	chunkSize := (len(vectors) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > len(vectors) {
			end = len(vectors)
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			xs := make([]float64, 0, 64)
			ys := make([]float64, 0, 64)
			for i := start; i < end; i++ {
				if contextDone(ctx) {
					return
				}
				var row similarityRow
				for j := range vectors {
					if i == j {
						continue
					}
					var sim float64
					xs, ys, sim = sparsePearson(vectors[i], vectors[j], xs[:0], ys[:0])
					if sim > 0 {
						row = append(row, neighborEntry{index: j, similarity: sim})
					}
				}
				results[i] = row
			}
		}(start, end)
	}

	wg.Wait()

	if contextDone(ctx) {
		return nil, ctx.Err()
	}

	m := NewSimilarityMatrix()
	rows := items.Rows()
	for i, row := range results {
		for _, n := range row {
			m.Set(rows[i].ID, rows[n.index].ID, n.similarity)
		}
	}
	return m, nil
}

// sparseVectors converts each item row to numeric cells indexed by counterpart id.
// Counterpart ids are interned in sorted order, so merging two vectors visits the
// co-rated set in the same order as PearsonCorrelation.
func sparseVectors(items *RatingMatrix) [][]sparseCell {
	var keys []string
	seen := make(map[string]struct{})
	for _, row := range items.Rows() {
		for _, e := range row.Ratings.Entries() {
			if !e.Rating.IsRated() {
				continue
			}
			if _, ok := seen[e.ID]; !ok {
				seen[e.ID] = struct{}{}
				keys = append(keys, e.ID)
			}
		}
	}
	sort.Strings(keys)

	ids := NewIDTable()
	for _, k := range keys {
		ids.Intern(k)
	}

	vectors := make([][]sparseCell, items.Len())
	for i, row := range items.Rows() {
		cells := make([]sparseCell, 0, row.Ratings.Len())
		for _, e := range row.Ratings.Entries() {
			if v, ok := e.Rating.Value(); ok {
				idx, _ := ids.Lookup(e.ID)
				cells = append(cells, sparseCell{index: idx, value: v})
			}
		}
		sort.Slice(cells, func(a, b int) bool { return cells[a].index < cells[b].index })
		vectors[i] = cells
	}
	return vectors
}

// sparsePearson merges two index-sorted vectors into aligned samples and correlates them.
// The scratch slices are returned for reuse.
func sparsePearson(a, b []sparseCell, xs, ys []float64) ([]float64, []float64, float64) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].index < b[j].index:
			i++
		case a[i].index > b[j].index:
			j++
		default:
			xs = append(xs, a[i].value)
			ys = append(ys, b[j].value)
			i++
			j++
		}
	}
	return xs, ys, pearson(xs, ys)
}

// contextDone checks if the context has been cancelled.
func contextDone(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
