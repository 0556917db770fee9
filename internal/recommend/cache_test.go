// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// memoryStore implements SimilarityStore for testing.
type memoryStore struct {
	key       string
	mu        sync.Mutex
	pairs     []SimilarityPair
	saved     bool
	saveDelay time.Duration
	saves     atomic.Int32
	loads     atomic.Int32
	existsErr error
	loadErr   error
	saveErr   error
}

func (s *memoryStore) Key() string { return s.key }

func (s *memoryStore) Exists(ctx context.Context) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved, nil
}

func (s *memoryStore) Load(ctx context.Context) (*SimilarityMatrix, error) {
	s.loads.Add(1)
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return SimilarityMatrixFromPairs(s.pairs), nil
}

func (s *memoryStore) Save(ctx context.Context, m *SimilarityMatrix) error {
	s.saves.Add(1)
	if s.saveErr != nil {
		return s.saveErr
	}
	time.Sleep(s.saveDelay)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs = m.Pairs()
	s.saved = true
	return nil
}

func TestComputeItemSimilarities_OnlyPositivePairs(t *testing.T) {
	items := randomItems(t, 25, 40, 0.4, 3)
	m, err := ComputeItemSimilarities(context.Background(), items, 1)
	if err != nil {
		t.Fatalf("ComputeItemSimilarities() error = %v", err)
	}

	rows := items.Rows()
	expected := 0
	for _, a := range rows {
		for _, b := range rows {
			if a.ID == b.ID {
				continue
			}
			want := PearsonCorrelation(a.Ratings, b.Ratings)
			got, ok := m.Get(a.ID, b.ID)
			if want > 0 {
				expected++
				if !ok || got != want {
					t.Fatalf("sim(%s,%s) = %v,%v want %v", a.ID, b.ID, got, ok, want)
				}
			} else if ok {
				t.Fatalf("sim(%s,%s) = %v stored, want pruned (raw %v)", a.ID, b.ID, got, want)
			}
		}
	}
	if m.Len() != expected {
		t.Errorf("Len() = %d, want %d", m.Len(), expected)
	}
	for _, p := range m.Pairs() {
		if p.Item1 == p.Item2 {
			t.Errorf("self pair stored for %s", p.Item1)
		}
		if p.Similarity <= 0 {
			t.Errorf("non-positive pair stored: %+v", p)
		}
	}
}

func TestComputeItemSimilarities_WorkersDeterministic(t *testing.T) {
	items := randomItems(t, 37, 50, 0.4, 5)
	seq, err := ComputeItemSimilarities(context.Background(), items, 1)
	if err != nil {
		t.Fatalf("sequential error = %v", err)
	}
	for _, workers := range []int{2, 4, 16, 100} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			par, err := ComputeItemSimilarities(context.Background(), items, workers)
			if err != nil {
				t.Fatalf("parallel error = %v", err)
			}
			if !reflect.DeepEqual(par.Pairs(), seq.Pairs()) {
				t.Error("parallel pairs differ from sequential pairs")
			}
		})
	}
}

func TestComputeItemSimilarities_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ComputeItemSimilarities(ctx, randomItems(t, 5, 5, 0, 1), 2)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestItemSimilarityCache_EnsureReady(t *testing.T) {
	items := abcUsers(t).Transpose()
	cache := NewItemSimilarityCache(CacheConfig{}, zerolog.Nop())

	if cache.State() != CacheUninitialized || cache.Matrix() != nil {
		t.Fatal("new cache should be uninitialized with no matrix")
	}
	if err := cache.EnsureReady(context.Background(), items); err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	if !cache.Ready() {
		t.Fatal("cache should be ready")
	}
	first := cache.Matrix()

	if err := cache.EnsureReady(context.Background(), randomItems(t, 5, 5, 0, 2)); err != nil {
		t.Fatalf("second EnsureReady() error = %v", err)
	}
	if cache.Matrix() != first {
		t.Error("EnsureReady on a ready cache must be a no-op")
	}
}

func TestItemSimilarityCache_EnsureReadyErrors(t *testing.T) {
	cache := NewItemSimilarityCache(DefaultCacheConfig(), zerolog.Nop())
	if err := cache.EnsureReady(context.Background(), abcUsers(t)); !errors.Is(err, ErrOrientation) {
		t.Errorf("user rows error = %v, want ErrOrientation", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := cache.EnsureReady(ctx, abcUsers(t).Transpose()); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled error = %v, want context.Canceled", err)
	}
	if cache.State() != CacheUninitialized {
		t.Error("failed computation must leave the cache uninitialized")
	}
}

func TestItemSimilarityCache_LoadOrCompute(t *testing.T) {
	items := tasteUsers(t).Transpose()
	store := &memoryStore{key: t.Name()}

	first := NewItemSimilarityCache(DefaultCacheConfig(), zerolog.Nop())
	outcome, err := first.LoadOrCompute(context.Background(), store, items)
	if err != nil {
		t.Fatalf("LoadOrCompute() error = %v", err)
	}
	if outcome != CacheComputed {
		t.Errorf("outcome = %s, want computed", outcome)
	}
	if store.saves.Load() != 1 {
		t.Errorf("saves = %d, want 1", store.saves.Load())
	}

	second := NewItemSimilarityCache(DefaultCacheConfig(), zerolog.Nop())
	outcome, err = second.LoadOrCompute(context.Background(), store, nil)
	if err != nil {
		t.Fatalf("second LoadOrCompute() error = %v", err)
	}
	if outcome != CacheLoaded {
		t.Errorf("outcome = %s, want loaded", outcome)
	}
	if !second.Ready() {
		t.Error("loaded cache should be ready")
	}

	got := second.Matrix().Pairs()
	want := first.Matrix().Pairs()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip pairs = %v, want %v", got, want)
	}
}

func TestItemSimilarityCache_TrustsPersistedMatrix(t *testing.T) {
	store := &memoryStore{
		key:   t.Name(),
		saved: true,
		pairs: []SimilarityPair{{"X", "Gone", 0.5}},
	}
	cache := NewItemSimilarityCache(DefaultCacheConfig(), zerolog.Nop())
	if _, err := cache.LoadOrCompute(context.Background(), store, tasteUsers(t).Transpose()); err != nil {
		t.Fatalf("LoadOrCompute() error = %v", err)
	}
	if sim, ok := cache.Matrix().Get("X", "Gone"); !ok || sim != 0.5 {
		t.Errorf("stale pair = %v,%v want 0.5", sim, ok)
	}
	if _, ok := cache.Matrix().Get("X", "Z"); ok {
		t.Error("persisted matrix must not be recomputed from the dataset")
	}
}

func TestItemSimilarityCache_EmptyMatrixNotSaved(t *testing.T) {
	// Every similarity in the three-user fixture is <= 0.
	store := &memoryStore{key: t.Name()}
	cache := NewItemSimilarityCache(DefaultCacheConfig(), zerolog.Nop())
	outcome, err := cache.LoadOrCompute(context.Background(), store, abcUsers(t).Transpose())
	if err != nil {
		t.Fatalf("LoadOrCompute() error = %v", err)
	}
	if outcome != CacheComputed || !cache.Ready() {
		t.Errorf("outcome=%s ready=%v", outcome, cache.Ready())
	}
	if store.saves.Load() != 0 {
		t.Errorf("saves = %d, want 0", store.saves.Load())
	}
}

func TestItemSimilarityCache_StoreErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	tests := []struct {
		name  string
		store *memoryStore
		op    string
	}{
		{"exists fails", &memoryStore{existsErr: boom}, "stat"},
		{"load fails", &memoryStore{saved: true, loadErr: boom}, "load"},
		{"save fails", &memoryStore{saveErr: boom}, "save"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.store.key = t.Name()
			cache := NewItemSimilarityCache(DefaultCacheConfig(), zerolog.Nop())
			_, err := cache.LoadOrCompute(context.Background(), tt.store, tasteUsers(t).Transpose())

			var cacheErr *CacheError
			if !errors.As(err, &cacheErr) {
				t.Fatalf("error = %v, want *CacheError", err)
			}
			if cacheErr.Op != tt.op {
				t.Errorf("Op = %q, want %q", cacheErr.Op, tt.op)
			}
			if !errors.Is(err, boom) {
				t.Error("CacheError should wrap the store error")
			}
		})
	}
}

func TestItemSimilarityCache_ConcurrentLoadOrComputeSavesOnce(t *testing.T) {
	items := randomItems(t, 20, 30, 0.3, 9)
	store := &memoryStore{key: t.Name(), saveDelay: 20 * time.Millisecond}

	const callers = 8
	caches := make([]*ItemSimilarityCache, callers)
	var wg sync.WaitGroup
	errs := make(chan error, callers)

	for i := range caches {
		caches[i] = NewItemSimilarityCache(CacheConfig{Workers: 2}, zerolog.Nop())
		wg.Add(1)
		go func(c *ItemSimilarityCache) {
			defer wg.Done()
			if _, err := c.LoadOrCompute(context.Background(), store, items); err != nil {
				errs <- err
			}
		}(caches[i])
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("LoadOrCompute() error = %v", err)
	}
	if n := store.saves.Load(); n != 1 {
		t.Errorf("saves = %d, want exactly 1", n)
	}

	want := caches[0].Matrix().Pairs()
	for i, c := range caches {
		if !c.Ready() {
			t.Errorf("cache %d not ready", i)
			continue
		}
		if !reflect.DeepEqual(c.Matrix().Pairs(), want) {
			t.Errorf("cache %d holds a different matrix", i)
		}
	}
}
