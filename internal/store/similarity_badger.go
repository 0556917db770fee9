// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/ratingsrec/internal/recommend"
)

// Key prefixes for BadgerDB storage
const (
	similarityKeyPrefix = "sim:"
	pairCountKey        = "meta:pairs"
)

// BadgerSimilarityStore persists a similarity matrix in BadgerDB.
// Pairs are stored under zero-padded sequence keys, so iteration returns them
// in the order they were saved.
type BadgerSimilarityStore struct {
	db     *badger.DB
	path   string
	ownsDB bool
}

// NewBadgerSimilarityStore opens a BadgerDB at path.
func NewBadgerSimilarityStore(path string) (*BadgerSimilarityStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &recommend.StoreError{Op: "open", Path: path, Err: fmt.Errorf("open badger db: %w", err)}
	}
	return &BadgerSimilarityStore{db: db, path: path, ownsDB: true}, nil
}

// NewBadgerSimilarityStoreFromDB wraps an existing DB. Close does not close it.
func NewBadgerSimilarityStoreFromDB(db *badger.DB, key string) *BadgerSimilarityStore {
	return &BadgerSimilarityStore{db: db, path: key}
}

// Key returns the database path.
func (s *BadgerSimilarityStore) Key() string {
	return "badger:" + s.path
}

// Exists reports whether a complete matrix has been saved.
func (s *BadgerSimilarityStore) Exists(ctx context.Context) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(pairCountKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, &recommend.StoreError{Op: "stat", Path: s.path, Err: err}
	}
	return found, nil
}

// Load reads every pair in saved order.
func (s *BadgerSimilarityStore) Load(ctx context.Context) (*recommend.SimilarityMatrix, error) {
	var want int
	var pairs []recommend.SimilarityPair

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(pairCountKey))
		if err != nil {
			return fmt.Errorf("get pair count: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			n, err := strconv.Atoi(string(val))
			want = n
			return err
		}); err != nil {
			return fmt.Errorf("parse pair count: %w", err)
		}

		pairs = make([]recommend.SimilarityPair, 0, want)
		prefix := []byte(similarityKeyPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var p recommend.SimilarityPair
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			pairs = append(pairs, p)
		}
		return nil
	})
	if err != nil {
		return nil, &recommend.StoreError{Op: "load", Path: s.path, Err: err}
	}
	if len(pairs) != want {
		return nil, &recommend.StoreError{Op: "load", Path: s.path, Err: fmt.Errorf("found %d pairs, want %d", len(pairs), want)}
	}
	return recommend.SimilarityMatrixFromPairs(pairs), nil
}

// Save replaces the stored matrix. The pair count is written last, so an
// interrupted save leaves the store reporting no matrix.
func (s *BadgerSimilarityStore) Save(ctx context.Context, m *recommend.SimilarityMatrix) error {
	if err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(pairCountKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	}); err != nil {
		return &recommend.StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("clear pair count: %w", err)}
	}
	if err := s.db.DropPrefix([]byte(similarityKeyPrefix)); err != nil {
		return &recommend.StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("drop pairs: %w", err)}
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i, p := range m.Pairs() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		data, err := json.Marshal(p)
		if err != nil {
			return &recommend.StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("marshal pair: %w", err)}
		}
		if err := wb.Set(pairKey(i), data); err != nil {
			return &recommend.StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("set pair: %w", err)}
		}
	}
	if err := wb.Flush(); err != nil {
		return &recommend.StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("flush pairs: %w", err)}
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(pairCountKey), []byte(strconv.Itoa(m.Len())))
	}); err != nil {
		return &recommend.StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("set pair count: %w", err)}
	}
	return nil
}

// Close closes the database if the store opened it.
func (s *BadgerSimilarityStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

func pairKey(seq int) []byte {
	return []byte(fmt.Sprintf("%s%016d", similarityKeyPrefix, seq))
}
