// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/ratingsrec/internal/recommend"
)

const similarityTable = "item_similarities"

// DuckDBSimilarityStore persists a similarity matrix in a DuckDB table.
type DuckDBSimilarityStore struct {
	db     *sql.DB
	path   string
	ownsDB bool
	mu     sync.Mutex
}

// NewDuckDBSimilarityStore opens the DuckDB database at path.
// ":memory:" opens an in-memory database.
func NewDuckDBSimilarityStore(path string) (*DuckDBSimilarityStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, &recommend.StoreError{Op: "open", Path: path, Err: fmt.Errorf("open duckdb: %w", err)}
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &recommend.StoreError{Op: "open", Path: path, Err: fmt.Errorf("ping duckdb: %w", err)}
	}
	return &DuckDBSimilarityStore{db: db, path: path, ownsDB: true}, nil
}

// NewDuckDBSimilarityStoreFromDB wraps an existing connection. Close does not close it.
func NewDuckDBSimilarityStoreFromDB(db *sql.DB, key string) *DuckDBSimilarityStore {
	return &DuckDBSimilarityStore{db: db, path: key}
}

// Key returns the database location.
func (s *DuckDBSimilarityStore) Key() string {
	return "duckdb:" + s.path
}

// Exists reports whether the similarity table has been created.
func (s *DuckDBSimilarityStore) Exists(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?", similarityTable,
	).Scan(&n)
	if err != nil {
		return false, &recommend.StoreError{Op: "stat", Path: s.path, Err: fmt.Errorf("query tables: %w", err)}
	}
	return n > 0, nil
}

// Load reads every pair in saved order.
func (s *DuckDBSimilarityStore) Load(ctx context.Context) (*recommend.SimilarityMatrix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf("SELECT item1, item2, similarity FROM %s ORDER BY seq", similarityTable)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &recommend.StoreError{Op: "load", Path: s.path, Err: fmt.Errorf("query similarities: %w", err)}
	}
	defer rows.Close()

	m := recommend.NewSimilarityMatrix()
	for rows.Next() {
		var p recommend.SimilarityPair
		if err := rows.Scan(&p.Item1, &p.Item2, &p.Similarity); err != nil {
			return nil, &recommend.StoreError{Op: "load", Path: s.path, Err: fmt.Errorf("scan similarity: %w", err)}
		}
		m.Set(p.Item1, p.Item2, p.Similarity)
	}
	if err := rows.Err(); err != nil {
		return nil, &recommend.StoreError{Op: "load", Path: s.path, Err: fmt.Errorf("iterate similarities: %w", err)}
	}
	return m, nil
}

// Save replaces the table contents in one transaction.
func (s *DuckDBSimilarityStore) Save(ctx context.Context, m *recommend.SimilarityMatrix) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &recommend.StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("begin: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			seq BIGINT PRIMARY KEY,
			item1 TEXT NOT NULL,
			item2 TEXT NOT NULL,
			similarity DOUBLE NOT NULL
		)`, similarityTable)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return &recommend.StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("create table: %w", err)}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+similarityTable); err != nil {
		return &recommend.StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("clear table: %w", err)}
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (seq, item1, item2, similarity) VALUES (?, ?, ?, ?)", similarityTable))
	if err != nil {
		return &recommend.StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("prepare insert: %w", err)}
	}
	defer stmt.Close()

	for i, p := range m.Pairs() {
		if _, err := stmt.ExecContext(ctx, i, p.Item1, p.Item2, p.Similarity); err != nil {
			return &recommend.StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("insert pair %d: %w", i, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &recommend.StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

// Close closes the database if the store opened it.
func (s *DuckDBSimilarityStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
