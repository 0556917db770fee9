// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tomtom215/ratingsrec/internal/recommend"
)

// Table errors. They are returned wrapped in *recommend.StoreError.
var (
	ErrEmptyFile       = errors.New("file has no header row")
	ErrEmptyHeaders    = errors.New("headers must not be empty")
	ErrDuplicateHeader = errors.New("duplicate header")
	ErrColumnCount     = errors.New("column count does not match headers")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrNoMatch         = errors.New("no rows matched")
	ErrFileExists      = errors.New("file already exists")
)

// Record is one row keyed by column name.
type Record map[string]string

// Table is a CSV file held in memory: a fixed, unique header row and
// rows that all have exactly one cell per header.
type Table struct {
	path    string
	headers []string
	columns map[string]int
	rows    [][]string
}

// Create makes a new table with headers and writes it to path.
// An existing file is an error unless overwrite is set.
func Create(path string, headers []string, overwrite bool) (*Table, error) {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return nil, &recommend.StoreError{Op: "create", Path: path, Err: ErrFileExists}
		}
	}
	t, err := newTable(path, headers)
	if err != nil {
		return nil, &recommend.StoreError{Op: "create", Path: path, Err: err}
	}
	if err := t.Save(); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateFromRecords makes a table from records and writes it to path, replacing any
// existing file. Every record must have exactly the given headers.
func CreateFromRecords(path string, headers []string, records []Record) (*Table, error) {
	t, err := newTable(path, headers)
	if err != nil {
		return nil, &recommend.StoreError{Op: "create", Path: path, Err: err}
	}
	if err := t.Insert(records...); err != nil {
		return nil, err
	}
	if err := t.Save(); err != nil {
		return nil, err
	}
	return t, nil
}

// Load reads the table at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &recommend.StoreError{Op: "load", Path: path, Err: err}
	}
	defer f.Close()

	return Read(f, path)
}

// Read parses a table from r. name is used as the table path and in errors.
func Read(r io.Reader, name string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &recommend.StoreError{Op: "load", Path: name, Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, &recommend.StoreError{Op: "load", Path: name, Err: err}
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	t, err := newTable(name, headers)
	if err != nil {
		return nil, &recommend.StoreError{Op: "load", Path: name, Err: err}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &recommend.StoreError{Op: "load", Path: name, Err: err}
		}
		if len(row) != len(t.headers) {
			line, _ := reader.FieldPos(0)
			return nil, &recommend.StoreError{
				Op:   "load",
				Path: name,
				Err:  fmt.Errorf("%w: line %d has %d cells, want %d", ErrColumnCount, line, len(row), len(t.headers)),
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func newTable(path string, headers []string) (*Table, error) {
	if len(headers) == 0 {
		return nil, ErrEmptyHeaders
	}
	columns := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, dup := columns[h]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHeader, h)
		}
		columns[h] = i
	}
	return &Table{
		path:    path,
		headers: append([]string(nil), headers...),
		columns: columns,
	}, nil
}

// Path returns the file the table is saved to.
func (t *Table) Path() string {
	return t.path
}

// Headers returns the column names in file order.
func (t *Table) Headers() []string {
	return append([]string(nil), t.headers...)
}

// HasColumn reports whether name is a header.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the raw cells in header order. The slices must not be modified.
func (t *Table) Rows() [][]string {
	return t.rows
}

// All returns every row as a record.
func (t *Table) All() []Record {
	out := make([]Record, len(t.rows))
	for i, row := range t.rows {
		out[i] = t.record(row)
	}
	return out
}

// Filter returns the rows for which match returns true.
func (t *Table) Filter(match func(Record) bool) []Record {
	var out []Record
	for _, row := range t.rows {
		rec := t.record(row)
		if match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Insert appends records. Each record's keys must equal the header set exactly.
// Nothing is inserted if any record is invalid.
func (t *Table) Insert(records ...Record) error {
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		row, err := t.row(rec)
		if err != nil {
			return &recommend.StoreError{Op: "insert", Path: t.path, Err: fmt.Errorf("record %d: %w", i, err)}
		}
		rows = append(rows, row)
	}
	t.rows = append(t.rows, rows...)
	return nil
}

// Update sets values on every row for which match returns true and returns the count.
// Unknown columns and zero matches are errors.
func (t *Table) Update(match func(Record) bool, values Record) (int, error) {
	for k := range values {
		if !t.HasColumn(k) {
			return 0, &recommend.StoreError{Op: "update", Path: t.path, Err: fmt.Errorf("%w: %q", ErrUnknownColumn, k)}
		}
	}
	n := 0
	for _, row := range t.rows {
		if !match(t.record(row)) {
			continue
		}
		for k, v := range values {
			row[t.columns[k]] = v
		}
		n++
	}
	if n == 0 {
		return 0, &recommend.StoreError{Op: "update", Path: t.path, Err: ErrNoMatch}
	}
	return n, nil
}

// Delete removes every row for which match returns true and returns the count.
// Zero matches is an error.
func (t *Table) Delete(match func(Record) bool) (int, error) {
	kept := t.rows[:0]
	n := 0
	for _, row := range t.rows {
		if match(t.record(row)) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	t.rows = kept
	if n == 0 {
		return 0, &recommend.StoreError{Op: "delete", Path: t.path, Err: ErrNoMatch}
	}
	return n, nil
}

// Save writes the table to its path atomically (temp file + rename),
// creating parent directories as needed.
func (t *Table) Save() error {
	var buf bytes.Buffer
	if _, err := t.WriteTo(&buf); err != nil {
		return &recommend.StoreError{Op: "save", Path: t.path, Err: err}
	}
	if err := writeFileAtomic(t.path, buf.Bytes()); err != nil {
		return &recommend.StoreError{Op: "save", Path: t.path, Err: err}
	}
	return nil
}

// WriteTo encodes the table as CSV.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	writer := csv.NewWriter(cw)
	if err := writer.Write(t.headers); err != nil {
		return cw.n, err
	}
	if err := writer.WriteAll(t.rows); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

func (t *Table) record(row []string) Record {
	rec := make(Record, len(t.headers))
	for i, h := range t.headers {
		rec[h] = row[i]
	}
	return rec
}

func (t *Table) row(rec Record) ([]string, error) {
	if len(rec) != len(t.headers) {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrColumnCount, keys(rec), strings.Join(t.headers, ","))
	}
	row := make([]string, len(t.headers))
	for k, v := range rec {
		i, ok := t.columns[k]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, k)
		}
		row[i] = v
	}
	return row, nil
}

func keys(rec Record) string {
	ks := make([]string, 0, len(rec))
	for k := range rec {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return strings.Join(ks, ",")
}

func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // dataset files are not secret
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
