// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package datagen

import (
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/ratingsrec/internal/recommend"
	"github.com/tomtom215/ratingsrec/internal/store"
)

func smallConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Items = 12
	cfg.Users = 20
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestGenerate_Shape(t *testing.T) {
	cfg := smallConfig(t)
	m, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if m.Len() != cfg.Items || m.Orientation() != recommend.ItemOriented {
		t.Fatalf("matrix = %d rows, %s", m.Len(), m.Orientation())
	}
	if m.Rows()[0].ID != "Item_1" || m.Rows()[cfg.Items-1].ID != "Item_12" {
		t.Errorf("row ids = %s..%s", m.Rows()[0].ID, m.Rows()[cfg.Items-1].ID)
	}
	cols := m.Columns()
	if len(cols) != cfg.Users || cols[0] != "User_1" || cols[cfg.Users-1] != "User_20" {
		t.Errorf("columns = %v", cols)
	}

	for _, row := range m.Rows() {
		if row.Ratings.Len() != cfg.Users {
			t.Errorf("%s has %d cells, want %d", row.ID, row.Ratings.Len(), cfg.Users)
		}
		for _, v := range row.Ratings.Numeric() {
			if v < MinRating || v > MaxRating || v != float64(int(v)) {
				t.Errorf("%s has rating %v outside 1..5", row.ID, v)
			}
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := smallConfig(t)
	a, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i, row := range a.Rows() {
		if !reflect.DeepEqual(row.Ratings.Entries(), b.Rows()[i].Ratings.Entries()) {
			t.Fatalf("row %s differs between runs with the same seed", row.ID)
		}
	}
}

func TestGenerate_MissingRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		wantMin int
		wantMax int
	}{
		{"no missing cells", 0, 240, 240},
		{"all cells missing", 1, 0, 0},
		{"default rate", 0.4, 100, 190},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig(t)
			cfg.MissingRate = tt.rate
			m, err := Generate(cfg)
			if err != nil {
				t.Fatal(err)
			}
			rated := 0
			for _, row := range m.Rows() {
				rated += len(row.Ratings.Numeric())
			}
			if rated < tt.wantMin || rated > tt.wantMax {
				t.Errorf("rated cells = %d, want %d..%d", rated, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero items", func(c *Config) { c.Items = 0 }},
		{"negative users", func(c *Config) { c.Users = -1 }},
		{"missing rate above one", func(c *Config) { c.MissingRate = 1.5 }},
		{"empty prefix", func(c *Config) { c.ItemPrefix = "" }},
		{"prefix with comma", func(c *Config) { c.UserPrefix = "a,b" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig(t)
			tt.mutate(&cfg)
			if _, err := Generate(cfg); err == nil {
				t.Error("Generate() should reject the config")
			}
		})
	}
}

func TestWriteDatasets(t *testing.T) {
	cfg := smallConfig(t)
	paths, err := WriteDatasets(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("WriteDatasets() error = %v", err)
	}

	items, err := store.LoadRatingMatrix(paths.ItemBased, recommend.ItemOriented)
	if err != nil {
		t.Fatalf("load item-based file: %v", err)
	}
	users, err := store.LoadRatingMatrix(paths.UserBased, recommend.UserOriented)
	if err != nil {
		t.Fatalf("load user-based file: %v", err)
	}
	if items.Len() != cfg.Items || users.Len() != cfg.Users {
		t.Fatalf("files have %d items and %d users", items.Len(), users.Len())
	}

	tbl, err := store.Load(paths.UserBased)
	if err != nil {
		t.Fatal(err)
	}
	if h := tbl.Headers(); h[0] != "user" || h[1] != "Item_1" {
		t.Errorf("user-based headers start %v", h[:2])
	}

	// The user-based file is the exact transpose of the item-based file.
	for _, item := range items.Rows() {
		for _, e := range item.Ratings.Entries() {
			row, ok := users.Row(e.ID)
			if !ok {
				t.Fatalf("user %s missing from user-based file", e.ID)
			}
			got, _ := row.Get(item.ID)
			if got != e.Rating {
				t.Fatalf("%s/%s = %+v in user file, %+v in item file", e.ID, item.ID, got, e.Rating)
			}
		}
	}
}
