// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

// Package datagen generates synthetic rating datasets.
//
// Each cell is left empty with probability MissingRate, otherwise it holds a
// uniform integer rating from 1 to 5. Output is deterministic for a given seed.
package datagen

import (
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/tomtom215/ratingsrec/internal/recommend"
	"github.com/tomtom215/ratingsrec/internal/store"
	"github.com/tomtom215/ratingsrec/internal/validation"
)

// Dataset file names written to the output directory.
const (
	ItemBasedFile = "data_item_based.csv"
	UserBasedFile = "data_user_based.csv"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Config controls dataset generation.
type Config struct {
	Items       int     `validate:"min=1,max=100000"`
	Users       int     `validate:"min=1,max=100000"`
	MissingRate float64 `validate:"gte=0,lte=1"`
	Seed        int64
	ItemPrefix  string `validate:"required,ratingid"`
	UserPrefix  string `validate:"required,ratingid"`
	OutputDir   string `validate:"required"`
}

// DefaultConfig returns 300 items x 600 users with 40% of cells missing.
func DefaultConfig() Config {
	return Config{
		Items:       300,
		Users:       600,
		MissingRate: 0.4,
		Seed:        42,
		ItemPrefix:  "Item",
		UserPrefix:  "User",
		OutputDir:   "datasets",
	}
}

// Paths are the files written by WriteDatasets.
type Paths struct {
	ItemBased string
	UserBased string
}

// Generate returns an item-oriented matrix of cfg.Items rows over cfg.Users users.
// Ids are <prefix>_<n>, numbered from 1.
func Generate(cfg Config) (*recommend.RatingMatrix, error) {
	if verr := validation.ValidateStruct(&cfg); verr != nil {
		return nil, fmt.Errorf("invalid generator config: %w", verr)
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // math/rand is fine for synthetic data

	users := make([]string, cfg.Users)
	for u := range users {
		users[u] = fmt.Sprintf("%s_%d", cfg.UserPrefix, u+1)
	}

	rows := make([]recommend.RatingRow, 0, cfg.Items)
	for i := 1; i <= cfg.Items; i++ {
		v := recommend.NewRatingVector(cfg.Users)
		for _, user := range users {
			if rng.Float64() < cfg.MissingRate {
				v.Set(user, recommend.Unrated)
				continue
			}
			v.Set(user, recommend.Numeric(float64(MinRating+rng.Intn(MaxRating-MinRating+1))))
		}
		rows = append(rows, recommend.RatingRow{ID: fmt.Sprintf("%s_%d", cfg.ItemPrefix, i), Ratings: v})
	}
	return recommend.NewRatingMatrix(recommend.ItemOriented, rows)
}

// WriteDatasets generates a dataset and writes the item-oriented file and its transpose.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func WriteDatasets(cfg Config, logger zerolog.Logger) (Paths, error) {
	logger = logger.With().Str("component", "datagen").Logger()

	items, err := Generate(cfg)
	if err != nil {
		return Paths{}, err
	}

	paths := Paths{
		ItemBased: filepath.Join(cfg.OutputDir, ItemBasedFile),
		UserBased: filepath.Join(cfg.OutputDir, UserBasedFile),
	}

	logger.Info().Int("items", cfg.Items).Int("users", cfg.Users).Msg("writing item-based dataset")
	if err := store.SaveRatingMatrix(paths.ItemBased, items); err != nil {
		return Paths{}, err
	}

	logger.Info().Msg("writing user-based dataset (transpose)")
	if err := store.SaveRatingMatrix(paths.UserBased, items.Transpose()); err != nil {
		return Paths{}, err
	}

	logger.Info().
		Str("item_based", paths.ItemBased).
		Str("user_based", paths.UserBased).
		Msg("datasets generated")
	return paths, nil
}
