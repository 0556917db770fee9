// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ratingsrec/internal/config"
	"github.com/tomtom215/ratingsrec/internal/datagen"
	"github.com/tomtom215/ratingsrec/internal/logging"
	"github.com/tomtom215/ratingsrec/internal/recommend"
	"github.com/tomtom215/ratingsrec/internal/service"
	"github.com/tomtom215/ratingsrec/internal/store"
	"github.com/tomtom215/ratingsrec/internal/validation"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func checkFormat(fs *flag.FlagSet, format string) error {
	if format != formatText && format != formatJSON {
		fmt.Fprintf(fs.Output(), "invalid -format %q (want text or json)\n", format)
		return errUsage
	}
	return nil
}

func runRecommend(ctx context.Context, cfg *config.Config, fs *flag.FlagSet, args []string, stdout io.Writer) error {
	modeFlag := fs.String("mode", "", "recommendation mode: item or user (required)")
	user := fs.String("user", "", "user id to recommend for (required)")
	dataset := fs.String("dataset", "", "rating file for the mode (default from config)")
	cachePath := fs.String("cache", cfg.Cache.Path, "item similarity cache location")
	backend := fs.String("cache-backend", cfg.Cache.Backend, "similarity cache backend: csv, badger or duckdb")
	noCache := fs.Bool("no-cache", !cfg.Cache.Enabled, "compute item similarities without persisting them")
	measure := fs.String("measure", cfg.Recommend.Measure, "similarity measure (pearson)")
	limit := fs.Int("limit", cfg.Recommend.Limit, "maximum results; 0 for all")
	format := fs.String("format", formatText, "output format: text or json")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if *modeFlag == "" || *user == "" {
		fmt.Fprintln(fs.Output(), "-mode and -user are required")
		fs.Usage()
		return errUsage
	}
	mode, err := service.ParseMode(*modeFlag)
	if err != nil {
		return err
	}
	if !validation.ValidID(*user) {
		return fmt.Errorf("invalid user id %q", *user)
	}
	if *limit < 0 {
		return fmt.Errorf("-limit must be >= 0, got %d", *limit)
	}
	if err := checkFormat(fs, *format); err != nil {
		return err
	}
	m, err := recommend.ParseSimilarityMeasure(*measure)
	if err != nil {
		return err
	}

	opts := service.OptionsFromConfig(cfg)
	opts.Measure = m
	opts.CachePath = *cachePath
	opts.CacheBackend = store.Backend(*backend)
	opts.CacheEnabled = !*noCache
	if *dataset != "" {
		if mode == service.ModeUser {
			opts.UserDataset = *dataset
		} else {
			opts.ItemDataset = *dataset
		}
	}

	svc := service.New(opts, logging.Logger())
	defer func() {
		if err := svc.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close similarity store")
		}
	}()

	res, err := svc.Recommend(ctx, mode, *user, *limit)
	if err != nil {
		return err
	}
	res.Items = res.Items.Rounded(cfg.Recommend.Precision)

	if *format == formatJSON {
		return writeJSON(stdout, res)
	}
	return writeRecommendations(stdout, res)
}

func writeRecommendations(w io.Writer, res service.Result) error {
	var err error
	printf := func(format string, a ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, a...)
		}
	}

	switch {
	case res.Personalized:
		printf("Recommendations for %s:\n", res.User)
		for _, r := range res.Items {
			printf("- %s (Score: %.2f)\n", r.ID, r.Score)
		}
	case len(res.Items) > 0:
		printf("No personalized recommendations found for %s. Recommending most popular items instead:\n", res.User)
		for _, r := range res.Items {
			printf("- %s (Average Rating: %.2f)\n", r.ID, r.Score)
		}
	default:
		printf("No recommendations found for %s.\n", res.User)
	}
	return err
}

func runPopular(_ context.Context, cfg *config.Config, fs *flag.FlagSet, args []string, stdout io.Writer) error {
	orientation := fs.String("orientation", "item", "dataset to rank from: item or user")
	dataset := fs.String("dataset", "", "rating file (default from config)")
	limit := fs.Int("limit", cfg.Recommend.Limit, "maximum results; 0 for all")
	format := fs.String("format", formatText, "output format: text or json")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	o, err := recommend.ParseOrientation(*orientation)
	if err != nil {
		return err
	}
	if *limit < 0 {
		return fmt.Errorf("-limit must be >= 0, got %d", *limit)
	}
	if err := checkFormat(fs, *format); err != nil {
		return err
	}

	opts := service.OptionsFromConfig(cfg)
	if *dataset != "" {
		if o == recommend.UserOriented {
			opts.UserDataset = *dataset
		} else {
			opts.ItemDataset = *dataset
		}
	}
	svc := service.New(opts, logging.Logger())
	defer func() { _ = svc.Close() }()

	items, err := svc.Popular(o, *limit)
	if err != nil {
		return err
	}
	items = items.Rounded(cfg.Recommend.Precision)

	if *format == formatJSON {
		return writeJSON(stdout, items)
	}
	if _, err := fmt.Fprintln(stdout, "Most popular items:"); err != nil {
		return err
	}
	for _, r := range items {
		if _, err := fmt.Fprintf(stdout, "- %s (Average Rating: %.2f)\n", r.ID, r.Score); err != nil {
			return err
		}
	}
	return nil
}

func runGenerate(_ context.Context, _ *config.Config, fs *flag.FlagSet, args []string, stdout io.Writer) error {
	def := datagen.DefaultConfig()
	items := fs.Int("items", def.Items, "number of items")
	users := fs.Int("users", def.Users, "number of users")
	missing := fs.Float64("missing", def.MissingRate, "probability that a cell is left unrated")
	seed := fs.Int64("seed", def.Seed, "random seed")
	out := fs.String("out", def.OutputDir, "output directory")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg := def
	cfg.Items = *items
	cfg.Users = *users
	cfg.MissingRate = *missing
	cfg.Seed = *seed
	cfg.OutputDir = *out

	paths, err := datagen.WriteDatasets(cfg, logging.Logger())
	if err != nil {
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(fs.Output(), err)
			return errUsage
		}
		return err
	}
	_, err = fmt.Fprintf(stdout, "Wrote %s\nWrote %s\n", paths.ItemBased, paths.UserBased)
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
