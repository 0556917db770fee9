// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

// Package config loads ratingsrec configuration with koanf v2.
//
// Sources are layered defaults, then an optional YAML file, then RATINGSREC_*
// environment variables. The result is checked with the shared validator
// (struct tags) and a few cross-field rules.
//
// Example ratingsrec.yaml:
//
//	dataset:
//	  item_path: datasets/data_item_based.csv
//	  user_path: datasets/data_user_based.csv
//	cache:
//	  backend: badger
//	  path: cache/similarities
//	  workers: 4
//	recommend:
//	  limit: 20
//	server:
//	  port: 8080
//	logging:
//	  level: debug
//	  format: console
//
// Command-line flags in cmd/ratingsrec override the loaded values.
package config
