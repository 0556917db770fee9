// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete ratingsrec configuration.
type Config struct {
	Dataset   DatasetConfig   `koanf:"dataset"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatasetConfig locates the two rating files. The item-based file has one row
// per item and is used by item-based recommendations and popularity. The
// user-based file has one row per user and is used by user-based recommendations.
//
// Environment Variables:
//   - RATINGSREC_ITEM_DATASET (default: datasets/data_item_based.csv)
//   - RATINGSREC_USER_DATASET (default: datasets/data_user_based.csv)
type DatasetConfig struct {
	ItemPath string `koanf:"item_path" validate:"required"`
	UserPath string `koanf:"user_path" validate:"required"`
}

// CacheConfig controls persistence of the item similarity matrix.
//
// Environment Variables:
//   - RATINGSREC_CACHE_ENABLED: load/save the matrix (default: true)
//   - RATINGSREC_CACHE_BACKEND: csv, badger or duckdb (default: csv)
//   - RATINGSREC_CACHE_PATH: file or directory for the backend
//   - RATINGSREC_CACHE_WORKERS: goroutines used to compute the matrix (default: 1)
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Backend string `koanf:"backend" validate:"oneof=csv badger duckdb"`
	Path    string `koanf:"path" validate:"required"`
	Workers int    `koanf:"workers" validate:"min=1,max=256"`
}

// RecommendConfig holds defaults for recommendation requests.
//
// Environment Variables:
//   - RATINGSREC_MEASURE: similarity measure for user-based mode (default: pearson)
//   - RATINGSREC_LIMIT: maximum items returned, 0 for all (default: 0)
//   - RATINGSREC_PRECISION: decimal places in API scores (default: 2)
//   - RATINGSREC_POPULAR_FALLBACK: serve popular items when the list is empty (default: true)
//   - RATINGSREC_RESULT_CACHE_SIZE: users whose ranked lists are memoized per mode, 0 disables (default: 1024)
type RecommendConfig struct {
	Measure         string `koanf:"measure" validate:"measure"`
	Limit           int    `koanf:"limit" validate:"gte=0,lte=100000"`
	Precision       int    `koanf:"precision" validate:"gte=0,lte=10"`
	PopularFallback bool   `koanf:"popular_fallback"`
	ResultCacheSize int    `koanf:"result_cache_size" validate:"gte=0,lte=1000000"`
}

// ServerConfig holds HTTP server settings for serve mode.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds HTTP rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig configures the global zerolog logger.
//
// Environment Variables:
//   - RATINGSREC_LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - RATINGSREC_LOG_FORMAT: json or console (default: json)
//   - RATINGSREC_LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, the first koanf layer.
func defaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			ItemPath: "datasets/data_item_based.csv",
			UserPath: "datasets/data_user_based.csv",
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "csv",
			Path:    "cache/item_similarities.csv",
			Workers: 1,
		},
		Recommend: RecommendConfig{
			Measure:         "pearson",
			Limit:           0,
			Precision:       2,
			PopularFallback: true,
			ResultCacheSize: 1024,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Default returns a copy of the built-in defaults.
func Default() *Config {
	return defaultConfig()
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
