// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{
	"ratingsrec.yaml",
	"ratingsrec.yml",
	"config.yaml",
	"/etc/ratingsrec/config.yaml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "RATINGSREC_CONFIG"

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "RATINGSREC_"

// Load builds the configuration from three layers, later layers winning:
//  1. built-in defaults
//  2. a YAML file: path if non-empty, else RATINGSREC_CONFIG, else DefaultConfigPaths
//  3. RATINGSREC_* environment variables
//
// An explicit path that does not exist is an error; a missing default file is not.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as a single string.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment names to koanf paths. Unlisted
// RATINGSREC_* variables are ignored.
var envMappings = map[string]string{
	"ratingsrec_item_dataset": "dataset.item_path",
	"ratingsrec_user_dataset": "dataset.user_path",

	"ratingsrec_cache_enabled": "cache.enabled",
	"ratingsrec_cache_backend": "cache.backend",
	"ratingsrec_cache_path":    "cache.path",
	"ratingsrec_cache_workers": "cache.workers",

	"ratingsrec_measure":           "recommend.measure",
	"ratingsrec_limit":             "recommend.limit",
	"ratingsrec_precision":         "recommend.precision",
	"ratingsrec_popular_fallback":  "recommend.popular_fallback",
	"ratingsrec_result_cache_size": "recommend.result_cache_size",

	"ratingsrec_http_host":        "server.host",
	"ratingsrec_http_port":        "server.port",
	"ratingsrec_read_timeout":     "server.read_timeout",
	"ratingsrec_write_timeout":    "server.write_timeout",
	"ratingsrec_shutdown_timeout": "server.shutdown_timeout",

	"ratingsrec_rate_limit_requests": "security.rate_limit_reqs",
	"ratingsrec_rate_limit_window":   "security.rate_limit_window",
	"ratingsrec_disable_rate_limit":  "security.rate_limit_disabled",
	"ratingsrec_cors_origins":        "security.cors_origins",

	"ratingsrec_log_level":  "logging.level",
	"ratingsrec_log_format": "logging.format",
	"ratingsrec_log_caller": "logging.caller",
}

// envTransformFunc maps RATINGSREC_HTTP_PORT to server.port and so on.
// Returning "" drops the variable.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
