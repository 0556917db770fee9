// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package config

import (
	"fmt"
	"path/filepath"

	"github.com/tomtom215/ratingsrec/internal/validation"
)

// Validate runs the struct tag rules and then the cross-field checks.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateSecurity()
}

func (c *Config) validateDataset() error {
	if filepath.Clean(c.Dataset.ItemPath) == filepath.Clean(c.Dataset.UserPath) {
		return fmt.Errorf("dataset.item_path and dataset.user_path must be different files")
	}
	if c.Cache.Enabled && c.Cache.Backend == "csv" {
		cache := filepath.Clean(c.Cache.Path)
		if cache == filepath.Clean(c.Dataset.ItemPath) || cache == filepath.Clean(c.Dataset.UserPath) {
			return fmt.Errorf("cache.path %s would overwrite a dataset file", c.Cache.Path)
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read and write timeouts must be positive")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("security.rate_limit_reqs must be positive unless rate limiting is disabled")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("security.rate_limit_window must be positive unless rate limiting is disabled")
	}
	return nil
}
