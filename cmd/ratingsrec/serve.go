// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"time"

	"github.com/tomtom215/ratingsrec/internal/api"
	"github.com/tomtom215/ratingsrec/internal/config"
	"github.com/tomtom215/ratingsrec/internal/logging"
	"github.com/tomtom215/ratingsrec/internal/service"
	"github.com/tomtom215/ratingsrec/internal/supervisor"
	"github.com/tomtom215/ratingsrec/internal/supervisor/services"
)

func runServe(ctx context.Context, cfg *config.Config, fs *flag.FlagSet, args []string, _ io.Writer) error {
	host := fs.String("host", cfg.Server.Host, "listen host")
	port := fs.Int("port", cfg.Server.Port, "listen port")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg.Server.Host = *host
	cfg.Server.Port = *port
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.Logger()
	logger.Info().
		Str("item_dataset", cfg.Dataset.ItemPath).
		Str("user_dataset", cfg.Dataset.UserPath).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Str("cache_backend", cfg.Cache.Backend).
		Str("cache_path", cfg.Cache.Path).
		Msg("configuration loaded")

	svc := service.New(service.OptionsFromConfig(cfg), logger)
	defer func() {
		if err := svc.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing similarity store")
		}
	}()

	handler := api.NewHandler(svc, api.HandlerConfig{
		DefaultLimit:   cfg.Recommend.Limit,
		Precision:      cfg.Recommend.Precision,
		RequestTimeout: cfg.Server.WriteTimeout,
	}, logger)
	router := api.NewRouter(handler, &api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSMaxAge:         300,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), treeCfg)
	if err != nil {
		return err
	}
	tree.AddCacheService(services.NewCacheWarmService(svc, services.CacheWarmConfig{}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	logger.Info().Str("addr", server.Addr).Msg("starting supervisor tree")
	err = <-tree.ServeBackground(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor tree stopped")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, s := range unstopped {
		logging.Warn().Str("service", s.Name).Msg("service failed to stop within timeout")
	}

	logger.Info().Msg("server stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
