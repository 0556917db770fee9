// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

/*
Package supervisor runs the serve command under a suture v4 supervisor tree.

	ratingsrec (root)
	├── cache-layer
	│   └── cache-warm
	└── api-layer
	    └── http-server

Services that fail are restarted with exponential backoff. Once
FailureThreshold failures accumulate (decaying at FailureDecay per second) the
supervisor waits FailureBackoff before restarting again. Events are logged via
sutureslog through a slog.Logger backed by zerolog.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	tree.AddCacheService(services.NewCacheWarmService(svc, services.CacheWarmConfig{}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	err = tree.Serve(ctx)
*/
package supervisor
