// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

// Package logging configures the process-wide zerolog logger.
//
// Components receive a zerolog.Logger by value and derive their own child
// logger with a "component" field. This package owns the root: level, format
// and output are set once from configuration by Init.
//
//	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
//	logger := logging.WithComponent("api")
//
// HTTP handlers log through Ctx so every event carries the request ID set by
// the request ID middleware. SlogHandler bridges log/slog consumers, such as
// the supervisor's sutureslog event hook, into the same stream.
//
// Logs are written to stderr by default. The CLI prints recommendations on
// stdout, so the two never interleave.
package logging
