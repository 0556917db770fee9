// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

// Package main is the ratingsrec command.
//
// Subcommands:
//
//	ratingsrec recommend -mode item|user -user <id> [-dataset path] [-cache path]
//	                     [-cache-backend csv|badger|duckdb] [-no-cache] [-limit k]
//	                     [-format text|json]
//	ratingsrec popular   [-orientation item|user] [-dataset path] [-limit k] [-format text|json]
//	ratingsrec generate  [-items N] [-users M] [-missing 0.4] [-seed s] [-out dir]
//	ratingsrec serve     [-host h] [-port p]
//
// Every subcommand accepts -config <file>. Flag defaults come from the
// configuration (built-in defaults, then the YAML file, then RATINGSREC_*
// environment variables); flags given on the command line win.
//
// Logs go to stderr so that stdout carries only command output.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/ratingsrec/internal/config"
	"github.com/tomtom215/ratingsrec/internal/logging"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
)

// errUsage marks an error already reported by the flag package.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// command is one subcommand.
type command struct {
	name    string
	summary string
	run     func(ctx context.Context, cfg *config.Config, fs *flag.FlagSet, args []string, stdout io.Writer) error
}

var commands = []command{
	{"recommend", "print recommendations for one user", runRecommend},
	{"popular", "print items ranked by average rating", runPopular},
	{"generate", "write synthetic item- and user-based datasets", runGenerate},
	{"serve", "run the HTTP API", runServe},
}

// run executes args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "help" {
		usage(stderr)
		if len(args) == 0 {
			return exitError
		}
		return exitOK
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "ratingsrec: unknown command %q\n\n", args[0])
		usage(stderr)
		return exitError
	}

	configPath := findConfigFlag(args[1:])
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "ratingsrec: %v\n", err)
		return exitError
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: stderr,
	})

	fs := flag.NewFlagSet("ratingsrec "+cmd.name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("config", configPath, "YAML configuration file")

	if err := cmd.run(ctx, cfg, fs, args[1:], stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "ratingsrec %s: %v\n", cmd.name, err)
		}
		return exitError
	}
	return exitOK
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ratingsrec <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'ratingsrec <command> -h' for the flags of a command.")
}

// findConfigFlag extracts -config before the full flag set exists, since
// the configuration supplies the other flags' defaults.
func findConfigFlag(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-config" || a == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case len(a) > 8 && a[:8] == "-config=":
			return a[8:]
		case len(a) > 9 && a[:9] == "--config=":
			return a[9:]
		}
	}
	return ""
}

// parseFlags parses args and rejects stray positional arguments.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return errUsage
	}
	return nil
}
