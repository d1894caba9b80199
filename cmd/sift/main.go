// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/sift"
	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/loader"
	"github.com/poiesic/sift/pipeline"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "sift",
		Usage: "Extensible ETL pipeline for building knowledge graphs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Run an extraction pipeline from a source to a destination",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a TOML run description",
					},
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Source identifier (path, URL, or manifest)",
					},
					&cli.StringFlag{
						Name:    "dest",
						Aliases: []string{"d"},
						Usage:   "Destination path for the built graph",
					},
					&cli.StringSliceFlag{
						Name:  "strategy",
						Usage: "Per-role component selection as role=name (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:    "option",
						Aliases: []string{"o"},
						Usage:   "Component option as key=value (repeatable)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Frontier worker pool size (0 uses the CPU-based default)",
					},
					&cli.IntFlag{
						Name:  "max-items",
						Usage: "Cap on identifiers fetched in one run (0 is unbounded)",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum fetch attempts per identifier",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Delay between fetch attempts",
						Value: 1 * time.Second,
					},
					&cli.StringFlag{
						Name:  "checkpoint-db",
						Usage: "Path to a BadgerDB directory for resumable runs",
					},
					&cli.StringFlag{
						Name:  "run-id",
						Usage: "Run identifier for checkpointing",
						Value: "default",
					},
				},
			},
			{
				Name:   "checkpoint",
				Usage:  "Inspect a stored run checkpoint",
				Action: checkpointCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "checkpoint-db",
						Usage:    "Path to the BadgerDB checkpoint directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "run-id",
						Usage: "Run identifier",
						Value: "default",
					},
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Delete the checkpoint instead of printing it",
					},
				},
			},
		},
	}
}

func ingestCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &RunConfig{
		MaxRetries: c.Int("max-retries"),
		RetryDelay: c.Duration("retry-delay").String(),
		RunID:      c.String("run-id"),
	}
	if path := c.String("config"); path != "" {
		loaded, err := loadRunConfig(path)
		if err != nil {
			return err
		}
		// A config file only overrides what it states; retry settings
		// and the run ID keep their flag defaults when omitted.
		if loaded.MaxRetries == 0 {
			loaded.MaxRetries = cfg.MaxRetries
		}
		if loaded.RetryDelay == "" {
			loaded.RetryDelay = cfg.RetryDelay
		}
		if loaded.RunID == "" {
			loaded.RunID = cfg.RunID
		}
		cfg = loaded
	}

	// Flags override file values.
	if v := c.String("source"); v != "" {
		cfg.Source = v
	}
	if v := c.String("dest"); v != "" {
		cfg.Destination = v
	}
	if v := c.Int("pool-size"); v > 0 {
		cfg.PoolSize = v
	}
	if v := c.Int("max-items"); v > 0 {
		cfg.MaxItems = v
	}
	if c.IsSet("max-retries") {
		cfg.MaxRetries = c.Int("max-retries")
	}
	if c.IsSet("retry-delay") {
		cfg.RetryDelay = c.Duration("retry-delay").String()
	}
	if v := c.String("checkpoint-db"); v != "" {
		cfg.Checkpoints = v
	}
	if c.IsSet("run-id") {
		cfg.RunID = c.String("run-id")
	}
	if cfg.Strategies == nil {
		cfg.Strategies = map[string]string{}
	}
	for _, pair := range c.StringSlice("strategy") {
		role, name, err := splitPair(pair)
		if err != nil {
			return fmt.Errorf("invalid --strategy %q: %w", pair, err)
		}
		cfg.Strategies[role] = name
	}
	if cfg.Options == nil {
		cfg.Options = map[string]any{}
	}
	for _, pair := range c.StringSlice("option") {
		key, value, err := splitPair(pair)
		if err != nil {
			return fmt.Errorf("invalid --option %q: %w", pair, err)
		}
		cfg.Options[key] = value
	}

	if cfg.Source == "" {
		return fmt.Errorf("source is required (--source or config file)")
	}
	if cfg.Destination == "" {
		return fmt.Errorf("destination is required (--dest or config file)")
	}
	if cfg.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}
	retryDelay, err := time.ParseDuration(cfg.RetryDelay)
	if err != nil {
		return fmt.Errorf("invalid retry-delay %q: %w", cfg.RetryDelay, err)
	}

	opts := []pipeline.Option{
		pipeline.WithRetry(cfg.MaxRetries, retryDelay),
		pipeline.WithLogger(slog.Default()),
	}
	if cfg.PoolSize > 0 {
		opts = append(opts, pipeline.WithPoolSize(cfg.PoolSize))
	}
	if cfg.MaxItems > 0 {
		opts = append(opts, pipeline.WithMaxItems(cfg.MaxItems))
	}

	if cfg.Checkpoints != "" {
		backend, err := loader.OpenBackend(cfg.Checkpoints, false, slog.Default())
		if err != nil {
			return fmt.Errorf("failed to open checkpoint database: %w", err)
		}
		defer backend.Close()
		opts = append(opts, pipeline.WithCheckpoints(loader.NewBadgerCheckpoints(backend), cfg.RunID))
	}

	stats, err := sift.Process(ctx, cfg.Source, cfg.Destination,
		cfg.Strategies, component.Config(cfg.Options), opts...)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	report, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(report))
	return nil
}

func checkpointCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := loader.OpenBackend(c.String("checkpoint-db"), false, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to open checkpoint database: %w", err)
	}
	defer backend.Close()

	store := loader.NewBadgerCheckpoints(backend)
	runID := c.String("run-id")

	if c.Bool("clear") {
		if err := store.DeleteCheckpoint(ctx, runID); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "checkpoint %q cleared\n", runID)
		return nil
	}

	cp, err := store.LoadCheckpoint(ctx, runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run:      %s\n", cp.RunID)
	fmt.Printf("Updated:  %s\n", cp.UpdatedAt.Format(time.RFC3339))
	fmt.Printf("Visited:  %d\n", len(cp.Visited))
	fmt.Printf("Pending:  %d\n", len(cp.Pending))
	report, err := json.MarshalIndent(cp.Stats, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(report))
	return nil
}

// splitPair parses a key=value argument.
func splitPair(pair string) (string, string, error) {
	key, value, found := strings.Cut(pair, "=")
	if !found || key == "" || value == "" {
		return "", "", fmt.Errorf("expected key=value")
	}
	return key, value, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
