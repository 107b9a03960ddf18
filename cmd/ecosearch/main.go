// Copyright 2026 Datamere Systems
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/datamere/ecosearch"
	"github.com/datamere/ecosearch/config"
)

func main() {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	app := &cli.App{
		Name:  "ecosearch",
		Usage: "Semantic search over research-data catalogue metadata",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "config.yaml",
			},
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
				Name:      "ingest",
				Usage:     "Ingest catalogue datasets by file identifier",
				ArgsUsage: "IDENTIFIER [IDENTIFIER...]",
				Action:    ingestCommand,
			},
			{
				Name:      "search",
				Usage:     "Search ingested datasets semantically",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question over the ingested datasets",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of context snippets",
						Value: 10,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openApp(c *cli.Context) (*ecosearch.App, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return ecosearch.NewApp(cfg)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one dataset identifier is required")
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	results := app.NewRunner().Run(ctx, c.Args().Slice())
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%-40s %s: %v\n", result.FileIdentifier, result.Status, result.Err)
			continue
		}
		fmt.Fprintf(os.Stderr, "%-40s %s (%d files, %d vectors)\n",
			result.FileIdentifier, result.Status, result.FileCount, result.VectorCount)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d identifiers failed", failed, len(results))
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a search query is required")
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	retrieval, err := app.NewRetrieval()
	if err != nil {
		return err
	}

	hits, err := retrieval.Search(context.Background(), strings.Join(c.Args().Slice(), " "), c.Int("limit"))
	if err != nil {
		return err
	}

	if len(hits) == 0 {
		fmt.Println("no matching datasets")
		return nil
	}
	for _, hit := range hits {
		fmt.Printf("%.3f  %s  %s\n", hit.Score, hit.Dataset.FileIdentifier, hit.Dataset.Title)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a question is required")
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	retrieval, err := app.NewRetrieval()
	if err != nil {
		return err
	}

	answer, err := retrieval.Ask(context.Background(), strings.Join(c.Args().Slice(), " "), nil, c.Int("limit"))
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	for _, source := range answer.Sources {
		fmt.Printf("\n%s (%s)\n", source.Title, source.FileIdentifier)
		for _, file := range source.Files {
			fmt.Printf("  - %s  %s\n", file.Name, file.Path)
		}
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	app, err := ecosearch.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv, err := app.NewServer()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			slog.Error("server shutdown failed", "err", err)
		}
	}()

	return srv.Listen(cfg.Server.Addr)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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
		return fmt.Errorf("invalid log level: %s", levelStr)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}
