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
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/retrievit"
	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/answer"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/ingestion"
	"github.com/poiesic/retrievit/reindex"
	"github.com/poiesic/retrievit/search"
)

func main() {
	app := &cli.App{
		Name:  "retrievit",
		Usage: "Retrieval-augmented search over local document corpora",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"RETRIEVIT_LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest files or glob patterns into the corpus",
				ArgsUsage: "<file-or-glob> [...]",
				Action:    ingestCommand,
				Flags: append(corpusFlags(),
					&cli.IntFlag{
						Name:  "chunk-tokens",
						Usage: "Maximum tokens per chunk",
						Value: 512,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Tokens of overlap between consecutive chunks",
						Value: 64,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the corpus and print scored hits",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(corpusFlags(),
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Retrieval mode (keyword, vector, hybrid)",
						Value: "hybrid",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
						Value:   search.DefaultTopK,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Similarity threshold for vector retrieval",
						Value: search.DefaultMinSimilarity,
					},
					&cli.BoolFlag{
						Name:  "rerank",
						Usage: "Rerank results with the configured chat model",
					},
					&cli.IntFlag{
						Name:  "rerank-depth",
						Usage: "Number of leading results to rerank",
						Value: search.DefaultRerankDepth,
					},
				),
			},
			{
				Name:      "ask",
				Usage:     "Answer a question grounded in retrieved sources",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: append(corpusFlags(),
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Retrieval mode (keyword, vector, hybrid)",
						Value: "hybrid",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of sources to retrieve",
						Value:   search.DefaultTopK,
					},
					&cli.BoolFlag{
						Name:  "rerank",
						Usage: "Rerank sources before answering",
					},
					&cli.IntFlag{
						Name:  "context-budget",
						Usage: "Token budget for sources in the prompt",
						Value: answer.DefaultContextBudget,
					},
				),
			},
			{
				Name:   "reindex",
				Usage:  "Reembed all chunks with the configured embedding model",
				Action: reindexCommand,
				Flags: append(corpusFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// corpusFlags are shared by every command that opens a corpus.
func corpusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB corpus directory",
			Value:   "./retrievit_db",
			EnvVars: []string{"RETRIEVIT_DB"},
		},
		&cli.StringFlag{
			Name:    "host",
			Usage:   "OpenAI-compatible service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"RETRIEVIT_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "embeddinggemma",
			EnvVars: []string{"RETRIEVIT_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "chat-model",
			Usage:   "Chat model name",
			Value:   "qwen2.5:3b",
			EnvVars: []string{"RETRIEVIT_CHAT_MODEL"},
		},
		&cli.StringFlag{
			Name:    "api-token",
			Usage:   "API token for the service",
			EnvVars: []string{"RETRIEVIT_API_TOKEN"},
		},
	}
}

func openCorpus(c *cli.Context) (*retrievit.Corpus, error) {
	opts := []ai.ConfigOption{
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatModel(c.String("chat-model")),
	}
	if token := c.String("api-token"); token != "" {
		opts = append(opts, ai.WithAPIToken(token))
	}

	aiConfig := ai.NewConfig(opts...)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return retrievit.OpenCorpus(c.String("db"), retrievit.WithAIConfig(aiConfig))
}

// expandArgs resolves each argument as a doublestar glob pattern,
// falling back to a literal path when the pattern matches nothing.
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			matches = []string{arg}
		}
		files = append(files, matches...)
	}
	return files, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file or glob pattern is required")
	}

	files, err := expandArgs(c.Args().Slice())
	if err != nil {
		return err
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	pipeline, err := corpus.NewIngestionPipeline(
		ingestion.WithChunkTokens(c.Int("chunk-tokens")),
		ingestion.WithChunkOverlap(c.Int("chunk-overlap")),
	)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	ctx := context.Background()

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Ingesting"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		name := filepath.Base(path)
		if _, err := pipeline.IngestDocument(ctx, name, path, string(data), nil); err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}
		bar.Add(1)
	}

	// Embedding runs async; wait for it before closing the corpus
	pipeline.Wait()

	fmt.Fprintf(os.Stderr, "Ingested %d files\n", len(files))
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	mode, err := core.ParseSearchMode(c.String("mode"))
	if err != nil {
		return fmt.Errorf("invalid mode %q: %w", c.String("mode"), err)
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	searcher, err := corpus.NewSearcher()
	if err != nil {
		return err
	}

	opts := search.Options{
		Mode:          mode,
		TopK:          c.Int("top-k"),
		MinSimilarity: float32(c.Float64("min-similarity")),
		Rerank:        c.Bool("rerank"),
		RerankDepth:   c.Int("rerank-depth"),
	}

	results, err := searcher.Search(context.Background(), query, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: '%s' (%d)[%0.3f]\n", i, hit.Chunk.Contents, hit.Chunk.Id, hit.Score)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a question is required")
	}
	question := strings.Join(c.Args().Slice(), " ")

	mode, err := core.ParseSearchMode(c.String("mode"))
	if err != nil {
		return fmt.Errorf("invalid mode %q: %w", c.String("mode"), err)
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	searchOpts := search.Options{
		Mode:   mode,
		TopK:   c.Int("top-k"),
		Rerank: c.Bool("rerank"),
	}

	answerer, err := corpus.NewAnswerer(
		answer.WithSearchOptions(searchOpts),
		answer.WithContextBudget(c.Int("context-budget")),
	)
	if err != nil {
		return err
	}

	ans, err := answerer.Ask(context.Background(), question)
	if err != nil {
		return err
	}

	fmt.Println(ans.Text)
	if len(ans.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, cit := range ans.Citations {
			fmt.Printf("  [%d] %s (chunk %d)\n", cit.Marker, cit.DocumentName, cit.ChunkId)
		}
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer := corpus.NewReindexer(config, os.Stderr)

	fmt.Fprintf(os.Stderr, "Corpus: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(context.Background()); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	return nil
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
