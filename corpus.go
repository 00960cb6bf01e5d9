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


package retrievit

import (
	"io"
	"log/slog"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/ai/openai"
	"github.com/poiesic/retrievit/answer"
	"github.com/poiesic/retrievit/ingestion"
	"github.com/poiesic/retrievit/reindex"
	"github.com/poiesic/retrievit/search"
	"github.com/poiesic/retrievit/storage"
	"github.com/poiesic/retrievit/storage/badger"
)

type Corpus struct {
	backend   *badger.Backend
	chunkRepo storage.ChunkRepository
	docRepo   storage.DocumentRepository
	provider  ai.AIProvider
	logger    *slog.Logger
}

// CorpusOption configures a Corpus.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
}

// WithAIConfig sets the configuration used to build the AI provider.
func WithAIConfig(config *ai.Config) CorpusOption {
	return func(o *corpusOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider supplies a pre-built AI provider, bypassing the
// configured OpenAI-compatible one. Useful for tests.
func WithAIProvider(provider ai.AIProvider) CorpusOption {
	return func(o *corpusOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the storage backend in memory, ignoring filePath.
func WithInMemory() CorpusOption {
	return func(o *corpusOptions) {
		o.inMemory = true
	}
}

func OpenCorpus(filePath string, opts ...CorpusOption) (*Corpus, error) {
	// Apply options
	options := &corpusOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create chunk repository
	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create document repository
	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			docRepo.Close()
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Corpus{
		backend:   backend,
		chunkRepo: chunkRepo,
		docRepo:   docRepo,
		provider:  provider,
		logger:    slog.Default(),
	}, nil
}

func (c *Corpus) Close() error {
	// Close AI provider first
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := c.docRepo.Close(); err != nil {
		c.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := c.chunkRepo.Close(); err != nil {
		c.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	// Close backend
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (c *Corpus) ChunkRepository() storage.ChunkRepository {
	return c.chunkRepo
}

func (c *Corpus) DocumentRepository() storage.DocumentRepository {
	return c.docRepo
}

func (c *Corpus) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(c.chunkRepo, c.docRepo, c.provider, opts...)
}

func (c *Corpus) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(c.chunkRepo, c.provider, opts...)
}

// NewAnswerer builds an answerer over a searcher created with default options.
func (c *Corpus) NewAnswerer(opts ...answer.Option) (*answer.Answerer, error) {
	searcher, err := c.NewSearcher()
	if err != nil {
		return nil, err
	}
	return answer.NewAnswerer(searcher, c.docRepo, c.provider, opts...)
}

// NewReindexer builds a reindexer that reembeds every stored chunk.
// progress: where to write progress output (typically os.Stderr)
func (c *Corpus) NewReindexer(config *reindex.Config, progress io.Writer) *reindex.Reindexer {
	return reindex.NewReindexer(c.chunkRepo, c.provider.Embedder(), config, progress)
}
