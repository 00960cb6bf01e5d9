package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/analyze"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/storage"
)

// Pipeline orchestrates document ingestion: chunking, persistence, and
// asynchronous embedding generation.
type Pipeline struct {
	chunkRepository    storage.ChunkRepository
	documentRepository storage.DocumentRepository
	embeddingPool      *ants.Pool
	embeddingProc      *embeddingProcessor
	chunker            *Chunker
	chunkTokens        int
	chunkOverlap       int
	pending            sync.WaitGroup
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithChunkTokens sets the maximum chunk size in tokens.
// Default is DefaultChunkTokens.
func WithChunkTokens(tokens int) Option {
	return func(p *Pipeline) error {
		if tokens > 0 {
			p.chunkTokens = tokens
		}
		return nil
	}
}

// WithChunkOverlap sets the token overlap between adjacent chunks.
// Default is DefaultChunkOverlap.
func WithChunkOverlap(overlap int) Option {
	return func(p *Pipeline) error {
		if overlap >= 0 {
			p.chunkOverlap = overlap
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	chunkRepository storage.ChunkRepository,
	documentRepository storage.DocumentRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		chunkRepository:    chunkRepository,
		documentRepository: documentRepository,
		embeddingPool:      embeddingPool,
		chunkTokens:        DefaultChunkTokens,
		chunkOverlap:       DefaultChunkOverlap,
		logger:             slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create chunker and processor after options are applied (so they get final config)
	p.chunker = NewChunker(p.chunkTokens, p.chunkOverlap, analyze.NewTokenCounter(p.logger))

	embeddingProc, err := newEmbeddingProcessor(chunkRepository, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	Metadata map[string]string // Optional metadata to attach to the document and its chunks
}

// IngestDocument adds a document and its chunks and embeds them asynchronously.
// Re-ingesting a source replaces the document's previous chunks.
// Errors during async embedding are logged but do not fail the ingestion.
// Returns the stored document.
func (p *Pipeline) IngestDocument(ctx context.Context, name, source, text string, opts *IngestOptions) (*core.Document, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	doc, err := p.documentRepository.UpsertDocument(ctx, &core.Document{
		Name:     name,
		Source:   source,
		Metadata: opts.Metadata,
	})
	if err != nil {
		return nil, err
	}

	// Re-ingest replaces the document's previous chunks
	existing, err := p.chunkRepository.GetChunksByDocument(ctx, doc.Id)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		p.logger.Info("replacing chunks for re-ingested document",
			"document", doc.Name,
			"chunks", len(existing))
		staleIds := make([]core.ID, len(existing))
		for i, chunk := range existing {
			staleIds[i] = chunk.Id
		}
		if err := p.chunkRepository.DeleteChunks(ctx, staleIds...); err != nil {
			return nil, err
		}
	}

	chunks := p.chunker.Chunk(doc.Id, text)
	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}
	for _, chunk := range chunks {
		chunk.Metadata = opts.Metadata
	}

	added, err := p.chunkRepository.AddChunks(ctx, chunks...)
	if err != nil {
		return nil, err
	}

	// Extract IDs
	ids := make([]core.ID, len(added))
	for i, chunk := range added {
		ids[i] = chunk.Id
	}

	// Submit for async processing
	p.pending.Add(1)
	err = p.embeddingPool.Submit(func() {
		defer p.pending.Done()
		if err := p.embeddingProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing embeddings", "document", doc.Name, "err", err)
		}
	})
	if err != nil {
		p.pending.Done()
		p.logger.Error("error submitting embedding work", "err", err)
	}

	return doc, nil
}

// Wait blocks until all submitted embedding work has finished.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
