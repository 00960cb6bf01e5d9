package storage

import (
	"context"

	"github.com/poiesic/retrievit/core"
)

// TermPosting associates a chunk with the number of times a term occurs in it.
type TermPosting struct {
	ChunkId   core.ID
	Frequency int
}

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn carries the transaction; repository calls
	// made with that context join it instead of opening their own.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing chunks and the
// term postings index derived from them.
type ChunkRepository interface {
	Repository
	// AddChunks adds one or more chunks to storage.
	// Generates new IDs from sequence and sets InsertedAt timestamps.
	// The term postings index and corpus stats are updated in the same
	// transaction.
	// Returns the chunks with generated IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks.
	// Updates the UpdatedAt timestamp automatically and reindexes terms
	// if the contents changed.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// DeleteChunks removes chunks by their IDs.
	// Also removes associated index entries and adjusts corpus stats.
	// Returns ErrNotFound if any chunk doesn't exist.
	DeleteChunks(ctx context.Context, ids ...core.ID) error

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// GetChunksByDocument retrieves all chunks of a document, ordered by Seq.
	GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error)

	// ListChunkIDs returns the IDs of all chunks in storage, in key order.
	ListChunkIDs(ctx context.Context) ([]core.ID, error)

	// GetPostings returns the postings list for a term: every chunk the
	// term occurs in together with its term frequency.
	// Returns an empty slice for unknown terms.
	GetPostings(ctx context.Context, term string) ([]TermPosting, error)

	// GetStats returns corpus-wide counters for keyword ranking.
	GetStats(ctx context.Context) (*core.CorpusStats, error)
}

// DocumentRepository provides operations for managing documents.
type DocumentRepository interface {
	Repository
	// UpsertDocument adds a document or updates it if a document with the
	// same source already exists. Document IDs are content-based
	// (IDFromContent of the source), so the same source always maps to
	// the same document.
	// Sets IngestedAt on first insert and UpdatedAt on every call.
	UpsertDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// FindDocumentBySource finds a document by its source identifier.
	// Returns ErrNotFound if no matching document exists.
	FindDocumentBySource(ctx context.Context, source string) (*core.Document, error)

	// ListDocuments returns all documents in storage.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	// Chunks belonging to the documents are not removed here; callers
	// delete them through the ChunkRepository first.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error
}
