package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SearchMode selects the retrieval strategy used to match chunks to a query.
type SearchMode int

const (
	// SearchModeKeyword ranks chunks by lexical term match (BM25).
	SearchModeKeyword SearchMode = iota + 1
	// SearchModeVector ranks chunks by embedding similarity.
	SearchModeVector
	// SearchModeHybrid fuses keyword and vector rankings.
	SearchModeHybrid
)

// String returns the mode name used in CLI flags and logs.
func (m SearchMode) String() string {
	switch m {
	case SearchModeKeyword:
		return "keyword"
	case SearchModeVector:
		return "vector"
	case SearchModeHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// ParseSearchMode parses a mode name as used in CLI flags.
func ParseSearchMode(s string) (SearchMode, error) {
	switch s {
	case "keyword":
		return SearchModeKeyword, nil
	case "vector":
		return SearchModeVector, nil
	case "hybrid":
		return SearchModeHybrid, nil
	default:
		return 0, ErrInvalidSearchMode
	}
}

// Document represents an ingested source of text.
// Its ID is derived from the source identifier, so re-ingesting the
// same source updates the existing document.
type Document struct {
	Id         ID
	Name       string
	Source     string            // Path or URL the document was ingested from
	Metadata   map[string]string // Optional metadata (e.g., "content-type", "language")
	IngestedAt time.Time         // When the document was first ingested
	UpdatedAt  time.Time         // When the document was last re-ingested
}

// Chunk is the retrievable unit of text cut from a document.
// It may be enriched with an embedding vector after ingestion.
type Chunk struct {
	Id         ID
	DocumentId ID
	Seq        int // Position of the chunk within its document
	Contents   string
	TokenCount int               // Token length of Contents, used for BM25 length normalization
	Vector     []float32         // Embedding vector (populated by the embedding processor)
	Metadata   map[string]string // Optional metadata
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// CorpusStats holds corpus-wide counters needed for keyword ranking.
type CorpusStats struct {
	TotalChunks uint64
	TotalTokens uint64
	UpdatedAt   time.Time
}

// AvgChunkTokens returns the mean chunk length in tokens.
// Returns 0 for an empty corpus.
func (s *CorpusStats) AvgChunkTokens() float64 {
	if s.TotalChunks == 0 {
		return 0
	}
	return float64(s.TotalTokens) / float64(s.TotalChunks)
}

// SearchResult represents a search result with the full chunk and relevance score.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}

// Citation links a marker in generated text back to a source chunk.
type Citation struct {
	Marker       int // The n in "[n]" as it appears in the answer text
	ChunkId      ID
	DocumentName string
}

// Answer is a grounded chat-completion result with the sources it drew from.
type Answer struct {
	Query     string
	Text      string
	Sources   []*SearchResult
	Citations []Citation
}
