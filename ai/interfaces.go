package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces chat-completion text from a system and user prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate runs a chat completion with the given system and user prompts
	// and returns the model's reply text.
	// Returns an error if the completion fails.
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Reranker applies a learned relevance model to re-score candidate documents
// against a query. This is the semantic ranking stage applied after the
// initial retrieval.
// Implementations must be thread-safe for concurrent use.
type Reranker interface {
	// RerankDocuments scores every document for relevance to the query.
	// The result contains one entry per scored document, sorted by score
	// descending. Index refers to the position in the input slice.
	// Returns an error if reranking fails; callers usually fall back to
	// the original order in that case.
	RerankDocuments(ctx context.Context, query string, documents []string) ([]RankedDocument, error)
}

// RankedDocument is a reranker verdict for a single document.
type RankedDocument struct {
	// Index is the document's position in the input slice.
	Index int

	// Score is the relevance score on a 0-10 scale. Higher is more relevant.
	Score float64
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder, Generator, and Reranker instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the chat-completion service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Reranker returns the semantic reranking service.
	// The returned Reranker is safe for concurrent use.
	Reranker() Reranker

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
