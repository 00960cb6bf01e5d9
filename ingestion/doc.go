// Package ingestion provides pipeline orchestration for adding documents to the corpus.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Splitting document text into token-bounded chunks
//   - Persisting chunks (the term postings index is updated by the repository)
//   - Generating embeddings asynchronously
//
// Embedding is performed concurrently using a worker pool to maximize
// throughput. Errors during async processing are logged but do not fail the
// ingestion operation; callers that need fully embedded chunks call Wait.
package ingestion
