package reindex

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReindexer_Run(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	added := addTestChunks(t, repo, 10)

	// Run reindexing
	var buf bytes.Buffer
	embedder := &mockEmbedder{}
	config := &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	reindexer := NewReindexer(repo, embedder, config, &buf)
	err := reindexer.Run(ctx)
	require.NoError(t, err)

	// Verify all chunks have embeddings
	ids, err := repo.ListChunkIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ids, len(added))

	updated, err := repo.GetChunks(ctx, ids...)
	require.NoError(t, err)
	require.Len(t, updated, 10)

	for _, chunk := range updated {
		require.NotEmpty(t, chunk.Vector, "chunk %d should have embedding", chunk.Id)
		// Verify normalization
		var magnitude float32
		for _, v := range chunk.Vector {
			magnitude += v * v
		}
		assert.InDelta(t, 1.0, magnitude, 0.01, "vector should be normalized")
	}

	// Check progress output
	output := buf.String()
	assert.Contains(t, output, "10/10", "should show completion")
}

func TestReindexer_EmptyCorpus(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	var buf bytes.Buffer
	embedder := &mockEmbedder{}
	config := DefaultConfig()

	reindexer := NewReindexer(repo, embedder, config, &buf)
	err := reindexer.Run(ctx)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "0 chunks", "should report zero chunks")
}

func TestReindexer_NilConfig(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	var buf bytes.Buffer
	embedder := &mockEmbedder{}

	reindexer := NewReindexer(repo, embedder, nil, &buf)
	require.NotNil(t, reindexer.config, "nil config should fall back to defaults")
	assert.Equal(t, DefaultConfig().BatchSize, reindexer.config.BatchSize)
}

func TestReindexer_ContextCancellation(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())

	addTestChunks(t, repo, 10)

	// Cancel after processing a few
	callCount := 0
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			callCount++
			if callCount == 2 {
				cancel()
			}
			result := make([][]float32, len(texts))
			for i := range result {
				result[i] = []float32{1.0, 0.0, 0.0}
			}
			return result, nil
		},
	}

	var buf bytes.Buffer
	config := &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	reindexer := NewReindexer(repo, embedder, config, &buf)
	err := reindexer.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReindexer_EmbeddingError(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	addTestChunks(t, repo, 1)

	// Embedder that always fails
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("persistent error")
		},
	}

	var buf bytes.Buffer
	config := &Config{
		BatchSize:      1,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     10 * time.Millisecond,
	}

	reindexer := NewReindexer(repo, embedder, config, &buf)
	err := reindexer.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persistent error")
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Greater(t, config.BatchSize, 0, "batch size should be positive")
	assert.Greater(t, config.ReportInterval, 0, "report interval should be positive")
	assert.Greater(t, config.MaxRetries, 0, "max retries should be positive")
	assert.Greater(t, config.RetryDelay, time.Duration(0), "retry delay should be positive")
}

func TestReindexer_ProgressTracking(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	// Add enough chunks to trigger progress updates
	addTestChunks(t, repo, 25)

	var buf bytes.Buffer
	embedder := &mockEmbedder{}
	config := &Config{
		BatchSize:      5,
		ReportInterval: 10, // Report every 10 chunks
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	reindexer := NewReindexer(repo, embedder, config, &buf)
	err := reindexer.Run(ctx)
	require.NoError(t, err)

	output := buf.String()
	// Should have progress output
	assert.Contains(t, output, "Progress:", "should show progress")
	assert.Contains(t, output, "25/25", "should show final count")
}
