package ingestion

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/retrievit/ai/mock"
	"github.com/poiesic/retrievit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipeline(t *testing.T) {
	chunkRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		pipeline, err := NewPipeline(chunkRepo, docRepo, provider)
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("with options", func(t *testing.T) {
		pipeline, err := NewPipeline(chunkRepo, docRepo, provider,
			WithPoolSize(2),
			WithChunkTokens(128),
			WithChunkOverlap(16))
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("nil chunk repository", func(t *testing.T) {
		_, err := NewPipeline(nil, docRepo, provider)
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewPipeline(chunkRepo, nil, provider)
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(chunkRepo, docRepo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestIngestDocument(t *testing.T) {
	chunkRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	pipeline, err := NewPipeline(chunkRepo, docRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()
	doc, err := pipeline.IngestDocument(ctx, "notes", "notes.md",
		"badger is an embedded key value store\nit stores keys in sorted order",
		&IngestOptions{Metadata: map[string]string{"lang": "en"}})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.NotZero(t, doc.Id)
	assert.Equal(t, "notes", doc.Name)

	// Wait for async embedding before inspecting chunks
	pipeline.Wait()

	chunks, err := chunkRepo.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.Equal(t, doc.Id, chunk.DocumentId)
		assert.NotEmpty(t, chunk.Vector, "chunk should be embedded after Wait")
		assert.Equal(t, "en", chunk.Metadata["lang"])
		assert.Greater(t, chunk.TokenCount, 0)
	}

	// Term postings were built for the chunk contents
	postings, err := chunkRepo.GetPostings(ctx, "badger")
	require.NoError(t, err)
	assert.NotEmpty(t, postings)

	stats, err := chunkRepo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(chunks)), stats.TotalChunks)
}

func TestIngestDocument_EmptyText(t *testing.T) {
	chunkRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	pipeline, err := NewPipeline(chunkRepo, docRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.IngestDocument(context.Background(), "empty", "empty.md", "   \n  ", nil)
	assert.Equal(t, ErrEmptyText, err)
}

func TestIngestDocument_ReingestReplacesChunks(t *testing.T) {
	chunkRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	pipeline, err := NewPipeline(chunkRepo, docRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()

	first, err := pipeline.IngestDocument(ctx, "guide", "guide.md",
		"original contents about compaction", nil)
	require.NoError(t, err)
	pipeline.Wait()

	second, err := pipeline.IngestDocument(ctx, "guide", "guide.md",
		"rewritten contents about replication", nil)
	require.NoError(t, err)
	pipeline.Wait()

	// Same source maps to the same document
	assert.Equal(t, first.Id, second.Id)

	chunks, err := chunkRepo.GetChunksByDocument(ctx, second.Id)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.NotContains(t, chunk.Contents, "compaction")
		assert.Contains(t, chunk.Contents, "replication")
	}

	// The old contents are gone from the postings index too
	postings, err := chunkRepo.GetPostings(ctx, "compaction")
	require.NoError(t, err)
	assert.Empty(t, postings)
}

func TestIngestDocument_LongText(t *testing.T) {
	chunkRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	pipeline, err := NewPipeline(chunkRepo, docRepo, mock.NewMockProvider(),
		WithChunkTokens(16), WithChunkOverlap(0))
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()

	// Many lines, far beyond a single chunk budget
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("a line of filler text for chunking purposes\n")
	}

	doc, err := pipeline.IngestDocument(ctx, "long", "long.md", b.String(), nil)
	require.NoError(t, err)
	pipeline.Wait()

	chunks, err := chunkRepo.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)

	// Seq values are dense and ordered
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Seq)
	}
}
