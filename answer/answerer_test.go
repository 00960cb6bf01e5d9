package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/retrievit/ai/mock"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/search"
	"github.com/poiesic/retrievit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorOptions() search.Options {
	return search.Options{Mode: core.SearchModeVector}
}

func TestNewAnswerer(t *testing.T) {
	chunkRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	provider := mock.NewMockProvider()
	searcher, err := search.NewSearcher(chunkRepo, provider)
	require.NoError(t, err)

	t.Run("valid configuration", func(t *testing.T) {
		answerer, err := NewAnswerer(searcher, docRepo, provider)
		require.NoError(t, err)
		assert.NotNil(t, answerer)
	})

	t.Run("nil searcher", func(t *testing.T) {
		_, err := NewAnswerer(nil, docRepo, provider)
		assert.Equal(t, ErrSearcherRequired, err)
	})

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewAnswerer(searcher, nil, provider)
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewAnswerer(searcher, docRepo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestAsk_EmptyQuestion(t *testing.T) {
	chunkRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	provider := mock.NewMockProvider()
	searcher, err := search.NewSearcher(chunkRepo, provider)
	require.NoError(t, err)
	answerer, err := NewAnswerer(searcher, docRepo, provider)
	require.NoError(t, err)

	_, err = answerer.Ask(context.Background(), "  ")
	assert.Equal(t, ErrEmptyQuestion, err)
}

func TestAsk_Grounded(t *testing.T) {
	chunkRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	doc, err := docRepo.UpsertDocument(ctx, &core.Document{
		Name:   "storage-guide",
		Source: "docs/storage-guide.md",
	})
	require.NoError(t, err)

	chunks := []*core.Chunk{
		{
			DocumentId: doc.Id,
			Seq:        0,
			Contents:   "Compaction merges overlapping key ranges into fresh tables.",
			TokenCount: 9,
			Vector:     []float32{0.9, 0.1, 0.0},
		},
		{
			DocumentId: doc.Id,
			Seq:        1,
			Contents:   "Write stalls happen when level zero fills faster than compaction drains it.",
			TokenCount: 13,
			Vector:     []float32{0.85, 0.15, 0.0},
		},
	}
	_, err = chunkRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}
	mockGenerator := mock.NewMockGenerator()
	mockGenerator.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return "Compaction merges key ranges [1] and slow compaction causes write stalls [2].", nil
	}
	provider := mock.NewMockProviderWithServices(mockEmbedder, mockGenerator, mock.NewMockReranker())

	searcher, err := search.NewSearcher(chunkRepo, provider)
	require.NoError(t, err)
	answerer, err := NewAnswerer(searcher, docRepo, provider,
		WithSearchOptions(vectorOptions()))
	require.NoError(t, err)

	result, err := answerer.Ask(ctx, "what causes write stalls")
	require.NoError(t, err)

	assert.Equal(t, "what causes write stalls", result.Query)
	assert.Contains(t, result.Text, "write stalls")
	require.Len(t, result.Sources, 2)

	// Both markers parsed, linked to the right document
	require.Len(t, result.Citations, 2)
	assert.Equal(t, 1, result.Citations[0].Marker)
	assert.Equal(t, 2, result.Citations[1].Marker)
	for _, citation := range result.Citations {
		assert.Equal(t, "storage-guide", citation.DocumentName)
		assert.NotZero(t, citation.ChunkId)
	}

	// Prompt carried the numbered sources and document name
	assert.Contains(t, mockGenerator.LastPrompt(), "[1] (storage-guide)")
	assert.Contains(t, mockGenerator.LastPrompt(), "[2] (storage-guide)")
	assert.Contains(t, mockGenerator.LastSystem(), "numbered sources")
}

func TestAsk_NoSources(t *testing.T) {
	chunkRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	mockGenerator := mock.NewMockGenerator()
	mockGenerator.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return "Nothing relevant was found in the corpus.", nil
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), mockGenerator, mock.NewMockReranker())

	searcher, err := search.NewSearcher(chunkRepo, provider)
	require.NoError(t, err)
	answerer, err := NewAnswerer(searcher, docRepo, provider,
		WithSearchOptions(vectorOptions()))
	require.NoError(t, err)

	result, err := answerer.Ask(context.Background(), "an unanswerable question")
	require.NoError(t, err)

	assert.Empty(t, result.Sources)
	assert.Empty(t, result.Citations)
	assert.Contains(t, result.Text, "Nothing relevant")
	assert.Contains(t, mockGenerator.LastSystem(), "no relevant passages")
}

func TestAsk_GeneratorError(t *testing.T) {
	chunkRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	mockGenerator := mock.NewMockGenerator()
	mockGenerator.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return "", errors.New("chat service down")
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), mockGenerator, mock.NewMockReranker())

	searcher, err := search.NewSearcher(chunkRepo, provider)
	require.NoError(t, err)
	answerer, err := NewAnswerer(searcher, docRepo, provider,
		WithSearchOptions(vectorOptions()))
	require.NoError(t, err)

	_, err = answerer.Ask(context.Background(), "any question")
	assert.Error(t, err)
}

func TestAsk_ContextBudget(t *testing.T) {
	chunkRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	doc, err := docRepo.UpsertDocument(ctx, &core.Document{
		Name:   "big-doc",
		Source: "docs/big-doc.md",
	})
	require.NoError(t, err)

	// Each chunk costs well over half the budget, so only the first fits
	long := strings.Repeat("compaction details ", 100)
	chunks := []*core.Chunk{
		{DocumentId: doc.Id, Seq: 0, Contents: long, TokenCount: 200, Vector: []float32{0.9, 0.1, 0.0}},
		{DocumentId: doc.Id, Seq: 1, Contents: long, TokenCount: 200, Vector: []float32{0.89, 0.11, 0.0}},
	}
	_, err = chunkRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}
	provider := mock.NewMockProviderWithServices(mockEmbedder, mock.NewMockGenerator(), mock.NewMockReranker())

	searcher, err := search.NewSearcher(chunkRepo, provider)
	require.NoError(t, err)
	answerer, err := NewAnswerer(searcher, docRepo, provider,
		WithSearchOptions(vectorOptions()),
		WithContextBudget(300))
	require.NoError(t, err)

	result, err := answerer.Ask(ctx, "compaction behavior")
	require.NoError(t, err)

	// Budget admits only the first source, but never zero
	assert.Len(t, result.Sources, 1)
}

func TestParseCitations(t *testing.T) {
	docID := core.IDFromContent("doc")
	sources := []*core.SearchResult{
		{Chunk: &core.Chunk{Id: 11, DocumentId: docID}},
		{Chunk: &core.Chunk{Id: 22, DocumentId: docID}},
	}
	names := map[core.ID]string{docID: "manual"}

	t.Run("markers in order of first appearance", func(t *testing.T) {
		citations := parseCitations("see [2], then [1], then [2] again", sources, names)
		require.Len(t, citations, 2)
		assert.Equal(t, 2, citations[0].Marker)
		assert.Equal(t, core.ID(22), citations[0].ChunkId)
		assert.Equal(t, 1, citations[1].Marker)
		assert.Equal(t, "manual", citations[1].DocumentName)
	})

	t.Run("out of range markers ignored", func(t *testing.T) {
		citations := parseCitations("bogus [0] and [7] markers", sources, names)
		assert.Empty(t, citations)
	})

	t.Run("no markers", func(t *testing.T) {
		citations := parseCitations("an answer without citations", sources, names)
		assert.Empty(t, citations)
	})
}
