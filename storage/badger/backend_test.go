package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestWithTransaction(t *testing.T) {
	chunkRepo, docRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			doc, err := docRepo.UpsertDocument(ctx, &core.Document{Name: "a", Source: "notes/a.md"})
			if err != nil {
				return err
			}
			_, err = chunkRepo.AddChunks(ctx, &core.Chunk{
				DocumentId: doc.Id,
				Contents:   "alpha contents",
				TokenCount: 2,
			})
			return err
		})
		require.NoError(t, err)

		doc, err := docRepo.FindDocumentBySource(ctx, "notes/a.md")
		require.NoError(t, err)
		chunks, err := chunkRepo.GetChunksByDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.Len(t, chunks, 1)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		abort := errors.New("abort")
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			if _, err := docRepo.UpsertDocument(ctx, &core.Document{Name: "b", Source: "notes/b.md"}); err != nil {
				return err
			}
			if _, err := chunkRepo.AddChunks(ctx, &core.Chunk{
				DocumentId: core.IDFromContent("notes/b.md"),
				Contents:   "beta contents",
				TokenCount: 2,
			}); err != nil {
				return err
			}
			return abort
		})
		assert.ErrorIs(t, err, abort)

		// Neither the document nor the chunk survived the rollback
		_, err = docRepo.FindDocumentBySource(ctx, "notes/b.md")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		chunks, err := chunkRepo.GetChunksByDocument(ctx, core.IDFromContent("notes/b.md"))
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		err := backend.WithTransaction(ctx, func(outer context.Context) error {
			return backend.WithTransaction(outer, func(inner context.Context) error {
				_, err := docRepo.UpsertDocument(inner, &core.Document{Name: "c", Source: "notes/c.md"})
				return err
			})
		})
		require.NoError(t, err)

		_, err = docRepo.FindDocumentBySource(ctx, "notes/c.md")
		assert.NoError(t, err)
	})
}

func TestFindSimilar(t *testing.T) {
	chunkRepo, docRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	docID := core.IDFromContent("notes/vectors.md")

	// Unit vectors along different axes plus one unembedded chunk
	chunks := []*core.Chunk{
		{DocumentId: docID, Seq: 0, Contents: "x axis", TokenCount: 2, Vector: []float32{1, 0, 0}},
		{DocumentId: docID, Seq: 1, Contents: "y axis", TokenCount: 2, Vector: []float32{0, 1, 0}},
		{DocumentId: docID, Seq: 2, Contents: "diagonal", TokenCount: 1, Vector: []float32{0.7071, 0.7071, 0}},
		{DocumentId: docID, Seq: 3, Contents: "not embedded yet", TokenCount: 3},
	}
	_, err = chunkRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	t.Run("ranked by similarity", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, []float32{1, 0, 0}, 0.5, 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "x axis", results[0].Chunk.Contents)
		assert.Equal(t, "diagonal", results[1].Chunk.Contents)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("threshold filters", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, []float32{1, 0, 0}, 0.99, 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "x axis", results[0].Chunk.Contents)
	})

	t.Run("limit applies", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, []float32{0.7071, 0.7071, 0}, 0.1, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "diagonal", results[0].Chunk.Contents)
	})

	t.Run("no matches", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, []float32{0, 0, 1}, 0.5, 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestDotProduct(t *testing.T) {
	assert.InDelta(t, 1.0, dotProduct([]float32{1, 0}, []float32{1, 0}), 1e-6)
	assert.InDelta(t, 0.0, dotProduct([]float32{1, 0}, []float32{0, 1}), 1e-6)
	// Mismatched lengths use the shorter vector
	assert.InDelta(t, 2.0, dotProduct([]float32{1, 1, 1}, []float32{1, 1}), 1e-6)
}
