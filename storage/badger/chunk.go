package badger

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/retrievit/analyze"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	idSeq, err := backend.GetSequence(chunkIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChunkRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChunkRepository) Close() error {
	return r.idSeq.Release()
}

// FindSimilar delegates to the backend.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddChunks adds one or more chunks to storage.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		stats, err := r.readStats(tx)
		if err != nil {
			return err
		}

		// Generate IDs and set timestamps
		for _, chunk := range chunks {
			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			chunk.Id = core.ID(nextID)

			chunk.InsertedAt = time.Now().UTC()
			chunk.UpdatedAt = chunk.InsertedAt

			// Store primary record
			key := makeChunkKey(chunk.Id)
			value := storage.MarshalChunk(chunk)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update document index
			docKey := makeChunkDocumentKey(chunk.DocumentId, chunk.Seq, chunk.Id)
			if err := tx.Set(docKey, storage.MarshalID(chunk.Id)); err != nil {
				return err
			}

			// Update term postings index
			if err := r.updateTermIndex(tx, chunk); err != nil {
				return err
			}

			stats.TotalChunks++
			stats.TotalTokens += uint64(chunk.TokenCount)
		}

		return r.writeStats(tx, stats)
	})

	return chunks, err
}

// UpdateChunks updates existing chunks.
func (r *ChunkRepository) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		stats, err := r.readStats(tx)
		if err != nil {
			return err
		}
		statsChanged := false

		for _, chunk := range chunks {
			key := makeChunkKey(chunk.Id)

			// Read old chunk to detect changes
			old, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// Update timestamp
			chunk.UpdatedAt = time.Now().UTC()

			// Store updated record
			value := storage.MarshalChunk(chunk)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update document index if position changed
			if old.DocumentId != chunk.DocumentId || old.Seq != chunk.Seq {
				oldDocKey := makeChunkDocumentKey(old.DocumentId, old.Seq, old.Id)
				if err := tx.Delete(oldDocKey); err != nil {
					return err
				}
				newDocKey := makeChunkDocumentKey(chunk.DocumentId, chunk.Seq, chunk.Id)
				if err := tx.Set(newDocKey, storage.MarshalID(chunk.Id)); err != nil {
					return err
				}
			}

			// Reindex terms if the contents changed
			if old.Contents != chunk.Contents {
				if err := r.deleteTermIndex(tx, old); err != nil {
					return err
				}
				if err := r.updateTermIndex(tx, chunk); err != nil {
					return err
				}
				stats.TotalTokens -= uint64(old.TokenCount)
				stats.TotalTokens += uint64(chunk.TokenCount)
				statsChanged = true
			}
		}

		if statsChanged {
			if err := r.writeStats(tx, stats); err != nil {
				return err
			}
		}
		return nil
	})

	return chunks, err
}

// DeleteChunks removes chunks by their IDs.
func (r *ChunkRepository) DeleteChunks(ctx context.Context, ids ...core.ID) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		stats, err := r.readStats(tx)
		if err != nil {
			return err
		}

		for _, id := range ids {
			key := makeChunkKey(id)

			// Read chunk to get metadata for index cleanup
			chunk, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if chunk == nil {
				return storage.ErrNotFound
			}

			// Delete from document index
			docKey := makeChunkDocumentKey(chunk.DocumentId, chunk.Seq, chunk.Id)
			if err := tx.Delete(docKey); err != nil {
				return err
			}

			// Delete from term index
			if err := r.deleteTermIndex(tx, chunk); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}

			stats.TotalChunks--
			stats.TotalTokens -= uint64(chunk.TokenCount)
		}

		return r.writeStats(tx, stats)
	})
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var result *core.Chunk
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		key := makeChunkKey(id)
		var err error
		result, err = r.readChunk(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return result, err
}

// GetChunks retrieves multiple chunks by their IDs.
func (r *ChunkRepository) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	var result []*core.Chunk
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeChunkKey(id)
			chunk, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if chunk != nil {
				result = append(result, chunk)
			}
		}
		return nil
	})
	return result, err
}

// GetChunksByDocument retrieves all chunks of a document, ordered by Seq.
func (r *ChunkRepository) GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		prefix := makePartialChunkDocumentKey(documentID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// The document index key sorts by seq, so iteration order is chunk order
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunkID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			chunk, err := r.readChunk(tx, makeChunkKey(chunkID))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	})

	return results, err
}

// ListChunkIDs returns the IDs of all chunks in storage.
func (r *ChunkRepository) ListChunkIDs(ctx context.Context) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()

			// Skip index keys sharing the record prefix
			if bytes.Equal(key, []byte(chunkIDSeq)) ||
				bytes.HasPrefix(key, []byte(chunkDocumentPrefix)) ||
				bytes.HasPrefix(key, []byte(chunkTermPrefix)) {
				continue
			}

			var chunk *core.Chunk
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			}); err != nil {
				return err
			}
			if chunk != nil {
				ids = append(ids, chunk.Id)
			}
		}
		return nil
	})
	return ids, err
}

// GetPostings returns the postings list for a term.
func (r *ChunkRepository) GetPostings(ctx context.Context, term string) ([]storage.TermPosting, error) {
	postings := []storage.TermPosting{}
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		prefix := makePartialTermKey(term)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			chunkID, ok := chunkIDFromTermKey(iter.Item().Key())
			if !ok {
				continue
			}

			var freq int
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				freq, err = storage.UnmarshalTermFrequency(val)
				return err
			}); err != nil {
				return err
			}

			postings = append(postings, storage.TermPosting{
				ChunkId:   chunkID,
				Frequency: freq,
			})
		}
		return nil
	})
	return postings, err
}

// GetStats returns corpus-wide counters for keyword ranking.
func (r *ChunkRepository) GetStats(ctx context.Context) (*core.CorpusStats, error) {
	var stats *core.CorpusStats
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		var err error
		stats, err = r.readStats(tx)
		return err
	})
	return stats, err
}

// readChunk reads a chunk by key within a transaction.
// Returns nil (no error) if the chunk doesn't exist.
func (r *ChunkRepository) readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}

// updateTermIndex writes postings for every term in the chunk contents.
func (r *ChunkRepository) updateTermIndex(tx *badger.Txn, chunk *core.Chunk) error {
	for term, freq := range analyze.TermCounts(chunk.Contents) {
		key := makeTermKey(term, chunk.Id)
		if err := tx.Set(key, storage.MarshalTermFrequency(freq)); err != nil {
			return err
		}
	}
	return nil
}

// deleteTermIndex removes postings for every term in the chunk contents.
func (r *ChunkRepository) deleteTermIndex(tx *badger.Txn, chunk *core.Chunk) error {
	for term := range analyze.TermCounts(chunk.Contents) {
		key := makeTermKey(term, chunk.Id)
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// readStats reads the corpus stats record within a transaction.
// Returns zeroed stats if the record doesn't exist yet.
func (r *ChunkRepository) readStats(tx *badger.Txn) (*core.CorpusStats, error) {
	item, err := tx.Get(makeCorpusStatsKey())
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return &core.CorpusStats{}, nil
		}
		return nil, err
	}

	var stats *core.CorpusStats
	err = item.Value(func(val []byte) error {
		var err error
		stats, err = storage.UnmarshalCorpusStats(val)
		return err
	})
	return stats, err
}

// writeStats writes the corpus stats record within a transaction.
func (r *ChunkRepository) writeStats(tx *badger.Txn, stats *core.CorpusStats) error {
	stats.UpdatedAt = time.Now().UTC()
	return tx.Set(makeCorpusStatsKey(), storage.MarshalCorpusStats(stats))
}
