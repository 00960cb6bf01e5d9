package search

import (
	"context"
	"math"
	"sort"

	"github.com/poiesic/retrievit/analyze"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/storage"
)

// BM25 parameters. Standard values from the literature; k1 controls term
// frequency saturation, b controls document length normalization.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// keywordSearch ranks chunks against the query terms with BM25 over the
// term postings index. Returns up to limit results, best first.
func keywordSearch(ctx context.Context, repo storage.ChunkRepository, query string, limit int) ([]*core.SearchResult, error) {
	terms := analyze.Tokenize(query)
	if len(terms) == 0 {
		return []*core.SearchResult{}, nil
	}

	stats, err := repo.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	if stats.TotalChunks == 0 {
		return []*core.SearchResult{}, nil
	}
	totalChunks := float64(stats.TotalChunks)
	avgLength := stats.AvgChunkTokens()

	// Collect term frequencies per candidate chunk and document
	// frequencies per term.
	seen := make(map[string]bool, len(terms))
	termFreqs := make(map[core.ID]map[string]int)
	docFreq := make(map[string]int, len(terms))
	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true

		postings, err := repo.GetPostings(ctx, term)
		if err != nil {
			return nil, err
		}
		docFreq[term] = len(postings)
		for _, posting := range postings {
			freqs := termFreqs[posting.ChunkId]
			if freqs == nil {
				freqs = make(map[string]int)
				termFreqs[posting.ChunkId] = freqs
			}
			freqs[term] = posting.Frequency
		}
	}

	if len(termFreqs) == 0 {
		return []*core.SearchResult{}, nil
	}

	ids := make([]core.ID, 0, len(termFreqs))
	for id := range termFreqs {
		ids = append(ids, id)
	}
	chunks, err := repo.GetChunks(ctx, ids...)
	if err != nil {
		return nil, err
	}

	results := make([]*core.SearchResult, 0, len(chunks))
	for _, chunk := range chunks {
		// Without token counts there is no length signal; skip length
		// normalization rather than divide by a zero average.
		norm := bm25K1
		if avgLength > 0 {
			length := float64(chunk.TokenCount)
			norm = bm25K1 * (1 - bm25B + bm25B*length/avgLength)
		}

		var score float64
		for term, freq := range termFreqs[chunk.Id] {
			idf := math.Log(1 + (totalChunks-float64(docFreq[term])+0.5)/(float64(docFreq[term])+0.5))
			tf := float64(freq)
			score += idf * (tf * (bm25K1 + 1)) / (tf + norm)
		}

		results = append(results, &core.SearchResult{
			Chunk: chunk,
			Score: float32(score),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
