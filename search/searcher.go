package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/analyze"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/storage"
)

// Searcher provides keyword, vector, and hybrid search over corpus chunks.
type Searcher struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	reranker        ai.Reranker
	logger          *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	chunkRepository storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		chunkRepository: chunkRepository,
		embedder:        provider.Embedder(),
		reranker:        provider.Reranker(),
		logger:          slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search retrieves chunks relevant to the query.
// Returns up to opts.TopK results, ranked by relevance score.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, opts, nil)
}

// SearchWithMonitor retrieves chunks relevant to the query with monitoring.
// The monitor receives callbacks at each stage of the search process.
// Returns up to opts.TopK results, ranked by relevance score.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, opts Options, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	opts = opts.normalize()

	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query, opts)

	var results []*core.SearchResult
	var err error
	switch opts.Mode {
	case core.SearchModeKeyword:
		results, err = s.keywordLeg(ctx, query, opts.TopK, monitor)
	case core.SearchModeVector:
		results, err = s.vectorLeg(ctx, query, opts.MinSimilarity, opts.TopK, monitor)
	case core.SearchModeHybrid:
		results, err = s.hybrid(ctx, query, opts, monitor)
	default:
		err = core.ErrInvalidSearchMode
	}
	if err != nil {
		return nil, err
	}

	// Apply verbatim match boost
	for _, result := range results {
		if analyze.ContainsAllQueryWords(result.Chunk.Contents, query) {
			result.Score += 0.3
		}
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if opts.Rerank {
		results = s.rerank(ctx, query, results, opts.RerankDepth, monitor)
	}

	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}
	monitor.Finish(results)

	return results, nil
}

// keywordLeg runs BM25 retrieval over the term postings index.
func (s *Searcher) keywordLeg(ctx context.Context, query string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	results, err := keywordSearch(ctx, s.chunkRepository, query, limit)
	if err != nil {
		s.logger.Error("error running keyword search", "query", query, "err", err)
		return nil, err
	}

	ids := make([]uint64, 0, len(results))
	for _, result := range results {
		ids = append(ids, uint64(result.Chunk.Id))
		monitor.KeywordHit(result.Chunk)
	}
	monitor.AfterKeywordSearch(ids)

	return results, nil
}

// vectorLeg embeds the query and retrieves chunks by cosine similarity.
func (s *Searcher) vectorLeg(ctx context.Context, query string, minSimilarity float32, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	core.NormalizeVector(embedding)

	results, err := s.chunkRepository.FindSimilar(ctx, embedding, minSimilarity, limit)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}

	ids := make([]uint64, 0, len(results))
	for _, result := range results {
		ids = append(ids, uint64(result.Chunk.Id))
		monitor.VectorHit(result.Chunk)
	}
	monitor.AfterVectorSearch(ids)

	return results, nil
}

// hybrid runs both retrieval legs over an expanded candidate pool and fuses
// their rankings with Reciprocal Rank Fusion. If one leg fails, the other
// leg's results are used alone; the search fails only when both legs fail.
func (s *Searcher) hybrid(ctx context.Context, query string, opts Options, monitor SearchMonitor) ([]*core.SearchResult, error) {
	pool := opts.candidatePool()

	keywordResults, keywordErr := s.keywordLeg(ctx, query, pool, monitor)
	vectorResults, vectorErr := s.vectorLeg(ctx, query, opts.MinSimilarity, pool, monitor)

	if keywordErr != nil && vectorErr != nil {
		return nil, vectorErr
	}
	if keywordErr != nil {
		s.logger.Warn("keyword leg failed, using vector results only", "err", keywordErr)
		return vectorResults, nil
	}
	if vectorErr != nil {
		s.logger.Warn("vector leg failed, using keyword results only", "err", vectorErr)
		return keywordResults, nil
	}

	// Reciprocal Rank Fusion over both rankings
	fused := make(map[core.ID]*core.SearchResult)
	for rank, result := range keywordResults {
		fused[result.Chunk.Id] = &core.SearchResult{
			Chunk: result.Chunk,
			Score: float32(1.0 / (rrfK + float64(rank+1))),
		}
	}
	for rank, result := range vectorResults {
		contribution := float32(1.0 / (rrfK + float64(rank+1)))
		if existing, ok := fused[result.Chunk.Id]; ok {
			existing.Score += contribution
		} else {
			fused[result.Chunk.Id] = &core.SearchResult{
				Chunk: result.Chunk,
				Score: contribution,
			}
		}
	}

	results := make([]*core.SearchResult, 0, len(fused))
	for _, result := range fused {
		monitor.FusedHit(result.Chunk)
		results = append(results, result)
	}
	return results, nil
}

// rerank re-scores the top candidates with the semantic reranker.
// Reranked chunks carry the model's 0-10 relevance score and lead the
// result list; candidates the model did not score keep their original
// order behind them. A reranker failure never fails the search.
func (s *Searcher) rerank(ctx context.Context, query string, results []*core.SearchResult, depth int, monitor SearchMonitor) []*core.SearchResult {
	if s.reranker == nil || len(results) == 0 {
		return results
	}
	if depth > len(results) {
		depth = len(results)
	}

	documents := make([]string, depth)
	for i := 0; i < depth; i++ {
		documents[i] = results[i].Chunk.Contents
	}

	ranked, err := s.reranker.RerankDocuments(ctx, query, documents)
	if err != nil {
		s.logger.Warn("reranker failed, keeping retrieval order", "err", err)
		monitor.RerankSkipped(err)
		return results
	}

	reordered := make([]*core.SearchResult, 0, len(results))
	scored := make(map[int]bool, len(ranked))
	for _, verdict := range ranked {
		if verdict.Index < 0 || verdict.Index >= depth {
			continue
		}
		scored[verdict.Index] = true
		reordered = append(reordered, &core.SearchResult{
			Chunk: results[verdict.Index].Chunk,
			Score: float32(verdict.Score),
		})
	}
	// Candidates the reranker did not score keep their original position
	for i := 0; i < depth; i++ {
		if !scored[i] {
			reordered = append(reordered, results[i])
		}
	}
	reordered = append(reordered, results[depth:]...)

	monitor.AfterRerank(reordered)
	return reordered
}
