package search

import "github.com/poiesic/retrievit/core"

const (
	// DefaultTopK is the number of results returned when none is requested.
	DefaultTopK = 10

	// DefaultMinSimilarity is the cosine similarity floor for vector search.
	DefaultMinSimilarity = 0.60

	// DefaultRerankDepth is how many candidates the reranker re-scores.
	DefaultRerankDepth = 10

	// rrfK is the Reciprocal Rank Fusion constant for hybrid search.
	rrfK = 60.0

	// candidatePoolFloor is the minimum candidate pool size per retrieval
	// leg in hybrid mode.
	candidatePoolFloor = 20
)

// Options controls a single search request.
type Options struct {
	// Mode selects keyword, vector, or hybrid retrieval.
	// Default is hybrid.
	Mode core.SearchMode

	// TopK is the maximum number of results to return.
	TopK int

	// MinSimilarity is the cosine similarity floor for the vector leg.
	MinSimilarity float32

	// Rerank enables the semantic reranking stage.
	Rerank bool

	// RerankDepth is how many top candidates are sent to the reranker.
	RerankDepth int
}

// DefaultOptions returns the options used when a caller passes the zero value.
func DefaultOptions() Options {
	return Options{
		Mode:          core.SearchModeHybrid,
		TopK:          DefaultTopK,
		MinSimilarity: DefaultMinSimilarity,
		RerankDepth:   DefaultRerankDepth,
	}
}

// normalize fills in defaults for unset fields.
func (o Options) normalize() Options {
	if o.Mode == 0 {
		o.Mode = core.SearchModeHybrid
	}
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.MinSimilarity <= 0 {
		o.MinSimilarity = DefaultMinSimilarity
	}
	if o.RerankDepth <= 0 {
		o.RerankDepth = DefaultRerankDepth
	}
	return o
}

// candidatePool is the per-leg candidate count for hybrid fusion.
// An expanded pool lets a result that ranks mid-list in both legs beat
// one that only ever appears in a single leg.
func (o Options) candidatePool() int {
	pool := o.TopK * 3
	if pool < candidatePoolFloor {
		pool = candidatePoolFloor
	}
	return pool
}
