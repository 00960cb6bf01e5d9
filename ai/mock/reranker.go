package mock

import (
	"context"
	"strings"

	"github.com/poiesic/retrievit/ai"
)

// MockReranker is a test double for ai.Reranker.
// It allows custom behavior injection via function fields.
type MockReranker struct {
	// RerankDocumentsFunc is called by RerankDocuments if set.
	// If nil, uses default word-overlap scoring.
	RerankDocumentsFunc func(ctx context.Context, query string, documents []string) ([]ai.RankedDocument, error)

	callCount int
}

// NewMockReranker creates a mock reranker with default word-overlap scoring.
// Note: Returns concrete type to allow test assertions via GetMockReranker().
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// RerankDocuments scores documents by query word overlap.
// Default behavior: each query word found in a document adds one point,
// capped at 10, so tests get stable, explainable rankings.
func (m *MockReranker) RerankDocuments(ctx context.Context, query string, documents []string) ([]ai.RankedDocument, error) {
	m.callCount++

	if m.RerankDocumentsFunc != nil {
		return m.RerankDocumentsFunc(ctx, query, documents)
	}

	words := strings.Fields(strings.ToLower(query))
	ranked := make([]ai.RankedDocument, 0, len(documents))
	for i, doc := range documents {
		lower := strings.ToLower(doc)
		score := 0.0
		for _, w := range words {
			if strings.Contains(lower, w) {
				score++
			}
		}
		if score > 10 {
			score = 10
		}
		ranked = append(ranked, ai.RankedDocument{Index: i, Score: score})
	}

	// Sort by score descending, stable on input order
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j-1].Score < ranked[j].Score; j-- {
			ranked[j-1], ranked[j] = ranked[j], ranked[j-1]
		}
	}

	return ranked, nil
}

// CallCount returns the number of times RerankDocuments was called.
func (m *MockReranker) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockReranker) Reset() {
	m.callCount = 0
	m.RerankDocumentsFunc = nil
}
