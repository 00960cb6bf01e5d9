package search

import (
	"github.com/poiesic/retrievit/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, opts Options)
	AfterKeywordSearch(ids []uint64)
	AfterVectorSearch(ids []uint64)
	KeywordHit(chunk *core.Chunk)
	VectorHit(chunk *core.Chunk)
	FusedHit(chunk *core.Chunk)
	AfterRerank(results []*core.SearchResult)
	RerankSkipped(err error)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ Options)          {}
func (n *noopMonitor) AfterKeywordSearch(_ []uint64)      {}
func (n *noopMonitor) AfterVectorSearch(_ []uint64)       {}
func (n *noopMonitor) KeywordHit(_ *core.Chunk)           {}
func (n *noopMonitor) VectorHit(_ *core.Chunk)            {}
func (n *noopMonitor) FusedHit(_ *core.Chunk)             {}
func (n *noopMonitor) AfterRerank(_ []*core.SearchResult) {}
func (n *noopMonitor) RerankSkipped(_ error)              {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)      {}
