package ingestion

import (
	"strings"

	"github.com/poiesic/retrievit/analyze"
	"github.com/poiesic/retrievit/core"
)

// Default chunking parameters, in cl100k_base tokens.
const (
	DefaultChunkTokens  = 512
	DefaultChunkOverlap = 64
)

// Chunker splits document text into token-bounded chunks on line
// boundaries, with a configurable token overlap between adjacent chunks.
type Chunker struct {
	maxTokens   int
	overlap     int
	countTokens analyze.TokenCounter
}

// NewChunker creates a chunker producing chunks of at most maxTokens
// tokens with roughly overlap tokens shared between neighbours.
func NewChunker(maxTokens, overlap int, countTokens analyze.TokenCounter) *Chunker {
	if maxTokens < 1 {
		maxTokens = DefaultChunkTokens
	}
	if overlap < 0 || overlap >= maxTokens {
		overlap = DefaultChunkOverlap
	}
	if countTokens == nil {
		countTokens = analyze.NewTokenCounter(nil)
	}
	return &Chunker{
		maxTokens:   maxTokens,
		overlap:     overlap,
		countTokens: countTokens,
	}
}

// Chunk splits text into chunks for the given document.
// Lines are packed greedily until the token budget is hit; a line longer
// than the budget becomes a chunk on its own. The returned chunks carry
// Seq, Contents, and TokenCount; vectors are filled in later.
func (c *Chunker) Chunk(documentID core.ID, text string) []*core.Chunk {
	lines := strings.Split(text, "\n")

	var chunks []*core.Chunk
	startLine := 0
	seq := 0

	for startLine < len(lines) {
		endLine := startLine
		currentTokens := 0
		var contents strings.Builder

		// The first line is always taken, so a line longer than the
		// budget becomes a chunk on its own.
		for endLine < len(lines) {
			lineTokens := c.countTokens(lines[endLine])
			if currentTokens > 0 && currentTokens+lineTokens > c.maxTokens {
				break
			}
			if contents.Len() > 0 {
				contents.WriteString("\n")
			}
			contents.WriteString(lines[endLine])
			currentTokens += lineTokens
			endLine++
		}

		text := contents.String()
		if strings.TrimSpace(text) != "" {
			chunks = append(chunks, &core.Chunk{
				DocumentId: documentID,
				Seq:        seq,
				Contents:   text,
				TokenCount: currentTokens,
			})
			seq++
		}

		newStart := endLine - c.overlapLines(lines, startLine, endLine)
		if newStart <= startLine {
			newStart = startLine + 1
		}
		if newStart >= endLine && endLine < len(lines) {
			newStart = endLine
		}
		if endLine == len(lines) {
			break
		}
		startLine = newStart
	}

	return chunks
}

// overlapLines counts how many trailing lines of the previous chunk are
// repeated at the start of the next one to reach the overlap budget.
func (c *Chunker) overlapLines(lines []string, start, end int) int {
	if c.overlap == 0 {
		return 0
	}

	count := 0
	tokens := 0
	for i := end - 1; i >= start && tokens < c.overlap; i-- {
		tokens += c.countTokens(lines[i])
		count++
	}
	// Never overlap the whole window, or chunking would not advance
	if count >= end-start {
		count = end - start - 1
	}
	return count
}
