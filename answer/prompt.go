package answer

import (
	"fmt"
	"strings"

	"github.com/poiesic/retrievit/analyze"
	"github.com/poiesic/retrievit/core"
)

const groundedSystemPrompt = `You answer questions using ONLY the numbered sources provided in the prompt.

Rules:
- Base every statement on the sources. Do not use outside knowledge.
- Cite sources inline with their bracketed number, e.g. [1] or [2].
- If the sources do not contain the answer, say so plainly instead of guessing.
- Keep the answer focused on the question.`

const noContextSystemPrompt = `You answer questions for a document corpus, but no relevant passages were found for this question.

Rules:
- Tell the user that nothing relevant was found in the corpus.
- You may suggest how to rephrase the question, but do not invent an answer.`

// buildGroundedPrompt formats the retrieved sources and the question into
// the user prompt. Sources are numbered [1]..[n] in result order and
// trimmed to the token budget; at least one source is always included.
// Returns the prompt and the sources that made it in.
func buildGroundedPrompt(question string, results []*core.SearchResult, docNames map[core.ID]string, budget int, count analyze.TokenCounter) (string, []*core.SearchResult) {
	var b strings.Builder
	b.WriteString("Sources:\n")

	included := make([]*core.SearchResult, 0, len(results))
	spent := 0
	for _, result := range results {
		name := docNames[result.Chunk.DocumentId]
		block := formatSource(len(included)+1, name, result.Chunk.Contents)

		cost := count(block)
		if len(included) > 0 && spent+cost > budget {
			break
		}
		b.WriteString(block)
		spent += cost
		included = append(included, result)
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n", question)
	return b.String(), included
}

// buildNoContextPrompt formats the question when retrieval found nothing.
func buildNoContextPrompt(question string) string {
	return fmt.Sprintf("Question: %s\n", question)
}

func formatSource(marker int, documentName, contents string) string {
	if documentName == "" {
		return fmt.Sprintf("[%d] %s\n\n", marker, strings.TrimSpace(contents))
	}
	return fmt.Sprintf("[%d] (%s) %s\n\n", marker, documentName, strings.TrimSpace(contents))
}
