package answer

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/analyze"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/search"
	"github.com/poiesic/retrievit/storage"
)

// DefaultContextBudget is the token budget for retrieved sources in the prompt.
const DefaultContextBudget = 3072

// citationPattern matches bracketed source markers like [1] in answer text.
var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// Answerer produces grounded answers: it retrieves relevant chunks and
// feeds them to a chat completion as numbered context.
type Answerer struct {
	searcher           *search.Searcher
	documentRepository storage.DocumentRepository
	generator          ai.Generator
	searchOptions      search.Options
	contextBudget      int
	countTokens        analyze.TokenCounter
	logger             *slog.Logger
}

// Option configures an Answerer.
type Option func(*Answerer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Answerer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// WithSearchOptions sets the retrieval options used for every question.
// Default is search.DefaultOptions().
func WithSearchOptions(opts search.Options) Option {
	return func(a *Answerer) error {
		a.searchOptions = opts
		return nil
	}
}

// WithContextBudget sets the token budget for sources in the prompt.
// Default is DefaultContextBudget.
func WithContextBudget(budget int) Option {
	return func(a *Answerer) error {
		if budget > 0 {
			a.contextBudget = budget
		}
		return nil
	}
}

// NewAnswerer creates a new answerer over the given searcher and provider.
// The document repository resolves document names for citations.
func NewAnswerer(
	searcher *search.Searcher,
	documentRepository storage.DocumentRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Answerer, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	a := &Answerer{
		searcher:           searcher,
		documentRepository: documentRepository,
		generator:          provider.Generator(),
		searchOptions:      search.DefaultOptions(),
		contextBudget:      DefaultContextBudget,
		logger:             slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	a.countTokens = analyze.NewTokenCounter(a.logger)
	return a, nil
}

// Ask retrieves chunks relevant to the question and generates an answer
// grounded in them. When retrieval finds nothing, the answer states that
// and Sources is empty. Generator errors propagate.
func (a *Answerer) Ask(ctx context.Context, question string) (*core.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	results, err := a.searcher.Search(ctx, question, a.searchOptions)
	if err != nil {
		a.logger.Error("retrieval failed", "question", question, "err", err)
		return nil, err
	}

	if len(results) == 0 {
		a.logger.Debug("no sources retrieved", "question", question)
		text, err := a.generator.Generate(ctx, noContextSystemPrompt, buildNoContextPrompt(question))
		if err != nil {
			a.logger.Error("generation failed", "err", err)
			return nil, err
		}
		return &core.Answer{
			Query:     question,
			Text:      text,
			Sources:   []*core.SearchResult{},
			Citations: []core.Citation{},
		}, nil
	}

	docNames, err := a.resolveDocumentNames(ctx, results)
	if err != nil {
		return nil, err
	}

	prompt, sources := buildGroundedPrompt(question, results, docNames, a.contextBudget, a.countTokens)
	a.logger.Debug("built grounded prompt",
		"retrieved", len(results),
		"included", len(sources),
		"budget", a.contextBudget)

	text, err := a.generator.Generate(ctx, groundedSystemPrompt, prompt)
	if err != nil {
		a.logger.Error("generation failed", "err", err)
		return nil, err
	}

	return &core.Answer{
		Query:     question,
		Text:      text,
		Sources:   sources,
		Citations: parseCitations(text, sources, docNames),
	}, nil
}

// resolveDocumentNames looks up the names of every document the results
// reference. Missing documents resolve to an empty name.
func (a *Answerer) resolveDocumentNames(ctx context.Context, results []*core.SearchResult) (map[core.ID]string, error) {
	unique := make(map[core.ID]bool, len(results))
	ids := make([]core.ID, 0, len(results))
	for _, result := range results {
		if !unique[result.Chunk.DocumentId] {
			unique[result.Chunk.DocumentId] = true
			ids = append(ids, result.Chunk.DocumentId)
		}
	}

	docs, err := a.documentRepository.GetDocuments(ctx, ids...)
	if err != nil {
		a.logger.Error("error resolving document names", "err", err)
		return nil, err
	}

	names := make(map[core.ID]string, len(docs))
	for _, doc := range docs {
		names[doc.Id] = doc.Name
	}
	return names, nil
}

// parseCitations extracts the [n] markers from the answer text and links
// them back to the included sources. Markers outside 1..len(sources) are
// ignored; each marker is reported once, in order of first appearance.
func parseCitations(text string, sources []*core.SearchResult, docNames map[core.ID]string) []core.Citation {
	citations := make([]core.Citation, 0, len(sources))
	seen := make(map[int]bool)

	for _, match := range citationPattern.FindAllStringSubmatch(text, -1) {
		marker, err := strconv.Atoi(match[1])
		if err != nil || marker < 1 || marker > len(sources) || seen[marker] {
			continue
		}
		seen[marker] = true

		chunk := sources[marker-1].Chunk
		citations = append(citations, core.Citation{
			Marker:       marker,
			ChunkId:      chunk.Id,
			DocumentName: docNames[chunk.DocumentId],
		})
	}
	return citations
}
