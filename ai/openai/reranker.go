// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/retrievit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Reranker implements ai.Reranker using OpenAI-compatible chat APIs.
// It prompts the model to score each candidate document for relevance
// to the query and parses the scores from a JSON response.
type Reranker struct {
	client        llms.Model
	maxCandidates int
	logger        *slog.Logger
}

// verdict is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type verdict struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// ranking is the wrapper structure for the LLM's JSON response.
type ranking struct {
	Rankings []verdict `json:"rankings"`
}

// newReranker is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newReranker(config *ai.Config) (*Reranker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.APIToken),
		openai.WithModel(config.RerankModel),
	)
	if err != nil {
		return nil, err
	}

	return &Reranker{
		client:        client,
		maxCandidates: config.MaxRerankCandidates,
		logger:        slog.Default().With("component", "openai-reranker"),
	}, nil
}

// NewReranker creates a new reranker using the provided configuration.
//
// Returns ai.Reranker interface to enforce abstraction.
func NewReranker(config *ai.Config) (ai.Reranker, error) {
	return newReranker(config)
}

// RerankDocuments scores every document for relevance to the query.
// Documents beyond the configured candidate cap are dropped before the
// model call. Results are sorted by score descending.
func (r *Reranker) RerankDocuments(ctx context.Context, query string, documents []string) ([]ai.RankedDocument, error) {
	if len(documents) == 0 {
		return []ai.RankedDocument{}, nil
	}
	if len(documents) > r.maxCandidates {
		r.logger.Debug("truncating rerank candidates",
			"requested", len(documents),
			"cap", r.maxCandidates)
		documents = documents[:r.maxCandidates]
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(rerankSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildRerankPrompt(query, documents)),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result ranking
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := r.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			r.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			r.logger.Debug("no choices returned from model")
			return []ai.RankedDocument{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			r.logger.Warn("error parsing reranker response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		r.logger.Error("failed to parse reranker response after retries", "err", lastErr)
		return nil, lastErr
	}

	// Keep only verdicts that reference a real document, clamp scores to 0-10
	ranked := make([]ai.RankedDocument, 0, len(result.Rankings))
	for _, v := range result.Rankings {
		if v.Index < 0 || v.Index >= len(documents) {
			r.logger.Warn("reranker returned out-of-range index", "index", v.Index)
			continue
		}
		score := v.Score
		if score < 0 {
			score = 0
		}
		if score > 10 {
			score = 10
		}
		ranked = append(ranked, ai.RankedDocument{
			Index: v.Index,
			Score: score,
		})
	}

	// Sort by score (descending)
	slices.SortFunc(ranked, func(a, b ai.RankedDocument) int {
		if a.Score == b.Score {
			return a.Index - b.Index
		}
		if a.Score < b.Score {
			return 1
		}
		return -1
	})

	r.logger.Debug("reranked documents",
		"documents", len(documents),
		"scored", len(ranked))

	return ranked, nil
}
