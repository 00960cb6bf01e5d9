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


// Package search provides keyword, vector, and hybrid retrieval over chunks.
//
// The Searcher type implements three retrieval strategies:
//   - Keyword search using BM25 over the term postings index
//   - Vector search using embedding cosine similarity
//   - Hybrid search fusing both rankings with Reciprocal Rank Fusion
//
// An optional semantic reranking stage re-scores the top candidates with an
// LLM-backed relevance model; reranker failures fall back to the retrieval
// order rather than failing the search. Results additionally receive a
// verbatim match boost when every filtered query word appears in a chunk.
package search
