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


// Package answer generates chat-completion answers grounded in retrieved chunks.
//
// The Answerer composes a search.Searcher with an ai.Generator: for each
// question it retrieves the most relevant chunks, formats them as numbered
// sources within a token budget, and instructs the model to answer only from
// those sources and cite them with bracketed markers. Markers in the reply
// are parsed back into core.Citation values linking the answer to the chunks
// it drew from.
//
// When retrieval finds nothing relevant, the answer is generated from a
// no-context prompt variant and carries no sources.
package answer
