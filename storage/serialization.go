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


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/retrievit/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %v", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk: %v", ErrSerializationFailed, err)
	}
	return &chunk, nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: document: %v", ErrSerializationFailed, err)
	}
	return &doc, nil
}

// MarshalCorpusStats serializes CorpusStats to bytes.
func MarshalCorpusStats(stats *core.CorpusStats) []byte {
	buf := make([]byte, core.CorpusStatsMUS.Size(*stats))
	core.CorpusStatsMUS.Marshal(*stats, buf)
	return buf
}

// UnmarshalCorpusStats deserializes CorpusStats from bytes.
func UnmarshalCorpusStats(data []byte) (*core.CorpusStats, error) {
	stats, _, err := core.CorpusStatsMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: corpus stats: %v", ErrSerializationFailed, err)
	}
	return &stats, nil
}

// MarshalTermFrequency serializes a term frequency to bytes.
// Posting values carry only the frequency; the chunk ID lives in the key.
func MarshalTermFrequency(freq int) []byte {
	buf := make([]byte, varint.PositiveInt.Size(freq))
	varint.PositiveInt.Marshal(freq, buf)
	return buf
}

// UnmarshalTermFrequency deserializes a term frequency from bytes.
func UnmarshalTermFrequency(data []byte) (int, error) {
	freq, _, err := varint.PositiveInt.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: term frequency: %v", ErrSerializationFailed, err)
	}
	return freq, nil
}
