package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/retrievit/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix   = "chkrec"
	chunkDocumentPrefix = "chkrecd"
	chunkTermPrefix     = "chkrect"
	chunkIDSeq          = "chkrecseq"
	documentPrefix      = "docrec"
	documentSourceKey   = "docsrc"
	corpusStatsKey      = "costats"
)

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkDocumentKey generates a composite key for the document index.
// Format: prefix:documentID:seq:chunkID
func makeChunkDocumentKey(documentID core.ID, seq int, chunkID core.ID) []byte {
	prefix := chunkDocumentPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 24 // documentID + seq + chunkID, 8 bytes each
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(seq))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkID))
	return buf
}

// makePartialChunkDocumentKey generates a partial key for document queries.
// Format: prefix:documentID
func makePartialChunkDocumentKey(documentID core.ID) []byte {
	prefix := chunkDocumentPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeTermKey generates a composite key for the term postings index.
// Format: prefix:uvarint(len(term)):term:chunkID
// The term is length-prefixed so a prefix scan for one term can never
// match the postings of a longer term it is a prefix of (terms may
// contain any byte, including the separator).
func makeTermKey(term string, chunkID core.ID) []byte {
	buf := makePartialTermKey(term)
	var id [8]byte
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(id[:], uint64(chunkID))
	return append(buf, id[:]...)
}

// makePartialTermKey generates a partial key for postings scans.
// Format: prefix:uvarint(len(term)):term
func makePartialTermKey(term string) []byte {
	buf := make([]byte, 0, len(chunkTermPrefix)+1+binary.MaxVarintLen64+len(term))
	buf = append(buf, chunkTermPrefix...)
	buf = append(buf, ':')
	buf = binary.AppendUvarint(buf, uint64(len(term)))
	return append(buf, term...)
}

// chunkIDFromTermKey extracts the chunk ID from a term postings key.
func chunkIDFromTermKey(key []byte) (core.ID, bool) {
	if len(key) < 8 {
		return 0, false
	}
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:])), true
}

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentSourceKey generates a key for document lookup by source.
// Format: prefix:source
func makeDocumentSourceKey(source string) []byte {
	return []byte(documentSourceKey + ":" + source)
}

// makeCorpusStatsKey generates the key for the corpus stats record.
func makeCorpusStatsKey() []byte {
	return []byte(corpusStatsKey)
}
