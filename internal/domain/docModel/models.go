package docModel

import "time"

// Chunk is one retrievable unit of a document's extracted text. Row i of the
// vector index corresponds to position i in the append-only chunk log, so a
// Chunk is never mutated or reordered after commit.
type Chunk struct {
	Id            uint64 `json:"id"`
	DocumentId    string `json:"document_id"`
	Content       string `json:"content"`
	Ordinal       uint32 `json:"chunk_index"`
	TokenEstimate uint32 `json:"tokens"`
}

// DocumentRecord exists only for fully committed documents.
type DocumentRecord struct {
	DocumentId         string    `json:"document_id"`
	Filename           string    `json:"filename"`
	UploadTimestamp    time.Time `json:"upload_date"`
	ChunkCount         uint32    `json:"num_chunks"`
	TotalTokenEstimate uint32    `json:"total_tokens"`
}

type StatusKind string

const (
	StatusNotFound   StatusKind = "not_found"
	StatusProcessing StatusKind = "processing"
	StatusCompleted  StatusKind = "completed"
	StatusFailed     StatusKind = "failed"
)

// DocumentStatus is the ephemeral lifecycle view of a document. A document id
// is in exactly one state at any time.
type DocumentStatus struct {
	Kind       StatusKind
	ChunkCount uint32
	Error      string //set only for StatusFailed
}

// SearchResult is a ranked retrieval hit. Score is cosine similarity of unit
// vectors and can be slightly negative.
type SearchResult struct {
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
	DocumentId string  `json:"document_id"`
	Ordinal    uint32  `json:"chunk_index"`
}
