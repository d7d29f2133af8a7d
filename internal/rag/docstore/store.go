package docstore

import (
	"sync"
	"time"

	"github.com/cosmicai/RagAPI/internal/config"
	"github.com/cosmicai/RagAPI/internal/domain/docModel"
	"github.com/cosmicai/RagAPI/internal/rag/chunker"
	"github.com/cosmicai/RagAPI/internal/rag/vectorindex"
	"github.com/cosmicai/RagAPI/pkg/logger_i"
)

// Store owns the append-only chunk log, the per-document metadata, the
// ephemeral processing/failed sets and the vector index. One RWMutex covers
// all of it: commits, status transitions and persistence are exclusive,
// searches and status reads share the read lock, so a reader sees either all
// of a commit's rows or none of them.
type Store struct {
	mu sync.RWMutex

	index    *vectorindex.Index
	chunkLog []docModel.Chunk
	records  map[string]docModel.DocumentRecord

	//ephemeral, never persisted
	processing map[string]bool
	failed     map[string]string

	dataDir string //empty disables persistence
	logger  *logger_i.Logger
}

type Options struct {
	Dimension      int
	M              int
	EfConstruction int
	EfSearch       int
	DataDir        string
}

// New creates a store, loading previously persisted state when the data
// directory holds it. Partial artifacts or a row-count divergence are load
// errors: the store refuses to serve misaligned results.
func New(opts Options) (*Store, error) {
	s := &Store{
		records:    make(map[string]docModel.DocumentRecord),
		processing: make(map[string]bool),
		failed:     make(map[string]string),
		dataDir:    opts.DataDir,
		logger:     logger_i.NewLogger("DocStore"),
	}

	loaded, err := s.loadFromDisk(opts)
	if err != nil {
		return nil, err
	}
	if !loaded {
		s.index = vectorindex.New(opts.Dimension, opts.M, opts.EfConstruction, opts.EfSearch)
		s.logger.Info("Created new vector index", "dimension", opts.Dimension, "M", opts.M, "efConstruction", opts.EfConstruction)
	} else {
		s.logger.Info("Loaded vector store", "vectors", s.index.Size(), "documents", len(s.records))
	}
	return s, nil
}

// MarkProcessing registers an in-flight ingestion. A retry of a previously
// failed document clears the failure entry.
func (s *Store) MarkProcessing(documentId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing[documentId] = true
	delete(s.failed, documentId)
}

// MarkFailed records a failure reason. A document that already committed
// stays completed: a post-commit failure (a persistence error, say) must not
// put the id in two states at once.
func (s *Store) MarkFailed(documentId string, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, committed := s.records[documentId]; committed {
		s.logger.Warn("Ignoring failure for committed document", "documentId", documentId, "reason", reason)
		return
	}
	delete(s.processing, documentId)
	s.failed[documentId] = reason
}

// Commit finalizes an ingestion run: chunk log append, index insert, document
// record and persistence, all under the write lock. Nothing is committed on a
// count or dimension mismatch. Zero chunks is a valid commit (empty document).
func (s *Store) Commit(documentId string, filename string, chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return &docModel.DimensionError{Want: len(chunks), Got: len(embeddings), What: "chunks vs embeddings"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start, err := s.index.Insert(embeddings)
	if err != nil {
		return err
	}

	var totalTokens uint32
	for i, content := range chunks {
		tokens := chunker.TokenEstimate(content)
		totalTokens += tokens
		s.chunkLog = append(s.chunkLog, docModel.Chunk{
			Id:            uint64(start + i),
			DocumentId:    documentId,
			Content:       content,
			Ordinal:       uint32(i),
			TokenEstimate: tokens,
		})
	}

	s.records[documentId] = docModel.DocumentRecord{
		DocumentId:         documentId,
		Filename:           filename,
		UploadTimestamp:    time.Now().UTC(),
		ChunkCount:         uint32(len(chunks)),
		TotalTokenEstimate: totalTokens,
	}
	delete(s.processing, documentId)
	delete(s.failed, documentId)

	s.logger.Info("Committed document", "documentId", documentId, "chunks", len(chunks), "totalVectors", s.index.Size())

	return s.persistLocked()
}

// Status resolves the lifecycle state, checked completed -> processing ->
// failed -> not found.
func (s *Store) Status(documentId string) docModel.DocumentStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.records[documentId]; ok {
		return docModel.DocumentStatus{Kind: docModel.StatusCompleted, ChunkCount: rec.ChunkCount}
	}
	if s.processing[documentId] {
		return docModel.DocumentStatus{Kind: docModel.StatusProcessing}
	}
	if reason, ok := s.failed[documentId]; ok {
		return docModel.DocumentStatus{Kind: docModel.StatusFailed, Error: reason}
	}
	return docModel.DocumentStatus{Kind: docModel.StatusNotFound}
}

// ChunksFor returns the committed chunk contents of one document in ordinal
// order. The log is append-only and each document commits once, so log order
// is ordinal order.
func (s *Store) ChunksFor(documentId string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var contents []string
	for _, c := range s.chunkLog {
		if c.DocumentId == documentId {
			contents = append(contents, c.Content)
		}
	}
	return contents
}

// Search runs a top-k query, optionally restricted to a set of document ids.
// Filtering over-fetches by a fixed multiplier and truncates after the fact;
// it is best effort and may return fewer than k results.
func (s *Store) Search(query []float32, k int, documentIds []string) ([]docModel.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index.Size() == 0 {
		return nil, nil
	}

	fetch := k
	var allowed map[string]bool
	if len(documentIds) > 0 {
		fetch = k * config.FilterOverFetch
		allowed = make(map[string]bool, len(documentIds))
		for _, id := range documentIds {
			allowed[id] = true
		}
	}

	hits, err := s.index.Search(query, fetch)
	if err != nil {
		return nil, err
	}

	results := make([]docModel.SearchResult, 0, k)
	for _, hit := range hits {
		chunk := s.chunkLog[hit.Row]
		if allowed != nil && !allowed[chunk.DocumentId] {
			continue
		}
		results = append(results, docModel.SearchResult{
			Content:    chunk.Content,
			Score:      hit.Similarity,
			DocumentId: chunk.DocumentId,
			Ordinal:    chunk.Ordinal,
		})
		if len(results) >= k {
			break
		}
	}
	return results, nil
}

func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Size()
}

func (s *Store) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
