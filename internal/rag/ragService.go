package rag

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cosmicai/RagAPI/internal/config"
	"github.com/cosmicai/RagAPI/internal/domain/docModel"
	"github.com/cosmicai/RagAPI/internal/domain/jobModel"
	"github.com/cosmicai/RagAPI/internal/metrics"
	"github.com/cosmicai/RagAPI/internal/rag/docstore"
	"github.com/cosmicai/RagAPI/internal/rag/embedding"
	"github.com/cosmicai/RagAPI/internal/rag/ingest"
	"github.com/cosmicai/RagAPI/internal/rag/llm"
	"github.com/cosmicai/RagAPI/internal/rag/retry"
	"github.com/cosmicai/RagAPI/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - Real work happens down low bruh
  - This is the PUBLIC contract.
  - It defines the "behavior" (what the worker and handlers can do).
  - We expose this to keep the callers decoupled from our specific logic.

2. service (Private Struct):
  - down low stuff
  - This is the PRIVATE implementation.
  - It holds the "state" (document store and LLM clients).
  - It is lowercase to prevent external packages from accessing our
    internal dependencies (store, llmProvider) directly.

3. Pointer Receiver (*service):
  - By defining methods on (*service), the struct IMPLICITLY satisfies
    the Service interface.
  - if it quacks like a duck, -it's a duck (Duck Typing)

4. Dependency Injection (NewService):
  - This constructor links the private struct to the public interface.
  - It allows us to swap real stores for mocks during testing without
    changing the worker's code.
*/

// Service Worker and handlers only call this service - they don't need to know the llm or the index
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	ProcessQuery(ctx context.Context, query string, documentIds []string, topK int) ([]docModel.SearchResult, error)
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	store       *docstore.Store
	llmProvider llm.Provider
	embedder    embedding.Embedder
	retryPolicy retry.Policy
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(store *docstore.Store, llm llm.Provider, em embedding.Embedder) Service {
	return &service{
		store:       store,
		llmProvider: llm,
		embedder:    em,
		retryPolicy: retry.Policy{MaxAttempts: config.RetryMaxAttempts, BaseDelay: config.RetryBaseDelay},
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job, messageHistory []string) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	jobt.CurrentStep = jobModel.RAGCall

	// Embedding
	embeddingStep, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "EMBEDDING_FAILURE", true)
	}

	// Vector Search
	matches, err := s.executeVectorSearchStep(inMethodLogger, &jobt, embeddingStep)
	if err != nil {
		return s.jobError(jobt, err, "VECTOR_SEARCH_FAILURE", false)
	}

	// LLM Generation
	answer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, matches, messageHistory)
	if err != nil {
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE", true)
	}

	return returnOutput(jobt, answer)
}

// ProcessQuery is the synchronous retrieval path: no LLM, no job lifecycle,
// just embed the query and rank stored chunks.
func (s *service) ProcessQuery(ctx context.Context, query string, documentIds []string, topK int) ([]docModel.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &docModel.ValidationError{Reason: "query must not be empty"}
	}
	if topK <= 0 {
		topK = config.TopKResults
	}
	if topK > config.MaxTopK {
		topK = config.MaxTopK
	}

	queryContext, cancel := context.WithTimeout(ctx, config.QueryTimeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("query", time.Since(start)) }()

	var embedded []float32
	err := s.withRetry(queryContext, func() error {
		var embedErr error
		embedded, embedErr = s.embedder.GetEmbedding(queryContext, query)
		return embedErr
	})
	if err != nil {
		return nil, err
	}

	return s.store.Search(embedded, topK, documentIds)
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Document_ingestion", time.Since(start)) }()
	j := ingest.ProcessDocumentIngestion(ctx, job, s.embedder, s.store)
	if j.Status == jobModel.JobStatusError {
		return s.jobError(j, errors.New("ingest Document Failed"), "INGESTION_FAILURE", false)
	}
	return j
}
