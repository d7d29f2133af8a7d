package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/cosmicai/RagAPI/internal/config"
	"github.com/cosmicai/RagAPI/internal/domain/jobModel"
	"github.com/cosmicai/RagAPI/internal/metrics"
	"github.com/cosmicai/RagAPI/internal/rag/chunker"
	"github.com/cosmicai/RagAPI/internal/rag/docstore"
	"github.com/cosmicai/RagAPI/internal/rag/embedding"
	"github.com/cosmicai/RagAPI/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion")

// ProcessDocumentIngestion runs one document through parse -> chunk -> embed
// -> commit. Any stage failure marks the document failed with the stage name
// and nothing is committed; a run is retried only by re-submitting from the
// start. An empty document commits successfully with zero chunks.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, e embedding.Embedder, store *docstore.Store) jobModel.Job {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", job.JobPayload.DocumentId)

	docId := job.JobPayload.DocumentId
	docName := job.JobPayload.IngestFileName
	docPath := job.JobPayload.IngestURL

	log.Debug("Processing document", "filename", docName, "path", docPath)
	job.CurrentStep = jobModel.IngestReceived

	docType := getDocType(docPath)
	if docType == docTypeUnknown {
		return failStage(store, job, "parse", fmt.Errorf("unsupported document type for %s", docName))
	}

	text, err := extractText(docPath, docType)
	if err != nil {
		return failStage(store, job, "parse", err)
	}
	job.CurrentStep = jobModel.IngestParsed
	log.Debug("Extracted text", "characters", len(text))

	chunks := chunker.NewTextChunker(config.ChunkTargetSize, config.ChunkOverlap, config.MinChunkSize).ChunkText(text)
	job.CurrentStep = jobModel.IngestChunked
	log.Debug("Chunked text", "chunks", len(chunks))

	embeddings, err := BatchEmbed(ctx, chunks, e)
	if err != nil {
		return failStage(store, job, "embed", err)
	}
	job.CurrentStep = jobModel.IngestEmbedded

	if err := store.Commit(docId, docName, chunks, embeddings); err != nil {
		return failStage(store, job, "commit", err)
	}
	job.CurrentStep = jobModel.IngestCommitted

	if err := os.Remove(docPath); err != nil {
		log.Error("Error removing temp file", "error", err)
	}

	metrics.CaptureDocumentIngested(len(chunks))
	job.Status = jobModel.JobStatusComplete
	return job
}

func failStage(store *docstore.Store, job jobModel.Job, stage string, err error) jobModel.Job {
	reason := fmt.Sprintf("%s: %v", stage, err)
	logger.Error("Ingestion failed", "documentId", job.JobPayload.DocumentId, "reason", reason)
	metrics.CaptureIngestFailure(stage)
	store.MarkFailed(job.JobPayload.DocumentId, reason)
	job.Status = jobModel.JobStatusError
	job.Error.Message = reason
	return job
}
