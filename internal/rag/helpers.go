package rag

import (
	"context"
	"net/http"
	"time"

	"github.com/cosmicai/RagAPI/internal/config"
	"github.com/cosmicai/RagAPI/internal/domain/docModel"
	"github.com/cosmicai/RagAPI/internal/domain/jobModel"
	"github.com/cosmicai/RagAPI/internal/metrics"
	"github.com/cosmicai/RagAPI/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans string) jobModel.Job {
	job.JobPayload.Answer = ans
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

// withRetry runs fn under the service retry policy. Only failures the policy
// classifies as transient are retried; the last error is returned as-is.
func (s *service) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		decision := s.retryPolicy.Decide(attempt, err)
		if !decision.Retry {
			return err
		}
		s.logger.Warn("Retrying transient failure", "attempt", attempt, "after", decision.After, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(decision.After):
		}
	}
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) ([]float32, error) {
	*job = logOutput(*job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	var embedded []float32
	err := s.withRetry(ctx, func() error {
		var embedErr error
		embedded, embedErr = s.embedder.GetEmbedding(ctx, job.JobPayload.Question)
		return embedErr
	})
	return embedded, err
}

func (s *service) executeVectorSearchStep(log *logger_i.Logger, job *jobModel.Job, emb []float32) ([]docModel.SearchResult, error) {
	*job = logOutput(*job, jobModel.VectorSearchCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	matches, err := s.store.Search(emb, config.TopKResults, nil)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	job.JobPayload.Sources = job.JobPayload.Sources[:0]
	for _, m := range matches {
		if !seen[m.DocumentId] {
			seen[m.DocumentId] = true
			job.JobPayload.Sources = append(job.JobPayload.Sources, m.DocumentId)
		}
	}
	return matches, nil
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, matches []docModel.SearchResult, history []string) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	contents := make([]string, len(matches))
	for i, m := range matches {
		contents[i] = m.Content
	}

	var answer string
	err := s.withRetry(ctx, func() error {
		var llmErr error
		answer, llmErr = s.llmProvider.Generate(ctx, job.JobPayload.Question, contents, history)
		return llmErr
	})
	return answer, err
}
