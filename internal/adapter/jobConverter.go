package adapter

import (
	"fmt"
	"strings"
	"time"

	"github.com/cosmicai/RagAPI/internal/api"
	"github.com/cosmicai/RagAPI/internal/domain/docModel"
	"github.com/cosmicai/RagAPI/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:              string(job.Status),
		RAGExternalResponse: ToRAGExternalStatus(job.JobPayload),
	}

	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(ragData jobModel.JobPayload) *api.RAGResponse {
	if ragData.Answer == "" && len(ragData.Sources) == 0 {
		return nil
	}

	return &api.RAGResponse{
		Question: ragData.Question,
		Answer:   ragData.Answer,
		Sources:  ragData.Sources,
	}
}

func ToUploadResponse(documentId string, filename string) api.UploadResponse {
	return api.UploadResponse{
		DocumentId: documentId,
		Filename:   filename,
		Status:     string(docModel.StatusProcessing),
		StatusURL:  fmt.Sprintf("api/documents/%s/status", documentId),
	}
}

func ToDocumentStatusResponse(documentId string, status docModel.DocumentStatus) api.DocumentStatusResponse {
	return api.DocumentStatusResponse{
		DocumentId:  documentId,
		Status:      string(status.Kind),
		ChunksCount: int(status.ChunkCount),
		Error:       status.Error,
	}
}

func ToQueryResponse(results []docModel.SearchResult) api.QueryResponse {
	matches := make([]api.QueryMatch, len(results))
	for i, r := range results {
		matches[i] = api.QueryMatch{
			Content:    r.Content,
			Score:      r.Score,
			DocumentId: r.DocumentId,
			ChunkIndex: r.Ordinal,
		}
	}
	return api.QueryResponse{Results: matches}
}

func ToTextPreviewResponse(documentId string, chunks []string) api.TextPreviewResponse {
	return api.TextPreviewResponse{
		DocumentId:  documentId,
		Content:     strings.Join(chunks, "\n\n"),
		ChunksCount: len(chunks),
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		ChatId:    "",
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status:              string(api.JobStatusError),
			RAGExternalResponse: ToRAGExternalStatus(jobModel.JobPayload{}),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
