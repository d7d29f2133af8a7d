package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

type Result struct {
	Status              string       `json:"status"`
	RAGExternalResponse *RAGResponse `json:"rag_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type UploadResponse struct {
	DocumentId string `json:"document_id" example:"d4f7a2b0-1c9e-4d3a-9f2b-8e6c5a4d3b2a"`
	Filename   string `json:"filename" example:"report.pdf"`
	Status     string `json:"status" example:"processing"`
	StatusURL  string `json:"status_url"`
}

type DocumentStatusResponse struct {
	DocumentId  string `json:"document_id"`
	Status      string `json:"status" example:"completed"`
	ChunksCount int    `json:"chunks_count"`
	Error       string `json:"error,omitempty"`
}

type TextPreviewResponse struct {
	DocumentId  string `json:"document_id"`
	Content     string `json:"content"`
	ChunksCount int    `json:"chunks_count"`
}

type QueryMatch struct {
	Content    string  `json:"content"`
	Score      float32 `json:"score" example:"0.87"`
	DocumentId string  `json:"document_id"`
	ChunkIndex uint32  `json:"chunk_index"`
}

type QueryResponse struct {
	Results []QueryMatch `json:"results"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required" `
	ChatID  string `json:"chatID,omitempty" `
}
type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}

type QueryRequest struct {
	Query       string   `json:"query" validate:"required"`
	DocumentIds []string `json:"document_ids,omitempty"`
	TopK        int      `json:"top_k,omitempty" example:"5"`
}
