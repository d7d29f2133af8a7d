package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cosmicai/RagAPI/internal/adapter"
	"github.com/cosmicai/RagAPI/internal/adapter/utils"
	"github.com/cosmicai/RagAPI/internal/api"
	"github.com/cosmicai/RagAPI/internal/config"
	"github.com/cosmicai/RagAPI/internal/domain/docModel"
	"github.com/cosmicai/RagAPI/internal/rag"
	"github.com/cosmicai/RagAPI/internal/rag/docstore"
	"github.com/cosmicai/RagAPI/pkg/logger_i"
)

var (
	docHandlerInstance *DocumentHandler //private singleton
	docOnce            sync.Once
	logDH              *logger_i.Logger
)

type DocumentHandler struct {
	store      *docstore.Store
	ragService rag.Service
}

func InitDocumentHandler(store *docstore.Store, ragService rag.Service) {
	docOnce.Do(func() {
		docHandlerInstance = &DocumentHandler{store: store, ragService: ragService}
		logDH = logger_i.NewLogger("DocumentHandler")
		logDH.Info("Starting document handler")
	})
}

// PostUploadHandler godoc
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, stages it on disk, and queues a background ingestion job. Poll the status URL to follow progress.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "The PDF, DOCX, TXT or MD file to upload"
// @Success      202  {object}  api.UploadResponse  "Accepted for processing"
// @Failure      400  {object}  api.JobResponse  "Unsupported type or file too large"
// @Failure      500  {object}  api.JobResponse  "Storage error"
// @Router       /api/upload [post]
func PostUploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSizeBytes)
	if err := r.ParseMultipartForm(config.MaxUploadSizeBytes); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	ext := strings.ToLower(filepath.Ext(fileMetadata.Filename))
	if !config.AllowedFileExtensions[ext] {
		WriteErrorResponse(w, http.StatusBadRequest, fileMetadata.Filename, "Unsupported file type: "+ext)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logDH.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	documentId := utils.GetNewUUID()
	stagedPath := filepath.Join(targetDir, documentId+ext)
	destinationFileWriter, err := os.Create(stagedPath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, documentId, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	//an empty file is a valid upload: it ingests to a zero-chunk completed document
	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, documentId, "Write error")
		return
	}

	docHandlerInstance.store.MarkProcessing(documentId)
	enqueueIngestJob(r, documentId, fileMetadata.Filename, stagedPath)

	writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(documentId, fileMetadata.Filename))
}

// GetDocumentStatusHandler godoc
// @Summary      Get document ingestion status
// @Description  Reports whether a document is processing, completed or failed. Failed documents carry the failure reason.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentStatusResponse
// @Failure      404  {object}  api.JobResponse  "Unknown document ID"
// @Router       /api/documents/{id}/status [get]
func GetDocumentStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	documentId := utils.GetChiURLParam(r, "id")
	status := docHandlerInstance.store.Status(documentId)
	if status.Kind == docModel.StatusNotFound {
		WriteErrorResponse(w, http.StatusNotFound, documentId, "Document not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentStatusResponse(documentId, status))
}

// PostQueryHandler godoc
// @Summary      Search stored documents
// @Description  Embeds the query and returns the top-k most similar chunks, optionally restricted to a set of document IDs. Synchronous; no job is created.
// @Tags         Retrieval
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest  true  "Query text, optional document filter and top_k"
// @Success      200  {object}  api.QueryResponse
// @Failure      400  {object}  api.JobResponse  "Empty or malformed query"
// @Failure      502  {object}  api.JobResponse  "Embedding provider failure"
// @Router       /api/query [post]
func PostQueryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	var requestData api.QueryRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	results, err := docHandlerInstance.ragService.ProcessQuery(r.Context(), requestData.Query, requestData.DocumentIds, requestData.TopK)
	if err != nil {
		var validationErr *docModel.ValidationError
		var embeddingErr *docModel.EmbeddingError
		switch {
		case errors.As(err, &validationErr):
			WriteErrorResponse(w, http.StatusBadRequest, "", validationErr.Error())
		case errors.As(err, &embeddingErr):
			logDH.Error("Query embedding failed", "error", err)
			WriteErrorResponse(w, http.StatusBadGateway, "", "Embedding provider failure")
		default:
			logDH.Error("Query failed", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Internal Server Error")
		}
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(results))
}

// GetTextPreviewHandler godoc
// @Summary      Preview a document's extracted text
// @Description  Returns the chunked text of a fully ingested document, in chunk order.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.TextPreviewResponse
// @Failure      404  {object}  api.JobResponse  "Document not found or not yet completed"
// @Router       /api/documents/{id}/text-preview [get]
func GetTextPreviewHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	documentId := utils.GetChiURLParam(r, "id")
	status := docHandlerInstance.store.Status(documentId)
	if status.Kind != docModel.StatusCompleted {
		WriteErrorResponse(w, http.StatusNotFound, documentId, "Document not found")
		return
	}

	chunks := docHandlerInstance.store.ChunksFor(documentId)
	writeJsonResponse(w, http.StatusOK, adapter.ToTextPreviewResponse(documentId, chunks))
}
