// @title           Document RAG API
// @version         1.0
// @description     Document ingestion, vector retrieval and asynchronous chat over uploaded documents.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cosmicai/RagAPI/internal/config"
	"github.com/cosmicai/RagAPI/internal/data/store"
	jobmodel "github.com/cosmicai/RagAPI/internal/domain/jobModel"
	"github.com/cosmicai/RagAPI/internal/handlers"
	"github.com/cosmicai/RagAPI/internal/job"
	"github.com/cosmicai/RagAPI/internal/rag"
	"github.com/cosmicai/RagAPI/internal/rag/docstore"
	"github.com/cosmicai/RagAPI/internal/rag/embedding"
	"github.com/cosmicai/RagAPI/internal/rag/embedding/googleEmbedding"
	"github.com/cosmicai/RagAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/cosmicai/RagAPI/internal/rag/llm"
	"github.com/cosmicai/RagAPI/internal/rag/llm/gemini"
	"github.com/cosmicai/RagAPI/internal/rag/llm/openaiLLM"
	"github.com/cosmicai/RagAPI/internal/server"
	"github.com/cosmicai/RagAPI/internal/worker"
	"github.com/cosmicai/RagAPI/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	_ = godotenv.Load() //.env is optional, real env vars win

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          store.GetRedisJobStore(serviceContext),
		MessageStore:      store.GetRedisMessageStore(serviceContext),
	}
	logger.Info("Starting job service")

	if serviceConfig.JobStore == nil || serviceConfig.MessageStore == nil {
		logger.Error("Redis stores are offline")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore()
	}
	service := job.InitJobService(serviceConfig)

	embeddingService := newEmbedder(serviceContext)
	llmProvider := newLLMProvider(serviceContext)

	if embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}
	if embeddingService.Dimension() != config.EmbeddingDimension {
		logger.Error("Embedding provider dimension mismatch", "want", config.EmbeddingDimension, "got", embeddingService.Dimension())
		return
	}

	workDir, err := os.Getwd()
	if err != nil {
		logger.Error("Could not resolve working directory", "error", err)
		return
	}
	documentStore, err := docstore.New(docstore.Options{
		Dimension:      config.EmbeddingDimension,
		M:              config.HnswM,
		EfConstruction: config.HnswEfConstruction,
		EfSearch:       config.HnswEfSearch,
		DataDir:        filepath.Join(workDir, config.VectorDataDirName),
	})
	if err != nil {
		logger.Error("Could not open document store", "error", err)
		return
	}
	logger.Info("Document store ready", "documents", documentStore.DocumentCount(), "chunks", documentStore.Size())

	ragService := rag.NewService(documentStore, llmProvider, embeddingService)

	handlers.InitJobHandler(service)
	handlers.InitDocumentHandler(documentStore, ragService)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func newEmbedder(ctx context.Context) embedding.Embedder {
	if config.EmbeddingProvider == "openai" {
		return openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, config.OpenAIAPIKey)
	}
	return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GoogleAPIKey)
}

func newLLMProvider(ctx context.Context) llm.Provider {
	if config.LLMProvider == "openai" {
		return openaiLLM.GetOpenAIClient(config.OpenAIModelName, config.OpenAIAPIKey)
	}
	return gemini.GetGeminiClient(ctx, config.GeminiModelName, config.GoogleAPIKey)
}
