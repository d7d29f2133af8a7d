package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	NoAuthBypass = true //set false and provide AUTH_TOKEN for bearer auth
	AuthToken    = ""

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":8000"

	//job requests buffer limit
	BufferLimit = 100

	//upload boundary
	MaxUploadSizeBytes int64 = 25 << 20 //25mb
	UploadDirName            = "uploads"

	//retrieval
	TopKResults     = 5
	MaxTopK         = 50
	FilterOverFetch = 10 //over-fetch multiplier when filtering by document ids
	QueryTimeout    = 15 * time.Second
	IngestBatchSize = 16 //embedding provider per-call limit

	//persisted state directory: index.bin + chunks.json + metadata.json
	VectorDataDirName = "vector_db"

	//model names per provider
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIModelName      = "gpt-4o-mini"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	ModelTemperature float32 = 0.7
	ModelContext             = "You are a helpful assistant. Answer using only the provided document context. If the context does not contain the answer, say you don't know."

	//live-call retry policy (transient failures only)
	RetryMaxAttempts = 3
	RetryBaseDelay   = 500 * time.Millisecond

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DB we can use
	RedisJobStore     = 0
	RedisMessageStore = 1

	//redis timeouts
	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour
)

// API keys come from the environment (or .env in dev), never from source.
var (
	GoogleAPIKey = EnvOr("GEMINI_API_KEY", "")
	OpenAIAPIKey = EnvOr("OPENAI_API_KEY", "")
)

// Deployment-varying knobs, overridable from the environment.
var (
	//embedding + llm providers: "google" or "openai"
	EmbeddingProvider = EnvOr("EMBEDDING_PROVIDER", "google")
	LLMProvider       = EnvOr("LLM_PROVIDER", "google")

	//chunking - sizes are characters, roughly 4 chars per token
	ChunkTargetSize = EnvIntOr("CHUNK_TARGET_SIZE", 4000)
	ChunkOverlap    = EnvIntOr("CHUNK_OVERLAP", 800)
	MinChunkSize    = EnvIntOr("MIN_CHUNK_SIZE", 400)

	//hnsw index - the dimension must match the embedding provider's output
	EmbeddingDimension = EnvIntOr("EMBEDDING_DIMENSION", 1536)
	HnswM              = EnvIntOr("HNSW_M", 32)
	HnswEfConstruction = EnvIntOr("HNSW_EF_CONSTRUCTION", 200)
	HnswEfSearch       = EnvIntOr("HNSW_EF_SEARCH", 100)
)

// AllowedFileExtensions is the upload allow-list checked before any pipeline work.
var AllowedFileExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

func EnvOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func EnvIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
