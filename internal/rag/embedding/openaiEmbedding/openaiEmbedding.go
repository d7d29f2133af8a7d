package openaiEmbedding

import (
	"context"
	"errors"
	"sync"

	"github.com/cosmicai/RagAPI/internal/config"
	"github.com/cosmicai/RagAPI/internal/customHttpClient"
	"github.com/cosmicai/RagAPI/internal/domain/docModel"
	"github.com/cosmicai/RagAPI/internal/rag/embedding"
	"github.com/cosmicai/RagAPI/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	api   openai.Client
	model string
}

func GetOpenAIEmbeddingClient(modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		if apikey == "" {
			logger.Error("OpenAI API key is empty")
			return
		}
		api := openai.NewClient(
			option.WithAPIKey(apikey),
			option.WithHTTPClient(customHttpClient.NewPooledClient()),
		)
		embeddingClient = &client{api: api, model: modelName}
		logger.Info("OpenAI Embedding client created", "model", modelName)
	})

	if embeddingClient == nil {
		return nil
	}
	return &client{api: embeddingClient.api, model: embeddingClient.model}
}

func (c *client) Dimension() int {
	return config.EmbeddingDimension
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: chunks},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(int64(config.EmbeddingDimension)),
	})
	if err != nil {
		log.Error("Error getting Embeddings from OpenAI", "error", err.Error())
		return nil, &docModel.EmbeddingError{Err: err}
	}
	if len(resp.Data) != len(chunks) {
		return nil, &docModel.EmbeddingError{Err: errors.New("provider returned wrong embedding count")}
	}

	results := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		v64 := d.Embedding
		if len(v64) != config.EmbeddingDimension {
			return nil, &docModel.DimensionError{Want: config.EmbeddingDimension, Got: len(v64), What: "provider embedding"}
		}
		v := make([]float32, len(v64))
		for i := range v64 {
			v[i] = float32(v64[i])
		}
		results[d.Index] = v
	}
	return results, nil
}
