package embedding

import "context"

// Embedder maps text to fixed-dimension dense vectors. Implementations are
// safe for concurrent use and never retry internally; retry policy belongs to
// the caller. Provider failures are wrapped in docModel.EmbeddingError.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
	Dimension() int
}
