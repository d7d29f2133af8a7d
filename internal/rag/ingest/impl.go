package ingest

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cosmicai/RagAPI/internal/config"
	"github.com/cosmicai/RagAPI/internal/rag/embedding"
)

type docType string

const (
	docTypePDF     docType = "PDF"
	docTypeDOCX    docType = "DOCX"
	docTypeText    docType = "TEXT"
	docTypeUnknown docType = "UNKNOWN"
)

func getDocType(docPath string) docType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return docTypePDF
	case ".docx", ".rtf":
		return docTypeDOCX
	case ".txt", ".md":
		return docTypeText
	default:
		return docTypeUnknown
	}
}

// BatchEmbed embeds chunks in sequential provider-sized batches and
// concatenates the blocks in original chunk order. Row-index correspondence
// in the store depends on that order. A failure in any batch aborts the whole
// run; no partial matrix is returned.
func BatchEmbed(ctx context.Context, chunks []string, embedder embedding.Embedder) ([][]float32, error) {
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}

	all := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += config.IngestBatchSize {
		end := i + config.IngestBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		vectors, err := embedder.BatchEmbedding(ctx, chunks[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)
	}
	return all, nil
}
