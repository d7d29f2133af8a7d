package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cosmicai/RagAPI/internal/config"
	"github.com/cosmicai/RagAPI/internal/domain/jobModel"
	"github.com/cosmicai/RagAPI/internal/rag/docstore"
)

// --- Mocks for BatchEmbed ---

type mockEmbedder struct {
	batchFunc func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return nil, nil
}
func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	return m.batchFunc(ctx, chunks)
}
func (m *mockEmbedder) Dimension() int { return 4 }

// --- Unit Tests ---

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected docType
	}{
		{"test.pdf", docTypePDF},
		{"DOC.DOCX", docTypeDOCX},
		{"letter.rtf", docTypeDOCX},
		{"notes.txt", docTypeText},
		{"readme.md", docTypeText},
		{"image.png", docTypeUnknown},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestBatchEmbed(t *testing.T) {
	ctx := context.Background()
	chunks := make([]string, config.IngestBatchSize+4) // Should trigger 2 batches (16 + 4)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("chunk %d", i)
	}

	callCount := 0
	emb := &mockEmbedder{
		batchFunc: func(ctx context.Context, ch []string) ([][]float32, error) {
			callCount++
			vectors := make([][]float32, len(ch))
			for i, c := range ch {
				vectors[i] = []float32{float32(len(c))}
			}
			return vectors, nil
		},
	}

	vectors, err := BatchEmbed(ctx, chunks, emb)
	if err != nil {
		t.Fatalf("BatchEmbed failed: %v", err)
	}

	if callCount != 2 {
		t.Errorf("Expected 2 provider calls, got %d", callCount)
	}
	if len(vectors) != len(chunks) {
		t.Fatalf("Expected %d vectors, got %d", len(chunks), len(vectors))
	}

	// Order must survive batching: vector i encodes chunk i's length
	for i, v := range vectors {
		if v[0] != float32(len(chunks[i])) {
			t.Errorf("vector %d out of order: got %v for chunk %q", i, v[0], chunks[i])
		}
	}
}

func TestBatchEmbed_MidBatchError(t *testing.T) {
	chunks := make([]string, config.IngestBatchSize*2)
	for i := range chunks {
		chunks[i] = "content"
	}

	callCount := 0
	emb := &mockEmbedder{
		batchFunc: func(ctx context.Context, ch []string) ([][]float32, error) {
			callCount++
			if callCount == 2 {
				return nil, errors.New("provider quota exceeded")
			}
			return make([][]float32, len(ch)), nil
		},
	}

	vectors, err := BatchEmbed(context.Background(), chunks, emb)
	if err == nil {
		t.Fatal("Expected error from BatchEmbed, got nil")
	}
	if vectors != nil {
		t.Errorf("Expected no partial matrix on failure, got %d vectors", len(vectors))
	}
}

func TestBatchEmbed_Empty(t *testing.T) {
	emb := &mockEmbedder{
		batchFunc: func(ctx context.Context, ch []string) ([][]float32, error) {
			t.Fatal("provider must not be called for zero chunks")
			return nil, nil
		},
	}

	vectors, err := BatchEmbed(context.Background(), nil, emb)
	if err != nil {
		t.Fatalf("BatchEmbed failed: %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("Expected empty matrix, got %d vectors", len(vectors))
	}
}

func TestExtractText_PlainFile(t *testing.T) {
	path := t.TempDir() + "/sample.txt"
	content := "plain text body"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	got, err := extractText(path, docTypeText)
	if err != nil {
		t.Fatalf("extractText failed: %v", err)
	}
	if got != content {
		t.Errorf("extractText got %q, want %q", got, content)
	}
}

func TestExtractText_Unsupported(t *testing.T) {
	if _, err := extractText("image.png", docTypeUnknown); err == nil {
		t.Error("Expected error for unsupported type, got nil")
	}
}

func TestProcessDocumentIngestion_ConcurrentRuns(t *testing.T) {
	store, err := docstore.New(docstore.Options{Dimension: 4, M: 4, EfConstruction: 32, EfSearch: 32})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	dir := t.TempDir()
	embedder := &mockEmbedder{batchFunc: func(ctx context.Context, chunks []string) ([][]float32, error) {
		vectors := make([][]float32, len(chunks))
		for i := range chunks {
			vectors[i] = []float32{1, 0, 0, 0}
		}
		return vectors, nil
	}}

	var wg sync.WaitGroup
	results := make([]jobModel.Job, 4)
	for i := 0; i < 4; i++ {
		path := filepath.Join(dir, fmt.Sprintf("doc-%d.txt", i))
		if err := os.WriteFile(path, []byte(strings.Repeat("concurrent ingestion content. ", 30)), 0600); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}

		job := jobModel.Job{Id: fmt.Sprintf("job-%d", i)}
		job.JobPayload.DocumentId = fmt.Sprintf("doc-%d", i)
		job.JobPayload.IngestFileName = filepath.Base(path)
		job.JobPayload.IngestURL = path

		wg.Add(1)
		go func(slot int, j jobModel.Job) {
			defer wg.Done()
			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, j.Id)
			results[slot] = ProcessDocumentIngestion(ctx, j, embedder, store)
		}(i, job)
	}
	wg.Wait()

	for i, r := range results {
		if r.Status != jobModel.JobStatusComplete {
			t.Errorf("run %d: status = %q, want %q", i, r.Status, jobModel.JobStatusComplete)
		}
	}
	if store.DocumentCount() != 4 {
		t.Errorf("document count = %d, want 4", store.DocumentCount())
	}
}
