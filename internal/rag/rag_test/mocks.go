package rag_test

import (
	"context"
)

const mockDimension = 4

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	// Control fields to simulate different behaviors
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) Dimension() int { return mockDimension }

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return unitVector(0), nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	// Deterministic unit vectors, one axis per chunk
	vectors := make([][]float32, len(chunks))
	for i := range chunks {
		vectors[i] = unitVector(i)
	}
	return vectors, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, query string, matches []string, history []string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, q string, mth []string, hist []string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, q, mth, hist)
	}
	return "mocked llm response", nil
}

func unitVector(axis int) []float32 {
	v := make([]float32, mockDimension)
	v[axis%mockDimension] = 1
	return v
}
