package vectorindex

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/cosmicai/RagAPI/internal/domain/docModel"
)

func newSmallIndex() *Index {
	return New(4, 4, 32, 32)
}

func axisVector(dim int, axis int, scale float32) []float32 {
	v := make([]float32, dim)
	v[axis%dim] = scale
	return v
}

func randomVectors(n int, dim int, seed int64) [][]float32 {
	rng := rand.New(rand.NewSource(seed))
	out := make([][]float32, n)
	for i := range out {
		v := make([]float32, dim)
		for j := range v {
			v[j] = rng.Float32()*2 - 1
		}
		out[i] = v
	}
	return out
}

func TestInsert_AssignsDenseRows(t *testing.T) {
	ix := newSmallIndex()

	start, err := ix.Insert(randomVectors(3, 4, 1))
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if start != 0 {
		t.Errorf("first insert start got %d, want 0", start)
	}

	start, err = ix.Insert(randomVectors(2, 4, 2))
	if err != nil {
		t.Fatalf("second insert failed: %v", err)
	}
	if start != 3 {
		t.Errorf("second insert start got %d, want 3", start)
	}
	if ix.Size() != 5 {
		t.Errorf("Size got %d, want 5", ix.Size())
	}
}

func TestInsert_DimensionMismatchInsertsNothing(t *testing.T) {
	ix := newSmallIndex()

	vectors := [][]float32{
		axisVector(4, 0, 1),
		{1, 2, 3}, // wrong width
	}
	_, err := ix.Insert(vectors)
	var dimErr *docModel.DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	if ix.Size() != 0 {
		t.Errorf("failed insert must not add rows, Size = %d", ix.Size())
	}
}

func TestSearch_ExactMatchScoresOne(t *testing.T) {
	ix := newSmallIndex()
	if _, err := ix.Insert([][]float32{
		axisVector(4, 0, 1),
		axisVector(4, 1, 1),
		axisVector(4, 2, 1),
	}); err != nil {
		t.Fatal(err)
	}

	// Scale must not matter: vectors are normalized internally
	hits, err := ix.Search(axisVector(4, 1, 7.5), 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].Row != 1 {
		t.Errorf("top row got %d, want 1", hits[0].Row)
	}
	if math.Abs(float64(hits[0].Similarity)-1.0) > 1e-5 {
		t.Errorf("exact match similarity got %v, want ~1.0", hits[0].Similarity)
	}
}

func TestSearch_OrderedBySimilarityThenRow(t *testing.T) {
	ix := newSmallIndex()
	if _, err := ix.Insert([][]float32{
		axisVector(4, 1, 1), // orthogonal to the query
		axisVector(4, 0, 1), // tie with row 2
		axisVector(4, 0, 3), // same direction, different scale
	}); err != nil {
		t.Fatal(err)
	}

	hits, err := ix.Search(axisVector(4, 0, 1), 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}
	// Rows 1 and 2 normalize to the same vector; the tie must break by row
	if hits[0].Row != 1 || hits[1].Row != 2 {
		t.Errorf("tie order got rows %d,%d, want 1,2", hits[0].Row, hits[1].Row)
	}
	if hits[2].Row != 0 {
		t.Errorf("worst match got row %d, want 0", hits[2].Row)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Similarity > hits[i-1].Similarity {
			t.Errorf("similarities out of order: %v then %v", hits[i-1].Similarity, hits[i].Similarity)
		}
	}
}

func TestSearch_Deterministic(t *testing.T) {
	ix := newSmallIndex()
	if _, err := ix.Insert(randomVectors(200, 4, 7)); err != nil {
		t.Fatal(err)
	}

	query := axisVector(4, 2, 1)
	first, err := ix.Search(query, 10)
	if err != nil {
		t.Fatal(err)
	}
	for run := 0; run < 5; run++ {
		again, err := ix.Search(query, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d returned %d hits, want %d", run, len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("run %d differs at %d: %+v vs %+v", run, i, again[i], first[i])
			}
		}
	}
}

func TestSearch_EdgeCases(t *testing.T) {
	ix := newSmallIndex()

	hits, err := ix.Search(axisVector(4, 0, 1), 5)
	if err != nil || hits != nil {
		t.Errorf("empty index search got (%v, %v), want (nil, nil)", hits, err)
	}

	if _, err := ix.Insert(randomVectors(3, 4, 3)); err != nil {
		t.Fatal(err)
	}

	if _, err := ix.Search([]float32{1, 2}, 5); err == nil {
		t.Error("expected DimensionError for short query")
	}

	hits, err = ix.Search(axisVector(4, 0, 1), 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Errorf("k beyond size got %d hits, want 3", len(hits))
	}
}

func TestSerialize_RoundTripIdenticalResults(t *testing.T) {
	ix := New(8, 8, 64, 48)
	if _, err := ix.Insert(randomVectors(300, 8, 11)); err != nil {
		t.Fatal(err)
	}

	data, err := ix.SerializeToBytes()
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}

	restored, err := DeserializeFromBytes(data)
	if err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}
	if restored.Size() != ix.Size() || restored.Dimension() != ix.Dimension() {
		t.Fatalf("restored shape %d x %d, want %d x %d",
			restored.Size(), restored.Dimension(), ix.Size(), ix.Dimension())
	}

	query := randomVectors(1, 8, 99)[0]
	want, err := ix.Search(query, 20)
	if err != nil {
		t.Fatal(err)
	}
	got, err := restored.Search(query, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("restored search returned %d hits, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Row != want[i].Row {
			t.Errorf("row %d: got %d, want %d", i, got[i].Row, want[i].Row)
		}
		if math.Abs(float64(got[i].Similarity-want[i].Similarity)) > 1e-6 {
			t.Errorf("score %d: got %v, want %v", i, got[i].Similarity, want[i].Similarity)
		}
	}
}

func TestDeserialize_RejectsGarbage(t *testing.T) {
	if _, err := DeserializeFromBytes([]byte("not a gob stream")); err == nil {
		t.Error("expected error for corrupt bytes")
	}
	if _, err := DeserializeFromBytes(nil); err == nil {
		t.Error("expected error for empty bytes")
	}
}
