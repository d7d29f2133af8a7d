package docstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cosmicai/RagAPI/internal/domain/docModel"
)

const testDim = 4

func newMemoryStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Options{Dimension: testDim, M: 4, EfConstruction: 32, EfSearch: 32})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func axis(i int) []float32 {
	v := make([]float32, testDim)
	v[i%testDim] = 1
	return v
}

func TestStatus_LifecycleExclusivity(t *testing.T) {
	s := newMemoryStore(t)
	const docId = "doc-1"

	if got := s.Status(docId).Kind; got != docModel.StatusNotFound {
		t.Errorf("unknown doc status got %v, want not_found", got)
	}

	s.MarkProcessing(docId)
	if got := s.Status(docId).Kind; got != docModel.StatusProcessing {
		t.Errorf("status got %v, want processing", got)
	}

	s.MarkFailed(docId, "parse: broken file")
	status := s.Status(docId)
	if status.Kind != docModel.StatusFailed {
		t.Errorf("status got %v, want failed", status.Kind)
	}
	if status.Error != "parse: broken file" {
		t.Errorf("failure reason got %q", status.Error)
	}

	// A retry clears the failure entry
	s.MarkProcessing(docId)
	if got := s.Status(docId).Kind; got != docModel.StatusProcessing {
		t.Errorf("status after retry got %v, want processing", got)
	}

	if err := s.Commit(docId, "doc.txt", []string{"content"}, [][]float32{axis(0)}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	status = s.Status(docId)
	if status.Kind != docModel.StatusCompleted {
		t.Errorf("status after commit got %v, want completed", status.Kind)
	}
	if status.ChunkCount != 1 {
		t.Errorf("chunk count got %d, want 1", status.ChunkCount)
	}
}

func TestCommit_RowCorrespondence(t *testing.T) {
	s := newMemoryStore(t)

	if err := s.Commit("doc-a", "a.txt", []string{"a0", "a1"}, [][]float32{axis(0), axis(1)}); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit("doc-b", "b.txt", []string{"b0"}, [][]float32{axis(2)}); err != nil {
		t.Fatal(err)
	}

	if len(s.chunkLog) != 3 {
		t.Fatalf("chunk log has %d rows, want 3", len(s.chunkLog))
	}
	expect := []struct {
		docId   string
		ordinal uint32
	}{
		{"doc-a", 0}, {"doc-a", 1}, {"doc-b", 0},
	}
	for i, want := range expect {
		c := s.chunkLog[i]
		if c.Id != uint64(i) {
			t.Errorf("row %d id got %d", i, c.Id)
		}
		if c.DocumentId != want.docId || c.Ordinal != want.ordinal {
			t.Errorf("row %d got (%s, %d), want (%s, %d)", i, c.DocumentId, c.Ordinal, want.docId, want.ordinal)
		}
	}
	if s.Size() != 3 {
		t.Errorf("index size got %d, want 3", s.Size())
	}
}

func TestCommit_CountMismatchCommitsNothing(t *testing.T) {
	s := newMemoryStore(t)
	s.MarkProcessing("doc-1")

	err := s.Commit("doc-1", "doc.txt", []string{"one", "two"}, [][]float32{axis(0)})
	var dimErr *docModel.DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	if s.Size() != 0 || len(s.chunkLog) != 0 {
		t.Error("mismatched commit must not add rows")
	}
	if got := s.Status("doc-1").Kind; got != docModel.StatusProcessing {
		t.Errorf("status got %v, want still processing", got)
	}
}

func TestCommit_ZeroChunks(t *testing.T) {
	s := newMemoryStore(t)
	s.MarkProcessing("empty-doc")

	if err := s.Commit("empty-doc", "empty.txt", nil, nil); err != nil {
		t.Fatalf("zero-chunk commit failed: %v", err)
	}
	status := s.Status("empty-doc")
	if status.Kind != docModel.StatusCompleted || status.ChunkCount != 0 {
		t.Errorf("got %+v, want completed with 0 chunks", status)
	}
}

func TestChunksFor_OrdinalOrder(t *testing.T) {
	s := newMemoryStore(t)
	contents := []string{"first", "second", "third"}
	if err := s.Commit("doc-1", "doc.txt", contents, [][]float32{axis(0), axis(1), axis(2)}); err != nil {
		t.Fatal(err)
	}

	got := s.ChunksFor("doc-1")
	if len(got) != 3 {
		t.Fatalf("got %d chunks, want 3", len(got))
	}
	for i := range contents {
		if got[i] != contents[i] {
			t.Errorf("chunk %d got %q, want %q", i, got[i], contents[i])
		}
	}

	if got := s.ChunksFor("ghost"); got != nil {
		t.Errorf("unknown doc got %v, want nil", got)
	}
}

func TestSearch_FilterByDocument(t *testing.T) {
	s := newMemoryStore(t)
	if err := s.Commit("doc-a", "a.txt", []string{"a content"}, [][]float32{axis(0)}); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit("doc-b", "b.txt", []string{"b content"}, [][]float32{axis(0)}); err != nil {
		t.Fatal(err)
	}

	results, err := s.Search(axis(0), 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("unfiltered got %d results, want 2", len(results))
	}

	results, err = s.Search(axis(0), 5, []string{"doc-b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].DocumentId != "doc-b" {
		t.Errorf("filtered got %+v, want only doc-b", results)
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	s := newMemoryStore(t)
	results, err := s.Search(axis(0), 5, nil)
	if err != nil || results != nil {
		t.Errorf("empty store search got (%v, %v), want (nil, nil)", results, err)
	}
}

func TestPersistence_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Dimension: testDim, M: 4, EfConstruction: 32, EfSearch: 32, DataDir: dir}

	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Commit("doc-1", "doc.txt", []string{"persisted content"}, [][]float32{axis(1)}); err != nil {
		t.Fatal(err)
	}

	reloaded, err := New(opts)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Size() != 1 || reloaded.DocumentCount() != 1 {
		t.Fatalf("reloaded %d vectors / %d documents, want 1 / 1", reloaded.Size(), reloaded.DocumentCount())
	}
	if got := reloaded.Status("doc-1"); got.Kind != docModel.StatusCompleted {
		t.Errorf("reloaded status got %v, want completed", got.Kind)
	}

	results, err := reloaded.Search(axis(1), 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Content != "persisted content" {
		t.Errorf("reloaded search got %+v", results)
	}
}

func TestPersistence_ProcessingNotPersisted(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Dimension: testDim, M: 4, EfConstruction: 32, EfSearch: 32, DataDir: dir}

	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	s.MarkProcessing("in-flight")
	s.MarkFailed("broken", "embed: quota")
	if err := s.Commit("doc-1", "doc.txt", []string{"content"}, [][]float32{axis(0)}); err != nil {
		t.Fatal(err)
	}

	reloaded, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.Status("in-flight").Kind; got != docModel.StatusNotFound {
		t.Errorf("processing entry survived restart: %v", got)
	}
	if got := reloaded.Status("broken").Kind; got != docModel.StatusNotFound {
		t.Errorf("failed entry survived restart: %v", got)
	}
}

func TestLoad_PartialArtifactsIsError(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Dimension: testDim, M: 4, EfConstruction: 32, EfSearch: 32, DataDir: dir}

	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Commit("doc-1", "doc.txt", []string{"content"}, [][]float32{axis(0)}); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(dir, metadataFileName)); err != nil {
		t.Fatal(err)
	}
	if _, err := New(opts); err == nil {
		t.Error("expected error for partial artifacts, got nil")
	}
}

func TestLoad_RowDivergenceIsConsistencyError(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Dimension: testDim, M: 4, EfConstruction: 32, EfSearch: 32, DataDir: dir}

	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Commit("doc-1", "doc.txt", []string{"one", "two"}, [][]float32{axis(0), axis(1)}); err != nil {
		t.Fatal(err)
	}

	// Truncate the chunk log behind the store's back
	if err := os.WriteFile(filepath.Join(dir, chunksFileName), []byte(`{"chunks":[]}`), 0640); err != nil {
		t.Fatal(err)
	}

	_, err = New(opts)
	var consErr *docModel.ConsistencyError
	if !errors.As(err, &consErr) {
		t.Fatalf("expected ConsistencyError, got %v", err)
	}
}

func TestLoad_DimensionMismatchIsError(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Dimension: testDim, M: 4, EfConstruction: 32, EfSearch: 32, DataDir: dir}

	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Commit("doc-1", "doc.txt", []string{"content"}, [][]float32{axis(0)}); err != nil {
		t.Fatal(err)
	}

	opts.Dimension = testDim * 2
	_, err = New(opts)
	var dimErr *docModel.DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
}

func TestMarkFailed_DoesNotDemoteCommittedDocument(t *testing.T) {
	s := newMemoryStore(t)

	// point persistence at a directory that does not exist, so the write
	// after the in-memory commit fails
	s.dataDir = filepath.Join(t.TempDir(), "missing", "nested")

	err := s.Commit("doc-a", "a.txt", []string{"content"}, [][]float32{axis(0)})
	if err == nil {
		t.Fatal("expected a persistence error from Commit")
	}

	s.MarkFailed("doc-a", "commit: persistence failed")

	status := s.Status("doc-a")
	if status.Kind != docModel.StatusCompleted {
		t.Fatalf("status = %q, want completed", status.Kind)
	}
	if _, failed := s.failed["doc-a"]; failed {
		t.Error("committed document must not also be in the failed set")
	}

	// an uncommitted document still records the failure
	s.MarkProcessing("doc-b")
	s.MarkFailed("doc-b", "embed: provider down")
	if got := s.Status("doc-b"); got.Kind != docModel.StatusFailed {
		t.Errorf("status = %q, want failed", got.Kind)
	}
}
