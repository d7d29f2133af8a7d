package docstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cosmicai/RagAPI/internal/domain/docModel"
	"github.com/cosmicai/RagAPI/internal/rag/vectorindex"
)

// The three persisted artifacts are written together and loaded together.
// Presence of only some of them means a broken or torn state, which is a
// startup error rather than a silent empty store.
const (
	indexFileName    = "index.bin"
	chunksFileName   = "chunks.json"
	metadataFileName = "metadata.json"
)

type chunksFile struct {
	Chunks []docModel.Chunk `json:"chunks"`
}

type metadataFile struct {
	Documents map[string]docModel.DocumentRecord `json:"documents"`
}

func (s *Store) loadFromDisk(opts Options) (bool, error) {
	if s.dataDir == "" {
		return false, nil
	}
	if err := os.MkdirAll(s.dataDir, 0750); err != nil {
		return false, fmt.Errorf("creating data dir: %w", err)
	}

	indexPath := filepath.Join(s.dataDir, indexFileName)
	chunksPath := filepath.Join(s.dataDir, chunksFileName)
	metadataPath := filepath.Join(s.dataDir, metadataFileName)

	present := 0
	for _, p := range []string{indexPath, chunksPath, metadataPath} {
		if _, err := os.Stat(p); err == nil {
			present++
		}
	}
	if present == 0 {
		return false, nil
	}
	if present != 3 {
		return false, fmt.Errorf("vector store state in %s is incomplete (%d of 3 artifacts present)", s.dataDir, present)
	}

	indexBytes, err := os.ReadFile(indexPath)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", indexFileName, err)
	}
	index, err := vectorindex.DeserializeFromBytes(indexBytes)
	if err != nil {
		return false, err
	}
	index.SetEfSearch(opts.EfSearch)

	var cf chunksFile
	if err := readJSON(chunksPath, &cf); err != nil {
		return false, err
	}

	var mf metadataFile
	if err := readJSON(metadataPath, &mf); err != nil {
		return false, err
	}

	if index.Size() != len(cf.Chunks) {
		return false, &docModel.ConsistencyError{IndexRows: index.Size(), LogRows: len(cf.Chunks)}
	}
	if index.Dimension() != opts.Dimension {
		return false, &docModel.DimensionError{Want: opts.Dimension, Got: index.Dimension(), What: "persisted index"}
	}

	s.index = index
	s.chunkLog = cf.Chunks
	if mf.Documents != nil {
		s.records = mf.Documents
	}
	return true, nil
}

// persistLocked writes all three artifacts. Callers hold the write lock, so
// snapshots never interleave with a commit. Each file goes through a temp
// file and rename.
func (s *Store) persistLocked() error {
	if s.dataDir == "" {
		return nil
	}

	indexBytes, err := s.index.SerializeToBytes()
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(s.dataDir, indexFileName), indexBytes); err != nil {
		return err
	}

	chunkBytes, err := json.Marshal(chunksFile{Chunks: s.chunkLog})
	if err != nil {
		return fmt.Errorf("encoding chunk log: %w", err)
	}
	if err := writeAtomic(filepath.Join(s.dataDir, chunksFileName), chunkBytes); err != nil {
		return err
	}

	metaBytes, err := json.Marshal(metadataFile{Documents: s.records})
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := writeAtomic(filepath.Join(s.dataDir, metadataFileName), metaBytes); err != nil {
		return err
	}

	s.logger.Debug("Persisted vector store", "dir", s.dataDir, "vectors", s.index.Size())
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0640); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
