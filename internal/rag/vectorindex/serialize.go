package vectorindex

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
)

// indexSnapshot is the on-disk shape of the graph. The full adjacency
// structure is stored, so a reloaded index answers queries identically.
type indexSnapshot struct {
	Dim            int
	M              int
	EfConstruction int
	EfSearch       int
	MaxLevel       int
	Entry          int32
	Vectors        [][]float32
	Levels         []int
	Neighbors      [][][]int32
}

// SerializeToBytes encodes the full graph for persistence.
func (ix *Index) SerializeToBytes() ([]byte, error) {
	snap := indexSnapshot{
		Dim:            ix.dim,
		M:              ix.m,
		EfConstruction: ix.efConstruction,
		EfSearch:       ix.efSearch,
		MaxLevel:       ix.maxLevel,
		Entry:          ix.entry,
		Vectors:        ix.vectors,
		Levels:         ix.levels,
		Neighbors:      ix.neighbors,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&snap); err != nil {
		return nil, fmt.Errorf("encoding index: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeFromBytes restores an index serialized by SerializeToBytes.
func DeserializeFromBytes(data []byte) (*Index, error) {
	var snap indexSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	if snap.Dim <= 0 || snap.M < 2 {
		return nil, fmt.Errorf("decoding index: invalid header (dim=%d m=%d)", snap.Dim, snap.M)
	}
	if len(snap.Vectors) != len(snap.Levels) || len(snap.Vectors) != len(snap.Neighbors) {
		return nil, fmt.Errorf("decoding index: row tables disagree (%d vectors, %d levels, %d adjacency)",
			len(snap.Vectors), len(snap.Levels), len(snap.Neighbors))
	}

	return &Index{
		dim:            snap.Dim,
		m:              snap.M,
		mMax0:          2 * snap.M,
		efConstruction: snap.EfConstruction,
		efSearch:       snap.EfSearch,
		levelMult:      1.0 / math.Log(float64(snap.M)),
		vectors:        snap.Vectors,
		levels:         snap.Levels,
		neighbors:      snap.Neighbors,
		entry:          snap.Entry,
		maxLevel:       snap.MaxLevel,
		rng:            rand.New(rand.NewSource(levelSeed)),
	}, nil
}
