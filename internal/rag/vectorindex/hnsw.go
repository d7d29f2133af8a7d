package vectorindex

import (
	"math"
	"math/rand"
	"sort"

	"github.com/cosmicai/RagAPI/internal/domain/docModel"
)

// levelSeed keeps graph construction reproducible for a given insertion order.
const levelSeed = 100

// Hit is a single nearest-neighbour result. Similarity is cosine similarity,
// derived from squared L2 distance on unit vectors: 1 - d²/2.
type Hit struct {
	Row        int
	Similarity float32
}

// Index is an in-process HNSW graph over unit-normalized vectors.
//
// Rows are assigned densely in insertion order and never reused or reordered;
// the document store's chunk log depends on that correspondence. The index
// does no locking of its own - the owning store serializes mutations and
// keeps readers off partially inserted rows.
type Index struct {
	dim            int
	m              int //max neighbors per node per layer (level 0 keeps 2M)
	mMax0          int
	efConstruction int
	efSearch       int
	levelMult      float64

	vectors   [][]float32
	levels    []int
	neighbors [][][]int32 //neighbors[row][level]
	entry     int32
	maxLevel  int

	rng *rand.Rand
}

func New(dim int, m int, efConstruction int, efSearch int) *Index {
	if m < 2 {
		m = 2
	}
	return &Index{
		dim:            dim,
		m:              m,
		mMax0:          2 * m,
		efConstruction: efConstruction,
		efSearch:       efSearch,
		levelMult:      1.0 / math.Log(float64(m)),
		entry:          -1,
		rng:            rand.New(rand.NewSource(levelSeed)),
	}
}

func (ix *Index) Size() int { return len(ix.vectors) }

func (ix *Index) Dimension() int { return ix.dim }

// SetEfSearch adjusts query-time candidate breadth. It may exceed the
// construction value for higher recall without rebuilding.
func (ix *Index) SetEfSearch(ef int) {
	if ef > 0 {
		ix.efSearch = ef
	}
}

// Insert appends vectors as rows [start, start+len(vectors)) and returns
// start. Vectors are copied and unit-normalized internally. On a dimension
// mismatch nothing is inserted.
func (ix *Index) Insert(vectors [][]float32) (int, error) {
	for _, v := range vectors {
		if len(v) != ix.dim {
			return 0, &docModel.DimensionError{Want: ix.dim, Got: len(v), What: "insert vector"}
		}
	}

	start := len(ix.vectors)
	for _, v := range vectors {
		ix.insertOne(normalized(v))
	}
	return start, nil
}

// Search returns up to k rows ordered by descending similarity, ties broken
// by ascending row for determinism.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, &docModel.DimensionError{Want: ix.dim, Got: len(query), What: "query vector"}
	}
	if k <= 0 || len(ix.vectors) == 0 {
		return nil, nil
	}

	q := normalized(query)

	ef := ix.efSearch
	if ef < k {
		ef = k
	}

	cur := ix.entry
	curDist := ix.distanceTo(q, cur)
	for level := ix.maxLevel; level > 0; level-- {
		cur, curDist = ix.greedyDescend(q, cur, curDist, level)
	}

	candidates := ix.searchLayer(q, cur, curDist, ef, 0)

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].id < candidates[j].id
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	hits := make([]Hit, len(candidates))
	for i, c := range candidates {
		hits[i] = Hit{
			Row:        int(c.id),
			Similarity: 1 - c.dist/2,
		}
	}
	return hits, nil
}

func (ix *Index) insertOne(v []float32) {
	id := int32(len(ix.vectors))
	level := ix.randomLevel()

	ix.vectors = append(ix.vectors, v)
	ix.levels = append(ix.levels, level)
	ix.neighbors = append(ix.neighbors, make([][]int32, level+1))

	if ix.entry == -1 {
		ix.entry = id
		ix.maxLevel = level
		return
	}

	cur := ix.entry
	curDist := ix.distanceTo(v, cur)
	for l := ix.maxLevel; l > level; l-- {
		cur, curDist = ix.greedyDescend(v, cur, curDist, l)
	}

	top := level
	if top > ix.maxLevel {
		top = ix.maxLevel
	}
	for l := top; l >= 0; l-- {
		found := ix.searchLayer(v, cur, curDist, ix.efConstruction, l)
		selected := selectClosest(found, ix.m)

		links := make([]int32, len(selected))
		for i, c := range selected {
			links[i] = c.id
		}
		ix.neighbors[id][l] = links

		for _, c := range selected {
			ix.link(c.id, id, l)
		}

		if len(selected) > 0 {
			cur = selected[0].id
			curDist = selected[0].dist
		}
	}

	if level > ix.maxLevel {
		ix.maxLevel = level
		ix.entry = id
	}
}

// link adds dst to src's neighbor list at the given level, pruning back to
// the per-level cap by keeping the closest.
func (ix *Index) link(src int32, dst int32, level int) {
	cap := ix.m
	if level == 0 {
		cap = ix.mMax0
	}

	list := append(ix.neighbors[src][level], dst)
	if len(list) > cap {
		cands := make([]candidate, len(list))
		for i, n := range list {
			cands[i] = candidate{id: n, dist: distance(ix.vectors[src], ix.vectors[n])}
		}
		cands = selectClosest(cands, cap)
		list = list[:0]
		for _, c := range cands {
			list = append(list, c.id)
		}
	}
	ix.neighbors[src][level] = list
}

// greedyDescend walks to the local minimum on one layer.
func (ix *Index) greedyDescend(q []float32, cur int32, curDist float32, level int) (int32, float32) {
	for {
		improved := false
		for _, n := range ix.neighborsAt(cur, level) {
			if d := ix.distanceTo(q, n); d < curDist {
				cur, curDist = n, d
				improved = true
			}
		}
		if !improved {
			return cur, curDist
		}
	}
}

// searchLayer is the beam search of the HNSW paper: expand the closest
// unexpanded candidate while the result set of size ef can still improve.
func (ix *Index) searchLayer(q []float32, enter int32, enterDist float32, ef int, level int) []candidate {
	visited := make(map[int32]bool, ef*4)
	visited[enter] = true

	cands := &minQueue{{id: enter, dist: enterDist}}
	results := &maxQueue{{id: enter, dist: enterDist}}

	for cands.Len() > 0 {
		c := cands.PopMin()
		if c.dist > results.PeekMax().dist && results.Len() >= ef {
			break
		}
		for _, n := range ix.neighborsAt(c.id, level) {
			if visited[n] {
				continue
			}
			visited[n] = true
			d := ix.distanceTo(q, n)
			if results.Len() < ef || d < results.PeekMax().dist {
				cands.PushMin(candidate{id: n, dist: d})
				results.PushMax(candidate{id: n, dist: d})
				if results.Len() > ef {
					results.PopMax()
				}
			}
		}
	}
	return *results
}

func (ix *Index) neighborsAt(id int32, level int) []int32 {
	if level >= len(ix.neighbors[id]) {
		return nil
	}
	return ix.neighbors[id][level]
}

func (ix *Index) distanceTo(q []float32, id int32) float32 {
	return distance(q, ix.vectors[id])
}

func (ix *Index) randomLevel() int {
	return int(math.Floor(-math.Log(ix.rng.Float64()+1e-12) * ix.levelMult))
}

// selectClosest keeps the m nearest candidates, ties by ascending row.
func selectClosest(cands []candidate, m int) []candidate {
	sorted := make([]candidate, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].dist != sorted[j].dist {
			return sorted[i].dist < sorted[j].dist
		}
		return sorted[i].id < sorted[j].id
	})
	if len(sorted) > m {
		sorted = sorted[:m]
	}
	return sorted
}

// distance is squared L2. On unit vectors d² = 2 - 2·cosθ, which is what the
// similarity transform in Search depends on.
func distance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// normalized returns a unit-length copy. Zero vectors are returned as-is.
func normalized(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}
