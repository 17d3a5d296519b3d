package bigram

import mapset "github.com/deckarep/golang-set/v2"

// Pair is an unordered pair of word ids, stored with I < J.
type Pair struct {
	I, J int
}

func (p Pair) key() uint64 {
	return uint64(uint32(p.I))<<32 | uint64(uint32(p.J))
}

// Generator walks the candidate pairs of an Index. Each unordered pair is
// produced at most once over the generator's lifetime.
//
// A Generator is not safe for concurrent use; parallel passes give each
// worker its own generator over a disjoint set of outer ids.
type Generator struct {
	idx  *Index
	seen mapset.Set[uint64]
}

// NewGenerator creates a generator over idx.
func NewGenerator(idx *Index) *Generator {
	return &Generator{
		idx:  idx,
		seen: mapset.NewThreadUnsafeSet[uint64](),
	}
}

// Pairs returns the not yet visited candidate pairs {id, j} with j > id,
// in ascending order of j.
func (g *Generator) Pairs(id int) []Pair {
	var out []Pair
	for _, j := range g.idx.Candidates(id) {
		if j <= id {
			continue
		}
		p := Pair{I: id, J: j}
		if !g.seen.Add(p.key()) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Visited returns the number of distinct pairs produced so far.
func (g *Generator) Visited() int { return g.seen.Cardinality() }
