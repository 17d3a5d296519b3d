package cluster

// UnionFind is a disjoint-set forest over the ids [0, n), stored as flat
// parent and rank arrays. Find compresses paths; Union links by rank.
//
// It is not safe for concurrent mutation.
type UnionFind struct {
	parent []int
	rank   []uint8
	sets   int
}

// New creates n singleton sets.
func New(n int) *UnionFind {
	uf := &UnionFind{
		parent: make([]int, n),
		rank:   make([]uint8, n),
		sets:   n,
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

// Len returns the number of elements.
func (uf *UnionFind) Len() int { return len(uf.parent) }

// Sets returns the current number of disjoint sets.
func (uf *UnionFind) Sets() int { return uf.sets }

// Find returns the root of x's set.
func (uf *UnionFind) Find(x int) int {
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[x] != root {
		next := uf.parent[x]
		uf.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets of x and y. It returns false when they were
// already in the same set.
func (uf *UnionFind) Union(x, y int) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	switch {
	case uf.rank[rx] < uf.rank[ry]:
		uf.parent[rx] = ry
	case uf.rank[rx] > uf.rank[ry]:
		uf.parent[ry] = rx
	default:
		uf.parent[ry] = rx
		uf.rank[rx]++
	}
	uf.sets--
	return true
}

// Same reports whether x and y are in the same set.
func (uf *UnionFind) Same(x, y int) bool {
	return uf.Find(x) == uf.Find(y)
}

// Group is one set of the partition.
type Group struct {
	Root    int   // representative id inside the forest
	Members []int // ascending ids
}

// First returns the smallest member id.
func (g Group) First() int { return g.Members[0] }

// Groups extracts the partition. Groups are ordered by their smallest member,
// so iteration follows first appearance in the input order.
func (uf *UnionFind) Groups() []Group {
	slot := make(map[int]int, uf.sets)
	groups := make([]Group, 0, uf.sets)
	for id := range uf.parent {
		root := uf.Find(id)
		i, ok := slot[root]
		if !ok {
			i = len(groups)
			slot[root] = i
			groups = append(groups, Group{Root: root})
		}
		groups[i].Members = append(groups[i].Members, id)
	}
	return groups
}
