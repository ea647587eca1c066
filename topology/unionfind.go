package topology

// unionFind is a small int-indexed disjoint-set structure with path
// compression and union by rank. Grounded stylistically on
// katalvlaran/lvlath's Kruskal DSU (graph/algorithms/prim_kruskal.go), but
// written directly against plain ints rather than lvlath's string-keyed,
// mutex-guarded core.Graph: the topology labeller performs a union operation
// per edge/adjacency of a mesh with potentially millions of elements, and
// lvlath's graph abstraction (string vertex IDs, per-call locking) is the
// wrong shape for that hot, purely-sequential loop.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// groups returns, for each distinct root, the list of original elements in
// its set, in a deterministic order (by first element seen).
func (uf *unionFind) groups() [][]int {
	idxOf := map[int]int{}
	var out [][]int
	for i := range uf.parent {
		r := uf.find(i)
		gi, ok := idxOf[r]
		if !ok {
			gi = len(out)
			idxOf[r] = gi
			out = append(out, nil)
		}
		out[gi] = append(out[gi], i)
	}
	return out
}
