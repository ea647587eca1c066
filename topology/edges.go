// Package topology builds the labelling chain spec §4.5-§4.7 describes over
// a network.Mesh's global iso-surface: edges -> patches -> non-manifold
// chains -> patch ordering around chains -> shells -> components, plus the
// background mesh's arrangement cells.
package topology

import (
	"sort"

	"github.com/arrangement/isonet/network"
)

// EdgeHeader records one directed occurrence of an edge within a face loop.
type EdgeHeader struct {
	Face int
	// Index is the position of the edge's first vertex within that face's
	// Verts loop (the edge runs Verts[Index] -> Verts[(Index+1)%len]).
	Index int
}

// Edge is one undirected boundary segment of the iso-surface mesh.
type Edge struct {
	V1, V2  int // global vertex indices, V1 < V2
	Headers []EdgeHeader
}

// Manifold reports whether exactly 2 faces share this edge.
func (e Edge) Manifold() bool { return len(e.Headers) == 2 }

// BuildEdges decomposes every face's polygon loop into its boundary
// segments and groups occurrences of the same undirected (v1,v2) pair.
func BuildEdges(net *network.Mesh) []Edge {
	type key struct{ a, b int }
	index := map[key]int{}
	var edges []Edge

	for fi, face := range net.Faces {
		n := len(face.Verts)
		for i := 0; i < n; i++ {
			a, b := face.Verts[i], face.Verts[(i+1)%n]
			k := key{a, b}
			if a > b {
				k = key{b, a}
			}
			id, ok := index[k]
			if !ok {
				id = len(edges)
				edges = append(edges, Edge{V1: k.a, V2: k.b})
				index[k] = id
			}
			edges[id].Headers = append(edges[id].Headers, EdgeHeader{Face: fi, Index: i})
		}
	}
	return edges
}

// BuildPatches groups faces into connected components over manifold-edge
// adjacency (spec §4.5). Returns the patch groups (each a sorted list of
// face indices) and, for each face, which patch it belongs to.
func BuildPatches(net *network.Mesh, edges []Edge) (patches [][]int, patchOfFace []int) {
	uf := newUnionFind(len(net.Faces))
	for _, e := range edges {
		if !e.Manifold() {
			continue
		}
		uf.union(e.Headers[0].Face, e.Headers[1].Face)
	}
	groups := uf.groups()
	patchOfFace = make([]int, len(net.Faces))
	for pid, g := range groups {
		sort.Ints(g)
		for _, f := range g {
			patchOfFace[f] = pid
		}
	}
	return groups, patchOfFace
}

// Chain is a maximal connected run of non-manifold edges (spec §4.5): the
// locus where 3 or more patches meet, or a boundary edge where only 1 face
// is incident.
type Chain struct {
	Edges []int // indices into the Edges slice passed to BuildChains
}

// BuildChains groups non-manifold edges into chains by shared endpoint.
func BuildChains(edges []Edge) []Chain {
	nonManifold := make([]int, 0)
	vertexIDs := map[int]int{}
	for ei, e := range edges {
		if e.Manifold() {
			continue
		}
		nonManifold = append(nonManifold, ei)
		if _, ok := vertexIDs[e.V1]; !ok {
			vertexIDs[e.V1] = len(vertexIDs)
		}
		if _, ok := vertexIDs[e.V2]; !ok {
			vertexIDs[e.V2] = len(vertexIDs)
		}
	}
	if len(nonManifold) == 0 {
		return nil
	}

	uf := newUnionFind(len(vertexIDs))
	for _, ei := range nonManifold {
		e := edges[ei]
		uf.union(vertexIDs[e.V1], vertexIDs[e.V2])
	}

	chainOfRoot := map[int]int{}
	var chains []Chain
	for _, ei := range nonManifold {
		root := uf.find(vertexIDs[edges[ei].V1])
		ci, ok := chainOfRoot[root]
		if !ok {
			ci = len(chains)
			chainOfRoot[root] = ci
			chains = append(chains, Chain{})
		}
		chains[ci].Edges = append(chains[ci].Edges, ei)
	}
	return chains
}
