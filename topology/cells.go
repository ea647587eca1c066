// Arrangement cells (spec §4.7): the maximal connected regions of the
// background mesh sharing one sign vector across every active function.
// Computed directly as a union-find flood fill over (tet, kernel-cell) pairs
// through shared, uncut tet-boundary faces -- this is the single-component
// case's algorithm generalised to any component count, since crossing an
// uncut shared boundary face never changes the sign vector regardless of
// how many disjoint iso-surface shells exist elsewhere in the mesh. No
// literal topo_ray_shooting implementation was retrievable (only declared in
// original_source); TopologicalRayShooting below is supplied separately to
// answer the narrower nesting question spec §4.7 assigns it (which shell
// encloses which), used by the gated cell_function_labels feature rather
// than by cell construction itself.
package topology

import (
	"math"
	"sort"

	"github.com/arrangement/isonet/bgmesh"
	"github.com/arrangement/isonet/geom"
	"github.com/arrangement/isonet/network"
)

// cellNode identifies one kernel cell within one tet.
type cellNode struct {
	Tet, Cell int
}

// Cells is the set of arrangement cells spanning the whole background mesh.
type Cells struct {
	// Node lists every (tet,cell) pair that was assigned a cell id.
	Node []cellNode
	// CellOf maps a node's position in Node to its arrangement-cell id.
	CellOf []int
	// Count is the number of distinct arrangement cells.
	Count int

	nodeIndex map[cellNode]int
}

// BuildCells flood-fills arrangement cells across the whole background mesh.
func BuildCells(mesh *bgmesh.Mesh, net *network.Mesh) *Cells {
	arrOfTet := make(map[int]*network.TetArrangement, len(net.Tets))
	for i := range net.Tets {
		arrOfTet[net.Tets[i].Tet] = &net.Tets[i]
	}

	var nodes []cellNode
	nodeIndex := map[cellNode]int{}
	addNode := func(n cellNode) int {
		if id, ok := nodeIndex[n]; ok {
			return id
		}
		id := len(nodes)
		nodeIndex[n] = id
		nodes = append(nodes, n)
		return id
	}

	for t := range mesh.Tets {
		if ta, ok := arrOfTet[t]; ok {
			for c := range ta.Arr.Cells {
				addNode(cellNode{Tet: t, Cell: c})
			}
		} else {
			addNode(cellNode{Tet: t, Cell: 0}) // no active function: whole tet is one cell
		}
	}

	uf := newUnionFind(len(nodes))

	// match every tet's whole (uncut) boundary faces against its neighbour
	boundaryOwner := map[[3]int]cellNode{}
	for t, tetVerts := range mesh.Tets {
		ta, cut := arrOfTet[t]
		if !cut {
			for face := 0; face < 4; face++ {
				key := boundaryFaceKey(tetVerts, face)
				matchBoundary(key, cellNode{Tet: t, Cell: 0}, boundaryOwner, nodeIndex, uf)
			}
			continue
		}
		for _, f := range ta.Arr.Faces {
			if !f.IsBoundary || !wholeFace(f.Loop) {
				continue
			}
			key := boundaryFaceKey(tetVerts, f.BoundaryCorner)
			matchBoundary(key, cellNode{Tet: t, Cell: f.CellPos}, boundaryOwner, nodeIndex, uf)
		}
	}

	groups := uf.groups()
	cellOf := make([]int, len(nodes))
	for cid, g := range groups {
		for _, idx := range g {
			cellOf[idx] = cid
		}
	}

	return &Cells{Node: nodes, CellOf: cellOf, Count: len(groups), nodeIndex: nodeIndex}
}

// wholeFace reports whether a boundary face's loop is still exactly the
// tet's original 3 corners (kernel seed vertex IDs 0-3), i.e. no active
// function cut across it.
func wholeFace(loop []int) bool {
	if len(loop) != 3 {
		return false
	}
	for _, v := range loop {
		if v >= 4 {
			return false
		}
	}
	return true
}

func boundaryFaceKey(tetVerts [4]int, boundaryCorner int) [3]int {
	var k [3]int
	n := 0
	for c := 0; c < 4; c++ {
		if c == boundaryCorner {
			continue
		}
		k[n] = tetVerts[c]
		n++
	}
	sort.Ints(k[:])
	return k
}

func matchBoundary(key [3]int, node cellNode, owner map[[3]int]cellNode, nodeIndex map[cellNode]int, uf *unionFind) {
	idx, ok := nodeIndex[node]
	if !ok {
		// node was never constructed by BuildCells (should not happen for a
		// valid tet/cell pair); nothing to union against.
		return
	}
	if other, ok := owner[key]; ok {
		otherIdx, ok := nodeIndex[other]
		if !ok {
			owner[key] = node
			return
		}
		uf.union(idx, otherIdx)
		return
	}
	owner[key] = node
}

// CellID returns the arrangement-cell id containing (tet, localCell), or -1
// if that node was never constructed (e.g. tet index out of range).
func (c *Cells) CellID(tet, localCell int) int {
	idx, ok := c.nodeIndex[cellNode{Tet: tet, Cell: localCell}]
	if !ok {
		return -1
	}
	return c.CellOf[idx]
}

//-----------------------------------------------------------------------------

// TopologicalRayShooting answers the nesting question for multi-component
// arrangements (spec §4.7): shoot an axis-aligned ray in +Z from origin and
// test it against every iso-face of net (each polygon as a fan of
// triangles). For each function, the crossing nearest to origin sets that
// function's sign from the orientation of the crossed face; a function the
// ray never crosses keeps +1. The resulting sign vector is the sign vector
// of the arrangement cell containing origin, letting the caller classify
// which shell(s) enclose a given sample point without re-running the kernel.
func TopologicalRayShooting(mesh *bgmesh.Mesh, net *network.Mesh, origin geom.Vec3, numFunctions int) []int8 {
	// default: a function with no crossing above origin never bounds it --
	// origin sits in the unbounded "outside" region, positive by convention.
	signs := make([]int8, numFunctions)
	for i := range signs {
		signs[i] = 1
	}

	type crossing struct {
		z    float64
		fn   int
		sign int8
	}
	var crossings []crossing

	for _, face := range net.Faces {
		if len(face.Verts) < 3 {
			continue
		}
		a := net.Vertices[face.Verts[0]].Pos
		var b, c geom.Vec3
		var z float64
		ok := false
		for i := 2; i < len(face.Verts) && !ok; i++ {
			b = net.Vertices[face.Verts[i-1]].Pos
			c = net.Vertices[face.Verts[i]].Pos
			z, ok = rayTriangleZ(origin, a, b, c)
		}
		if !ok {
			continue
		}
		n := planeNormal(a, b, c)
		// the region just above the crossing (further along the ray) has
		// sign(n.Z); origin sits just below the nearest crossing, so it
		// carries the opposite sign.
		s := int8(-1)
		if n.Z < 0 {
			s = 1
		}
		crossings = append(crossings, crossing{z: z, fn: face.FuncIndex, sign: s})
	}

	sort.Slice(crossings, func(i, j int) bool { return crossings[i].z < crossings[j].z })
	seen := make([]bool, numFunctions)
	for _, cr := range crossings {
		if cr.fn >= numFunctions || seen[cr.fn] {
			continue
		}
		seen[cr.fn] = true
		signs[cr.fn] = cr.sign
	}
	return signs
}

// rayTriangleZ intersects the vertical ray (x0,y0,*) with triangle (a,b,c)
// in the XY projection, returning the hit's Z and whether it landed inside
// the triangle (above origin.Z).
func rayTriangleZ(origin, a, b, c geom.Vec3) (float64, bool) {
	if !pointInTriangleXY(origin.X, origin.Y, a, b, c) {
		return 0, false
	}
	// barycentric interpolation of Z over the XY projection
	w := barycentricXY(origin.X, origin.Y, a, b, c)
	z := w[0]*a.Z + w[1]*b.Z + w[2]*c.Z
	if z <= origin.Z {
		return 0, false
	}
	return z, true
}

func pointInTriangleXY(x, y float64, a, b, c geom.Vec3) bool {
	w := barycentricXY(x, y, a, b, c)
	const eps = -1e-9
	return w[0] >= eps && w[1] >= eps && w[2] >= eps
}

func barycentricXY(x, y float64, a, b, c geom.Vec3) [3]float64 {
	d := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if math.Abs(d) < 1e-15 {
		return [3]float64{-1, -1, -1}
	}
	w0 := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / d
	w1 := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / d
	w2 := 1 - w0 - w1
	return [3]float64{w0, w1, w2}
}

func planeNormal(a, b, c geom.Vec3) geom.Vec3 {
	return cross(sub(b, a), sub(c, a))
}
