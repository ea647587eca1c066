// Package kernel implements the single-tet implicit arrangement kernel that
// spec §6 treats as an external, replaceable collaborator: given the nodal
// values of a set of active scalar functions at a tetrahedron's 4 corners
// (assumed piecewise-linear over the tet), compute the combinatorial
// decomposition the functions' zero-sets induce inside that tet -- vertices,
// faces and cells, each carrying the corner/function provenance spec §3's
// iso-vertex identity rules require.
//
// No implementation of this kernel was present in the retrieved reference
// material (original_source declares only the call signature); this package
// is therefore a from-scratch design, grounded on the iso-vertex identity
// scheme documented in extract_patch.hpp and pair_faces.hpp, implemented as
// a generic sequential convex-polytope half-space clip -- one cut per active
// function, applied in increasing function-index order so results are
// deterministic. It carries the same published-tolerance-only guarantee the
// spec's Non-goals assign to this component: no exact predicate arithmetic.
package kernel

import (
	"fmt"
	"math"
	"sort"
)

// tolerance classifies a barycentric-interpolated function value as zero.
const tolerance = 1e-9

// cornerTolerance classifies a vertex's barycentric weight as "on that
// corner" rather than strictly interior to an edge/face.
const cornerTolerance = 1e-9

// Vertex is a single vertex of the per-tet arrangement, expressed in
// barycentric coordinates over the tet's 4 corners so callers can map it
// into world space themselves (geom.FromBary(tetCorners, v.Bary)).
type Vertex struct {
	Bary [4]float64
	// Corners is the minimal set of tet-corner indices (0-3) whose convex
	// hull contains this point: len 1 on a tet corner, 2 on a tet edge, 3 on
	// a tet face, 4 in the tet interior.
	Corners []int
	// Funcs is the set of active function indices whose zero-plane passes
	// through this point. len(Funcs) == len(Corners)-1 for a non-degenerate
	// iso-vertex.
	Funcs []int
}

// Face is a planar polygon bounding one or two cells of the arrangement.
type Face struct {
	// Loop lists vertex indices in winding order around the polygon.
	Loop []int
	// IsBoundary is true for a face lying on one of the tet's own 4
	// boundary faces (it borders the neighbour tet, resolved at the
	// network-extraction layer); false for an interior cut face created by
	// one of the active functions' zero-planes.
	IsBoundary bool
	// BoundaryCorner is the tet corner opposite this boundary face, valid
	// only when IsBoundary.
	BoundaryCorner int
	// FuncIndex is the function whose zero-plane this face lies on, valid
	// only when !IsBoundary.
	FuncIndex int
	// CellPos/CellNeg index Cells on either side of this face. CellNeg is
	// -1 for a boundary face (its far side lies outside this tet).
	CellPos, CellNeg int
}

// Cell is one connected region of the tet's interior, carrying the sign of
// every active function throughout that region.
type Cell struct {
	Faces []int
	Signs map[int]int8
}

// Arrangement is the per-tet decomposition produced by ComputeArrangement.
type Arrangement struct {
	Vertices []Vertex
	Faces    []Face
	Cells    []Cell
}

// ComputeArrangement computes the arrangement a tetrahedron's active
// functions induce, given each function's nodal values at the tet's 4
// corners (in local corner order 0-3). funcValues must be non-empty.
func ComputeArrangement(funcValues map[int][4]float64) (*Arrangement, error) {
	if len(funcValues) == 0 {
		return nil, fmt.Errorf("kernel: no active functions supplied")
	}

	b := newBuilder(funcValues)
	for _, f := range b.sortedFuncs() {
		b.cutByFunction(f)
	}
	return b.finish(), nil
}

//-----------------------------------------------------------------------------

type builder struct {
	funcValues map[int][4]float64
	verts      [][4]float64
	faces      []Face
	cells      []workingCell
}

type workingCell struct {
	faceIDs []int
	signs   map[int]int8
}

func newBuilder(funcValues map[int][4]float64) *builder {
	b := &builder{funcValues: funcValues}

	// seed the 4 tet corners as one-hot barycentric vertices
	for c := 0; c < 4; c++ {
		var bary [4]float64
		bary[c] = 1
		b.verts = append(b.verts, bary)
	}

	// 4 boundary faces, one per opposite corner, wound so each tet corner's
	// opposite face lists the remaining 3 corners in ascending order
	boundary := [4][3]int{
		{1, 2, 3}, {0, 2, 3}, {0, 1, 3}, {0, 1, 2},
	}
	faceIDs := make([]int, 4)
	for c, loop := range boundary {
		id := len(b.faces)
		b.faces = append(b.faces, Face{
			Loop:           append([]int(nil), loop[:]...),
			IsBoundary:     true,
			BoundaryCorner: c,
			CellPos:        -1,
			CellNeg:        -1,
		})
		faceIDs[c] = id
	}

	b.cells = []workingCell{{faceIDs: faceIDs, signs: map[int]int8{}}}
	return b
}

func (b *builder) sortedFuncs() []int {
	fs := make([]int, 0, len(b.funcValues))
	for f := range b.funcValues {
		fs = append(fs, f)
	}
	sort.Ints(fs)
	return fs
}

func (b *builder) value(f, vertexID int) float64 {
	cv := b.funcValues[f]
	bary := b.verts[vertexID]
	return cv[0]*bary[0] + cv[1]*bary[1] + cv[2]*bary[2] + cv[3]*bary[3]
}

func sign(v float64) int8 {
	if v > tolerance {
		return 1
	}
	if v < -tolerance {
		return -1
	}
	return 0
}

// cutByFunction splits every current cell by function f's zero-plane,
// replacing b.cells with the (up to doubled) set of resulting cells.
func (b *builder) cutByFunction(f int) {
	var next []workingCell
	// shared across the cells of this cut so a face (or edge) reached from
	// two sibling cells is split only once
	cache := map[[2]int]int{}
	splitOf := map[int][2]int{}

	for _, cell := range b.cells {
		lo, hi, split := b.splitCell(cell, f, cache, splitOf)
		if !split {
			s := uniformSign(b, cell, f)
			cell.signs = withSign(cell.signs, f, s)
			next = append(next, cell)
			continue
		}
		if lo != nil {
			next = append(next, *lo)
		}
		if hi != nil {
			next = append(next, *hi)
		}
	}
	b.cells = next
}

func uniformSign(b *builder, cell workingCell, f int) int8 {
	for _, vID := range cellVertexIDs(b, cell) {
		if s := sign(b.value(f, vID)); s != 0 {
			return s
		}
	}
	return 1 // entire cell lies exactly on the plane: outside tolerance guarantees
}

func cellVertexIDs(b *builder, cell workingCell) []int {
	seen := map[int]bool{}
	var ids []int
	for _, fid := range cell.faceIDs {
		for _, v := range b.faces[fid].Loop {
			if !seen[v] {
				seen[v] = true
				ids = append(ids, v)
			}
		}
	}
	return ids
}

// splitCell attempts to split cell by function f's zero-plane. Returns
// (posCell, negCell, true) if the plane actually crosses the cell, or
// (nil, nil, false) if the cell lies entirely to one side. A face already
// split by this cut from a sibling cell reuses those fragments (splitOf).
func (b *builder) splitCell(cell workingCell, f int, cache map[[2]int]int, splitOf map[int][2]int) (pos, neg *workingCell, split bool) {
	ids := cellVertexIDs(b, cell)
	sawPos, sawNeg := false, false
	for _, id := range ids {
		switch sign(b.value(f, id)) {
		case 1:
			sawPos = true
		case -1:
			sawNeg = true
		}
	}
	if !(sawPos && sawNeg) {
		return nil, nil, false
	}

	posCell := workingCell{signs: copySigns(cell.signs, f, 1)}
	negCell := workingCell{signs: copySigns(cell.signs, f, -1)}

	var capEdges [][2]int

	for _, fid := range cell.faceIDs {
		face := b.faces[fid]
		posLoop, negLoop, cap := b.clipFace(face.Loop, f, cache)

		switch {
		case len(posLoop) >= 3 && len(negLoop) >= 3:
			// the cut plane actually crosses this face: both sides are new
			// geometry, the original fid is superseded and left unreferenced.
			if ids, done := splitOf[fid]; done {
				posCell.faceIDs = append(posCell.faceIDs, ids[0])
				negCell.faceIDs = append(negCell.faceIDs, ids[1])
				break
			}
			posID := len(b.faces)
			b.faces = append(b.faces, Face{
				Loop: posLoop, IsBoundary: face.IsBoundary, BoundaryCorner: face.BoundaryCorner,
				FuncIndex: face.FuncIndex, CellPos: -1, CellNeg: -1,
			})
			posCell.faceIDs = append(posCell.faceIDs, posID)

			negID := len(b.faces)
			b.faces = append(b.faces, Face{
				Loop: negLoop, IsBoundary: face.IsBoundary, BoundaryCorner: face.BoundaryCorner,
				FuncIndex: face.FuncIndex, CellPos: -1, CellNeg: -1,
			})
			negCell.faceIDs = append(negCell.faceIDs, negID)
			splitOf[fid] = [2]int{posID, negID}
		case len(posLoop) >= 3:
			// untouched by this cut: reuse fid rather than cloning it.
			posCell.faceIDs = append(posCell.faceIDs, fid)
		case len(negLoop) >= 3:
			negCell.faceIDs = append(negCell.faceIDs, fid)
		}
		if cap != ([2]int{}) {
			capEdges = append(capEdges, cap)
		}
	}

	capLoop := chainCycle(capEdges)
	if len(capLoop) >= 3 {
		id := len(b.faces)
		b.faces = append(b.faces, Face{Loop: capLoop, FuncIndex: f, CellPos: -1, CellNeg: -1})
		posCell.faceIDs = append(posCell.faceIDs, id)
		negCell.faceIDs = append(negCell.faceIDs, id)
	}

	return &posCell, &negCell, true
}

func copySigns(signs map[int]int8, f int, s int8) map[int]int8 {
	out := make(map[int]int8, len(signs)+1)
	for k, v := range signs {
		out[k] = v
	}
	out[f] = s
	return out
}

func withSign(signs map[int]int8, f int, s int8) map[int]int8 {
	return copySigns(signs, f, s)
}

// clipFace runs Sutherland-Hodgman clipping of loop against function f's
// zero-plane, returning the positive-side loop, the negative-side loop, and,
// when exactly two of the face's vertices lie on the plane (new crossing
// vertices or existing vertices with a zero value), the edge joining them,
// used to chain the cap polygon; otherwise capEdge is the zero value.
func (b *builder) clipFace(loop []int, f int, cache map[[2]int]int) (posLoop, negLoop []int, capEdge [2]int) {
	n := len(loop)
	vals := make([]float64, n)
	for i, v := range loop {
		vals[i] = b.value(f, v)
	}

	var newOnPlane []int
	for i := 0; i < n; i++ {
		cur, next := loop[i], loop[(i+1)%n]
		curVal, nextVal := vals[i], vals[(i+1)%n]
		curSign, nextSign := sign(curVal), sign(nextVal)

		if curSign >= 0 {
			posLoop = append(posLoop, cur)
		}
		if curSign <= 0 {
			negLoop = append(negLoop, cur)
		}
		if curSign == 0 {
			newOnPlane = append(newOnPlane, cur)
			continue
		}
		if (curSign > 0 && nextSign < 0) || (curSign < 0 && nextSign > 0) {
			nv := b.edgeIntersection(cur, next, curVal, nextVal, cache)
			posLoop = append(posLoop, nv)
			negLoop = append(negLoop, nv)
			newOnPlane = append(newOnPlane, nv)
		}
	}

	if len(newOnPlane) == 2 {
		capEdge = [2]int{newOnPlane[0], newOnPlane[1]}
	}
	return dedupCycle(posLoop), dedupCycle(negLoop), capEdge
}

// edgeIntersection returns the vertex ID at the zero-crossing of edge
// (a,b) with values (fa,fb), reusing an existing vertex if this edge was
// already split by another face sharing it.
func (b *builder) edgeIntersection(a, bIdx int, fa, fb float64, cache map[[2]int]int) int {
	key := [2]int{a, bIdx}
	if a > bIdx {
		key = [2]int{bIdx, a}
	}
	if id, ok := cache[key]; ok {
		return id
	}
	t0 := fb / (fb - fa)
	t1 := 1 - t0
	var bary [4]float64
	for i := 0; i < 4; i++ {
		bary[i] = t0*b.verts[a][i] + t1*b.verts[bIdx][i]
	}
	id := len(b.verts)
	b.verts = append(b.verts, bary)
	cache[key] = id
	return id
}

// dedupCycle removes consecutive duplicate vertex IDs (a vertex lying
// exactly on the plane appears once per visit, not duplicated by the
// crossing logic).
func dedupCycle(loop []int) []int {
	if len(loop) < 2 {
		return loop
	}
	out := loop[:1]
	for _, v := range loop[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// chainCycle walks a set of undirected edges lying on one plane into a
// single ordered polygon loop. The per-tet arrangement of a convex polytope
// guarantees at most one cycle results.
func chainCycle(edges [][2]int) []int {
	if len(edges) == 0 {
		return nil
	}
	adj := map[int][]int{}
	for _, e := range edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	start := edges[0][0]
	loop := []int{start}
	visited := map[[2]int]bool{}
	cur := start
	prev := -1
	for {
		var next int = -1
		for _, cand := range adj[cur] {
			if cand == prev {
				continue
			}
			ek := [2]int{cur, cand}
			if ek[0] > ek[1] {
				ek[0], ek[1] = ek[1], ek[0]
			}
			if !visited[ek] {
				next = cand
				visited[ek] = true
				break
			}
		}
		if next == -1 {
			break
		}
		if next == start {
			break
		}
		loop = append(loop, next)
		prev = cur
		cur = next
	}
	return loop
}

// finish derives vertex identity (corners/funcs), then compacts b.faces down
// to only the faces actually referenced by a final cell -- every face
// superseded by a later split (its fid left behind when splitCell allocated
// fresh fragments) is dropped rather than returned alongside the live
// geometry, and CellPos/CellNeg are assigned from the final referencing
// cells rather than inherited from whatever cell owned the fid when it was
// first allocated.
func (b *builder) finish() *Arrangement {
	arr := &Arrangement{}

	for _, bary := range b.verts {
		v := Vertex{Bary: bary}
		for c := 0; c < 4; c++ {
			if bary[c] > cornerTolerance {
				v.Corners = append(v.Corners, c)
			}
		}
		for _, f := range b.sortedFuncs() {
			val := b.funcValues[f][0]*bary[0] + b.funcValues[f][1]*bary[1] +
				b.funcValues[f][2]*bary[2] + b.funcValues[f][3]*bary[3]
			if math.Abs(val) <= tolerance {
				v.Funcs = append(v.Funcs, f)
			}
		}
		arr.Vertices = append(arr.Vertices, v)
	}

	// collect, per live fid, the final cell index/indices that reference it
	// (1 for a boundary face or an un-shared interior face, 2 for an
	// interior face shared by two sibling cells).
	referencingCells := map[int][]int{}
	for i, cell := range b.cells {
		for _, fid := range cell.faceIDs {
			referencingCells[fid] = append(referencingCells[fid], i)
		}
	}

	liveFids := make([]int, 0, len(referencingCells))
	for fid := range referencingCells {
		liveFids = append(liveFids, fid)
	}
	sort.Ints(liveFids)

	newID := make(map[int]int, len(liveFids))
	for _, fid := range liveFids {
		face := b.faces[fid]
		owners := referencingCells[fid]
		face.CellPos = owners[0]
		if len(owners) > 1 {
			face.CellNeg = owners[1]
		} else {
			face.CellNeg = -1
		}
		newID[fid] = len(arr.Faces)
		arr.Faces = append(arr.Faces, face)
	}

	for _, cell := range b.cells {
		remapped := make([]int, len(cell.faceIDs))
		for i, fid := range cell.faceIDs {
			remapped[i] = newID[fid]
		}
		arr.Cells = append(arr.Cells, Cell{Faces: remapped, Signs: cell.signs})
	}

	return arr
}
