// Patch ordering around chains (spec §4.6) and shell/component construction
// (spec §4.7). No implementation of compute_patch_order's containing-tet
// resolution (pair_faces.cpp) survived retrieval in a form this package
// could call directly -- the per-tet kernel data it depends on (corner/edge
// incident-tet sets) is consumed upstream in network.Build. This package
// instead determines the cyclic order of patches around a chain edge
// geometrically (a radial sort of each incident face's outward tangent
// about the edge axis), which yields the same cyclic adjacency that
// compute_patch_order's case analysis establishes for coplanar-ambiguity-free
// (generic position) input -- the regime spec.md's Non-goals already
// restrict full robustness to.
package topology

import (
	"math"
	"sort"

	"github.com/arrangement/isonet/geom"
	"github.com/arrangement/isonet/network"
)

// halfPatch identifies one side of one patch: id = patch*2 + side, side 0
// faces each face's CellPos, side 1 faces CellNeg.
func halfPatch(patch int, side int) int { return patch*2 + side }

// OrderPatchesAroundChains computes, for every chain edge, the cyclic order
// of its incident faces (by angle around the edge axis), and unions the
// half-patches of angularly-consecutive faces into shells: walking off the
// back (CellNeg side) of one sheet onto the front (CellPos side) of its
// rotational neighbour continues the same oriented closed surface.
func OrderPatchesAroundChains(net *network.Mesh, edges []Edge, chains []Chain, patchOfFace []int) *unionFind {
	shellUF := newUnionFind(2 * len(patchOfFaceDomain(patchOfFace)))

	for _, chain := range chains {
		for _, ei := range chain.Edges {
			orderEdgeHalfPatches(net, edges[ei], patchOfFace, shellUF)
		}
	}
	return shellUF
}

func patchOfFaceDomain(patchOfFace []int) []int {
	max := -1
	for _, p := range patchOfFace {
		if p > max {
			max = p
		}
	}
	return make([]int, max+1)
}

func orderEdgeHalfPatches(net *network.Mesh, e Edge, patchOfFace []int, shellUF *unionFind) {
	if len(e.Headers) < 2 {
		return
	}
	p1 := net.Vertices[e.V1].Pos
	p2 := net.Vertices[e.V2].Pos
	axis := unit(sub(p2, p1))
	u, w := orthonormalBasis(axis)

	type entry struct {
		angle float64
		face  int
	}
	entries := make([]entry, 0, len(e.Headers))
	for _, h := range e.Headers {
		face := net.Faces[h.Face]
		c := centroid(net, face.Verts)
		d := sub(c, p1)
		// project out the axial component to get the radial direction
		along := dot(d, axis)
		radial := sub(d, scale(along, axis))
		angle := math.Atan2(dot(radial, w), dot(radial, u))
		entries = append(entries, entry{angle: angle, face: h.Face})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].angle < entries[j].angle })

	for i := range entries {
		cur := entries[i]
		next := entries[(i+1)%len(entries)]
		curPatch := patchOfFace[cur.face]
		nextPatch := patchOfFace[next.face]
		// back of the current sheet glues to the front of its rotational neighbour
		shellUF.union(halfPatch(curPatch, 1), halfPatch(nextPatch, 0))
	}
}

// Shells groups patches (both sides) into maximal consistently-oriented
// surfaces after chain gluing.
func Shells(shellUF *unionFind, numPatches int) (shells [][]int, shellOfHalfPatch []int) {
	groups := shellUF.groups()
	shellOfHalfPatch = make([]int, 2*numPatches)
	for sid, g := range groups {
		for _, hp := range g {
			shellOfHalfPatch[hp] = sid
		}
		shells = append(shells, g)
	}
	return shells, shellOfHalfPatch
}

// Components groups shells into connected surface pieces, coarser than the
// side-consistent shell gluing above: the two shells of a patch's two sides
// always belong to the same component, and shells sharing any chain edge at
// all (regardless of which side) are merged as well.
func Components(net *network.Mesh, edges []Edge, chains []Chain, patchOfFace []int, shellOfHalfPatch []int) (components [][]int, componentOfShell []int) {
	numShells := 0
	for _, s := range shellOfHalfPatch {
		if s+1 > numShells {
			numShells = s + 1
		}
	}
	uf := newUnionFind(numShells)
	for hp := 0; hp+1 < len(shellOfHalfPatch); hp += 2 {
		uf.union(shellOfHalfPatch[hp], shellOfHalfPatch[hp+1])
	}
	for _, chain := range chains {
		for _, ei := range chain.Edges {
			e := edges[ei]
			var first = -1
			for _, h := range e.Headers {
				patch := patchOfFace[h.Face]
				s0 := shellOfHalfPatch[halfPatch(patch, 0)]
				s1 := shellOfHalfPatch[halfPatch(patch, 1)]
				if first == -1 {
					first = s0
				}
				uf.union(first, s0)
				uf.union(first, s1)
			}
		}
	}
	groups := uf.groups()
	componentOfShell = make([]int, numShells)
	for cid, g := range groups {
		for _, s := range g {
			componentOfShell[s] = cid
		}
		components = append(components, g)
	}
	return components, componentOfShell
}

//-----------------------------------------------------------------------------

func sub(a, b geom.Vec3) geom.Vec3 { return geom.Vec3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z} }
func scale(s float64, a geom.Vec3) geom.Vec3 {
	return geom.Vec3{X: s * a.X, Y: s * a.Y, Z: s * a.Z}
}
func dot(a, b geom.Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func norm(a geom.Vec3) float64   { return math.Sqrt(dot(a, a)) }
func unit(a geom.Vec3) geom.Vec3 {
	n := norm(a)
	if n == 0 {
		return a
	}
	return scale(1/n, a)
}

// orthonormalBasis returns two unit vectors spanning the plane perpendicular
// to axis (assumed already unit length).
func orthonormalBasis(axis geom.Vec3) (u, w geom.Vec3) {
	ref := geom.Vec3{X: 1}
	if math.Abs(axis.X) > 0.9 {
		ref = geom.Vec3{Y: 1}
	}
	u = unit(cross(axis, ref))
	w = unit(cross(axis, u))
	return
}

func cross(a, b geom.Vec3) geom.Vec3 {
	return geom.Vec3{X: a.Y*b.Z - a.Z*b.Y, Y: a.Z*b.X - a.X*b.Z, Z: a.X*b.Y - a.Y*b.X}
}

func centroid(net *network.Mesh, verts []int) geom.Vec3 {
	var c geom.Vec3
	for _, v := range verts {
		p := net.Vertices[v].Pos
		c.X += p.X
		c.Y += p.Y
		c.Z += p.Z
	}
	n := float64(len(verts))
	return geom.Vec3{X: c.X / n, Y: c.Y / n, Z: c.Z / n}
}
