// Package network drives the per-tet arrangement kernel across the whole
// background mesh (spec §4.3) and stitches the resulting per-tet fragments
// into one global iso-mesh (spec §4.4): a deduplicated vertex list plus a
// deduplicated polygon-face list, with per-face header bookkeeping recording
// which tets and local faces contributed each polygon.
package network

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/arrangement/isonet/bgmesh"
	"github.com/arrangement/isonet/field"
	"github.com/arrangement/isonet/geom"
	"github.com/arrangement/isonet/kernel"
)

// FaceHeader records one (tet, local-face) occurrence of a global iso-face,
// together with which of the tet-local arrangement cells it separates.
type FaceHeader struct {
	Tet            int
	LocalFace      int
	CellPos, CellNeg int
}

// IsoFace is one globally-deduplicated polygon of the iso-surface mesh.
type IsoFace struct {
	// Verts lists global vertex indices in winding order.
	Verts []int
	// FuncIndex is the function whose zero-plane this face lies on.
	FuncIndex int
	// Headers lists every (tet, local-face) occurrence merged into this
	// global face (normally exactly 1; >1 only for the rare degenerate case
	// of two tets independently producing a coincident triangle along a
	// shared, exactly-coplanar cut).
	Headers []FaceHeader
}

// IsoVertex is one globally-deduplicated vertex of the iso-surface mesh.
type IsoVertex struct {
	Pos geom.Vec3
	// Corners are the global background-mesh vertex indices whose convex
	// hull contains this point (1 = tet corner, 2 = tet edge, 3 = tet face,
	// 4 = tet interior).
	Corners []int
	// Funcs are the global function indices whose zero-plane passes through
	// this point.
	Funcs []int
}

// TetArrangement is the kernel's raw per-tet output plus the CSR bookkeeping
// spec §4.3 describes.
type TetArrangement struct {
	Tet    int
	Active []int // global function indices active in this tet, ascending
	Arr    *kernel.Arrangement
}

// Mesh is the complete per-tet + global extraction result (spec §4.3-§4.4).
type Mesh struct {
	Tets []TetArrangement

	// CSR-style active-function bookkeeping, mirroring active_functions_in_tet
	// / start_index_of_tet from the reference design.
	ActiveFunctionsInTet []int
	StartIndexOfTet      []int

	// Num1Func/Num2Func/NumMoreFunc count tets by active-function count.
	Num1Func, Num2Func, NumMoreFunc int64

	Vertices []IsoVertex
	Faces    []IsoFace
}

// tetResult is one worker's output for a single tet index, gathered into a
// pre-sized slice so the final CSR bookkeeping can be assembled back in tet
// order once every worker has finished (spec §5: data parallelism across tet
// indices, one happens-before barrier before the rest of the pipeline reads
// the result).
type tetResult struct {
	active []int
	arr    *kernel.Arrangement
	err    error
}

// Build runs the per-tet arrangement kernel over every tet with at least one
// active function, then extracts the deduplicated global iso-mesh. The
// kernel calls themselves -- the expensive part of this stage -- fan out
// across a worker pool sized to the host's CPU count, grounded on the same
// shared-channel pattern field.Evaluate uses; the CSR/counter bookkeeping
// that must stay in tet order is assembled afterwards on a single goroutine.
func Build(mesh *bgmesh.Mesh, f *field.Field) (*Mesh, error) {
	out := &Mesh{
		StartIndexOfTet: make([]int, len(mesh.Tets)+1),
	}

	results := make([]tetResult, len(mesh.Tets))

	numWorkers := runtime.NumCPU()
	if numWorkers > len(mesh.Tets) {
		numWorkers = len(mesh.Tets)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	tetCh := make(chan int, 2*numWorkers)
	var workers sync.WaitGroup
	workers.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer workers.Done()
			for t := range tetCh {
				tet := mesh.Tets[t]
				active := activeFunctions(f, tet)
				if len(active) == 0 {
					results[t] = tetResult{active: active}
					continue
				}
				funcValues := make(map[int][4]float64, len(active))
				for _, j := range active {
					funcValues[j] = [4]float64{
						f.S[j][tet[0]], f.S[j][tet[1]], f.S[j][tet[2]], f.S[j][tet[3]],
					}
				}
				arr, err := kernel.ComputeArrangement(funcValues)
				results[t] = tetResult{active: active, arr: arr, err: err}
			}
		}()
	}
	for t := range mesh.Tets {
		tetCh <- t
	}
	close(tetCh)
	workers.Wait()

	for t, r := range results {
		out.StartIndexOfTet[t] = len(out.ActiveFunctionsInTet)
		out.ActiveFunctionsInTet = append(out.ActiveFunctionsInTet, r.active...)

		switch len(r.active) {
		case 0:
			continue
		case 1:
			out.Num1Func++
		case 2:
			out.Num2Func++
		default:
			out.NumMoreFunc++
		}

		if r.err != nil {
			return nil, fmt.Errorf("network: tet %d: %w", t, r.err)
		}
		out.Tets = append(out.Tets, TetArrangement{Tet: t, Active: r.active, Arr: r.arr})
	}
	out.StartIndexOfTet[len(mesh.Tets)] = len(out.ActiveFunctionsInTet)

	extractGlobalMesh(mesh, out)
	return out, nil
}

// activeFunctions returns the global function indices whose sign is not
// constant-nonzero across tet's 4 corners (spec §4.3: "active" means the
// function's plane may intersect this tet).
func activeFunctions(f *field.Field, tet [4]int) []int {
	var active []int
	for j := range f.Functions {
		hasPos, hasNeg, hasZero := false, false, false
		for _, v := range tet {
			switch f.Sign[j][v] {
			case 1:
				hasPos = true
			case -1:
				hasNeg = true
			case 0:
				hasZero = true
			}
		}
		if hasZero || (hasPos && hasNeg) {
			active = append(active, j)
		}
	}
	return active
}

//-----------------------------------------------------------------------------

// vertexKey is the global identity of an iso-vertex: the sorted global
// background-mesh corner indices it lies on, plus the sorted global function
// indices whose zero-plane it lies on. Two per-tet vertices with the same
// key, discovered from different tets, are the same global iso-vertex.
type vertexKey struct {
	corners [4]int
	nCorner int
	funcs   [3]int
	nFunc   int
}

func makeVertexKey(corners, funcs []int) vertexKey {
	var k vertexKey
	k.nCorner = copy(k.corners[:], corners)
	k.nFunc = copy(k.funcs[:], funcs)
	return k
}

// faceKey is the global identity used to dedup triangular iso-faces that two
// tets might independently produce along an exactly shared, coplanar cut:
// the unordered triple (smallest, middle, largest) of global vertex indices.
type faceKey [3]int

func makeFaceKey(verts []int) (faceKey, bool) {
	if len(verts) != 3 {
		return faceKey{}, false
	}
	k := faceKey{verts[0], verts[1], verts[2]}
	sort.Ints(k[:])
	return k, true
}

func extractGlobalMesh(mesh *bgmesh.Mesh, out *Mesh) {
	vertexIDs := map[vertexKey]int{}
	faceIDs := map[faceKey]int{}

	globalVertex := func(localV kernel.Vertex, tetIdx int) int {
		globalCorners := make([]int, len(localV.Corners))
		for i, c := range localV.Corners {
			globalCorners[i] = mesh.Tets[tetIdx][c]
		}
		sort.Ints(globalCorners)
		key := makeVertexKey(globalCorners, localV.Funcs)
		if id, ok := vertexIDs[key]; ok {
			return id
		}
		tetCorners := [4]geom.Vec3{
			mesh.Vertices[mesh.Tets[tetIdx][0]], mesh.Vertices[mesh.Tets[tetIdx][1]],
			mesh.Vertices[mesh.Tets[tetIdx][2]], mesh.Vertices[mesh.Tets[tetIdx][3]],
		}
		pos := geom.FromBary(tetCorners[:], localV.Bary[:])
		id := len(out.Vertices)
		out.Vertices = append(out.Vertices, IsoVertex{Pos: pos, Corners: globalCorners, Funcs: append([]int(nil), localV.Funcs...)})
		vertexIDs[key] = id
		return id
	}

	for _, ta := range out.Tets {
		for localFaceIdx, face := range ta.Arr.Faces {
			if face.IsBoundary {
				continue
			}
			globalLoop := make([]int, len(face.Loop))
			for i, lv := range face.Loop {
				globalLoop[i] = globalVertex(ta.Arr.Vertices[lv], ta.Tet)
			}
			header := FaceHeader{Tet: ta.Tet, LocalFace: localFaceIdx, CellPos: face.CellPos, CellNeg: face.CellNeg}

			if key, ok := makeFaceKey(globalLoop); ok {
				if id, exists := faceIDs[key]; exists {
					out.Faces[id].Headers = append(out.Faces[id].Headers, header)
					continue
				}
				id := len(out.Faces)
				out.Faces = append(out.Faces, IsoFace{Verts: globalLoop, FuncIndex: face.FuncIndex, Headers: []FaceHeader{header}})
				faceIDs[key] = id
				continue
			}

			// >3-gon: never merged cross-tet (interior cut faces are
			// tet-local; coincidence across tets is only plausible for the
			// degenerate coplanar-triangle case handled above).
			out.Faces = append(out.Faces, IsoFace{Verts: globalLoop, FuncIndex: face.FuncIndex, Headers: []FaceHeader{header}})
		}
	}
}
