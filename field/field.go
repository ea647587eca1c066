// Package field evaluates the scene's scalar implicit functions over every
// background-mesh vertex (spec §4.2): S[j,i] = f_j(V[i]) for function j and
// vertex i, plus the derived sign matrix σ[j,i] and the degenerate-vertex
// incident-tets index (IncidentTets), which lists the tets around each
// vertex with a zero sign; no other package in this module reads it. The
// fan-out is grounded on render/march3.go's evalReq/evalProcessCh
// worker-pool pattern: one shared channel, runtime.NumCPU() workers, a
// single WaitGroup barrier covering every batch.
package field

import (
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/arrangement/isonet/bgmesh"
	"github.com/arrangement/isonet/geom"
	"github.com/arrangement/isonet/primitive"
)

// Tolerance is the absolute tolerance under which a scalar value is treated
// as exactly zero when deriving the sign matrix (spec §3: "σ=0 iff |S|
// underflows a documented tolerance").
const Tolerance = 1e-6

// evalReq batches a slice of points against a single function for one
// worker-pool round, mirroring render/march3.go's evalReq shape.
type evalReq struct {
	out []float64
	p   []geom.Vec3
	fn  func(geom.Vec3) float64
	wg  *sync.WaitGroup
}

const batchSize = 256

// Field holds the evaluated scalar and sign matrices over a background mesh,
// indexed [function][vertex].
type Field struct {
	Mesh      *bgmesh.Mesh
	Functions []primitive.Evaluator

	// S[j][i] = Functions[j].Evaluate(Mesh.Vertices[i])
	S [][]float64
	// Sign[j][i] in {-1,0,1}, Sign[j][i] == 0 iff |S[j][i]| <= Tolerance.
	Sign [][]int8

	// incidentTets[v] lists every tet index containing vertex v; built at the
	// end of Evaluate and only for vertices with at least one zero sign
	// (degenerate vertices), matching the original's incident_tets index.
	incidentTets   map[int][]int
	incidentTetsMu sync.Mutex
}

// Evaluate computes S and Sign for every (function, vertex) pair, using a
// worker pool sized to the host's CPU count. One happens-before barrier: the
// caller may safely read S/Sign once Evaluate returns.
func Evaluate(mesh *bgmesh.Mesh, functions []primitive.Evaluator) *Field {
	f := &Field{
		Mesh:      mesh,
		Functions: functions,
		S:         make([][]float64, len(functions)),
		Sign:      make([][]int8, len(functions)),
	}

	processCh := make(chan evalReq, 2*runtime.NumCPU())
	var workers sync.WaitGroup
	workers.Add(runtime.NumCPU())
	for w := 0; w < runtime.NumCPU(); w++ {
		go func() {
			defer workers.Done()
			for r := range processCh {
				for i, p := range r.p {
					r.out[i] = r.fn(p)
				}
				r.wg.Done()
			}
		}()
	}

	var batches sync.WaitGroup
	for j, fn := range functions {
		f.S[j] = make([]float64, len(mesh.Vertices))
		out := f.S[j]
		for start := 0; start < len(mesh.Vertices); start += batchSize {
			end := start + batchSize
			if end > len(mesh.Vertices) {
				end = len(mesh.Vertices)
			}
			batches.Add(1)
			processCh <- evalReq{
				out: out[start:end],
				p:   mesh.Vertices[start:end],
				fn:  fn.Evaluate,
				wg:  &batches,
			}
		}
	}
	batches.Wait()
	close(processCh)
	workers.Wait()

	for j := range functions {
		f.Sign[j] = make([]int8, len(mesh.Vertices))
		for i, s := range f.S[j] {
			f.Sign[j][i] = int8(geom.Sign(s, Tolerance))
		}
	}

	f.indexDegenerateVertices()
	return f
}

// IsZero reports whether v underflows the zero-sign tolerance, using gonum's
// tolerance-compare helper rather than a bespoke epsilon check.
func IsZero(v float64) bool {
	return scalar.EqualWithinAbs(v, 0, Tolerance)
}

// indexDegenerateVertices builds incidentTets restricted to vertices where at
// least one function's sign is zero: those are the only vertices the per-tet
// driver ever needs to resolve shared tets for. The scan over tets fans out
// across a worker pool the same way Evaluate's point evaluation does;
// incidentTetsMu is what lets concurrent workers append into the shared map
// safely.
func (f *Field) indexDegenerateVertices() {
	f.incidentTets = make(map[int][]int)
	degenerate := make(map[int]bool)
	for j := range f.Functions {
		for i, s := range f.Sign[j] {
			if s == 0 {
				degenerate[i] = true
			}
		}
	}
	if len(degenerate) == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > len(f.Mesh.Tets) {
		numWorkers = len(f.Mesh.Tets)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	chunk := (len(f.Mesh.Tets) + numWorkers - 1) / numWorkers

	var workers sync.WaitGroup
	for start := 0; start < len(f.Mesh.Tets); start += chunk {
		end := start + chunk
		if end > len(f.Mesh.Tets) {
			end = len(f.Mesh.Tets)
		}
		workers.Add(1)
		go func(start, end int) {
			defer workers.Done()
			for t := start; t < end; t++ {
				for _, v := range f.Mesh.Tets[t] {
					if degenerate[v] {
						f.appendIncidentTet(v, t)
					}
				}
			}
		}(start, end)
	}
	workers.Wait()
}

func (f *Field) appendIncidentTet(vertex, tet int) {
	f.incidentTetsMu.Lock()
	defer f.incidentTetsMu.Unlock()
	f.incidentTets[vertex] = append(f.incidentTets[vertex], tet)
}

// IncidentTets returns the tets containing vertex, or nil if vertex was never
// degenerate (sign 0 under no function) and so was never indexed.
func (f *Field) IncidentTets(vertex int) []int {
	return f.incidentTets[vertex]
}
