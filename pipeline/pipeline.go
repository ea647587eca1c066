// Package pipeline orchestrates the full implicit surface arrangement run
// (spec §1-§5): background mesh generation, scalar field evaluation,
// per-tet arrangement, global mesh extraction, topology labelling and patch
// integration, in the order
// original_source/frontend/src/implicit_surface_network_processor.cpp's
// run() method establishes. Concurrency is confined to the two fan-out
// stages (field evaluation, per-tet arrangement); every other stage runs
// sequentially after a single happens-before barrier, matching spec §5.
package pipeline

import (
	"fmt"

	"github.com/arrangement/isonet/bgmesh"
	"github.com/arrangement/isonet/field"
	"github.com/arrangement/isonet/geom"
	"github.com/arrangement/isonet/integrate"
	"github.com/arrangement/isonet/network"
	"github.com/arrangement/isonet/primitive"
	"github.com/arrangement/isonet/stats"
	"github.com/arrangement/isonet/topology"
)

// Kind enumerates the pipeline's error categories (spec §7): no retries are
// ever attempted, every failure is reported with one of these kinds.
type Kind int

const (
	// ConfigurationInvalid: the supplied Settings fail validation.
	ConfigurationInvalid Kind = iota
	// UninitialisedPipeline: Run was called before a scene was loaded.
	UninitialisedPipeline
	// SceneLoadFailure: the CSG scene JSON could not be read or decoded.
	SceneLoadFailure
	// InvariantViolation: an internal consistency check failed.
	InvariantViolation
	// KernelDegeneracy: the single-tet kernel could not resolve a tet
	// within its published tolerances.
	KernelDegeneracy
)

func (k Kind) String() string {
	switch k {
	case ConfigurationInvalid:
		return "ConfigurationInvalid"
	case UninitialisedPipeline:
		return "UninitialisedPipeline"
	case SceneLoadFailure:
		return "SceneLoadFailure"
	case InvariantViolation:
		return "InvariantViolation"
	case KernelDegeneracy:
		return "KernelDegeneracy"
	default:
		return "Unknown"
	}
}

// Error is the pipeline's sentinel error type, carrying one of the five
// §7 error kinds alongside the wrapped cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("pipeline: %s: %v", e.Kind, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

func fail(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Settings configures a pipeline run (spec §6).
type Settings struct {
	Resolution      int
	SceneAABBMargin float64
	// ComputeCellFunctionLabels gates the sign-propagation feature left as
	// an open question by spec §9; default false, never run unless
	// explicitly requested.
	ComputeCellFunctionLabels bool
}

// Validate checks Settings for internal consistency (spec §7
// ConfigurationInvalid).
func (s Settings) Validate() error {
	if s.Resolution <= 0 {
		return fail(ConfigurationInvalid, "resolution must be positive, got %d", s.Resolution)
	}
	if s.SceneAABBMargin < 0 {
		return fail(ConfigurationInvalid, "scene_aabb_margin must be non-negative, got %g", s.SceneAABBMargin)
	}
	return nil
}

// Pipeline holds a scene and settings and produces a Result when Run.
type Pipeline struct {
	Settings   Settings
	Primitives []primitive.Evaluator

	initialised bool
}

// New validates settings and primitives and returns a ready-to-run pipeline.
func New(settings Settings, primitives []primitive.Evaluator) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{Settings: settings, Primitives: primitives, initialised: true}, nil
}

// FromScene builds a pipeline from a decoded scene document.
func FromScene(scene *primitive.Scene) (*Pipeline, error) {
	settings := Settings{
		Resolution:                scene.Settings.Resolution,
		SceneAABBMargin:            scene.Settings.SceneAABBMargin,
		ComputeCellFunctionLabels: scene.Settings.ComputeCellFunctionLabels,
	}
	return New(settings, scene.Primitives)
}

// Result is the full pipeline output (spec §1 OVERVIEW's six stages).
type Result struct {
	Mesh     *bgmesh.Mesh
	Field    *field.Field
	Network  *network.Mesh
	Edges    []topology.Edge
	Patches  [][]int
	PatchOfFace []int
	Chains   []topology.Chain
	Shells   [][]int
	Components [][]int
	Cells    *topology.Cells

	SurfaceAreaOfPatch []float64
	VolumeIntOfPatch   []float64

	// CellFunctionLabels[cellID] gives the per-function sign vector for
	// that arrangement cell, populated only when
	// Settings.ComputeCellFunctionLabels is true.
	CellFunctionLabels map[int][]int8

	Timers *stats.Timers
}

// Run executes the full pipeline against box, the background mesh's
// bounding box (spec §4.1 takes the AABB as an explicit input). box is used
// exactly as given: Settings.SceneAABBMargin is validated but not applied.
func (p *Pipeline) Run(box geom.Box3) (*Result, error) {
	if !p.initialised {
		return nil, fail(UninitialisedPipeline, "Run called on a zero-value Pipeline")
	}
	if len(p.Primitives) == 0 {
		return p.runEmpty(box)
	}

	timers := stats.NewTimers()
	result := &Result{Timers: timers}

	timers.Push("background_mesh")
	mesh, err := bgmesh.Generate(p.Settings.Resolution, box)
	timers.Pop("background_mesh")
	if err != nil {
		return nil, fail(ConfigurationInvalid, "background mesh: %w", err)
	}
	result.Mesh = mesh

	timers.Push("scalar_field")
	f := field.Evaluate(mesh, p.Primitives)
	timers.Pop("scalar_field")
	result.Field = f

	timers.Push("composed init & arrangement")
	net, err := network.Build(mesh, f)
	timers.Pop("composed init & arrangement")
	if err != nil {
		return nil, fail(KernelDegeneracy, "per-tet arrangement: %w", err)
	}
	result.Network = net

	timers.Push("compute iso-edge and edge-face connectivity")
	edges := topology.BuildEdges(net)
	timers.Pop("compute iso-edge and edge-face connectivity")
	result.Edges = edges

	timers.Push("group iso-faces into patches")
	patches, patchOfFace := topology.BuildPatches(net, edges)
	timers.Pop("group iso-faces into patches")
	result.Patches = patches
	result.PatchOfFace = patchOfFace

	timers.Push("compute surface and volume integrals of patches")
	result.SurfaceAreaOfPatch, result.VolumeIntOfPatch = integratePatches(net, patches)
	timers.Pop("compute surface and volume integrals of patches")

	timers.Push("group non-manifold iso-edges into chains")
	chains := topology.BuildChains(edges)
	timers.Pop("group non-manifold iso-edges into chains")
	result.Chains = chains

	timers.Push("compute order of patches around chains")
	shellUF := topology.OrderPatchesAroundChains(net, edges, chains, patchOfFace)
	timers.Pop("compute order of patches around chains")

	timers.Push("group patches into shells and components")
	shells, shellOfHalfPatch := topology.Shells(shellUF, len(patches))
	components, _ := topology.Components(net, edges, chains, patchOfFace, shellOfHalfPatch)
	timers.Pop("group patches into shells and components")
	result.Shells = shells
	result.Components = components

	timers.Push("compute arrangement cells")
	result.Cells = topology.BuildCells(mesh, net)
	timers.Pop("compute arrangement cells")

	if p.Settings.ComputeCellFunctionLabels {
		timers.Push("compute cell function labels")
		result.CellFunctionLabels = computeCellFunctionLabels(mesh, net, result.Cells, len(p.Primitives))
		timers.Pop("compute cell function labels")
	}

	if err := checkInvariants(result); err != nil {
		return nil, err
	}

	return result, nil
}

func (p *Pipeline) runEmpty(box geom.Box3) (*Result, error) {
	timers := stats.NewTimers()
	mesh, err := bgmesh.Generate(p.Settings.Resolution, box)
	if err != nil {
		return nil, fail(ConfigurationInvalid, "background mesh: %w", err)
	}
	f := field.Evaluate(mesh, nil)
	net, err := network.Build(mesh, f)
	if err != nil {
		return nil, fail(KernelDegeneracy, "per-tet arrangement: %w", err)
	}
	return &Result{
		Mesh: mesh, Field: f, Network: net,
		Cells:  topology.BuildCells(mesh, net),
		Timers: timers,
	}, nil
}

func integratePatches(net *network.Mesh, patches [][]int) (surfaceArea, volume []float64) {
	vertices := make([]geom.Vec3, len(net.Vertices))
	for i, v := range net.Vertices {
		vertices[i] = v.Pos
	}
	surfaceArea = make([]float64, len(patches))
	volume = make([]float64, len(patches))
	for pi, faceIDs := range patches {
		loops := make([][]int, len(faceIDs))
		for i, fid := range faceIDs {
			loops[i] = net.Faces[fid].Verts
		}
		r := integrate.Patch(vertices, loops)
		surfaceArea[pi] = r.SurfaceArea
		volume[pi] = r.VolumeIntegral
	}
	return
}

// computeCellFunctionLabels samples one interior point per arrangement cell
// (the centroid of one of its tets) and ray-shoots to recover that cell's
// per-function sign vector -- the gated, open-question feature from spec
// §9: implemented but never run unless explicitly requested.
func computeCellFunctionLabels(mesh *bgmesh.Mesh, net *network.Mesh, cells *topology.Cells, numFuncs int) map[int][]int8 {
	labels := make(map[int][]int8)
	seen := make(map[int]bool)
	for _, node := range cells.Node {
		cellID := cells.CellID(node.Tet, node.Cell)
		if seen[cellID] {
			continue
		}
		seen[cellID] = true
		sample := tetCentroid(mesh, node.Tet)
		signs := topology.TopologicalRayShooting(mesh, net, sample, numFuncs)
		labels[cellID] = signs
	}
	return labels
}

func tetCentroid(mesh *bgmesh.Mesh, tet int) geom.Vec3 {
	var c geom.Vec3
	for _, v := range mesh.Tets[tet] {
		p := mesh.Vertices[v]
		c.X += p.X / 4
		c.Y += p.Y / 4
		c.Z += p.Z / 4
	}
	return c
}

// checkInvariants enforces two cross-cutting structural invariants: every
// iso-edge has at least one incident face, and every face belongs to
// exactly one patch.
func checkInvariants(r *Result) error {
	for _, e := range r.Edges {
		if len(e.Headers) == 0 {
			return fail(InvariantViolation, "iso-edge (%d,%d) has no incident faces", e.V1, e.V2)
		}
	}
	seen := make(map[int]bool, len(r.Network.Faces))
	for _, patch := range r.Patches {
		for _, f := range patch {
			if seen[f] {
				return fail(InvariantViolation, "face %d assigned to more than one patch", f)
			}
			seen[f] = true
		}
	}
	if len(seen) != len(r.Network.Faces) {
		return fail(InvariantViolation, "%d of %d faces belong to no patch", len(r.Network.Faces)-len(seen), len(r.Network.Faces))
	}
	return nil
}
