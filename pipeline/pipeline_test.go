package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrangement/isonet/geom"
	"github.com/arrangement/isonet/primitive"
)

func sphereBox() geom.Box3 {
	return geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 4, Y: 4, Z: 4})
}

func TestNewRejectsBadSettings(t *testing.T) {
	_, err := New(Settings{Resolution: 0}, nil)
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ConfigurationInvalid, perr.Kind)
}

func TestRunOnZeroValuePipelineIsUninitialised(t *testing.T) {
	var p Pipeline
	_, err := p.Run(sphereBox())
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, UninitialisedPipeline, perr.Kind)
}

func TestRunSingleSphereProducesPatchesAndCells(t *testing.T) {
	sphere := primitive.Sphere{Center: geom.Vec3{}, Radius: 1}
	p, err := New(Settings{Resolution: 4}, []primitive.Evaluator{sphere})
	require.NoError(t, err)

	result, err := p.Run(sphereBox())
	require.NoError(t, err)

	assert.NotEmpty(t, result.Network.Faces)
	assert.NotEmpty(t, result.Patches)
	assert.Equal(t, len(result.Patches), len(result.SurfaceAreaOfPatch))
	assert.Equal(t, len(result.Patches), len(result.VolumeIntOfPatch))
	assert.Equal(t, 2, result.Cells.Count, "S1: a single sphere splits the box into exactly inside/outside")
	assert.Nil(t, result.CellFunctionLabels, "labels must stay nil unless explicitly requested")
}

// TestS1SingleSphereMatchesAcceptanceScenario exercises spec scenario S1
// verbatim: sphere(center=origin, radius=0.5) in [-1,1]^3 at R=8 must yield
// one component, two shells, two arrangement cells, and surface/volume
// integrals within 5% of the analytic sphere values.
func TestS1SingleSphereMatchesAcceptanceScenario(t *testing.T) {
	sphere := primitive.Sphere{Center: geom.Vec3{}, Radius: 0.5}
	p, err := New(Settings{Resolution: 8}, []primitive.Evaluator{sphere})
	require.NoError(t, err)

	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 2, Y: 2, Z: 2})
	result, err := p.Run(box)
	require.NoError(t, err)

	assert.Equal(t, 1, len(result.Components), "S1: one component")
	assert.Equal(t, 2, len(result.Shells), "S1: two shells (inside, outside)")
	assert.Equal(t, 2, result.Cells.Count, "S1: two arrangement cells")

	var surfArea, volInt float64
	for _, a := range result.SurfaceAreaOfPatch {
		surfArea += a
	}
	for _, v := range result.VolumeIntOfPatch {
		volInt += v
	}
	wantSurf := 4 * math.Pi * 0.5 * 0.5
	wantVol := (4.0 / 3.0) * math.Pi * 0.5 * 0.5 * 0.5
	assert.InEpsilon(t, wantSurf, surfArea, 0.05, "S1: surface area within 5%%")
	assert.InEpsilon(t, wantVol, math.Abs(volInt), 0.05, "S1: |volume| within 5%%")
}

// TestS4TwoPlanesProduceFourCellsNoChains exercises spec scenario S4: two
// planes x=0 and y=0 intersecting in [-1,1]^3 at R=4 must yield a single
// component, four arrangement cells (the four quadrant bars), and no chains
// (no non-manifold edge, since exactly two functions meet along any edge).
func TestS4TwoPlanesProduceFourCellsNoChains(t *testing.T) {
	planeX := primitive.Plane{Point: geom.Vec3{}, Normal: geom.Vec3{X: 1}}
	planeY := primitive.Plane{Point: geom.Vec3{}, Normal: geom.Vec3{Y: 1}}
	p, err := New(Settings{Resolution: 4}, []primitive.Evaluator{planeX, planeY})
	require.NoError(t, err)

	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 2, Y: 2, Z: 2})
	result, err := p.Run(box)
	require.NoError(t, err)

	assert.Equal(t, 1, len(result.Components), "S4: single component")
	assert.Equal(t, 4, result.Cells.Count, "S4: four quadrant-bar arrangement cells")
	assert.Empty(t, result.Chains, "S4: no non-manifold chains")
}

// TestS5PlaneThroughSphereMatchesAcceptanceScenario exercises spec scenario
// S5: sphere(r=0.6) and plane z=0 at R=12 must yield exactly one chain (the
// equator circle), half-patch ordering of 4 around it, and 4 arrangement
// cells.
func TestS5PlaneThroughSphereMatchesAcceptanceScenario(t *testing.T) {
	sphere := primitive.Sphere{Center: geom.Vec3{}, Radius: 0.6}
	plane := primitive.Plane{Point: geom.Vec3{}, Normal: geom.Vec3{Z: 1}}
	p, err := New(Settings{Resolution: 12}, []primitive.Evaluator{sphere, plane})
	require.NoError(t, err)

	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 2, Y: 2, Z: 2})
	result, err := p.Run(box)
	require.NoError(t, err)

	require.Len(t, result.Chains, 1, "S5: one chain, the equator circle")
	for _, ei := range result.Chains[0].Edges {
		assert.Len(t, result.Edges[ei].Headers, 4, "S5: half-patch ordering of 4 around each chain edge")
	}
	assert.Equal(t, 4, result.Cells.Count, "S5: four arrangement cells")
}

// TestS3NestedSpheresMatchesAcceptanceScenario exercises spec scenario S3:
// two concentric spheres (r=0.8 outer, r=0.4 inner) must yield two
// components and three arrangement cells (outer exterior, shell, inner).
func TestS3NestedSpheresMatchesAcceptanceScenario(t *testing.T) {
	outer := primitive.Sphere{Center: geom.Vec3{}, Radius: 0.8}
	inner := primitive.Sphere{Center: geom.Vec3{}, Radius: 0.4}
	p, err := New(Settings{Resolution: 8}, []primitive.Evaluator{outer, inner})
	require.NoError(t, err)

	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 3, Y: 3, Z: 3})
	result, err := p.Run(box)
	require.NoError(t, err)

	assert.Equal(t, 2, len(result.Components), "S3: two components")
	assert.Equal(t, 3, result.Cells.Count, "S3: three cells (outer exterior, shell, inner)")
}

func TestRunWithCellFunctionLabelsPopulatesOneEntryPerCell(t *testing.T) {
	sphere := primitive.Sphere{Center: geom.Vec3{}, Radius: 1}
	p, err := New(Settings{Resolution: 4, ComputeCellFunctionLabels: true}, []primitive.Evaluator{sphere})
	require.NoError(t, err)

	result, err := p.Run(sphereBox())
	require.NoError(t, err)

	assert.NotEmpty(t, result.CellFunctionLabels)
	assert.Len(t, result.CellFunctionLabels, result.Cells.Count)
	for _, signs := range result.CellFunctionLabels {
		assert.Len(t, signs, 1)
	}
}

func TestRunEmptySceneYieldsSingleCellNoFaces(t *testing.T) {
	p, err := New(Settings{Resolution: 3}, nil)
	require.NoError(t, err)

	result, err := p.Run(sphereBox())
	require.NoError(t, err)

	assert.Empty(t, result.Network.Faces)
	assert.Equal(t, 1, result.Cells.Count)
}

func TestFromSceneBuildsRunnablePipeline(t *testing.T) {
	scene := &primitive.Scene{
		Settings:   primitive.Settings{Resolution: 3},
		Primitives: []primitive.Evaluator{primitive.Sphere{Center: geom.Vec3{}, Radius: 1}},
	}
	p, err := FromScene(scene)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Settings.Resolution)

	_, err = p.Run(sphereBox())
	require.NoError(t, err)
}

func TestKindStringCoversAllValues(t *testing.T) {
	kinds := []Kind{ConfigurationInvalid, UninitialisedPipeline, SceneLoadFailure, InvariantViolation, KernelDegeneracy}
	for _, k := range kinds {
		assert.NotEqual(t, "Unknown", k.String())
	}
}
