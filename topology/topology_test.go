package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrangement/isonet/bgmesh"
	"github.com/arrangement/isonet/field"
	"github.com/arrangement/isonet/geom"
	"github.com/arrangement/isonet/network"
	"github.com/arrangement/isonet/primitive"
)

func buildSingleSphereNetwork(t *testing.T, resolution int) (*bgmesh.Mesh, *network.Mesh) {
	t.Helper()
	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 4, Y: 4, Z: 4})
	mesh, err := bgmesh.Generate(resolution, box)
	require.NoError(t, err)
	sphere := primitive.Sphere{Center: geom.Vec3{}, Radius: 1}
	fl := field.Evaluate(mesh, []primitive.Evaluator{sphere})
	net, err := network.Build(mesh, fl)
	require.NoError(t, err)
	return mesh, net
}

func TestBuildEdgesAndManifoldSphere(t *testing.T) {
	_, net := buildSingleSphereNetwork(t, 5)
	edges := BuildEdges(net)
	require.NotEmpty(t, edges)
	for _, e := range edges {
		assert.True(t, e.Manifold(), "a single smooth sphere should have a fully manifold boundary")
	}
}

func TestBuildPatchesSingleSphereFormsFewPatches(t *testing.T) {
	_, net := buildSingleSphereNetwork(t, 5)
	edges := BuildEdges(net)
	patches, patchOfFace := BuildPatches(net, edges)
	require.NotEmpty(t, patches)
	assert.Len(t, patchOfFace, len(net.Faces))
}

func TestBuildChainsEmptyForManifoldSphere(t *testing.T) {
	_, net := buildSingleSphereNetwork(t, 5)
	edges := BuildEdges(net)
	chains := BuildChains(edges)
	assert.Empty(t, chains, "a single sphere's surface has no non-manifold curves")
}

func TestCellsSingleSphereHasInsideAndOutside(t *testing.T) {
	mesh, net := buildSingleSphereNetwork(t, 5)
	cells := BuildCells(mesh, net)
	assert.GreaterOrEqual(t, cells.Count, 2, "expect at least an inside and an outside cell")
}

func TestCellsEmptySceneIsOneCell(t *testing.T) {
	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 2, Y: 2, Z: 2})
	mesh, err := bgmesh.Generate(2, box)
	require.NoError(t, err)
	constant := primitive.Constant{Value: 1}
	fl := field.Evaluate(mesh, []primitive.Evaluator{constant})
	net, err := network.Build(mesh, fl)
	require.NoError(t, err)

	cells := BuildCells(mesh, net)
	assert.Equal(t, 1, cells.Count)
}

func TestTopologicalRayShootingOutsideSphere(t *testing.T) {
	mesh, net := buildSingleSphereNetwork(t, 5)
	signs := TopologicalRayShooting(mesh, net, geom.Vec3{X: 1.9, Y: 1.9, Z: -1.9}, 1)
	require.Len(t, signs, 1)
	assert.Equal(t, int8(1), signs[0])
}
