package debugviz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrangement/isonet/bgmesh"
	"github.com/arrangement/isonet/field"
	"github.com/arrangement/isonet/geom"
	"github.com/arrangement/isonet/network"
	"github.com/arrangement/isonet/primitive"
)

func buildSphereNetwork(t *testing.T) (*network.Mesh, geom.Box3) {
	t.Helper()
	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 4, Y: 4, Z: 4})
	mesh, err := bgmesh.Generate(4, box)
	require.NoError(t, err)
	sphere := primitive.Sphere{Center: geom.Vec3{}, Radius: 1}
	fl := field.Evaluate(mesh, []primitive.Evaluator{sphere})
	net, err := network.Build(mesh, fl)
	require.NoError(t, err)
	require.NotEmpty(t, net.Faces)
	return net, box
}

func TestSliceSegmentsAtEquatorIsNonEmpty(t *testing.T) {
	net, _ := buildSphereNetwork(t)
	segs := sliceSegments(net, 0)
	assert.NotEmpty(t, segs)
}

func TestSliceSegmentsAboveMeshIsEmpty(t *testing.T) {
	net, _ := buildSphereNetwork(t)
	segs := sliceSegments(net, 100)
	assert.Empty(t, segs)
}

func TestRenderSliceSVGProducesNonEmptyFile(t *testing.T) {
	net, box := buildSphereNetwork(t)
	path := filepath.Join(t.TempDir(), "slice.svg")

	require.NoError(t, RenderSliceSVG(path, net, 0, box, 256, 256))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderSlicePNGWithoutLabelProducesNonEmptyFile(t *testing.T) {
	net, box := buildSphereNetwork(t)
	path := filepath.Join(t.TempDir(), "slice.png")

	require.NoError(t, RenderSlicePNG(path, net, 0, box, 256, 256, ""))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
