package export

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
	"github.com/arrangement/isonet/topology"
)

func buildSphereNetwork(t *testing.T) *network.Mesh {
	t.Helper()
	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 4, Y: 4, Z: 4})
	mesh, err := bgmesh.Generate(4, box)
	require.NoError(t, err)
	sphere := primitive.Sphere{Center: geom.Vec3{}, Radius: 1}
	fl := field.Evaluate(mesh, []primitive.Evaluator{sphere})
	net, err := network.Build(mesh, fl)
	require.NoError(t, err)
	require.NotEmpty(t, net.Faces)
	return net
}

func TestFanTriangulateQuad(t *testing.T) {
	tris := fanTriangulate([]int{0, 1, 2, 3})
	assert.Equal(t, [][3]int{{0, 1, 2}, {0, 2, 3}}, tris)
}

func TestFanTriangulateDegenerateLoopIsEmpty(t *testing.T) {
	assert.Empty(t, fanTriangulate([]int{0, 1}))
}

func TestWriteMesh3MFProducesNonEmptyFile(t *testing.T) {
	net := buildSphereNetwork(t)
	path := filepath.Join(t.TempDir(), "sphere.3mf")

	require.NoError(t, WriteMesh3MF(path, net))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteChainsDXFProducesNonEmptyFile(t *testing.T) {
	net := buildSphereNetwork(t)
	edges := topology.BuildEdges(net)
	chains := topology.BuildChains(edges)
	path := filepath.Join(t.TempDir(), "chains.dxf")

	require.NoError(t, WriteChainsDXF(path, net, edges, chains))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
