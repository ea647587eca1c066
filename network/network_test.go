package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrangement/isonet/bgmesh"
	"github.com/arrangement/isonet/field"
	"github.com/arrangement/isonet/geom"
	"github.com/arrangement/isonet/primitive"
)

func TestBuildSingleSphere(t *testing.T) {
	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 4, Y: 4, Z: 4})
	mesh, err := bgmesh.Generate(4, box)
	require.NoError(t, err)

	sphere := primitive.Sphere{Center: geom.Vec3{}, Radius: 1}
	fl := field.Evaluate(mesh, []primitive.Evaluator{sphere})

	net, err := Build(mesh, fl)
	require.NoError(t, err)

	assert.NotEmpty(t, net.Faces, "expected at least one iso-face crossing the sphere")
	assert.NotEmpty(t, net.Vertices)
	assert.Equal(t, len(mesh.Tets)+1, len(net.StartIndexOfTet))

	for _, face := range net.Faces {
		assert.Equal(t, 0, face.FuncIndex)
		for _, v := range face.Verts {
			assert.GreaterOrEqual(t, v, 0)
			assert.Less(t, v, len(net.Vertices))
		}
	}
}

func TestBuildEmptySceneProducesNoFaces(t *testing.T) {
	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 4, Y: 4, Z: 4})
	mesh, err := bgmesh.Generate(3, box)
	require.NoError(t, err)

	constant := primitive.Constant{Value: 1} // always outside, never crosses
	fl := field.Evaluate(mesh, []primitive.Evaluator{constant})

	net, err := Build(mesh, fl)
	require.NoError(t, err)
	assert.Empty(t, net.Faces)
	assert.Equal(t, int64(0), net.Num1Func+net.Num2Func+net.NumMoreFunc)
}

func TestActiveFunctionCountersSumToArrangedTets(t *testing.T) {
	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 4, Y: 4, Z: 4})
	mesh, err := bgmesh.Generate(4, box)
	require.NoError(t, err)

	sphere := primitive.Sphere{Center: geom.Vec3{}, Radius: 1}
	fl := field.Evaluate(mesh, []primitive.Evaluator{sphere})

	net, err := Build(mesh, fl)
	require.NoError(t, err)
	assert.Equal(t, int64(len(net.Tets)), net.Num1Func+net.Num2Func+net.NumMoreFunc)
}
