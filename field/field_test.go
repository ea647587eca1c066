package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrangement/isonet/bgmesh"
	"github.com/arrangement/isonet/geom"
	"github.com/arrangement/isonet/primitive"
)

func TestEvaluateSingleSphere(t *testing.T) {
	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 4, Y: 4, Z: 4})
	mesh, err := bgmesh.Generate(4, box)
	require.NoError(t, err)

	sphere := primitive.Sphere{Center: geom.Vec3{}, Radius: 1}
	f := Evaluate(mesh, []primitive.Evaluator{sphere})

	require.Len(t, f.S, 1)
	require.Len(t, f.S[0], len(mesh.Vertices))

	for i, v := range mesh.Vertices {
		want := sphere.Evaluate(v)
		assert.InDelta(t, want, f.S[0][i], 1e-9)
	}
}

func TestSignMatrixMatchesTolerance(t *testing.T) {
	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 2, Y: 2, Z: 2})
	mesh, err := bgmesh.Generate(2, box)
	require.NoError(t, err)

	// a plane through the origin puts several lattice vertices exactly on it
	plane := primitive.Plane{Point: geom.Vec3{}, Normal: geom.Vec3{Z: 1}}
	f := Evaluate(mesh, []primitive.Evaluator{plane})

	sawZero := false
	for i, s := range f.S[0] {
		switch f.Sign[0][i] {
		case 0:
			sawZero = true
			assert.True(t, IsZero(s))
		case 1:
			assert.Greater(t, s, Tolerance)
		case -1:
			assert.Less(t, s, -Tolerance)
		}
	}
	assert.True(t, sawZero, "expected at least one lattice vertex exactly on the plane")
}

func TestIncidentTetsOnlyIndexesDegenerateVertices(t *testing.T) {
	box := geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 2, Y: 2, Z: 2})
	mesh, err := bgmesh.Generate(2, box)
	require.NoError(t, err)

	sphere := primitive.Sphere{Center: geom.Vec3{X: 100}, Radius: 1} // far away: no zero crossing
	f := Evaluate(mesh, []primitive.Evaluator{sphere})
	for i := range mesh.Vertices {
		assert.Empty(t, f.IncidentTets(i))
	}
}
