package bgmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrangement/isonet/geom"
)

func unitBox() geom.Box3 {
	return geom.NewBox3(geom.Vec3{}, geom.Vec3{X: 2, Y: 2, Z: 2})
}

func TestGenerateCounts(t *testing.T) {
	const r = 3
	m, err := Generate(r, unitBox())
	require.NoError(t, err)
	assert.Equal(t, (r+1)*(r+1)*(r+1), len(m.Vertices))
	assert.Equal(t, 5*r*r*r, len(m.Tets))
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := Generate(0, unitBox())
	assert.Error(t, err)

	_, err = Generate(4, geom.Box3{})
	assert.Error(t, err)
}

func TestGenerateVertexLatticeBounds(t *testing.T) {
	m, err := Generate(2, unitBox())
	require.NoError(t, err)
	for _, v := range m.Vertices {
		assert.GreaterOrEqual(t, v.X, -1.0)
		assert.LessOrEqual(t, v.X, 1.0)
	}
}

func TestGenerateTetIndicesInRange(t *testing.T) {
	m, err := Generate(2, unitBox())
	require.NoError(t, err)
	for _, tet := range m.Tets {
		for _, vi := range tet {
			assert.GreaterOrEqual(t, vi, 0)
			assert.Less(t, vi, len(m.Vertices))
		}
	}
}

func TestVertexGridCoordsRoundTrip(t *testing.T) {
	m, err := Generate(4, unitBox())
	require.NoError(t, err)
	n := m.Resolution + 1
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				gi, gj, gk := m.VertexGridCoords(index(i, j, k, n))
				assert.Equal(t, [3]int{i, j, k}, [3]int{gi, gj, gk})
			}
		}
	}
}
