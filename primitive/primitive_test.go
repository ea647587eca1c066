package primitive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrangement/isonet/geom"
)

func TestSphereEvaluate(t *testing.T) {
	s := Sphere{Center: geom.Vec3{}, Radius: 1}
	assert.InDelta(t, -1.0, s.Evaluate(geom.Vec3{}), 1e-9)
	assert.InDelta(t, 0.0, s.Evaluate(geom.Vec3{X: 1}), 1e-9)
	assert.InDelta(t, 1.0, s.Evaluate(geom.Vec3{X: 2}), 1e-9)
}

func TestPlaneEvaluate(t *testing.T) {
	p := Plane{Point: geom.Vec3{}, Normal: geom.Vec3{Z: 1}}
	assert.InDelta(t, 1.0, p.Evaluate(geom.Vec3{Z: 1}), 1e-9)
	assert.InDelta(t, -1.0, p.Evaluate(geom.Vec3{Z: -1}), 1e-9)
	assert.InDelta(t, 0.0, p.Evaluate(geom.Vec3{X: 5, Y: -2}), 1e-9)
}

func TestCylinderEvaluate(t *testing.T) {
	c := Cylinder{AxisPoint: geom.Vec3{}, AxisDirection: geom.Vec3{Z: 1}, Radius: 2}
	assert.InDelta(t, -2.0, c.Evaluate(geom.Vec3{Z: 100}), 1e-9)
	assert.InDelta(t, 0.0, c.Evaluate(geom.Vec3{X: 2, Z: -50}), 1e-9)
}

func TestBoxEvaluate(t *testing.T) {
	b := Box{Center: geom.Vec3{}, HalfSize: geom.Vec3{X: 1, Y: 1, Z: 1}}
	assert.Less(t, b.Evaluate(geom.Vec3{}), 0.0)
	assert.InDelta(t, 0.0, b.Evaluate(geom.Vec3{X: 1}), 1e-9)
	assert.Greater(t, b.Evaluate(geom.Vec3{X: 2}), 0.0)
}

func TestLoadSceneTwoDisjointSpheres(t *testing.T) {
	doc := `{
		"settings": {"resolution": 4, "scene_aabb_margin": 0.5},
		"primitives": [
			{"type": "sphere", "center": [-3,0,0], "radius": 1},
			{"type": "sphere", "center": [3,0,0], "radius": 1}
		]
	}`
	scene, err := LoadScene([]byte(doc))
	require.NoError(t, err)
	require.Len(t, scene.Primitives, 2)
	assert.Equal(t, 4, scene.Settings.Resolution)
	assert.InDelta(t, -1.0, scene.Primitives[0].Evaluate(geom.Vec3{X: -3}), 1e-9)
	assert.InDelta(t, -1.0, scene.Primitives[1].Evaluate(geom.Vec3{X: 3}), 1e-9)
}

func TestLoadSceneUnknownType(t *testing.T) {
	_, err := LoadScene([]byte(`{"primitives":[{"type":"doughnut"}]}`))
	require.Error(t, err)
}

func TestExtrudeSquareProfile(t *testing.T) {
	profile := [][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	e, err := NewExtrude(profile, 2)
	require.NoError(t, err)
	assert.Less(t, e.Evaluate(geom.Vec3{}), 0.0)
	assert.Greater(t, e.Evaluate(geom.Vec3{X: 5, Z: 5}), 0.0)
}
