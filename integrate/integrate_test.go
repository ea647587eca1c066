package integrate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arrangement/isonet/geom"
)

// unitCubeFaces returns the 6 quad faces of an axis-aligned unit cube
// centred on the origin, each wound outward.
func unitCubeFaces() ([]geom.Vec3, [][]int) {
	verts := []geom.Vec3{
		{X: -0.5, Y: -0.5, Z: -0.5}, {X: 0.5, Y: -0.5, Z: -0.5},
		{X: 0.5, Y: 0.5, Z: -0.5}, {X: -0.5, Y: 0.5, Z: -0.5},
		{X: -0.5, Y: -0.5, Z: 0.5}, {X: 0.5, Y: -0.5, Z: 0.5},
		{X: 0.5, Y: 0.5, Z: 0.5}, {X: -0.5, Y: 0.5, Z: 0.5},
	}
	faces := [][]int{
		{0, 3, 2, 1}, // bottom, normal -Z
		{4, 5, 6, 7}, // top, normal +Z
		{0, 1, 5, 4}, // -Y
		{1, 2, 6, 5}, // +X
		{2, 3, 7, 6}, // +Y
		{3, 0, 4, 7}, // -X
	}
	return verts, faces
}

func TestPatchIntegratesUnitCubeSurfaceArea(t *testing.T) {
	verts, faces := unitCubeFaces()
	r := Patch(verts, faces)
	assert.InDelta(t, 6.0, r.SurfaceArea, 1e-9)
}

func TestPatchIntegratesUnitCubeVolume(t *testing.T) {
	verts, faces := unitCubeFaces()
	r := Patch(verts, faces)
	assert.InDelta(t, 1.0, math.Abs(r.VolumeIntegral), 1e-9)
}

func TestPatchSkipsDegenerateLoops(t *testing.T) {
	verts := []geom.Vec3{{}, {X: 1}}
	r := Patch(verts, [][]int{{0, 1}})
	assert.Equal(t, Result{}, r)
}
