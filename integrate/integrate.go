// Package integrate computes per-patch surface area and signed volume
// contribution via fan triangulation (spec §4.8), porting
// original_source/frontend/src/patch_integrator.cpp's PatchIntegrator::integrate
// arithmetic exactly: area accumulates per triangle as it's discovered, but
// the volume term sums the triangles' raw (un-halved, un-normalized) area
// vectors first and only takes one dot product with the fan's pivot vertex
// at the end, preserving the original's summation order.
package integrate

import (
	"math"

	"github.com/arrangement/isonet/geom"
)

// Result is one patch's integrated surface area and signed volume
// contribution (the latter summed across all patches yields the total
// enclosed volume of a closed shell via the divergence theorem).
type Result struct {
	SurfaceArea    float64
	VolumeIntegral float64
}

// Patch computes the integrated area/volume contribution of a single patch,
// given the mesh's global vertex positions and the polygon loops (each a
// list of global vertex indices) belonging to that patch.
func Patch(vertices []geom.Vec3, faces [][]int) Result {
	var result Result

	for _, loop := range faces {
		if len(loop) < 3 {
			continue
		}
		v0 := vertices[loop[0]]
		var areaVectorSum geom.Vec3
		for i := 2; i < len(loop); i++ {
			v1 := vertices[loop[i-1]]
			v2 := vertices[loop[i]]
			av := cross(sub(v1, v0), sub(v2, v0))
			areaVectorSum = add(areaVectorSum, av)
			result.SurfaceArea += norm(av) * 0.5
		}
		result.VolumeIntegral += dot(v0, areaVectorSum) / 6
	}

	return result
}

func sub(a, b geom.Vec3) geom.Vec3 { return geom.Vec3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z} }
func add(a, b geom.Vec3) geom.Vec3 { return geom.Vec3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z} }
func dot(a, b geom.Vec3) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func cross(a, b geom.Vec3) geom.Vec3 {
	return geom.Vec3{X: a.Y*b.Z - a.Z*b.Y, Y: a.Z*b.X - a.X*b.Z, Z: a.X*b.Y - a.Y*b.X}
}
func norm(a geom.Vec3) float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}
