// Package debugviz renders Z-slices of a network.Mesh for visual debugging:
// an SVG renderer (github.com/ajstarks/svgo) and a PNG raster renderer
// (github.com/llgcode/draw2d + golang.org/x/image, with optional text
// labelling via github.com/golang/freetype when a TTF font is supplied).
// The slicing itself generalizes the X-major layer scan
// render/march3.go's layerYZ performs during marching cubes: instead of
// evaluating a scalar field layer-by-layer, it intersects the already
// extracted iso-surface faces against one Z plane.
package debugviz

import "github.com/arrangement/isonet/network"

// segment is one 2D line segment of a slice, in world XY coordinates.
type segment [2][2]float64

// sliceSegments intersects every face of net against the horizontal plane
// Z=z, returning one segment per face that straddles the plane (faces
// entirely on one side, or exactly coplanar, contribute nothing).
func sliceSegments(net *network.Mesh, z float64) []segment {
	var segs []segment
	for _, face := range net.Faces {
		n := len(face.Verts)
		if n < 3 {
			continue
		}
		var pts [][2]float64
		for i := 0; i < n; i++ {
			a := net.Vertices[face.Verts[i]].Pos
			b := net.Vertices[face.Verts[(i+1)%n]].Pos
			if a.Z == b.Z {
				continue
			}
			if (a.Z-z)*(b.Z-z) > 0 {
				continue
			}
			t := (z - a.Z) / (b.Z - a.Z)
			if t < 0 || t > 1 {
				continue
			}
			pts = append(pts, [2]float64{
				a.X + t*(b.X-a.X),
				a.Y + t*(b.Y-a.Y),
			})
		}
		if len(pts) >= 2 {
			segs = append(segs, segment{pts[0], pts[1]})
		}
	}
	return segs
}
