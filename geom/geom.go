// Package geom provides the 3D vector and bounding-box types shared across
// the arrangement pipeline.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a point or direction in R3. It is an alias of gonum's r3.Vec so the
// pipeline gets Add/Sub/Cross/Dot/Norm for free instead of a hand-rolled type.
type Vec3 = r3.Vec

// Epsilon is the default tolerance used to classify a scalar value as zero.
const Epsilon = 1e-9

// Sign returns -1, 0 or +1 for x, treating |x| <= tol as exactly zero.
func Sign(x, tol float64) int {
	if x > tol {
		return 1
	}
	if x < -tol {
		return -1
	}
	return 0
}

// Box3 is an axis-aligned bounding box.
type Box3 struct {
	Min, Max Vec3
}

// NewBox3 builds a box from its center and full size.
func NewBox3(center, size Vec3) Box3 {
	half := r3.Scale(0.5, size)
	return Box3{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// Size returns the box's extent along each axis.
func (b Box3) Size() Vec3 {
	return r3.Sub(b.Max, b.Min)
}

// Center returns the box's midpoint.
func (b Box3) Center() Vec3 {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Valid reports whether the box is non-degenerate: Min < Max componentwise.
func (b Box3) Valid() bool {
	return b.Min.X < b.Max.X && b.Min.Y < b.Max.Y && b.Min.Z < b.Max.Z
}

// Lerp linearly interpolates between a and b at parameter t.
func Lerp(a, b Vec3, t float64) Vec3 {
	return Vec3{
		X: a.X + t*(b.X-a.X),
		Y: a.Y + t*(b.Y-a.Y),
		Z: a.Z + t*(b.Z-a.Z),
	}
}

// Barycentric2 solves for the barycentric split point of an edge given the
// two scalar values at its endpoints (f1 at a, f2 at b). This mirrors
// compute_barycentric_coords(f1, f2) from the reference kernel: the point
// where the linear interpolant between f1 and f2 vanishes.
func Barycentric2(f1, f2 float64) (t0, t1 float64) {
	t0 = f2 / (f2 - f1)
	t1 = 1 - t0
	return
}

// Barycentric3 solves for the intersection point, in barycentric coordinates
// over a triangle, of two planes given in barycentric form restricted to
// that triangle (plane1, plane2 each hold 3 coefficients, one per triangle
// corner). Ported from the reference kernel's 3-coordinate overload of
// compute_barycentric_coords so the arithmetic ordering matches bit for bit.
func Barycentric3(plane1, plane2 [3]float64) (bary [3]float64) {
	n1 := plane1[2]*plane2[1] - plane1[1]*plane2[2]
	n2 := plane1[0]*plane2[2] - plane1[2]*plane2[0]
	n3 := plane1[1]*plane2[0] - plane1[0]*plane2[1]
	d := n1 + n2 + n3
	bary[0] = n1 / d
	bary[1] = n2 / d
	bary[2] = n3 / d
	return
}

// Barycentric4 solves for the intersection point, in barycentric coordinates
// over a tetrahedron, of three planes given in barycentric form (4
// coefficients each, one per tet corner). Ported from the reference kernel's
// 4-coordinate compute_barycentric_coords.
func Barycentric4(plane1, plane2, plane3 [4]float64) (bary [4]float64) {
	n1 := plane1[3]*(plane2[2]*plane3[1]-plane2[1]*plane3[2]) +
		plane1[2]*(plane2[1]*plane3[3]-plane2[3]*plane3[1]) +
		plane1[1]*(plane2[3]*plane3[2]-plane2[2]*plane3[3])
	n2 := plane1[3]*(plane2[0]*plane3[2]-plane2[2]*plane3[0]) +
		plane1[2]*(plane2[3]*plane3[0]-plane2[0]*plane3[3]) +
		plane1[0]*(plane2[2]*plane3[3]-plane2[3]*plane3[2])
	n3 := plane1[3]*(plane2[1]*plane3[0]-plane2[0]*plane3[1]) +
		plane1[1]*(plane2[0]*plane3[3]-plane2[3]*plane3[0]) +
		plane1[0]*(plane2[3]*plane3[1]-plane2[1]*plane3[3])
	n4 := plane1[2]*(plane2[0]*plane3[1]-plane2[1]*plane3[0]) +
		plane1[1]*(plane2[2]*plane3[0]-plane2[0]*plane3[2]) +
		plane1[0]*(plane2[1]*plane3[2]-plane2[2]*plane3[1])
	d := n1 + n2 + n3 + n4
	bary[0] = n1 / d
	bary[1] = n2 / d
	bary[2] = n3 / d
	bary[3] = n4 / d
	return
}

// FromBary evaluates a point given barycentric weights over a set of corner
// positions (len(weights) == len(corners)).
func FromBary(corners []Vec3, weights []float64) Vec3 {
	var p Vec3
	for i, w := range weights {
		p.X += w * corners[i].X
		p.Y += w * corners[i].Y
		p.Z += w * corners[i].Z
	}
	return p
}

// NearlyEqual reports whether a and b are within tol of each other.
func NearlyEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
