// Package primitive implements the scalar implicit functions f_i(p) that the
// arrangement pipeline treats as external collaborators (spec §6, "primitive
// evaluator"). Each primitive is a pure function of (index, point); the CSG
// tree that would normally select/combine them is out of scope here — the
// pipeline consumes primitives directly as the per-function scalar fields
// S[j,i] = f_j(V[i]).
package primitive

import (
	"fmt"
	"math"

	"github.com/arrangement/isonet/geom"
)

// Evaluator is a single implicit function f(p) -> signed distance-like scalar.
type Evaluator interface {
	Evaluate(p geom.Vec3) float64
}

// Plane is the signed distance to an (point, normal) plane.
type Plane struct {
	Point, Normal geom.Vec3
}

// Evaluate implements Evaluator.
func (s Plane) Evaluate(p geom.Vec3) float64 {
	n := unit(s.Normal)
	d := geom.Vec3{X: p.X - s.Point.X, Y: p.Y - s.Point.Y, Z: p.Z - s.Point.Z}
	return dot(d, n)
}

// Line is a degenerate cylinder of radius 0: signed distance to an infinite line.
type Line struct {
	Point, Direction geom.Vec3
}

// Evaluate implements Evaluator.
func (s Line) Evaluate(p geom.Vec3) float64 {
	return Cylinder{AxisPoint: s.Point, AxisDirection: s.Direction, Radius: 0}.Evaluate(p)
}

// Sphere is the signed distance to a sphere (negative inside).
type Sphere struct {
	Center geom.Vec3
	Radius float64
}

// Evaluate implements Evaluator.
func (s Sphere) Evaluate(p geom.Vec3) float64 {
	d := geom.Vec3{X: p.X - s.Center.X, Y: p.Y - s.Center.Y, Z: p.Z - s.Center.Z}
	return norm(d) - s.Radius
}

// Cylinder is the signed distance to an infinite cylinder about an axis.
type Cylinder struct {
	AxisPoint, AxisDirection geom.Vec3
	Radius                   float64
}

// Evaluate implements Evaluator.
func (s Cylinder) Evaluate(p geom.Vec3) float64 {
	axis := unit(s.AxisDirection)
	d := geom.Vec3{X: p.X - s.AxisPoint.X, Y: p.Y - s.AxisPoint.Y, Z: p.Z - s.AxisPoint.Z}
	along := dot(d, axis)
	perp := geom.Vec3{
		X: d.X - along*axis.X,
		Y: d.Y - along*axis.Y,
		Z: d.Z - along*axis.Z,
	}
	return norm(perp) - s.Radius
}

// Cone is the signed distance to an infinite cone with the given apex angle,
// apex and axis direction (pointing from apex into the cone).
type Cone struct {
	Apex, AxisDirection geom.Vec3
	ApexAngle           float64 // full apex angle, radians
}

// Evaluate implements Evaluator.
func (s Cone) Evaluate(p geom.Vec3) float64 {
	axis := unit(s.AxisDirection)
	d := geom.Vec3{X: p.X - s.Apex.X, Y: p.Y - s.Apex.Y, Z: p.Z - s.Apex.Z}
	along := dot(d, axis)
	perp := geom.Vec3{
		X: d.X - along*axis.X,
		Y: d.Y - along*axis.Y,
		Z: d.Z - along*axis.Z,
	}
	radial := norm(perp)
	halfAngle := s.ApexAngle / 2
	// distance to the cone surface in the (along, radial) half-plane
	return radial*math.Cos(halfAngle) - along*math.Sin(halfAngle)
}

// NewConeTwoRadius builds a (possibly truncated) cone from two radii at two
// axial stations, matching the scene schema's two-radius form.
func NewConeTwoRadius(p0, p1 geom.Vec3, r0, r1 float64) Cone {
	axis := geom.Vec3{X: p1.X - p0.X, Y: p1.Y - p0.Y, Z: p1.Z - p0.Z}
	h := norm(axis)
	halfAngle := math.Atan2(math.Abs(r0-r1), h)
	if r0 > r1 {
		// narrowing towards p1: the apex lies beyond p1 and the cone opens back towards p0
		axis = geom.Vec3{X: -axis.X, Y: -axis.Y, Z: -axis.Z}
	}
	return Cone{Apex: apexOf(p0, axis, h, r0, r1), AxisDirection: axis, ApexAngle: 2 * halfAngle}
}

func apexOf(p0, axis geom.Vec3, h, r0, r1 float64) geom.Vec3 {
	if r0 == r1 {
		// parallel surface: no finite apex, use p0 as a stable reference.
		return p0
	}
	// distance from p0 back to the apex along the axis
	u := unit(axis)
	d := math.Abs(r0 * h / (r0 - r1))
	return geom.Vec3{X: p0.X - d*u.X, Y: p0.Y - d*u.Y, Z: p0.Z - d*u.Z}
}

// Box is the signed distance to an axis-aligned box (exact box distance, no rounding).
type Box struct {
	Center, HalfSize geom.Vec3
}

// Evaluate implements Evaluator.
func (s Box) Evaluate(p geom.Vec3) float64 {
	qx := math.Abs(p.X-s.Center.X) - s.HalfSize.X
	qy := math.Abs(p.Y-s.Center.Y) - s.HalfSize.Y
	qz := math.Abs(p.Z-s.Center.Z) - s.HalfSize.Z
	outside := norm(geom.Vec3{X: math.Max(qx, 0), Y: math.Max(qy, 0), Z: math.Max(qz, 0)})
	inside := math.Min(math.Max(qx, math.Max(qy, qz)), 0)
	return outside + inside
}

// Constant is a function with the same value everywhere; useful for
// "always inside"/"always outside" placeholders in tests.
type Constant struct {
	Value float64
}

// Evaluate implements Evaluator.
func (s Constant) Evaluate(geom.Vec3) float64 { return s.Value }

//-----------------------------------------------------------------------------

func unit(v geom.Vec3) geom.Vec3 {
	n := norm(v)
	if n == 0 {
		return v
	}
	return geom.Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

func norm(v geom.Vec3) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func dot(a, b geom.Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// ErrUnknownType is returned by the scene loader for an unrecognised
// primitive type tag.
type ErrUnknownType struct {
	Type string
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("primitive: unknown type %q", e.Type)
}
