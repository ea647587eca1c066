package primitive

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/dhconnelly/rtreego"

	"github.com/arrangement/isonet/geom"
)

// triangle is a single facet of a polygon-soup mesh primitive, plus the
// precomputed data needed to answer nearest-point and inside/outside queries.
type triangle struct {
	a, b, c geom.Vec3
	normal  geom.Vec3
}

// Bounds implements rtreego.Spatial so triangles can be indexed directly.
func (t *triangle) Bounds() rtreego.Rect {
	min := [3]float64{
		math.Min(t.a.X, math.Min(t.b.X, t.c.X)),
		math.Min(t.a.Y, math.Min(t.b.Y, t.c.Y)),
		math.Min(t.a.Z, math.Min(t.b.Z, t.c.Z)),
	}
	max := [3]float64{
		math.Max(t.a.X, math.Max(t.b.X, t.c.X)),
		math.Max(t.a.Y, math.Max(t.b.Y, t.c.Y)),
		math.Max(t.a.Z, math.Max(t.b.Z, t.c.Z)),
	}
	const pad = 1e-9
	lengths := [3]float64{max[0] - min[0] + pad, max[1] - min[1] + pad, max[2] - min[2] + pad}
	pt := rtreego.Point{min[0] - pad/2, min[1] - pad/2, min[2] - pad/2}
	rect, _ := rtreego.NewRect(pt, lengths[:])
	return rect
}

// Mesh is a polygon-soup signed-distance primitive: the distance to the
// closest triangle, signed by that triangle's outward normal. An rtreego
// index accelerates the nearest-triangle query so Evaluate stays sub-linear
// in the facet count, matching the spatial-index role the teacher's STL
// import path is expected to play for mesh primitives.
type Mesh struct {
	tris *rtreego.Rtree
}

// NewMeshFromSTL loads a binary STL file and builds an indexed Mesh primitive.
func NewMeshFromSTL(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("primitive: open mesh %q: %w", path, err)
	}
	defer f.Close()

	tris, err := readBinarySTL(f)
	if err != nil {
		return nil, fmt.Errorf("primitive: read mesh %q: %w", path, err)
	}
	tree := rtreego.NewTree(3, 8, 25)
	for _, t := range tris {
		t := t
		tree.Insert(t)
	}
	return &Mesh{tris: tree}, nil
}

// Evaluate implements Evaluator: unsigned distance to the nearest facet,
// signed by that facet's outward normal (negative inside).
func (m *Mesh) Evaluate(p geom.Vec3) float64 {
	pt := rtreego.Point{p.X, p.Y, p.Z}
	nearest := m.tris.NearestNeighbor(pt)
	if nearest == nil {
		return math.Inf(1)
	}
	t := nearest.(*triangle)
	cp := closestPointOnTriangle(p, t.a, t.b, t.c)
	d := geom.Vec3{X: p.X - cp.X, Y: p.Y - cp.Y, Z: p.Z - cp.Z}
	dist := math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
	if dot(d, t.normal) < 0 {
		return -dist
	}
	return dist
}

func closestPointOnTriangle(p, a, b, c geom.Vec3) geom.Vec3 {
	ab := sub(b, a)
	ac := sub(c, a)
	ap := sub(p, a)

	d1 := dot(ab, ap)
	d2 := dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}
	bp := sub(p, b)
	d3 := dot(ab, bp)
	d4 := dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return add(a, scale(v, ab))
	}
	cp := sub(p, c)
	d5 := dot(ab, cp)
	d6 := dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return add(a, scale(w, ac))
	}
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return add(b, scale(w, sub(c, b)))
	}
	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return add(a, add(scale(v, ab), scale(w, ac)))
}

func sub(a, b geom.Vec3) geom.Vec3   { return geom.Vec3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z} }
func add(a, b geom.Vec3) geom.Vec3   { return geom.Vec3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z} }
func scale(s float64, a geom.Vec3) geom.Vec3 {
	return geom.Vec3{X: s * a.X, Y: s * a.Y, Z: s * a.Z}
}
func cross(a, b geom.Vec3) geom.Vec3 {
	return geom.Vec3{X: a.Y*b.Z - a.Z*b.Y, Y: a.Z*b.X - a.X*b.Z, Z: a.X*b.Y - a.Y*b.X}
}

// readBinarySTL parses the 80-byte-header binary STL format.
func readBinarySTL(r io.Reader) ([]*triangle, error) {
	br := bufio.NewReader(r)
	header := make([]byte, 80)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, err
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(string(header))), "solid") {
		return nil, fmt.Errorf("ascii STL not supported")
	}
	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	tris := make([]*triangle, 0, count)
	var buf [50]byte
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, err
		}
		n := readVec3(buf[0:12])
		a := readVec3(buf[12:24])
		b := readVec3(buf[24:36])
		c := readVec3(buf[36:48])
		if n.X == 0 && n.Y == 0 && n.Z == 0 {
			n = unit(cross(sub(b, a), sub(c, a)))
		}
		tris = append(tris, &triangle{a: a, b: b, c: c, normal: n})
	}
	return tris, nil
}

func readVec3(b []byte) geom.Vec3 {
	return geom.Vec3{
		X: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:4]))),
		Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:8]))),
		Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:12]))),
	}
}

// Extrude is a linear extrusion of a closed 2D polygon profile along Z,
// evaluated as the intersection (max) of the profile's 2D signed distance
// and a slab of the given height.
type Extrude struct {
	profile [][2]float64
	height  float64
}

// NewExtrude builds an Extrude primitive from a closed polygon profile in
// the XY plane and an extrusion height along Z, centered on z=0.
func NewExtrude(profile [][2]float64, height float64) (*Extrude, error) {
	if len(profile) < 3 {
		return nil, fmt.Errorf("primitive: extrude profile needs >= 3 points, got %d", len(profile))
	}
	if height <= 0 {
		return nil, fmt.Errorf("primitive: extrude height must be positive, got %g", height)
	}
	return &Extrude{profile: profile, height: height}, nil
}

// Evaluate implements Evaluator.
func (e *Extrude) Evaluate(p geom.Vec3) float64 {
	d2 := polygonSignedDistance2D(e.profile, p.X, p.Y)
	dz := math.Abs(p.Z) - e.height/2
	if d2 <= 0 && dz <= 0 {
		return math.Max(d2, dz)
	}
	ax := math.Max(d2, 0)
	az := math.Max(dz, 0)
	return math.Sqrt(ax*ax+az*az) + math.Min(math.Max(d2, dz), 0)
}

// polygonSignedDistance2D returns the signed distance from (x,y) to a closed
// polygon boundary, negative inside, via even-odd (ray-crossing) containment
// plus nearest-edge distance.
func polygonSignedDistance2D(poly [][2]float64, x, y float64) float64 {
	n := len(poly)
	best := math.Inf(1)
	inside := false
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		best = math.Min(best, pointSegmentDistance2D(x, y, a, b))
		if (a[1] > y) != (b[1] > y) {
			xCross := a[0] + (y-a[1])/(b[1]-a[1])*(b[0]-a[0])
			if x < xCross {
				inside = !inside
			}
		}
	}
	if inside {
		return -best
	}
	return best
}

func pointSegmentDistance2D(x, y float64, a, b [2]float64) float64 {
	abx, aby := b[0]-a[0], b[1]-a[1]
	apx, apy := x-a[0], y-a[1]
	denom := abx*abx + aby*aby
	t := 0.0
	if denom > 0 {
		t = (apx*abx + apy*aby) / denom
		t = math.Max(0, math.Min(1, t))
	}
	cx, cy := a[0]+t*abx, a[1]+t*aby
	dx, dy := x-cx, y-cy
	return math.Sqrt(dx*dx + dy*dy)
}
