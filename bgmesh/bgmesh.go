// Package bgmesh generates the regular background tetrahedral mesh the
// arrangement pipeline evaluates scalar fields over (spec §4.1): a uniform
// subdivision of an axis-aligned bounding box into resolution^3 cubic cells,
// each split into 5 tetrahedra by one of two parity-selected vertex
// templates, grounded on original_source's generate_tetrahedron_background_mesh.
package bgmesh

import (
	"fmt"

	"github.com/arrangement/isonet/geom"
)

// Mesh is a regular background tetrahedral mesh: a flat vertex array and a
// flat list of tetrahedra, each stored as 4 vertex indices.
type Mesh struct {
	Resolution int
	Vertices   []geom.Vec3
	Tets       [][4]int
}

// index returns the flat vertex index for grid coordinates (i,j,k) over an
// (N x N x N) vertex lattice, N = resolution+1.
func index(i, j, k, n int) int {
	return i*n*n + j*n + k
}

// Generate builds the background mesh for the given resolution over box.
// Vertex count is (resolution+1)^3; tet count is 5*resolution^3, matching
// spec §4.1 exactly (the full cell range, not the original_source's
// resolution-1 bound, which only fills the interior and silently drops the
// boundary layer of cells -- a bug spec.md's "5 R^3 tets" requirement rules
// out reproducing here).
func Generate(resolution int, box geom.Box3) (*Mesh, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("bgmesh: resolution must be positive, got %d", resolution)
	}
	if !box.Valid() {
		return nil, fmt.Errorf("bgmesh: degenerate bounding box %+v", box)
	}

	n := resolution + 1
	m := &Mesh{
		Resolution: resolution,
		Vertices:   make([]geom.Vec3, n*n*n),
		Tets:       make([][4]int, 0, 5*resolution*resolution*resolution),
	}

	size := box.Size()
	r := float64(resolution)

	for i := 0; i < n; i++ {
		x := box.Min.X + size.X*float64(i)/r
		for j := 0; j < n; j++ {
			y := box.Min.Y + size.Y*float64(j)/r
			for k := 0; k < n; k++ {
				z := box.Min.Z + size.Z*float64(k)/r
				m.Vertices[index(i, j, k, n)] = geom.Vec3{X: x, Y: y, Z: z}
			}
		}
	}

	for i := 0; i < resolution; i++ {
		for j := 0; j < resolution; j++ {
			for k := 0; k < resolution; k++ {
				v0 := index(i, j, k, n)
				v1 := index(i+1, j, k, n)
				v2 := index(i+1, j+1, k, n)
				v3 := index(i, j+1, k, n)
				v4 := index(i, j, k+1, n)
				v5 := index(i+1, j, k+1, n)
				v6 := index(i+1, j+1, k+1, n)
				v7 := index(i, j+1, k+1, n)

				if (i+j+k)%2 == 0 {
					m.Tets = append(m.Tets,
						[4]int{v4, v6, v1, v3},
						[4]int{v6, v3, v4, v7},
						[4]int{v1, v3, v0, v4},
						[4]int{v3, v1, v2, v6},
						[4]int{v4, v1, v6, v5},
					)
				} else {
					m.Tets = append(m.Tets,
						[4]int{v7, v0, v2, v5},
						[4]int{v2, v3, v0, v7},
						[4]int{v5, v7, v0, v4},
						[4]int{v7, v2, v6, v5},
						[4]int{v0, v1, v2, v5},
					)
				}
			}
		}
	}

	return m, nil
}

// VertexGridCoords recovers the (i,j,k) lattice coordinates of a flat vertex
// index, the inverse of index().
func (m *Mesh) VertexGridCoords(v int) (i, j, k int) {
	n := m.Resolution + 1
	i = v / (n * n)
	rem := v % (n * n)
	j = rem / n
	k = rem % n
	return
}
