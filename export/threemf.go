// Package export renders a pipeline.Result's iso-surface network into
// exchange file formats: 3MF meshes (github.com/hpinc/go3mf, backed by
// github.com/qmuntal/opc's OPC/zip container) and DXF curve networks
// (github.com/yofu/dxf), mirroring the file-writing style of
// render/fewrite.go's writeFE (create the file, stream geometry in, close
// on completion) adapted from a streaming channel consumer to a one-shot
// writer since a finished network.Mesh is already fully materialized in
// memory by the time export runs.
package export

import (
	"fmt"
	"os"

	"github.com/hpinc/go3mf"

	"github.com/arrangement/isonet/network"
)

// WriteMesh3MF writes every patch face of net, fan-triangulated, into a
// single 3MF mesh object at path.
func WriteMesh3MF(path string, net *network.Mesh) error {
	model := new(go3mf.Model)
	model.Units = go3mf.UnitMillimeter

	obj := &go3mf.Object{ID: 1, Mesh: new(go3mf.Mesh)}
	for _, v := range net.Vertices {
		obj.Mesh.Vertices.Vertex = append(obj.Mesh.Vertices.Vertex, go3mf.Point3D{
			float32(v.Pos.X), float32(v.Pos.Y), float32(v.Pos.Z),
		})
	}
	for _, face := range net.Faces {
		for _, tri := range fanTriangulate(face.Verts) {
			obj.Mesh.Triangles.Triangle = append(obj.Mesh.Triangles.Triangle, go3mf.Triangle{
				V1: uint32(tri[0]), V2: uint32(tri[1]), V3: uint32(tri[2]),
			})
		}
	}

	model.Resources.Objects = append(model.Resources.Objects, obj)
	model.Build.Items = append(model.Build.Items, &go3mf.Item{ObjectID: obj.ID})

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create 3mf file: %w", err)
	}
	defer f.Close()

	enc := go3mf.NewEncoder(f)
	if err := enc.Encode(model); err != nil {
		return fmt.Errorf("export: encode 3mf model: %w", err)
	}
	return nil
}

// fanTriangulate splits a (possibly non-triangular) polygon loop into a fan
// of triangles pivoted on its first vertex, the same decomposition
// integrate.Patch uses for its divergence-theorem sums.
func fanTriangulate(loop []int) [][3]int {
	if len(loop) < 3 {
		return nil
	}
	tris := make([][3]int, 0, len(loop)-2)
	for i := 2; i < len(loop); i++ {
		tris = append(tris, [3]int{loop[0], loop[i-1], loop[i]})
	}
	return tris
}
