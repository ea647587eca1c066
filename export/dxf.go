package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/arrangement/isonet/network"
	"github.com/arrangement/isonet/topology"
)

// WriteChainsDXF renders every non-manifold chain as 3D line segments on a
// CHAINS layer in a DXF drawing, the format the teacher's spiral example
// (examples_teacher/spiral) emits its 2D profiles in via render.RenderDXF;
// here the curves are the 3D non-manifold edge chains rather than a 2D SDF
// boundary, so each segment is written directly as a 3D dxf.Line instead of
// going through a planar polyline.
func WriteChainsDXF(path string, net *network.Mesh, edges []topology.Edge, chains []topology.Chain) error {
	d := dxf.NewDrawing()
	if err := d.AddLayer("CHAINS", color.White, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("export: add dxf layer: %w", err)
	}
	d.ChangeLayer("CHAINS")

	for _, chain := range chains {
		for _, edgeID := range chain.Edges {
			e := edges[edgeID]
			v1 := net.Vertices[e.V1].Pos
			v2 := net.Vertices[e.V2].Pos
			d.Line(v1.X, v1.Y, v1.Z, v2.X, v2.Y, v2.Z)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("export: save dxf file: %w", err)
	}
	return nil
}
