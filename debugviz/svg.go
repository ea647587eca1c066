package debugviz

import (
	"fmt"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/arrangement/isonet/geom"
	"github.com/arrangement/isonet/network"
)

// RenderSliceSVG draws the Z=z cross-section of net's iso-surface as a set
// of 2D line segments into an SVG file, scaled to fit width x height pixels
// within bounds' XY footprint.
func RenderSliceSVG(path string, net *network.Mesh, z float64, bounds geom.Box3, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("debugviz: create svg file: %w", err)
	}
	defer f.Close()

	project := projector(bounds, width, height)

	canvas := svg.New(f)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white")
	for _, seg := range sliceSegments(net, z) {
		x1, y1 := project(seg[0][0], seg[0][1])
		x2, y2 := project(seg[1][0], seg[1][1])
		canvas.Line(x1, y1, x2, y2, "stroke:black;stroke-width:1")
	}
	canvas.Text(8, 16, fmt.Sprintf("z = %.4g", z), "font-size:12px;fill:black")
	canvas.End()
	return nil
}

// projector returns a world-XY -> pixel-coordinate transform that fits
// bounds into width x height, flipping Y so larger world-Y renders higher
// on the page (image coordinates grow downward).
func projector(bounds geom.Box3, width, height int) func(x, y float64) (int, int) {
	size := bounds.Size()
	scaleX, scaleY := 1.0, 1.0
	if size.X > 0 {
		scaleX = float64(width) / size.X
	}
	if size.Y > 0 {
		scaleY = float64(height) / size.Y
	}
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	return func(x, y float64) (int, int) {
		px := int((x - bounds.Min.X) * scale)
		py := height - int((y-bounds.Min.Y)*scale)
		return px, py
	}
}
