package debugviz

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/llgcode/draw2d/draw2dimg"

	"github.com/arrangement/isonet/geom"
	"github.com/arrangement/isonet/network"
)

// RenderSlicePNG rasterizes the Z=z cross-section of net into a PNG image,
// using draw2d for the line work and, when fontPath names a readable TTF
// font, golang/freetype to stamp a "z = ..." label in the corner. An empty
// fontPath skips labelling rather than failing -- label text is a debugging
// aid, not load-bearing output.
func RenderSlicePNG(path string, net *network.Mesh, z float64, bounds geom.Box3, width, height int, fontPath string) error {
	dest := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dest, dest.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	project := projector(bounds, width, height)

	gc := draw2dimg.NewGraphicContext(dest)
	gc.SetStrokeColor(color.Black)
	gc.SetLineWidth(1)
	for _, seg := range sliceSegments(net, z) {
		x1, y1 := project(seg[0][0], seg[0][1])
		x2, y2 := project(seg[1][0], seg[1][1])
		gc.MoveTo(float64(x1), float64(y1))
		gc.LineTo(float64(x2), float64(y2))
	}
	gc.Stroke()

	if fontPath != "" {
		if err := drawLabel(dest, fmt.Sprintf("z = %.4g", z), fontPath); err != nil {
			return fmt.Errorf("debugviz: draw label: %w", err)
		}
	}

	if err := draw2dimg.SaveToPngFile(path, dest); err != nil {
		return fmt.Errorf("debugviz: save png file: %w", err)
	}
	return nil
}

func drawLabel(dest *image.RGBA, text, fontPath string) error {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return fmt.Errorf("read font file: %w", err)
	}
	f, err := truetype.Parse(fontBytes)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(12)
	c.SetClip(dest.Bounds())
	c.SetDst(dest)
	c.SetSrc(image.NewUniform(color.Black))

	pt := freetype.Pt(8, 16)
	_, err = c.DrawString(text, pt)
	if err != nil {
		return fmt.Errorf("draw string: %w", err)
	}
	return nil
}
