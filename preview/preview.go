/*
Package preview renders a PLT texture as a color image for quick inspection.

Every material layer is given a fixed tint which is scaled by the intensity
of each pixel, then the result is reduced to a small palette so the preview
can be written as a compact paletted image.
*/
package preview

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/bodgit/plt/format"
	"github.com/bodgit/plt/layer"
	"github.com/ericpauley/go-quantize/quantize"
)

const (
	// DefaultColors is the palette size used if none is given
	DefaultColors = 64
	maxColors     = 256
)

// Tints are the colors used for each material layer, in tag order
var tints = [layer.Count]color.RGBA{
	{0xf1, 0xc2, 0x7d, 0xff}, // skin
	{0x8b, 0x5a, 0x2b, 0xff}, // hair
	{0xc0, 0xc0, 0xc8, 0xff}, // metal1
	{0x80, 0x80, 0x90, 0xff}, // metal2
	{0x3f, 0x6f, 0xd8, 0xff}, // cloth1
	{0x4c, 0xaf, 0x50, 0xff}, // cloth2
	{0xa0, 0x52, 0x2d, 0xff}, // leather1
	{0x5d, 0x40, 0x37, 0xff}, // leather2
	{0x9c, 0x27, 0xb0, 0xff}, // tattoo1
	{0xe9, 0x1e, 0x63, 0xff}, // tattoo2
}

var errBadLayer = errors.New("preview: layer index out of range")

// Tint returns the color used for the layer with tag i
func Tint(i int) color.RGBA {
	if i < 0 || i >= layer.Count {
		return color.RGBA{}
	}
	return tints[i]
}

func scale(c, v uint8) uint8 {
	return uint8(uint16(c) * uint16(v) / 0xff)
}

// Render returns a full color rendering of m.
func Render(m *format.Image) (*image.RGBA, error) {
	out := image.NewRGBA(m.Bounds())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			px := m.PixelAt(x, y)
			if int(px.Layer) >= layer.Count {
				return nil, errBadLayer
			}
			t := tints[px.Layer]
			out.SetRGBA(x, y, color.RGBA{scale(t.R, px.Value), scale(t.G, px.Value), scale(t.B, px.Value), 0xff})
		}
	}
	return out, nil
}

// Quantize reduces m to a palette of at most colors colors.
func Quantize(m image.Image, colors int) *image.Paletted {
	if colors <= 0 {
		colors = DefaultColors
	}
	if colors > maxColors {
		colors = maxColors
	}

	b := m.Bounds()

	pm, _ := m.(*image.Paletted)
	if pm == nil || len(pm.Palette) > colors {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colors), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	return pm
}

// Encode writes a preview of m to w as a paletted PNG of at most colors
// colors.
func Encode(w io.Writer, m *format.Image, colors int) error {
	rgba, err := Render(m)
	if err != nil {
		return err
	}
	return png.Encode(w, Quantize(rgba, colors))
}
