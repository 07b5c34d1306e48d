package layer

import (
	"image"
	"image/color"
)

var (
	_ Drawable    = (*Plane)(nil)
	_ image.Image = (*Plane)(nil)
)

// Plane is a single material layer as a grayscale image with alpha. Pix
// holds a value and alpha byte for each pixel with the first row being the
// top of the image.
type Plane struct {
	Name   string
	Width  int
	Height int
	Pix    []uint8
}

// NewPlane returns a fully transparent plane.
func NewPlane(name string, width, height int) *Plane {
	return &Plane{
		Name:   name,
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*2),
	}
}

// Bounds implements Drawable and image.Image.
func (p *Plane) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.Width, p.Height)
}

// Mode implements Drawable.
func (p *Plane) Mode() Mode { return Gray }

// HasAlpha implements Drawable.
func (p *Plane) HasAlpha() bool { return true }

// Channels implements Drawable.
func (p *Plane) Channels() int { return 1 }

// Pixels implements Drawable.
func (p *Plane) Pixels() []uint8 { return p.Pix }

// ColorModel implements image.Image.
func (p *Plane) ColorModel() color.Model {
	return color.NRGBAModel
}

// At implements image.Image so a plane can be handed straight to an image
// encoder.
func (p *Plane) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(p.Bounds())) {
		return color.NRGBA{}
	}
	i := (y*p.Width + x) * 2
	return color.NRGBA{p.Pix[i], p.Pix[i], p.Pix[i], p.Pix[i+1]}
}

// Coverage returns the number of pixels with non-zero alpha.
func (p *Plane) Coverage() int {
	var n int
	for i := 1; i < len(p.Pix); i += 2 {
		if p.Pix[i] != 0 {
			n++
		}
	}
	return n
}

// NRGBA returns a copy of the plane as an *image.NRGBA with the value
// repeated across the color channels.
func (p *Plane) NRGBA() *image.NRGBA {
	m := image.NewNRGBA(p.Bounds())
	for i := 0; i < len(p.Pix); i += 2 {
		v, a := p.Pix[i], p.Pix[i+1]
		copy(m.Pix[i*2:], []uint8{v, v, v, a})
	}
	return m
}
