package format

import (
	"image"
	"image/color"
)

// Image is a decoded PLT texture. Pix holds one tagged pixel per image pixel
// in row-major order with the first row being the top of the image, unlike
// the file where the first row is the bottom.
type Image struct {
	Pix    []Pixel
	Width  int
	Height int
}

// NewImage returns an image of the given size with every pixel set to layer
// 0 at full intensity.
func NewImage(width, height int) *Image {
	m := &Image{
		Pix:    make([]Pixel, width*height),
		Width:  width,
		Height: height,
	}
	for i := range m.Pix {
		m.Pix[i] = Pixel{Value: 0xff}
	}
	return m
}

// ColorModel implements image.Image. Only the value of each pixel is
// visible through it.
func (m *Image) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// At implements image.Image.
func (m *Image) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return color.Gray{}
	}
	return color.Gray{Y: m.Pix[y*m.Width+x].Value}
}

// PixelAt returns the tagged pixel at (x, y).
func (m *Image) PixelAt(x, y int) Pixel {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return Pixel{}
	}
	return m.Pix[y*m.Width+x]
}
