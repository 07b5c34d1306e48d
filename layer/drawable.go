package layer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/bodgit/plt/format"
)

// Mode is the color mode of a pixel buffer.
type Mode int

// Supported and recognised modes.
const (
	Gray Mode = iota
	RGB
	Indexed
)

func (m Mode) String() string {
	switch m {
	case Gray:
		return "gray"
	case RGB:
		return "rgb"
	case Indexed:
		return "indexed"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Drawable is a pixel buffer provided by the host application.
type Drawable interface {
	// Bounds is the position of the buffer on the canvas, which may be
	// offset from, or larger or smaller than, the canvas itself.
	Bounds() image.Rectangle
	Mode() Mode
	HasAlpha() bool
	// Channels returns the number of color channels, not counting alpha.
	Channels() int
	// Pixels returns the interleaved channels of each pixel row by row
	// from the top-left corner, alpha last if present.
	Pixels() []uint8
}

// Layer is a named entry in the host's layer stack.
type Layer struct {
	Name     string
	Visible  bool
	Drawable Drawable
}

// Buffer is a general purpose Drawable.
type Buffer struct {
	Pix   []uint8
	Rect  image.Rectangle
	Color Mode
	Alpha bool
}

// Bounds implements Drawable.
func (b *Buffer) Bounds() image.Rectangle { return b.Rect }

// Mode implements Drawable.
func (b *Buffer) Mode() Mode { return b.Color }

// HasAlpha implements Drawable.
func (b *Buffer) HasAlpha() bool { return b.Alpha }

// Channels implements Drawable.
func (b *Buffer) Channels() int { return channels(b.Color) }

// Pixels implements Drawable.
func (b *Buffer) Pixels() []uint8 { return b.Pix }

func channels(m Mode) int {
	if m == RGB {
		return 3
	}
	return 1
}

func bytesPerPixel(d Drawable) int {
	n := d.Channels()
	if d.HasAlpha() {
		n++
	}
	return n
}

// FromImage converts m into a Buffer. Gray images keep a single channel
// with no alpha, paletted images are rejected as there's no way to map an
// index to an intensity, and everything else becomes RGB with alpha.
func FromImage(m image.Image) (*Buffer, error) {
	r := m.Bounds()

	switch src := m.(type) {
	case *image.Paletted:
		return nil, fmt.Errorf("%w: %s", format.ErrUnsupportedMode, Indexed)
	case *image.Gray:
		b := &Buffer{
			Pix:   make([]uint8, 0, r.Dx()*r.Dy()),
			Rect:  r,
			Color: Gray,
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			i := src.PixOffset(r.Min.X, y)
			b.Pix = append(b.Pix, src.Pix[i:i+r.Dx()]...)
		}
		return b, nil
	case *image.Gray16:
		b := &Buffer{
			Pix:   make([]uint8, 0, r.Dx()*r.Dy()),
			Rect:  r,
			Color: Gray,
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				b.Pix = append(b.Pix, uint8(src.Gray16At(x, y).Y>>8))
			}
		}
		return b, nil
	}

	b := &Buffer{
		Pix:   make([]uint8, 0, r.Dx()*r.Dy()*4),
		Rect:  r,
		Color: RGB,
		Alpha: true,
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			b.Pix = append(b.Pix, c.R, c.G, c.B, c.A)
		}
	}
	return b, nil
}
