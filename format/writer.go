package format

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

type encoder struct {
	w *bufio.Writer
}

func (e *encoder) encode(p []Pixel) error {
	var tmp [pairSize]byte
	for _, px := range p {
		tmp[0], tmp[1] = px.Value, px.Layer
		if _, err := e.w.Write(tmp[:]); err != nil {
			return err
		}
	}
	return e.w.Flush()
}

func checkSize(p []Pixel, width, height int) error {
	if width <= 0 || height <= 0 || width > maxInt/pairSize/height {
		return ErrBadDimensions
	}
	if uint64(width) > math.MaxUint32 || uint64(height) > math.MaxUint32 {
		return ErrBadDimensions
	}
	if len(p) != width*height {
		return fmt.Errorf("%w: have %d, want %dx%d", ErrSizeMismatch, len(p), width, height)
	}
	return nil
}

// EncodePixels writes the pixel pairs in p to w exactly as given, so p should
// already be in disk order with the bottom row first.
func EncodePixels(w io.Writer, p []Pixel, width, height int) error {
	if err := checkSize(p, width, height); err != nil {
		return err
	}
	e := encoder{w: bufio.NewWriter(w)}
	return e.encode(p)
}

// Encode writes the Image m to w in PLT format.
func Encode(w io.Writer, m *Image) error {
	if err := checkSize(m.Pix, m.Width, m.Height); err != nil {
		return err
	}

	// Flip a copy into disk order, leaving m untouched
	p := make([]Pixel, len(m.Pix))
	copy(p, m.Pix)
	FlipRows(p, m.Width, m.Height)

	if err := WriteHeader(w, NewHeader(m.Width, m.Height)); err != nil {
		return err
	}

	e := encoder{w: bufio.NewWriter(w)}

	return e.encode(p)
}
