package format

import (
	"image"
	"image/color"
	"io"
)

// Pixel data is read in chunks so a bogus header can't make us allocate
// far more than the file actually holds.
const chunkSize = 64 << 10

type decoder struct {
	r io.Reader

	header Header
	pixels []Pixel
}

func (d *decoder) readPixels(width, height int) error {
	n := width * height
	d.pixels = make([]Pixel, 0, min(n, chunkSize))

	tmp := make([]byte, min(n*pairSize, chunkSize))
	for len(d.pixels) < n {
		chunk := tmp[:min((n-len(d.pixels))*pairSize, len(tmp))]
		if err := readFull(d.r, chunk); err != nil {
			if err != io.ErrUnexpectedEOF {
				return err
			}
			return ErrTruncated
		}
		for i := 0; i < len(chunk); i += pairSize {
			d.pixels = append(d.pixels, Pixel{Value: chunk[i], Layer: chunk[i+1]})
		}
	}

	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	var err error
	if d.header, err = ReadHeader(r); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	if err := d.readPixels(int(d.header.Width), int(d.header.Height)); err != nil {
		return err
	}

	FlipRows(d.pixels, int(d.header.Width), int(d.header.Height))

	return nil
}

// DecodePixels reads width * height pixel pairs from r in the order they are
// stored on disk, bottom row first.
func DecodePixels(r io.Reader, width, height int) ([]Pixel, error) {
	if width <= 0 || height <= 0 || width > maxInt/pairSize/height {
		return nil, ErrBadDimensions
	}
	d := decoder{r: r}
	if err := d.readPixels(width, height); err != nil {
		return nil, err
	}
	return d.pixels, nil
}

// Decode reads a PLT file from r and returns it as an image.Image. The
// underlying type is *Image.
func Decode(r io.Reader) (image.Image, error) {
	return DecodeImage(r)
}

// DecodeImage reads a PLT file from r and returns the tagged pixels with the
// rows flipped so the first row is the top of the image.
func DecodeImage(r io.Reader) (*Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return &Image{
		Pix:    d.pixels,
		Width:  int(d.header.Width),
		Height: int(d.header.Height),
	}, nil
}

// DecodeConfig returns the color model and dimensions of a PLT file without
// decoding the pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.GrayModel,
		Width:      int(d.header.Width),
		Height:     int(d.header.Height),
	}, nil
}
