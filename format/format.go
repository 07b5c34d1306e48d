/*
Package format implements a Packed Layer Texture (PLT) decoder and encoder.

The format starts with a fixed 24 byte header: the 8 byte magic "PLT V1  ",
two 32-bit version numbers which are always written as 10 and 0, followed by
the 32-bit width and height of the image. All values are little-endian.

The header is followed by width * height pixel pairs. Each pair is a value
byte followed by a layer byte selecting which material layer the pixel
belongs to. Rows are stored bottom to top, so the first pair in the file is
the bottom-left pixel of the image. There is no compression so the file is
always exactly 24 + width * height * 2 bytes in size.
*/
package format

import (
	"errors"
	"image"
	"io"
)

const (
	// Magic is the literal string every PLT file starts with
	Magic = "PLT V1  "

	// HeaderSize is the size of the fixed header in bytes
	HeaderSize = 24

	// VersionMajor and VersionMinor are always written to new files
	VersionMajor = 10
	VersionMinor = 0

	pairSize = 2
)

var (
	// ErrBadMagic is returned when the file does not start with Magic
	ErrBadMagic = errors.New("format: bad magic")
	// ErrTruncated is returned when the header or pixel data is short
	ErrTruncated = errors.New("format: not enough data")
	// ErrSizeMismatch is returned when the number of pixels does not
	// match the dimensions
	ErrSizeMismatch = errors.New("format: pixel count does not match dimensions")
	// ErrBadDimensions is returned for a zero or overflowing width and height
	ErrBadDimensions = errors.New("format: invalid dimensions")
	// ErrUnsupportedMode is returned for images with no tagged pixel
	// representation, such as indexed color
	ErrUnsupportedMode = errors.New("format: unsupported image mode")
	// ErrLayerIndexOutOfRange is returned when a pixel references a layer
	// that does not exist
	ErrLayerIndexOutOfRange = errors.New("format: layer index out of range")
)

func init() {
	image.RegisterFormat("plt", Magic, Decode, DecodeConfig)
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// pixelCount returns width * height, checking the pixel pairs can be held
// in memory without overflowing.
func pixelCount(width, height uint32) (int, error) {
	if width == 0 || height == 0 {
		return 0, ErrBadDimensions
	}
	n := uint64(width) * uint64(height)
	if n > uint64(maxInt/pairSize) {
		return 0, ErrBadDimensions
	}
	return int(n), nil
}

const maxInt = int(^uint(0) >> 1)
