package format

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Header is the fixed header found at the start of every PLT file. It
// implements the encoding.BinaryMarshaler and encoding.BinaryUnmarshaler
// interfaces.
type Header struct {
	VersionMajor uint32
	VersionMinor uint32
	Width        uint32
	Height       uint32
}

// NewHeader returns a header for an image of the given size using the
// current format version. Both sizes must fit in a uint32, Encode rejects
// anything larger with ErrBadDimensions before building a header.
func NewHeader(width, height int) Header {
	return Header{
		VersionMajor: VersionMajor,
		VersionMinor: VersionMinor,
		Width:        uint32(width),
		Height:       uint32(height),
	}
}

// Pixels returns the number of pixel pairs that follow the header.
func (h Header) Pixels() (int, error) {
	return pixelCount(h.Width, h.Height)
}

// MarshalBinary encodes the header into its 24 byte form. The version is
// always written as VersionMajor.VersionMinor regardless of what the header
// holds.
func (h Header) MarshalBinary() ([]byte, error) {
	if _, err := h.Pixels(); err != nil {
		return nil, err
	}

	b := make([]byte, HeaderSize)
	copy(b, Magic)
	binary.LittleEndian.PutUint32(b[8:], VersionMajor)
	binary.LittleEndian.PutUint32(b[12:], VersionMinor)
	binary.LittleEndian.PutUint32(b[16:], h.Width)
	binary.LittleEndian.PutUint32(b[20:], h.Height)

	return b, nil
}

// UnmarshalBinary decodes the header from the first 24 bytes of b
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) < HeaderSize {
		return ErrTruncated
	}

	if string(b[:len(Magic)]) != Magic {
		return fmt.Errorf("%w: %q", ErrBadMagic, b[:len(Magic)])
	}

	tmp := Header{
		VersionMajor: binary.LittleEndian.Uint32(b[8:]),
		VersionMinor: binary.LittleEndian.Uint32(b[12:]),
		Width:        binary.LittleEndian.Uint32(b[16:]),
		Height:       binary.LittleEndian.Uint32(b[20:]),
	}

	if _, err := tmp.Pixels(); err != nil {
		return fmt.Errorf("%w: %dx%d", err, tmp.Width, tmp.Height)
	}

	*h = tmp

	return nil
}

// ReadHeader reads and parses the header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var b [HeaderSize]byte
	if err := readFull(r, b[:]); err != nil {
		if err != io.ErrUnexpectedEOF {
			return Header{}, err
		}
		return Header{}, ErrTruncated
	}

	var h Header
	if err := h.UnmarshalBinary(b[:]); err != nil {
		return Header{}, err
	}
	return h, nil
}

// WriteHeader writes the header to w.
func WriteHeader(w io.Writer, h Header) error {
	b, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
