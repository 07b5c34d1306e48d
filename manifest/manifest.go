/*
Package manifest implements the small sidecar file written alongside the
layer images of an unpacked PLT texture.

Image files on their own lose the order and visibility of the layers, so the
manifest records the canvas size and one line per layer, top-most layer
first, giving whether it is visible, its name and the file holding its
pixels. Fields are separated by tabs so names may contain spaces.
*/
package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
)

const (
	// Extension is appended to the texture name to give the manifest
	// filename, so several textures can share a directory
	Extension = ".layers"

	header  = "plt-layers 1"
	visible = "visible"
	hidden  = "hidden"
)

var (
	errBadHeader = errors.New("manifest: bad header")
	errBadLine   = errors.New("manifest: malformed line")
)

// Entry is a single layer in the manifest
type Entry struct {
	Name    string
	File    string
	Visible bool
}

// Manifest is the manifest object. It implements the
// encoding.TextMarshaler and encoding.TextUnmarshaler interfaces.
type Manifest struct {
	Width   int
	Height  int
	Entries []Entry
}

// New returns an empty manifest for a canvas of the given size
func New(width, height int) *Manifest {
	return &Manifest{
		Width:  width,
		Height: height,
	}
}

// Length returns the number of layers in the manifest
func (m *Manifest) Length() int {
	return len(m.Entries)
}

// Add appends a layer below any existing ones
func (m *Manifest) Add(name, file string, visible bool) error {
	if name == "" || file == "" {
		return errors.New("manifest: empty name or file")
	}
	if strings.ContainsAny(name+file, "\t\r\n") {
		return fmt.Errorf("manifest: invalid characters in %q", name)
	}
	m.Entries = append(m.Entries, Entry{Name: name, File: file, Visible: visible})
	return nil
}

// MarshalText encodes the manifest into text form and returns the result
func (m *Manifest) MarshalText() ([]byte, error) {
	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("manifest: invalid size %dx%d", m.Width, m.Height)
	}

	b := new(bytes.Buffer)
	fmt.Fprintln(b, header)
	fmt.Fprintf(b, "size\t%d\t%d\n", m.Width, m.Height)

	for _, e := range m.Entries {
		v := hidden
		if e.Visible {
			v = visible
		}
		fmt.Fprintf(b, "%s\t%s\t%s\n", v, e.Name, e.File)
	}

	return b.Bytes(), nil
}

// UnmarshalText decodes the manifest from text form
func (m *Manifest) UnmarshalText(b []byte) error {
	s := bufio.NewScanner(bytes.NewReader(b))

	m.Width, m.Height = 0, 0
	m.Entries = nil

	if !s.Scan() || strings.TrimSpace(s.Text()) != header {
		return errBadHeader
	}

	for n := 2; s.Scan(); n++ {
		line := strings.TrimRight(s.Text(), "\r")
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return fmt.Errorf("%w: line %d", errBadLine, n)
		}

		switch fields[0] {
		case "size":
			if _, err := fmt.Sscanf(fields[1]+" "+fields[2], "%d %d", &m.Width, &m.Height); err != nil {
				return fmt.Errorf("%w: line %d: %v", errBadLine, n, err)
			}
		case visible, hidden:
			if err := m.Add(fields[1], fields[2], fields[0] == visible); err != nil {
				return fmt.Errorf("%w: line %d: %v", errBadLine, n, err)
			}
		default:
			return fmt.Errorf("%w: line %d", errBadLine, n)
		}
	}
	if err := s.Err(); err != nil {
		return err
	}

	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("manifest: missing or invalid size")
	}

	return nil
}
