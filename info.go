package plt

import (
	"bytes"
	"fmt"
	"os"

	"github.com/bodgit/plt/format"
	"github.com/bodgit/plt/layer"
	"github.com/bodgit/plt/preview"
)

// Info describes a PLT file.
type Info struct {
	Header format.Header
	Size   int64
	// Coverage is the number of pixels tagged with each layer
	Coverage [layer.Count]int
}

// Info returns details of the PLT file.
func (p *PLT) Info(file string) (*Info, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	h, err := format.ReadHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	pix, err := format.DecodePixels(f, int(h.Width), int(h.Height))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	// Row order doesn't matter for counting
	planes, err := layer.Split(&format.Image{Pix: pix, Width: int(h.Width), Height: int(h.Height)})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	info := &Info{
		Header: h,
		Size:   fi.Size(),
	}
	for i, plane := range planes {
		info.Coverage[i] = plane.Coverage()
	}

	return info, nil
}

// Preview writes a tinted preview of the PLT file as a PNG reduced to at
// most colors colors.
func (p *PLT) Preview(file, out string, colors int) error {
	m, err := readTexture(file)
	if err != nil {
		return err
	}

	b := new(bytes.Buffer)
	if err := preview.Encode(b, m, colors); err != nil {
		return err
	}

	return p.writeFile(out, b.Bytes())
}
