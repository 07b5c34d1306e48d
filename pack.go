package plt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/plt/format"
	"github.com/bodgit/plt/layer"
	"github.com/bodgit/plt/manifest"
)

func readManifest(dir, base string) (*manifest.Manifest, error) {
	path := filepath.Join(dir, base+manifest.Extension)

	ok, err := exists(path)
	if err != nil || !ok {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m := new(manifest.Manifest)
	if err := m.UnmarshalText(b); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return m, nil
}

// findLayer returns the name of an existing "<base>_<layer>" image in dir.
func findLayer(dir, base, name string) (string, bool, error) {
	for _, ext := range layerExtensions {
		file := layerFilename(base, name, ext)
		ok, err := exists(filepath.Join(dir, file))
		if err != nil || ok {
			return file, ok, err
		}
	}
	return "", false, nil
}

// discover builds a manifest from whichever "<base>_<layer>" images exist
// in dir, in the same order Unpack writes them.
func discover(dir, base string) (*manifest.Manifest, error) {
	mf := new(manifest.Manifest)
	names := layer.Names()
	for i := len(names) - 1; i >= 0; i-- {
		file, ok, err := findLayer(dir, base, names[i])
		if err != nil {
			return nil, err
		}
		if ok {
			if err := mf.Add(names[i], file, true); err != nil {
				return nil, err
			}
		}
	}
	return mf, nil
}

func isHidden(name string, hidden []string) bool {
	for _, h := range hidden {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}

// Pack reads the layer images for the texture named base in dir and
// merges them into a single PLT file. The manifest written by Unpack is used
// for the layer order and visibility if it exists, otherwise any images
// following the same naming scheme are used. Layers named in hidden are
// treated as not visible.
func (p *PLT) Pack(dir, base, file string, hidden ...string) error {
	mf, err := readManifest(dir, base)
	if err != nil {
		return err
	}
	if mf == nil {
		p.logger.Printf("No manifest for \"%s\", looking for layer images\n", base)
		if mf, err = discover(dir, base); err != nil {
			return err
		}
	}
	if mf.Length() == 0 {
		return fmt.Errorf("%w: %s", errNoLayers, filepath.Join(dir, base))
	}

	stack := make([]layer.Layer, 0, mf.Length())
	for _, e := range mf.Entries {
		b, err := readLayer(filepath.Join(dir, e.File))
		if err != nil {
			return err
		}
		stack = append(stack, layer.Layer{
			Name:     e.Name,
			Visible:  e.Visible && !isHidden(e.Name, hidden),
			Drawable: b,
		})
	}

	width, height := mf.Width, mf.Height
	if width == 0 || height == 0 {
		r := stack[0].Drawable.Bounds()
		width, height = r.Dx(), r.Dy()
	}

	m, err := layer.Merge(stack, width, height, layer.WithProgress(func(done, total int) {
		p.logger.Printf("Merged %d/%d layers into \"%s\"\n", done, total, file)
	}))
	if err != nil {
		return err
	}

	b := new(bytes.Buffer)
	if err := format.Encode(b, m); err != nil {
		return err
	}

	return p.writeFile(file, b.Bytes())
}

// Init makes sure every material layer image exists for the texture named
// base in dir, creating fully transparent ones where they are missing, and
// writes an updated manifest. Existing images are left alone. The width and
// height are only used if there is no manifest.
func (p *PLT) Init(dir, base string, width, height int, imageFormat string) error {
	ext, err := extension(imageFormat)
	if err != nil {
		return err
	}

	mf, err := readManifest(dir, base)
	if err != nil {
		return err
	}
	if mf == nil {
		if mf, err = discover(dir, base); err != nil {
			return err
		}
		mf.Width, mf.Height = width, height
	}
	if mf.Width <= 0 || mf.Height <= 0 {
		return fmt.Errorf("plt: invalid size %dx%d", mf.Width, mf.Height)
	}

	// Only the names matter for working out where new layers go
	stack := make([]layer.Layer, 0, mf.Length())
	for _, e := range mf.Entries {
		stack = append(stack, layer.Layer{Name: e.Name, Visible: e.Visible})
	}

	out := manifest.New(mf.Width, mf.Height)
	files := make(map[string][]byte)

	var (
		order []string
		next  int
	)
	for _, l := range layer.Ensure(stack, mf.Width, mf.Height) {
		// Existing layers come back in their original order with no pixels
		if l.Drawable == nil {
			e := mf.Entries[next]
			next++
			if err := out.Add(e.Name, e.File, e.Visible); err != nil {
				return err
			}
			continue
		}

		// An image left out of the manifest is still never overwritten
		name, ok, err := findLayer(dir, base, l.Name)
		if err != nil {
			return err
		}
		if ok {
			if err := out.Add(l.Name, name, l.Visible); err != nil {
				return err
			}
			continue
		}

		name = layerFilename(base, l.Name, ext)
		b, err := encodePlane(l.Drawable.(*layer.Plane), ext)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, name)
		files[path] = b
		order = append(order, path)

		if err := out.Add(l.Name, name, l.Visible); err != nil {
			return err
		}
	}

	b, err := out.MarshalText()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, base+manifest.Extension)
	files[path] = b
	order = append(order, path)

	return p.writeFiles(files, order)
}
