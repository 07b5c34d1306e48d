package plt

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bodgit/plt/layer"
	"github.com/bodgit/plt/manifest"
	"github.com/remeh/sizedwaitgroup"
)

// Unpack decodes the PLT file and writes one image per material layer into
// dir, named after the file and the layer, along with a manifest recording
// the layer order. Nothing is written unless the whole file decodes.
func (p *PLT) Unpack(file, dir, imageFormat string) error {
	ext, err := extension(imageFormat)
	if err != nil {
		return err
	}

	m, err := readTexture(file)
	if err != nil {
		return err
	}

	planes, err := layer.Split(m, layer.WithProgress(func(done, total int) {
		p.logger.Printf("Split %d/%d layers of \"%s\"\n", done, total, file)
	}))
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	base := baseName(file)
	mf := manifest.New(m.Width, m.Height)
	files := make(map[string][]byte)

	var order []string
	for _, l := range layer.Stack(planes) {
		plane := l.Drawable.(*layer.Plane)
		name := layerFilename(base, l.Name, ext)

		b, err := encodePlane(plane, ext)
		if err != nil {
			return err
		}

		path := filepath.Join(dir, name)
		files[path] = b
		order = append(order, path)

		if err := mf.Add(l.Name, name, l.Visible); err != nil {
			return err
		}
	}

	b, err := mf.MarshalText()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, base+manifest.Extension)
	files[path] = b
	order = append(order, path)

	return p.writeFiles(files, order)
}

// UnpackAll unpacks each file into dir using at most workers files at a
// time. The first error encountered is returned once every file has been
// attempted.
func (p *PLT) UnpackAll(files []string, dir, imageFormat string, workers int) error {
	if workers < 1 {
		workers = 1
	}

	var (
		mu       sync.Mutex
		firstErr error
	)

	swg := sizedwaitgroup.New(workers)
	for _, file := range files {
		swg.Add()
		go func(file string) {
			defer swg.Done()
			if err := p.Unpack(file, dir, imageFormat); err != nil {
				p.logger.Printf("Unable to unpack \"%s\": %s\n", file, err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(file)
	}
	swg.Wait()

	return firstErr
}
