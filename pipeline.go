package plt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/plt/format"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

const (
	// Anything bigger than a 4096x4096 texture plus some slack is skipped
	maxFileSize = 64 << (10 * 2)

	defaultWorkers = 10
)

var errNoDB = errors.New("plt: no catalog database")

func isHiddenFile(info os.FileInfo) bool {
	return info.Name()[0] == '.'
}

// findFiles walks base and sends every PLT file small enough to catalog to
// out, closing it when the walk finishes.
func (p *PLT) findFiles(ctx context.Context, base string, out chan<- string) error {
	defer close(out)

	return filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip dot directories and dot files, they are never textures
		if isHiddenFile(info) && file != base {
			if info.Mode().IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() || !strings.EqualFold(filepath.Ext(file), ".plt") {
			return nil
		}

		if info.Size() > maxFileSize {
			p.logger.Printf("Skipping \"%s\", too big at %s\n", file, humanize.Bytes(uint64(info.Size())))
			return nil
		}

		select {
		case out <- file:
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})
}

func (p *PLT) catalogFile(base, file string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	m, err := format.DecodeImage(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	rel, err := filepath.Rel(base, file)
	if err != nil {
		return err
	}

	id, added, err := p.db.AddTexture(filepath.ToSlash(rel), b, m)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	if added {
		p.logger.Printf("Added \"%s\" as %d, %dx%d\n", file, id, m.Width, m.Height)
	} else {
		p.logger.Printf("Already have \"%s\" as %d\n", file, id)
	}

	return nil
}

func (p *PLT) fileWorker(ctx context.Context, base string, in <-chan string) error {
	for {
		select {
		case file, ok := <-in:
			if !ok {
				return nil
			}
			if err := p.catalogFile(base, file); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Catalog walks path looking for PLT files and adds each one to the catalog
// database using workers goroutines. Paths are recorded relative to path.
func (p *PLT) Catalog(path string, workers int) error {
	if p.db == nil {
		return errNoDB
	}

	if workers < 1 {
		workers = defaultWorkers
	}

	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(context.Background())

	files := make(chan string)
	g.Go(func() error {
		return p.findFiles(ctx, dir, files)
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return p.fileWorker(ctx, dir, files)
		})
	}

	return g.Wait()
}
