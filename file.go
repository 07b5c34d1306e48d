package plt

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/plt/format"
	"github.com/bodgit/plt/layer"
	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/bmp" // register BMP decoder
	"golang.org/x/image/tiff"
)

// Extensions tried, in order, when looking for layer images
var layerExtensions = []string{".png", ".tiff", ".tif", ".bmp", ".jpg", ".jpeg", ".gif"}

var errNoLayers = errors.New("plt: no layer images found")

func extension(imageFormat string) (string, error) {
	switch strings.ToLower(imageFormat) {
	case "", PNG:
		return ".png", nil
	case TIFF, "tif":
		return ".tiff", nil
	default:
		return "", fmt.Errorf("plt: unsupported image format %q", imageFormat)
	}
}

func layerFilename(base, name, ext string) string {
	return fmt.Sprintf("%s_%s%s", base, strings.ToLower(name), ext)
}

func baseName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}

func encodePlane(p *layer.Plane, ext string) ([]byte, error) {
	b := new(bytes.Buffer)
	m := p.NRGBA()

	var err error
	switch ext {
	case ".tiff":
		err = tiff.Encode(b, m, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = png.Encode(b, m)
	}
	if err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func readLayer(file string) (*layer.Buffer, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	b, err := layer.FromImage(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	return b, nil
}

func readTexture(file string) (*format.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := format.DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	return m, nil
}

// createTemp writes b to a hidden temporary file in the same directory as
// file, so it can later be renamed into place.
func createTemp(file string, b []byte) (name string, err error) {
	f, err := os.CreateTemp(filepath.Dir(file), "."+filepath.Base(file)+".*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(b); err != nil {
		return "", err
	}
	if err = f.Sync(); err != nil {
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	if err = os.Chmod(f.Name(), 0644); err != nil {
		return "", err
	}

	return f.Name(), nil
}

// writeFile writes b to a temporary file and only renames it into place
// once everything has been written, so a failure never leaves a partial
// file behind.
func (p *PLT) writeFile(file string, b []byte) error {
	return p.writeFiles(map[string][]byte{file: b}, []string{file})
}

type staged struct {
	file    string
	temp    string
	backup  string
	renamed bool
}

// writeFiles writes every file or none of them. Everything is written to
// temporary files first. Files being replaced are moved aside and put back
// if anything fails while renaming.
func (p *PLT) writeFiles(files map[string][]byte, order []string) (err error) {
	var stage []*staged
	defer func() {
		if err == nil {
			return
		}
		for i := len(stage) - 1; i >= 0; i-- {
			s := stage[i]
			if s.renamed {
				os.Remove(s.file)
			} else {
				os.Remove(s.temp)
			}
			if s.backup != "" {
				os.Rename(s.backup, s.file)
			}
		}
	}()

	for _, file := range order {
		temp, err := createTemp(file, files[file])
		if err != nil {
			return err
		}
		stage = append(stage, &staged{file: file, temp: temp})
	}

	for _, s := range stage {
		ok, err := exists(s.file)
		if err != nil {
			return err
		}
		if ok {
			s.backup = s.temp + ".bak"
			if err := os.Rename(s.file, s.backup); err != nil {
				s.backup = ""
				return err
			}
		}
		if err := os.Rename(s.temp, s.file); err != nil {
			return err
		}
		s.renamed = true
	}

	for _, s := range stage {
		if s.backup != "" {
			os.Remove(s.backup)
		}
		p.logger.Printf("Wrote \"%s\" (%s)\n", s.file, humanize.Bytes(uint64(len(files[s.file]))))
	}

	return nil
}

func exists(file string) (bool, error) {
	_, err := os.Stat(file)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, err
	}
}
