package layer

import (
	"fmt"
	"sort"

	"github.com/bodgit/plt/format"
)

// A layer claims a pixel when its alpha is above this
const alphaCutoff = 0

type binding struct {
	index    int
	drawable Drawable
}

// resolve works out which layers take part and which tag each one writes.
// If any layer is named after a material layer, the visible ones among them
// are used, even when that leaves none. Otherwise the first Count layers are
// used in stack order regardless of name or visibility.
func resolve(stack []Layer) []binding {
	var (
		bindings []binding
		matched  bool
	)

	for _, l := range stack {
		i, ok := Index(l.Name)
		if !ok {
			continue
		}
		matched = true
		if l.Visible {
			bindings = append(bindings, binding{i, l.Drawable})
		}
	}

	if matched {
		// Stable so that with duplicate names the higher layer in the
		// stack still wins
		sort.SliceStable(bindings, func(i, j int) bool {
			return bindings[i].index < bindings[j].index
		})
		return bindings
	}

	for i, l := range stack {
		if i == Count {
			break
		}
		bindings = append(bindings, binding{i, l.Drawable})
	}

	return bindings
}

func checkDrawable(d Drawable) error {
	if d == nil {
		return fmt.Errorf("%w: no pixels", format.ErrSizeMismatch)
	}
	if d.Mode() == Indexed {
		return fmt.Errorf("%w: %s", format.ErrUnsupportedMode, Indexed)
	}
	r := d.Bounds()
	if want := r.Dx() * r.Dy() * bytesPerPixel(d); len(d.Pixels()) < want {
		return fmt.Errorf("%w: have %d bytes, want %d", format.ErrSizeMismatch, len(d.Pixels()), want)
	}
	return nil
}

// claim applies d to every pixel of m it covers, tagging each claimed pixel
// with index.
func claim(m *format.Image, d Drawable, index int) {
	var (
		r   = d.Bounds()
		n   = d.Channels()
		bpp = bytesPerPixel(d)
		pix = d.Pixels()
		a   = d.HasAlpha()
	)

	// Only the part of the layer that overlaps the canvas matters
	c := r.Intersect(m.Bounds())

	for y := c.Min.Y; y < c.Max.Y; y++ {
		for x := c.Min.X; x < c.Max.X; x++ {
			i := ((y-r.Min.Y)*r.Dx() + (x - r.Min.X)) * bpp
			if a && pix[i+n] <= alphaCutoff {
				continue
			}

			var sum int
			for _, v := range pix[i : i+n] {
				sum += int(v)
			}

			m.Pix[y*m.Width+x] = format.Pixel{
				Value: uint8(sum / n),
				Layer: uint8(index),
			}
		}
	}
}

// Merge flattens the layer stack, ordered top-most first, into a single
// tagged image of the given size. Every pixel starts as full intensity
// skin. Layers are then applied from the highest tag down to the lowest so
// where more than one layer claims a pixel, the lowest tag wins. A layer
// with alpha claims pixels where the alpha is non-zero, a layer without
// alpha claims every pixel it covers. Color pixels are reduced to the plain
// average of their channels.
func Merge(stack []Layer, width, height int, opts ...Option) (*format.Image, error) {
	o := newOptions(opts)

	if width <= 0 || height <= 0 {
		return nil, format.ErrBadDimensions
	}

	// Every layer shares the color mode of the image so check them all,
	// not just the ones being used
	for _, l := range stack {
		if err := checkDrawable(l.Drawable); err != nil {
			return nil, fmt.Errorf("layer %q: %w", l.Name, err)
		}
	}

	bindings := resolve(stack)

	m := format.NewImage(width, height)

	o.progress(0, len(bindings))
	for i := len(bindings) - 1; i >= 0; i-- {
		claim(m, bindings[i].drawable, bindings[i].index)
		o.progress(len(bindings)-i, len(bindings))
	}

	return m, nil
}
