package layer

import (
	"fmt"

	"github.com/bodgit/plt/format"
)

// Option configures Split and Merge.
type Option func(*options)

type options struct {
	progress func(done, total int)
}

// WithProgress registers fn to be called as each layer is processed. done
// increases monotonically from 0 up to total.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) {
		o.progress = fn
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		progress: func(int, int) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Split returns one plane per material layer in tag order. Each plane holds
// the value of every pixel tagged with its layer at full alpha and is fully
// transparent everywhere else, so at most one plane covers any pixel. A
// pixel tagged with an unknown layer fails the whole split.
func Split(m *format.Image, opts ...Option) ([]*Plane, error) {
	o := newOptions(opts)

	for i, px := range m.Pix {
		if int(px.Layer) >= Count {
			return nil, fmt.Errorf("%w: %d at (%d, %d)", format.ErrLayerIndexOutOfRange, px.Layer, i%m.Width, i/m.Width)
		}
	}

	planes := make([]*Plane, Count)
	o.progress(0, Count)
	for i := range planes {
		p := NewPlane(names[i], m.Width, m.Height)
		for j, px := range m.Pix {
			if int(px.Layer) == i {
				p.Pix[j*2] = px.Value
				p.Pix[j*2+1] = 0xff
			}
		}
		planes[i] = p
		o.progress(i+1, Count)
	}

	return planes, nil
}

// Stack orders planes as a host layer stack, top-most first, so that layers
// earlier in the table end up below later ones. Every layer is visible.
func Stack(planes []*Plane) []Layer {
	stack := make([]Layer, len(planes))
	for i, p := range planes {
		stack[len(planes)-1-i] = Layer{
			Name:     p.Name,
			Visible:  true,
			Drawable: p,
		}
	}
	return stack
}
