package layer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/bodgit/plt/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	assert.Equal(t, 10, Count)
	assert.Equal(t, []string{"skin", "hair", "metal1", "metal2", "cloth1", "cloth2", "leather1", "leather2", "tattoo1", "tattoo2"}, Names())
	assert.Equal(t, "skin", Name(0))
	assert.Equal(t, "tattoo2", Name(9))
	assert.Equal(t, "", Name(10))
	assert.Equal(t, "", Name(-1))

	tables := []struct {
		name  string
		index int
		ok    bool
	}{
		{"skin", 0, true},
		{"Metal2", 3, true},
		{"TATTOO1", 8, true},
		{"background", 0, false},
		{"skin ", 0, false},
	}

	for _, table := range tables {
		i, ok := Index(table.name)
		assert.Equal(t, table.ok, ok, table.name)
		assert.Equal(t, table.index, i, table.name)
	}

	// Modifying the returned slice doesn't affect the table
	n := Names()
	n[0] = "changed"
	assert.Equal(t, "skin", Name(0))
}

func testImage(width, height int) *format.Image {
	m := &format.Image{
		Pix:    make([]format.Pixel, width*height),
		Width:  width,
		Height: height,
	}
	for i := range m.Pix {
		m.Pix[i] = format.Pixel{Value: uint8(i*13 + 1), Layer: uint8(i % Count)}
	}
	return m
}

func TestSplit(t *testing.T) {
	m := testImage(7, 5)

	planes, err := Split(m)
	require.NoError(t, err)
	require.Len(t, planes, Count)

	for i, p := range planes {
		assert.Equal(t, Name(i), p.Name)
		assert.Equal(t, 7, p.Width)
		assert.Equal(t, 5, p.Height)
	}

	for j, px := range m.Pix {
		var covered int
		for i, p := range planes {
			v, a := p.Pix[j*2], p.Pix[j*2+1]
			if i == int(px.Layer) {
				assert.Equal(t, px.Value, v)
				assert.Equal(t, uint8(0xff), a)
			} else {
				assert.Equal(t, uint8(0), v)
				assert.Equal(t, uint8(0), a)
			}
			if a != 0 {
				covered++
			}
		}
		assert.Equal(t, 1, covered)
	}
}

func TestSplitLayerOutOfRange(t *testing.T) {
	m := testImage(3, 3)
	m.Pix[4].Layer = uint8(Count)

	planes, err := Split(m)
	assert.True(t, errors.Is(err, format.ErrLayerIndexOutOfRange))
	assert.Nil(t, planes)
}

func TestSplitProgress(t *testing.T) {
	var calls [][2]int
	_, err := Split(testImage(2, 2), WithProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))
	require.NoError(t, err)

	require.Len(t, calls, Count+1)
	for i, c := range calls {
		assert.Equal(t, [2]int{i, Count}, c)
	}
}

func TestStack(t *testing.T) {
	planes, err := Split(testImage(2, 2))
	require.NoError(t, err)

	stack := Stack(planes)
	require.Len(t, stack, Count)
	assert.Equal(t, "tattoo2", stack[0].Name)
	assert.Equal(t, "skin", stack[Count-1].Name)
	for _, l := range stack {
		assert.True(t, l.Visible)
	}
}

func TestSplitMergeRoundTrip(t *testing.T) {
	m := testImage(11, 6)

	b := new(bytes.Buffer)
	require.NoError(t, format.Encode(b, m))
	orig := append([]byte(nil), b.Bytes()...)

	decoded, err := format.DecodeImage(bytes.NewReader(orig))
	require.NoError(t, err)

	planes, err := Split(decoded)
	require.NoError(t, err)

	merged, err := Merge(Stack(planes), decoded.Width, decoded.Height)
	require.NoError(t, err)

	out := new(bytes.Buffer)
	require.NoError(t, format.Encode(out, merged))
	assert.Equal(t, orig, out.Bytes())
}

func gray(name string, visible bool, r image.Rectangle, v uint8) Layer {
	b := &Buffer{
		Pix:   bytes.Repeat([]byte{v}, r.Dx()*r.Dy()),
		Rect:  r,
		Color: Gray,
	}
	return Layer{Name: name, Visible: visible, Drawable: b}
}

func grayAlpha(name string, visible bool, r image.Rectangle, v, a uint8) Layer {
	b := &Buffer{
		Pix:   bytes.Repeat([]byte{v, a}, r.Dx()*r.Dy()),
		Rect:  r,
		Color: Gray,
		Alpha: true,
	}
	return Layer{Name: name, Visible: visible, Drawable: b}
}

func TestMergeDefault(t *testing.T) {
	m, err := Merge(nil, 3, 2)
	require.NoError(t, err)
	for _, px := range m.Pix {
		assert.Equal(t, format.Pixel{Value: 255, Layer: 0}, px)
	}
}

func TestMergePriority(t *testing.T) {
	r := image.Rect(0, 0, 2, 2)

	// Stack order doesn't matter, the lowest tag wins
	for _, stack := range [][]Layer{
		{grayAlpha("tattoo1", true, r, 10, 255), grayAlpha("skin", true, r, 20, 255)},
		{grayAlpha("skin", true, r, 20, 255), grayAlpha("tattoo1", true, r, 10, 255)},
	} {
		m, err := Merge(stack, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, format.Pixel{Value: 20, Layer: 0}, m.PixelAt(0, 0))
	}
}

func TestMergeAlphaCutoff(t *testing.T) {
	r := image.Rect(0, 0, 2, 1)
	skin := &Buffer{
		Pix:   []byte{10, 0, 11, 1},
		Rect:  r,
		Color: Gray,
		Alpha: true,
	}
	hair := &Buffer{
		Pix:   []byte{30, 255, 31, 255},
		Rect:  r,
		Color: Gray,
		Alpha: true,
	}

	m, err := Merge([]Layer{
		{Name: "hair", Visible: true, Drawable: hair},
		{Name: "skin", Visible: true, Drawable: skin},
	}, 2, 1)
	require.NoError(t, err)

	// Zero alpha doesn't claim, any other alpha does
	assert.Equal(t, format.Pixel{Value: 30, Layer: 1}, m.PixelAt(0, 0))
	assert.Equal(t, format.Pixel{Value: 11, Layer: 0}, m.PixelAt(1, 0))
}

func TestMergeNoAlphaClaimsEverything(t *testing.T) {
	r := image.Rect(0, 0, 2, 2)

	m, err := Merge([]Layer{
		gray("cloth1", true, r, 77),
		grayAlpha("cloth2", true, r, 5, 255),
	}, 2, 2)
	require.NoError(t, err)

	for _, px := range m.Pix {
		assert.Equal(t, format.Pixel{Value: 77, Layer: 4}, px)
	}
}

func TestMergeHiddenLayers(t *testing.T) {
	r := image.Rect(0, 0, 1, 1)

	m, err := Merge([]Layer{
		grayAlpha("hair", true, r, 40, 255),
		grayAlpha("skin", false, r, 50, 255),
	}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, format.Pixel{Value: 40, Layer: 1}, m.PixelAt(0, 0))

	// All matching layers hidden leaves the default
	m, err = Merge([]Layer{
		grayAlpha("hair", false, r, 40, 255),
		grayAlpha("Background", true, r, 50, 255),
	}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, format.Pixel{Value: 255, Layer: 0}, m.PixelAt(0, 0))
}

func TestMergeCaseInsensitive(t *testing.T) {
	r := image.Rect(0, 0, 1, 1)

	m, err := Merge([]Layer{
		grayAlpha("Leather2", true, r, 9, 255),
		grayAlpha("Background", true, r, 50, 255),
	}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, format.Pixel{Value: 9, Layer: 7}, m.PixelAt(0, 0))
}

func TestMergeFallback(t *testing.T) {
	m, err := Merge([]Layer{
		grayAlpha("a", true, image.Rect(0, 0, 1, 1), 1, 255),
		grayAlpha("b", false, image.Rect(1, 0, 2, 1), 2, 255),
		grayAlpha("c", true, image.Rect(2, 0, 3, 1), 3, 255),
	}, 3, 1)
	require.NoError(t, err)

	assert.Equal(t, []format.Pixel{{Value: 1, Layer: 0}, {Value: 2, Layer: 1}, {Value: 3, Layer: 2}}, m.Pix)
}

func TestMergeFallbackLimit(t *testing.T) {
	r := image.Rect(0, 0, 1, 1)

	var stack []Layer
	for i := 0; i < Count+2; i++ {
		stack = append(stack, grayAlpha("unnamed", true, r, uint8(i), 0))
	}
	// Beyond the number of material layers so it's ignored
	stack[Count] = grayAlpha("unnamed", true, r, 99, 255)

	m, err := Merge(stack, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, format.Pixel{Value: 255, Layer: 0}, m.PixelAt(0, 0))
}

func TestMergeDuplicateNames(t *testing.T) {
	r := image.Rect(0, 0, 1, 1)

	m, err := Merge([]Layer{
		grayAlpha("hair", true, r, 1, 255),
		grayAlpha("hair", true, r, 2, 255),
	}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, format.Pixel{Value: 1, Layer: 1}, m.PixelAt(0, 0))
}

func TestMergeChannelMean(t *testing.T) {
	b := &Buffer{
		Pix:   []byte{10, 20, 31, 255, 255, 255, 254, 255},
		Rect:  image.Rect(0, 0, 2, 1),
		Color: RGB,
		Alpha: true,
	}

	m, err := Merge([]Layer{{Name: "metal1", Visible: true, Drawable: b}}, 2, 1)
	require.NoError(t, err)

	// (10+20+31)/3 truncates to 20, not a weighted luminance
	assert.Equal(t, format.Pixel{Value: 20, Layer: 2}, m.PixelAt(0, 0))
	assert.Equal(t, format.Pixel{Value: 254, Layer: 2}, m.PixelAt(1, 0))
}

func TestMergeOffsetLayer(t *testing.T) {
	// A layer hanging off the bottom-right of the canvas
	m, err := Merge([]Layer{
		gray("hair", true, image.Rect(1, 1, 4, 4), 3),
	}, 3, 3)
	require.NoError(t, err)

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			want := format.Pixel{Value: 255, Layer: 0}
			if x >= 1 && y >= 1 {
				want = format.Pixel{Value: 3, Layer: 1}
			}
			assert.Equal(t, want, m.PixelAt(x, y), "(%d, %d)", x, y)
		}
	}
}

func TestMergeUnsupportedMode(t *testing.T) {
	b := &Buffer{
		Pix:   []byte{0},
		Rect:  image.Rect(0, 0, 1, 1),
		Color: Indexed,
	}

	m, err := Merge([]Layer{{Name: "skin", Visible: false, Drawable: b}}, 1, 1)
	assert.True(t, errors.Is(err, format.ErrUnsupportedMode))
	assert.Nil(t, m)
}

func TestMergeShortBuffer(t *testing.T) {
	b := &Buffer{
		Pix:   []byte{0, 0, 0},
		Rect:  image.Rect(0, 0, 2, 2),
		Color: Gray,
	}

	_, err := Merge([]Layer{{Name: "skin", Visible: true, Drawable: b}}, 2, 2)
	assert.True(t, errors.Is(err, format.ErrSizeMismatch))

	_, err = Merge([]Layer{{Name: "skin", Visible: true}}, 2, 2)
	assert.True(t, errors.Is(err, format.ErrSizeMismatch))
}

func TestMergeProgress(t *testing.T) {
	r := image.Rect(0, 0, 1, 1)

	var last int
	_, err := Merge([]Layer{
		grayAlpha("hair", true, r, 1, 255),
		grayAlpha("skin", true, r, 2, 255),
		grayAlpha("metal1", true, r, 3, 255),
	}, 1, 1, WithProgress(func(done, total int) {
		assert.Equal(t, 3, total)
		assert.GreaterOrEqual(t, done, last)
		last = done
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, last)
}

func TestFromImage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 2))
	g.SetGray(1, 1, color.Gray{Y: 9})
	b, err := FromImage(g)
	require.NoError(t, err)
	assert.Equal(t, Gray, b.Mode())
	assert.False(t, b.HasAlpha())
	assert.Equal(t, 1, b.Channels())
	assert.Equal(t, []byte{0, 0, 0, 9}, b.Pixels())

	n := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	n.SetNRGBA(0, 0, color.NRGBA{1, 2, 3, 4})
	b, err = FromImage(n)
	require.NoError(t, err)
	assert.Equal(t, RGB, b.Mode())
	assert.True(t, b.HasAlpha())
	assert.Equal(t, 3, b.Channels())
	assert.Equal(t, []byte{1, 2, 3, 4}, b.Pixels())

	p := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.Black})
	_, err = FromImage(p)
	assert.True(t, errors.Is(err, format.ErrUnsupportedMode))
}

func TestFromImageSubImage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range g.Pix {
		g.Pix[i] = uint8(i)
	}
	sub := g.SubImage(image.Rect(1, 1, 3, 3))

	b, err := FromImage(sub)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(1, 1, 3, 3), b.Bounds())
	assert.Equal(t, []byte{5, 6, 9, 10}, b.Pixels())
}

func TestPlaneImage(t *testing.T) {
	p := NewPlane("skin", 2, 1)
	assert.Equal(t, 0, p.Coverage())

	p.Pix = []byte{100, 255, 50, 255}
	assert.Equal(t, 2, p.Coverage())
	assert.Equal(t, color.NRGBA{100, 100, 100, 255}, p.At(0, 0))
	assert.Equal(t, color.NRGBA{}, p.At(2, 0))
}

func TestPlaneNRGBA(t *testing.T) {
	p := &Plane{Name: "hair", Width: 2, Height: 1, Pix: []byte{7, 255, 0, 0}}

	m := p.NRGBA()
	assert.Equal(t, []byte{7, 7, 7, 255, 0, 0, 0, 0}, m.Pix)

	// Converting back gives the same plane data
	b, err := FromImage(m)
	require.NoError(t, err)
	got, err := Merge([]Layer{{Name: "hair", Visible: true, Drawable: b}}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []format.Pixel{{Value: 7, Layer: 1}, {Value: 255, Layer: 0}}, got.Pix)
}
