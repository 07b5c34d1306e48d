package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/bodgit/plt/format"
	"github.com/bodgit/plt/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *format.Image {
	m := &format.Image{
		Pix:    make([]format.Pixel, 16*16),
		Width:  16,
		Height: 16,
	}
	for i := range m.Pix {
		m.Pix[i] = format.Pixel{Value: uint8(i), Layer: uint8(i % layer.Count)}
	}
	return m
}

func TestRender(t *testing.T) {
	m := &format.Image{
		Pix:    []format.Pixel{{Value: 255, Layer: 0}, {Value: 0, Layer: 4}, {Value: 128, Layer: 9}},
		Width:  3,
		Height: 1,
	}

	out, err := Render(m)
	require.NoError(t, err)

	assert.Equal(t, Tint(0), out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, out.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{scale(0xe9, 128), scale(0x1e, 128), scale(0x63, 128), 0xff}, out.RGBAAt(2, 0))

	m.Pix[1].Layer = uint8(layer.Count)
	_, err = Render(m)
	assert.Error(t, err)
}

func TestTint(t *testing.T) {
	assert.Equal(t, color.RGBA{}, Tint(-1))
	assert.Equal(t, color.RGBA{}, Tint(layer.Count))
	for i := 0; i < layer.Count; i++ {
		assert.Equal(t, uint8(0xff), Tint(i).A)
	}
}

func TestQuantize(t *testing.T) {
	out, err := Render(testImage())
	require.NoError(t, err)

	for _, colors := range []int{0, 4, 16, 1000} {
		pm := Quantize(out, colors)
		want := colors
		switch {
		case colors <= 0:
			want = DefaultColors
		case colors > maxColors:
			want = maxColors
		}
		assert.LessOrEqual(t, len(pm.Palette), want)
		assert.Equal(t, image.Rect(0, 0, 16, 16), pm.Bounds())
	}
}

func TestEncode(t *testing.T) {
	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, testImage(), 8))

	m, err := png.Decode(b)
	require.NoError(t, err)

	pm, ok := m.(*image.Paletted)
	require.True(t, ok)
	assert.LessOrEqual(t, len(pm.Palette), 8)
	assert.Equal(t, image.Rect(0, 0, 16, 16), pm.Bounds())
}
