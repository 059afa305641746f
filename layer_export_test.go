package psd

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layervault/itsypsd/internal/psdtest"
)

func TestLayerToImage(t *testing.T) {
	d := psdtest.New(2, 2)
	d.Layers = []psdtest.Layer{
		psdtest.Pixel("Matte", 0, 1, 1, 2, map[int16][]byte{
			psdtest.Transparency: {128},
			psdtest.Red:          {200},
			psdtest.Green:        {100},
			psdtest.Blue:         {50},
		}),
	}

	doc, err := Decode(d.Bytes())
	require.NoError(t, err)
	require.Len(t, doc.Layers, 1)

	img := doc.Layers[0].ToImage()
	require.NotNil(t, img)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 128}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(1, 1))
}

func TestLayerToImageOpaque(t *testing.T) {
	d := psdtest.New(1, 1)
	d.Layers = []psdtest.Layer{
		psdtest.Pixel("Flat", 0, 0, 1, 1, map[int16][]byte{psdtest.Red: {9}}),
	}

	doc, err := Decode(d.Bytes())
	require.NoError(t, err)

	img := doc.Layers[0].ToImage()
	assert.Equal(t, color.NRGBA{R: 9, A: 255}, img.NRGBAAt(0, 0))
}

func TestLayerToImageOpaqueOnlyInsideBox(t *testing.T) {
	// The box hangs one row above the canvas and covers only column 1.
	d := psdtest.New(3, 2)
	d.Layers = []psdtest.Layer{
		psdtest.Pixel("Flat", 0xFFFFFFFF, 1, 1, 2, map[int16][]byte{psdtest.Green: {4, 5}}),
	}

	doc, err := Decode(d.Bytes())
	require.NoError(t, err)

	img := doc.Layers[0].ToImage()
	assert.Equal(t, color.NRGBA{G: 4, A: 255}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(2, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(1, 1))
}

func TestLayerAtOutside(t *testing.T) {
	l := Layer{Width: 1, Height: 1, Pixels: []uint32{7}}
	assert.Equal(t, uint32(7), l.At(0, 0))
	assert.Zero(t, l.At(-1, 0))
	assert.Zero(t, l.At(1, 0))
	assert.Zero(t, l.At(0, 1))
}
