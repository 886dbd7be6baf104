package rembg

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposite_AlphaFollowsMask(t *testing.T) {
	t.Parallel()

	orig := solidImage(6, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	tests := []struct {
		name  string
		value uint8
	}{
		{name: "全不透明", value: 255},
		{name: "全透明", value: 0},
		{name: "半透明", value: 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := Composite(orig, uniformGray(6, 4, tt.value))
			require.NoError(t, err)
			require.Equal(t, image.Rect(0, 0, 6, 4), out.Bounds())
			for y := 0; y < 4; y++ {
				for x := 0; x < 6; x++ {
					assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: tt.value}, out.NRGBAAt(x, y))
				}
			}
		})
	}

	// 原图不被修改
	assert.Equal(t, uint8(255), orig.NRGBAAt(0, 0).A)
}

func TestComposite_PerPixel(t *testing.T) {
	t.Parallel()

	orig := solidImage(3, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(mask.Pix, []uint8{0, 50, 100, 150, 200, 250})

	out, err := Composite(orig, mask)
	require.NoError(t, err)
	assert.Equal(t, uint8(50), out.NRGBAAt(1, 0).A)
	assert.Equal(t, uint8(150), out.NRGBAAt(0, 1).A)
	assert.Equal(t, uint8(250), out.NRGBAAt(2, 1).A)
}

func TestComposite_MaskWithOffsetBounds(t *testing.T) {
	t.Parallel()

	big := uniformGray(10, 10, 0)
	big.SetGray(3, 4, color.Gray{Y: 99})
	mask := big.SubImage(image.Rect(3, 4, 5, 6)).(*image.Gray)

	out, err := Composite(solidImage(2, 2, color.White), mask)
	require.NoError(t, err)
	assert.Equal(t, uint8(99), out.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(0), out.NRGBAAt(1, 1).A)
}

func TestComposite_SizeMismatch(t *testing.T) {
	t.Parallel()

	_, err := Composite(solidImage(4, 4, color.White), uniformGray(4, 3, 255))
	var mismatch *SizeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, image.Pt(4, 4), mismatch.Image)
	assert.Equal(t, image.Pt(4, 3), mismatch.Mask)
}

func TestEncodePNG_Lossless(t *testing.T) {
	t.Parallel()

	out, err := Composite(solidImage(3, 3, color.NRGBA{R: 7, G: 8, B: 9, A: 255}), uniformGray(3, 3, 77))
	require.NoError(t, err)

	data, err := EncodePNG(out)
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	nrgba, ok := decoded.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 7, G: 8, B: 9, A: 77}, nrgba.NRGBAAt(1, 1))
}
