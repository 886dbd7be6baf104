package util

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNRGBA_MovesOrigin(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(10, 20, 13, 22))
	src.Set(10, 20, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	dst := ToNRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 3, 2), dst.Bounds())
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, dst.NRGBAAt(0, 0))
}

func TestDropAlpha(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 128})

	dst := DropAlpha(src)
	assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 255}, dst.NRGBAAt(0, 0))
	assert.Equal(t, uint8(255), dst.NRGBAAt(1, 0).A)
	assert.Equal(t, uint8(128), src.NRGBAAt(0, 0).A, "source must stay untouched")
}

func TestResizeWithinMax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		w, h  int
		max   int
		wantW int
		wantH int
	}{
		{name: "无需缩放", w: 100, h: 50, max: 1024, wantW: 100, wantH: 50},
		{name: "横向图片", w: 2048, h: 1024, max: 1024, wantW: 1024, wantH: 512},
		{name: "纵向图片", w: 300, h: 3000, max: 100, wantW: 10, wantH: 100},
		{name: "极窄图片不为 0", w: 1, h: 5000, max: 100, wantW: 1, wantH: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResizeWithinMax(image.NewGray(image.Rect(0, 0, tt.w, tt.h)), tt.max)
			assert.Equal(t, tt.wantW, got.Bounds().Dx())
			assert.Equal(t, tt.wantH, got.Bounds().Dy())
		})
	}
}
