package rembg

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chaos-io/visionkit/inference"
)

// stubSegmenter 按固定规则返回模型输出，用来替代真实模型
type stubSegmenter struct {
	size    int
	segment func(input *inference.Tensor) (inference.Output, error)
}

func (s *stubSegmenter) InputSize() int { return s.size }

func (s *stubSegmenter) Segment(_ context.Context, input *inference.Tensor) (inference.Output, error) {
	return s.segment(input)
}

// uniformMask 返回 [1,1,size,size] 的常量 logits
func uniformMask(size int, logit float32) *inference.Tensor {
	data := make([]float32, size*size)
	for i := range data {
		data[i] = logit
	}
	return inference.NewTensor([]int{1, 1, size, size}, data)
}

func constSegmenter(maskSize int, logit float32) *stubSegmenter {
	return &stubSegmenter{
		size: 16,
		segment: func(*inference.Tensor) (inference.Output, error) {
			return inference.Single(uniformMask(maskSize, logit)), nil
		},
	}
}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeTestPNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uniformGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}
