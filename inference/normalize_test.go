package inference

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTensor(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 0, B: 51, A: 255})
		}
	}

	tensor := ToTensor(img, 4, [3]float32{0, 0, 0}, [3]float32{1, 1, 1})
	require.NoError(t, tensor.Validate())
	assert.Equal(t, []int{1, 3, 4, 4}, tensor.Shape)

	plane := 16
	for i := 0; i < plane; i++ {
		assert.InDelta(t, 1.0, tensor.Data[i], 1e-6)
		assert.InDelta(t, 0.0, tensor.Data[plane+i], 1e-6)
		assert.InDelta(t, 0.2, tensor.Data[2*plane+i], 1e-6)
	}
}

func TestToTensor_ImageNetNormalization(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	tensor := ToTensor(img, 2, DefaultMean, DefaultStd)

	// 全黑像素: (0 - mean) / std
	assert.InDelta(t, -0.485/0.229, tensor.Data[0], 1e-5)
	assert.InDelta(t, -0.456/0.224, tensor.Data[4], 1e-5)
	assert.InDelta(t, -0.406/0.225, tensor.Data[8], 1e-5)
}
