package rembg

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/visionkit/inference"
)

func TestRemoveBatch_IsolatesFailures(t *testing.T) {
	t.Parallel()

	sizes := []image.Point{{10, 20}, {30, 5}, {0, 0}, {8, 8}, {1, 1}}
	images := make([][]byte, len(sizes))
	for i, size := range sizes {
		if size.X == 0 {
			images[i] = []byte("not an image")
			continue
		}
		images[i] = encodeTestPNG(t, solidImage(size.X, size.Y, color.NRGBA{B: 200, A: 255}))
	}

	for _, workers := range []int{1, 3, 16} {
		results := NewRemover(constSegmenter(8, 30), WithWorkers(workers)).RemoveBatch(context.Background(), images)
		require.Len(t, results, len(images))

		for i, res := range results {
			assert.Equal(t, i, res.Index)
			assert.NotEmpty(t, res.ID)
			if i == 2 {
				assert.False(t, res.Success)
				assert.Contains(t, res.Error, "invalid image data")
				assert.Nil(t, res.Image)
				continue
			}

			require.True(t, res.Success, "item %d: %s", i, res.Error)
			assert.Empty(t, res.Error)
			assert.Equal(t, "png", res.Format)
			decoded, err := png.Decode(bytes.NewReader(res.Image))
			require.NoError(t, err)
			assert.Equal(t, sizes[i], decoded.Bounds().Size())
		}
	}
}

func TestRemoveBatch_RecoversFromPanics(t *testing.T) {
	t.Parallel()

	calls := 0
	seg := &stubSegmenter{
		size: 4,
		segment: func(input *inference.Tensor) (inference.Output, error) {
			calls++
			if calls == 2 {
				panic("index out of range in model wrapper")
			}
			return inference.Single(uniformMask(4, 30)), nil
		},
	}

	img := encodeTestPNG(t, solidImage(3, 3, color.White))
	results := NewRemover(seg, WithWorkers(1)).RemoveBatch(context.Background(), [][]byte{img, img, img})
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "panic")
	assert.True(t, results[2].Success)
}

func TestRemoveBatch_Empty(t *testing.T) {
	t.Parallel()

	results := NewRemover(constSegmenter(4, 0)).RemoveBatch(context.Background(), nil)
	assert.Empty(t, results)
}

func TestRemoveBatch_SerializedModel(t *testing.T) {
	t.Parallel()

	seg := inference.Serialize(constSegmenter(4, 30), 1)
	img := encodeTestPNG(t, solidImage(6, 2, color.White))
	images := [][]byte{img, img, img, img, img, img}

	results := NewRemover(seg, WithWorkers(4)).RemoveBatch(context.Background(), images)
	require.Len(t, results, len(images))
	for i, res := range results {
		assert.Equal(t, i, res.Index)
		assert.True(t, res.Success)
	}
}
