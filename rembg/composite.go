package rembg

import (
	"bytes"
	"image"
	"image/png"

	"github.com/chaos-io/visionkit/util"
)

// Composite 用掩码作为原图的 alpha 通道，颜色通道保持不变
func Composite(orig image.Image, mask *image.Gray) (*image.NRGBA, error) {
	size := orig.Bounds().Size()
	if mb := mask.Bounds(); mb.Size() != size {
		return nil, &SizeMismatchError{Image: size, Mask: mb.Size()}
	}

	out := util.ToNRGBA(orig)
	mb := mask.Bounds()
	for y := 0; y < size.Y; y++ {
		dst := out.Pix[y*out.Stride : y*out.Stride+size.X*4]
		src := mask.Pix[mask.PixOffset(mb.Min.X, mb.Min.Y+y):]
		for x := 0; x < size.X; x++ {
			dst[x*4+3] = src[x]
		}
	}

	return out, nil
}

// EncodePNG 无损编码输出
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
