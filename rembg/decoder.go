package rembg

import (
	"image"
	"math"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Gray 把概率图量化为 8 位灰度图，乘 255 后截断取整
func (p *Probability) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		row := y * img.Stride
		for x := 0; x < p.Width; x++ {
			img.Pix[row+x] = toUint8(p.Values[y*p.Width+x])
		}
	}
	return img
}

func toUint8(v float32) uint8 {
	if math.IsNaN(float64(v)) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

// DecodeMask 把概率图缩放到填充后的正方形尺寸，再按 letterbox 几何裁回原图大小
func DecodeMask(p *Probability, g Geometry) (*image.Gray, error) {
	want := image.Pt(g.OriginalWidth, g.OriginalHeight)
	if g.PaddedSize < 1 {
		return nil, &MaskAlignmentError{Want: want}
	}

	resized := resize.Resize(uint(g.PaddedSize), uint(g.PaddedSize), p.Gray(), resize.Lanczos3)

	rect := g.CropRect().Intersect(resized.Bounds())
	mask := image.NewGray(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(mask, mask.Bounds(), resized, rect.Min, draw.Src)

	if got := mask.Bounds().Size(); got != want {
		return nil, &MaskAlignmentError{Got: got, Want: want}
	}
	return mask, nil
}
