package rembg

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Geometry 记录 letterbox 的填充信息，用于把掩码裁回原图
type Geometry struct {
	Left           int
	Top            int
	OriginalWidth  int
	OriginalHeight int
	PaddedSize     int
}

func NewGeometry(width, height int) Geometry {
	size := max(width, height)
	return Geometry{
		Left:           (size - width) / 2,
		Top:            (size - height) / 2,
		OriginalWidth:  width,
		OriginalHeight: height,
		PaddedSize:     size,
	}
}

// CropRect 原图在正方形画布中的位置
func (g Geometry) CropRect() image.Rectangle {
	return image.Rect(g.Left, g.Top, g.Left+g.OriginalWidth, g.Top+g.OriginalHeight)
}

// Letterbox 把图片居中贴到黑色正方形画布上，边长为最长边
func Letterbox(img image.Image) (*image.NRGBA, Geometry) {
	b := img.Bounds()
	g := NewGeometry(b.Dx(), b.Dy())

	canvas := image.NewNRGBA(image.Rect(0, 0, g.PaddedSize, g.PaddedSize))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(canvas, g.CropRect(), img, b.Min, draw.Src)

	return canvas, g
}
