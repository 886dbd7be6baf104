package util

import (
	"image"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// ToNRGBA 转为以 (0,0) 为原点的 NRGBA，总是返回新图像
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// DropAlpha 丢弃透明通道，所有像素置为不透明，颜色值保持不变
func DropAlpha(img image.Image) *image.NRGBA {
	dst := ToNRGBA(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// ResizeWithinMax 缩放（最长边 <= maxSize），不放大
func ResizeWithinMax(img image.Image, maxSize int) image.Image {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := max(w, h)

	if maxSize <= 0 || longest <= maxSize {
		return img
	}

	scale := float64(maxSize) / float64(longest)
	newW := max(1, int(float64(w)*scale))
	newH := max(1, int(float64(h)*scale))

	return resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3)
}
