package inference

import (
	"image"

	"golang.org/x/image/draw"
)

const DefaultInputSize = 1024

var (
	DefaultMean = [3]float32{0.485, 0.456, 0.406}
	DefaultStd  = [3]float32{0.229, 0.224, 0.225}
)

// ToTensor 缩放到 size x size 并按通道归一化，输出 [1,3,size,size]
func ToTensor(img image.Image, size int, mean, std [3]float32) *Tensor {
	scaled := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	plane := size * size
	data := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		row := y * scaled.Stride
		for x := 0; x < size; x++ {
			px := scaled.Pix[row+x*4 : row+x*4+3]
			for c := 0; c < 3; c++ {
				data[c*plane+y*size+x] = (float32(px[c])/255 - mean[c]) / std[c]
			}
		}
	}

	return NewTensor([]int{1, 3, size, size}, data)
}
