package inference

import (
	"context"
	"image"
)

// Segmenter 前景分割模型，输入为 [1,3,S,S] 的归一化张量
type Segmenter interface {
	Segment(ctx context.Context, input *Tensor) (Output, error)
	InputSize() int
}

// Embedder 图像向量模型，返回与输入一一对应的向量
type Embedder interface {
	Embed(ctx context.Context, images []image.Image) ([][]float32, error)
}

type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}

// Recognizer OCR 引擎
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Detection 检测框，Box 为 x1, y1, x2, y2 像素坐标
type Detection struct {
	Box        [4]float64 `json:"box"`
	Confidence float64    `json:"confidence"`
	Label      string     `json:"label"`
}
