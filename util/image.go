package util

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// InvalidImageError 输入字节无法解码为可用图片
type InvalidImageError struct {
	Err error
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("invalid image data: %v", e.Err)
}

func (e *InvalidImageError) Unwrap() error {
	return e.Err
}

var errEmptyImage = errors.New("image has no pixels")

// DecodeImage 解码图片字节，返回图片和格式名
// 解码失败或尺寸为 0 时返回 *InvalidImageError
func DecodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", &InvalidImageError{Err: errors.New("empty input")}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &InvalidImageError{Err: err}
	}
	if b := img.Bounds(); b.Dx() < 1 || b.Dy() < 1 {
		return nil, "", &InvalidImageError{Err: errEmptyImage}
	}

	return img, format, nil
}

// DetectFormat 探测图片格式，失败时返回 unknown
func DetectFormat(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || format == "" {
		return "unknown"
	}
	return format
}

type ImageInfo struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Mode      string `json:"mode"`
	Format    string `json:"format"`
	SizeBytes int    `json:"size_bytes"`
}

// Inspect 只读取图片头信息，不解码像素
func Inspect(data []byte) (*ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &InvalidImageError{Err: err}
	}

	return &ImageInfo{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Mode:      colorMode(cfg.ColorModel),
		Format:    format,
		SizeBytes: len(data),
	}, nil
}

func colorMode(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "P"
	}

	switch m {
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.CMYKModel:
		return "CMYK"
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model:
		return "RGBA"
	default:
		return "RGB"
	}
}
