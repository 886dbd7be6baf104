package rembg

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/chaos-io/visionkit/inference"
	"github.com/chaos-io/visionkit/util"
)

const defaultWorkers = 4

type Option func(*Remover)

// WithWorkers 批处理时并发处理的图片数
func WithWorkers(n int) Option {
	return func(r *Remover) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithNormalization(mean, std [3]float32) Option {
	return func(r *Remover) {
		r.mean = mean
		r.std = std
	}
}

// Remover 背景去除流水线: letterbox -> 推理 -> 选择掩码 -> 还原 -> 合成 alpha
//
// seg 在所有请求间共享；不可重入的模型应先用 inference.Serialize 包一层。
type Remover struct {
	seg     inference.Segmenter
	mean    [3]float32
	std     [3]float32
	workers int
}

func NewRemover(seg inference.Segmenter, opts ...Option) *Remover {
	r := &Remover{
		seg:     seg,
		mean:    inference.DefaultMean,
		std:     inference.DefaultStd,
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type Result struct {
	Image    *image.NRGBA
	PNG      []byte
	Format   string
	Geometry Geometry
}

// Remove 处理单张图片字节，错误原样向上返回(可用 errors.As 判断类型)
func (r *Remover) Remove(ctx context.Context, data []byte) (*Result, error) {
	img, format, err := util.DecodeImage(data)
	if err != nil {
		return nil, err
	}

	out, g, err := r.RemoveImage(ctx, img)
	if err != nil {
		return nil, err
	}

	encoded, err := EncodePNG(out)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return &Result{Image: out, PNG: encoded, Format: format, Geometry: g}, nil
}

// RemoveImage 对已解码的图片执行完整流水线
func (r *Remover) RemoveImage(ctx context.Context, img image.Image) (*image.NRGBA, Geometry, error) {
	src := util.DropAlpha(img)
	square, g := Letterbox(src)

	input := inference.ToTensor(square, r.seg.InputSize(), r.mean, r.std)
	raw, err := r.seg.Segment(ctx, input)
	if err != nil {
		return nil, g, fmt.Errorf("segment: %w", err)
	}

	prob, err := SelectMask(raw)
	if err != nil {
		return nil, g, err
	}

	mask, err := DecodeMask(prob, g)
	if err != nil {
		return nil, g, err
	}

	out, err := Composite(src, mask)
	if err != nil {
		return nil, g, err
	}

	util.Logger.Debug("background removed",
		zap.Int("width", g.OriginalWidth),
		zap.Int("height", g.OriginalHeight),
		zap.Int("padded_size", g.PaddedSize),
		zap.Int("mask_width", prob.Width),
		zap.Int("mask_height", prob.Height))

	return out, g, nil
}
