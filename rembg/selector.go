package rembg

import (
	"fmt"
	"math"

	"github.com/chaos-io/visionkit/inference"
)

// Probability 单通道概率图，取值 [0,1]，按行优先存储
type Probability struct {
	Width  int
	Height int
	Values []float32
}

// SelectMask 从模型原始输出中挑出掩码并做 sigmoid
//
// 查找顺序:
//  1. 输出本身就是单个数组，直接使用
//  2. 列表中(向下一层)第一个形状为 [B,1,H,W] 的数组
//  3. 列表中(向下一层)第一个数组，不论形状
//
// 模型封装有时会在掩码之前返回中间特征图，所以形状匹配优先于位置。
func SelectMask(out inference.Output) (*Probability, error) {
	t := findTensor(out)
	if t == nil {
		return nil, &NoMaskFoundError{Reason: fmt.Sprintf("no tensor in %s output", out.Kind)}
	}
	return toProbability(t)
}

func findTensor(out inference.Output) *inference.Tensor {
	switch out.Kind {
	case inference.KindSingle:
		return out.Tensor
	case inference.KindList:
		if t := scan(out.Items, isMaskShape); t != nil {
			return t
		}
		return scan(out.Items, func(*inference.Tensor) bool { return true })
	default:
		return nil
	}
}

func scan(items []inference.Output, match func(*inference.Tensor) bool) *inference.Tensor {
	for _, item := range items {
		switch item.Kind {
		case inference.KindSingle:
			if item.Tensor != nil && match(item.Tensor) {
				return item.Tensor
			}
		case inference.KindList:
			for _, inner := range item.Items {
				if inner.Kind == inference.KindSingle && inner.Tensor != nil && match(inner.Tensor) {
					return inner.Tensor
				}
			}
		}
	}
	return nil
}

func isMaskShape(t *inference.Tensor) bool {
	return t.Rank() == 4 && t.Shape[1] == 1
}

// toProbability 去掉 batch 维，取第一个通道平面
func toProbability(t *inference.Tensor) (*Probability, error) {
	if t.Rank() < 2 {
		return nil, &NoMaskFoundError{Reason: fmt.Sprintf("tensor of shape %v has no spatial dimensions", t.Shape)}
	}
	if err := t.Validate(); err != nil {
		return nil, &NoMaskFoundError{Reason: err.Error()}
	}

	h, w := t.Shape[t.Rank()-2], t.Shape[t.Rank()-1]
	if h == 0 || w == 0 {
		return nil, &NoMaskFoundError{Reason: fmt.Sprintf("tensor of shape %v is empty", t.Shape)}
	}
	if h > len(t.Data)/w {
		return nil, &NoMaskFoundError{Reason: fmt.Sprintf("tensor of shape %v exceeds its %d values", t.Shape, len(t.Data))}
	}

	values := make([]float32, h*w)
	for i, v := range t.Data[:h*w] {
		values[i] = sigmoid(v)
	}

	return &Probability{Width: w, Height: h, Values: values}, nil
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}
