package rembg

import (
	"fmt"
	"image"
)

// NoMaskFoundError 模型输出中找不到可用的掩码数组，通常意味着模型版本不兼容
type NoMaskFoundError struct {
	Reason string
}

func (e *NoMaskFoundError) Error() string {
	return "no mask found in model output: " + e.Reason
}

// MaskAlignmentError 还原后的掩码尺寸与原图不一致，说明 letterbox 几何计算有误
type MaskAlignmentError struct {
	Got  image.Point
	Want image.Point
}

func (e *MaskAlignmentError) Error() string {
	return fmt.Sprintf("mask size %dx%d doesn't match original %dx%d", e.Got.X, e.Got.Y, e.Want.X, e.Want.Y)
}

// SizeMismatchError 合成时掩码与原图尺寸不一致
type SizeMismatchError struct {
	Image image.Point
	Mask  image.Point
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("mask size %dx%d doesn't match image size %dx%d", e.Mask.X, e.Mask.Y, e.Image.X, e.Image.Y)
}
