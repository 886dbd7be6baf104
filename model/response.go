package model

import (
	"github.com/chaos-io/visionkit/grading"
	"github.com/chaos-io/visionkit/similarity"
	"github.com/chaos-io/visionkit/util"
)

const (
	FormatBase64 = "base64"
	FormatBytes  = "bytes"
	FormatFile   = "file"
)

type ImageRequest struct {
	Image       ImageData `json:"image"`
	Format      string    `json:"format"`
	IncludeInfo bool      `json:"include_info"`
}

type CompareRequest struct {
	TargetImage      ImageData   `json:"target_image"`
	ComparisonImages []ImageData `json:"comparison_images"`
}

// RemoveResponse Image 为 base64 字符串或 ByteList
type RemoveResponse struct {
	Success        bool            `json:"success"`
	OriginalFormat string          `json:"original_format"`
	Format         string          `json:"format"`
	Image          any             `json:"image"`
	ImageInfo      *util.ImageInfo `json:"image_info,omitempty"`
}

type BatchItem struct {
	Index          int             `json:"index"`
	ID             string          `json:"id"`
	Success        bool            `json:"success"`
	Image          any             `json:"image,omitempty"`
	Error          string          `json:"error,omitempty"`
	OriginalFormat string          `json:"original_format,omitempty"`
	ImageInfo      *util.ImageInfo `json:"image_info,omitempty"`
}

type BatchResponse struct {
	Success        bool        `json:"success"`
	Results        []BatchItem `json:"results"`
	TotalProcessed int         `json:"total_processed"`
	Format         string      `json:"format"`
}

type CompareResponse struct {
	Success          bool               `json:"success"`
	Results          []similarity.Score `json:"results"`
	TotalComparisons int                `json:"total_comparisons"`
}

type BestMatchResponse struct {
	Success          bool                  `json:"success"`
	BestMatch        *similarity.BestMatch `json:"best_match"`
	TotalComparisons int                   `json:"total_comparisons"`
}

type ImageInfoResponse struct {
	Success   bool            `json:"success"`
	ImageInfo *util.ImageInfo `json:"image_info"`
}

type GradeResponse struct {
	Success bool            `json:"success"`
	Result  *grading.Report `json:"result"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
