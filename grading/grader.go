package grading

import (
	"context"
	"fmt"
	"image"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/chaos-io/visionkit/inference"
	"github.com/chaos-io/visionkit/util"
)

const (
	LabelGrade          = "cgc_grade"
	LabelAuthentication = "cgc_authentication"
	LabelSlab           = "cgc_slab"
	LabelIssue          = "comic_issue"
	LabelBook           = "comic_book"

	DefaultThreshold = 0.6
)

// 出现任一标签即认为是评级封装
var gradedLabels = []string{LabelGrade, LabelAuthentication, LabelSlab}

// 需要 OCR 的区域
var textLabels = []string{LabelGrade, LabelIssue}

type Report struct {
	Graded     bool                  `json:"graded"`
	Detections []inference.Detection `json:"detections"`
	Fields     map[string]string     `json:"fields"`
}

// Grader 识别 CGC 评级漫画: 检测标签区域，再对评级和期号区域做 OCR
type Grader struct {
	det       inference.Detector
	ocr       inference.Recognizer
	threshold float64
}

func NewGrader(det inference.Detector, ocr inference.Recognizer, threshold float64) *Grader {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Grader{det: det, ocr: ocr, threshold: threshold}
}

func (g *Grader) Grade(ctx context.Context, data []byte) (*Report, error) {
	img, _, err := util.DecodeImage(data)
	if err != nil {
		return nil, err
	}

	dets, err := g.det.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	dets = FilterDetections(dets, g.threshold, nil)

	report := &Report{
		Graded:     IsGraded(dets, g.threshold),
		Detections: dets,
		Fields:     map[string]string{},
	}
	if !report.Graded {
		util.Logger.Info("no grading detected", zap.Int("detections", len(dets)))
		return report, nil
	}

	for _, d := range dets {
		if !slices.Contains(textLabels, d.Label) {
			continue
		}

		crop := Crop(img, d.Box)
		if crop == nil {
			continue
		}

		text, err := g.ocr.Recognize(ctx, crop)
		if err != nil {
			util.Logger.Warn("ocr failed", zap.String("label", d.Label), zap.Error(err))
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		// 同一标签有多个区域时以最后一个为准
		report.Fields[d.Label] = StructureText(d.Label, text)
	}

	return report, nil
}

// FilterDetections 保留置信度 >= threshold 的检测，targets 非空时只保留其中的标签
func FilterDetections(dets []inference.Detection, threshold float64, targets []string) []inference.Detection {
	out := make([]inference.Detection, 0, len(dets))
	for _, d := range dets {
		if d.Confidence < threshold {
			continue
		}
		if len(targets) > 0 && !slices.Contains(targets, d.Label) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// IsGraded 任一评级相关标签的置信度超过阈值
func IsGraded(dets []inference.Detection, threshold float64) bool {
	for _, d := range dets {
		if slices.Contains(gradedLabels, d.Label) && d.Confidence > threshold {
			return true
		}
	}
	return false
}

// Crop 按检测框裁剪，坐标截断到图像范围内，空区域返回 nil
func Crop(img image.Image, box [4]float64) image.Image {
	b := img.Bounds()
	rect := image.Rect(
		b.Min.X+int(math.Floor(box[0])), b.Min.Y+int(math.Floor(box[1])),
		b.Min.X+int(math.Floor(box[2])), b.Min.Y+int(math.Floor(box[3])),
	).Intersect(b)
	if rect.Empty() {
		return nil
	}

	full := util.ToNRGBA(img)
	return full.SubImage(rect.Sub(b.Min))
}

// StructureText 以第一个空行分隔主要信息和补充信息
// 评级只保留主要信息，其余标签输出 "主要|补充"
func StructureText(label, text string) string {
	primary, secondary, _ := strings.Cut(text, "\n\n")
	primary = strings.TrimSpace(primary)
	secondary = strings.TrimSpace(secondary)

	if label == LabelGrade || secondary == "" {
		return primary
	}
	return primary + "|" + secondary
}
