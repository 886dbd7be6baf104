package similarity

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/chaos-io/visionkit/inference"
	"github.com/chaos-io/visionkit/util"
)

// 送入向量模型前的最长边
const maxEmbedSize = 1024

var ErrNoCandidates = errors.New("comparison images must be a non-empty list")

type Score struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

type BestMatch struct {
	BestIndex *int    `json:"best_index"`
	BestScore float64 `json:"best_score"`
}

// Comparer 用图像向量的余弦相似度给候选图片排序
type Comparer struct {
	emb inference.Embedder
}

func NewComparer(emb inference.Embedder) *Comparer {
	return &Comparer{emb: emb}
}

// Compare 返回按相似度从高到低排序的结果，分数相同时保持输入顺序
func (c *Comparer) Compare(ctx context.Context, target []byte, candidates [][]byte) ([]Score, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	util.Logger.Info("comparing images", zap.Int("candidates", len(candidates)))

	images := make([]image.Image, 0, len(candidates)+1)
	for i, data := range append([][]byte{target}, candidates...) {
		img, _, err := util.DecodeImage(data)
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("target image: %w", err)
			}
			return nil, fmt.Errorf("comparison image %d: %w", i-1, err)
		}
		images = append(images, util.ResizeWithinMax(util.DropAlpha(img), maxEmbedSize))
	}

	embeddings, err := c.emb.Embed(ctx, images)
	if err != nil {
		return nil, fmt.Errorf("embed images: %w", err)
	}
	if len(embeddings) != len(images) {
		return nil, fmt.Errorf("embed images: got %d embeddings for %d images", len(embeddings), len(images))
	}

	scores := make([]Score, len(candidates))
	for i, vec := range embeddings[1:] {
		scores[i] = Score{Index: i, Score: Cosine(embeddings[0], vec)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	util.Logger.Info("comparison complete",
		zap.Int("best_index", scores[0].Index),
		zap.Float64("best_score", scores[0].Score))

	return scores, nil
}

func (c *Comparer) BestMatch(ctx context.Context, target []byte, candidates [][]byte) (*BestMatch, error) {
	scores, err := c.Compare(ctx, target, candidates)
	if err != nil {
		return nil, err
	}
	return Best(scores), nil
}

// Best 取排序结果的第一项，结果为空时 BestIndex 为 nil
func Best(scores []Score) *BestMatch {
	if len(scores) == 0 {
		return &BestMatch{}
	}
	index := scores[0].Index
	return &BestMatch{BestIndex: &index, BestScore: scores[0].Score}
}

// Cosine 余弦相似度，任一向量为零向量或长度不同时返回 0
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
