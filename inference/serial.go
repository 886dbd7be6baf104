package inference

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

type serialSegmenter struct {
	Segmenter
	sem *semaphore.Weighted
}

// Serialize 限制同时进行的推理调用数，n <= 0 时按 1 处理
func Serialize(seg Segmenter, n int64) Segmenter {
	if n <= 0 {
		n = 1
	}
	return &serialSegmenter{
		Segmenter: seg,
		sem:       semaphore.NewWeighted(n),
	}
}

func (s *serialSegmenter) Segment(ctx context.Context, input *Tensor) (Output, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return Output{}, fmt.Errorf("acquire inference slot: %w", err)
	}
	defer s.sem.Release(1)

	return s.Segmenter.Segment(ctx, input)
}
