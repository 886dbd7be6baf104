package rembg

import (
	"context"
	"fmt"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chaos-io/visionkit/util"
)

// ItemResult 批处理中单张图片的结果，Index 与输入位置一致
type ItemResult struct {
	Index   int
	ID      string
	Success bool
	Image   []byte
	Format  string
	Error   string
}

// RemoveBatch 逐张处理，单张失败只记录在对应结果里，不影响其他图片
// 返回结果与输入等长且按下标升序。
func (r *Remover) RemoveBatch(ctx context.Context, images [][]byte) []ItemResult {
	defer util.Trace("remove background batch")()

	results := make([]ItemResult, len(images))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, data := range images {
		g.Go(func() error {
			results[i] = r.removeItem(ctx, i, data)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Remover) removeItem(ctx context.Context, index int, data []byte) (res ItemResult) {
	res = ItemResult{Index: index, ID: ksuid.New().String()}

	defer func() {
		if p := recover(); p != nil {
			res.Success = false
			res.Image = nil
			res.Error = fmt.Sprintf("panic: %v", p)
			util.Logger.Error("failed to process image",
				zap.Int("index", index), zap.String("id", res.ID), zap.Any("panic", p))
		}
	}()

	out, err := r.Remove(ctx, data)
	if err != nil {
		res.Error = err.Error()
		util.Logger.Warn("failed to process image",
			zap.Int("index", index), zap.String("id", res.ID), zap.Error(err))
		return res
	}

	res.Success = true
	res.Image = out.PNG
	res.Format = out.Format
	return res
}
