package inference

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSegmenter struct {
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (s *countingSegmenter) Segment(ctx context.Context, input *Tensor) (Output, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return Single(input), nil
}

func (s *countingSegmenter) InputSize() int { return 4 }

func TestSerialize(t *testing.T) {
	t.Parallel()

	inner := &countingSegmenter{}
	seg := Serialize(inner, 1)
	assert.Equal(t, 4, seg.InputSize())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := seg.Segment(context.Background(), NewTensor([]int{1}, []float32{1}))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), inner.maxSeen.Load())
}

func TestSerialize_CanceledContext(t *testing.T) {
	t.Parallel()

	seg := Serialize(&countingSegmenter{}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 取消的 context 可能在获取信号量前或后被观察到，只要求不会死锁
	_, err := seg.Segment(ctx, NewTensor([]int{1}, []float32{1}))
	if err != nil {
		require.ErrorIs(t, err, context.Canceled)
	}
}
