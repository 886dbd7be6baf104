package health

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/chaos-io/visionkit/util"
)

const (
	DefaultSchedule = "@every 30s"
	probeTimeout    = 10 * time.Second
)

type Prober interface {
	Probe(ctx context.Context) error
}

type Status struct {
	Healthy   bool      `json:"healthy"`
	CheckedAt time.Time `json:"checked_at"`
	Error     string    `json:"error,omitempty"`
}

// Monitor 定时探测推理服务并记录最近一次结果
type Monitor struct {
	prober Prober
	cron   *cron.Cron

	mu     sync.RWMutex
	status Status
}

func NewMonitor(prober Prober, schedule string) (*Monitor, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	m := &Monitor{prober: prober, cron: cron.New()}
	if _, err := m.cron.AddFunc(schedule, func() { m.Check(context.Background()) }); err != nil {
		return nil, err
	}
	return m, nil
}

// Start 立即探测一次，之后按计划执行
func (m *Monitor) Start() {
	m.Check(context.Background())
	m.cron.Start()
}

func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
}

func (m *Monitor) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := Status{Healthy: true, CheckedAt: time.Now()}
	if err := m.prober.Probe(ctx); err != nil {
		status.Healthy = false
		status.Error = err.Error()
		util.Logger.Warn("inference service unhealthy", zap.Error(err))
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

// Status 返回最近一次探测结果，尚未探测时 CheckedAt 为零值
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}
