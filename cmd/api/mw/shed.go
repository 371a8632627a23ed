package mw

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/shirou/gopsutil/cpu"

	"streamhub.com/cmd/api/handlers"
	"streamhub.com/pkg/errno"
)

// CPUShedder 后台采样 CPU 使用率，超过阈值时拒绝新请求
type CPUShedder struct {
	threshold float64
	load      atomic.Uint64
	sample    func(ctx context.Context, interval time.Duration) (float64, error)
}

func NewCPUShedder(threshold float64) *CPUShedder {
	return &CPUShedder{threshold: threshold, sample: sampleCPU}
}

func sampleCPU(ctx context.Context, interval time.Duration) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil || len(percents) == 0 {
		return 0, err
	}
	return percents[0], nil
}

// Run 阻塞到 ctx 结束
func (s *CPUShedder) Run(ctx context.Context, interval time.Duration) {
	for ctx.Err() == nil {
		v, err := s.sample(ctx, interval)
		if err != nil {
			if ctx.Err() == nil {
				hlog.Warnf("sample cpu failed: %v", err)
				time.Sleep(interval)
			}
			continue
		}
		s.store(v)
	}
}

func (s *CPUShedder) store(v float64) {
	s.load.Store(math.Float64bits(v))
}

func (s *CPUShedder) Load() float64 {
	return math.Float64frombits(s.load.Load())
}

func (s *CPUShedder) Middleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if s.threshold > 0 && s.Load() >= s.threshold {
			handlers.SendResponse(c, errno.UnavailableErr.WithMessage("server overloaded"), nil)
			c.Abort()
			return
		}
		c.Next(ctx)
	}
}
