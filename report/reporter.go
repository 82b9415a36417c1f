package report

import (
	"context"
	"sort"
	"time"

	"github.com/dummyllm/dummyllm-go/logging"
)

// Counter 仅需读取状态直方图的精简视图，避免与具体存储强耦合。
type Counter interface {
	StateCounts(ctx context.Context) (map[string]int, error)
}

// Reporter 周期性把任务状态直方图写入日志，便于长跑场景观察模拟进展。
type Reporter struct {
	src      Counter
	interval time.Duration
}

// NewReporter 构造。
func NewReporter(src Counter, every time.Duration) *Reporter {
	return &Reporter{src: src, interval: every}
}

// Start 启动后台上报协程，ctx.Done 时退出。
func (r *Reporter) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				counts, err := r.src.StateCounts(ctx)
				if err != nil {
					logging.L().Warnf(ctx, "state counts failed: %v", err)
					continue
				}
				// 固定键序输出，方便日志比对
				keys := make([]string, 0, len(counts))
				for k := range counts {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				args := make([]any, 0, len(keys)*2)
				for _, k := range keys {
					args = append(args, k, counts[k])
				}
				logging.L().Info(ctx, "job states", args...)
			}
		}
	}()
}
