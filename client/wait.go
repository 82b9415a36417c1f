package client

import (
	"context"
	"time"
)

// WaitTerminal 轮询任务直至进入终态或 ctx 结束。
// 注意：hang 模式的任务在无取消时永不终态，调用方必须用 ctx 限定等待。
func WaitTerminal(ctx context.Context, api API, base, id string, every time.Duration) (JobStatus, error) {
	if every <= 0 {
		every = 50 * time.Millisecond
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		st, err := api.GetJob(ctx, base, id)
		if err != nil {
			return JobStatus{}, err
		}
		if st.Terminal() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}
