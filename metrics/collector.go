package metrics

import (
	"context"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// SystemSnapshot /health 返回的宿主系统概况。
// 采集失败的单项保持零值，不影响整体返回。
type SystemSnapshot struct {
	CPULoad        float64 `json:"cpu_load"`
	CPUProcessors  int     `json:"cpu_processors"`
	DiskTotalGB    float64 `json:"disk_total_gb"`
	DiskUsedGB     float64 `json:"disk_used_gb"`
	DiskUsageRatio float64 `json:"disk_usage"`
	MemTotalGB     float64 `json:"mem_total_gb"`
	ProcUsedGB     float64 `json:"proc_used_gb"`
	ProcMemRatio   float64 `json:"proc_mem_usage"`
	Score          float64 `json:"score"`
}

// Collect 采集系统/进程指标。
func Collect(ctx context.Context) SystemSnapshot {
	var out SystemSnapshot
	if avg, err := load.AvgWithContext(ctx); err == nil {
		out.CPULoad = avg.Load1
	}
	out.CPUProcessors = runtime.NumCPU()
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil && du.Total > 0 {
		out.DiskTotalGB = float64(du.Total) / (1024 * 1024 * 1024)
		out.DiskUsedGB = float64(du.Used) / (1024 * 1024 * 1024)
		out.DiskUsageRatio = du.UsedPercent / 100.0
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm.Total > 0 {
		out.MemTotalGB = float64(vm.Total) / (1024 * 1024 * 1024)
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if pm, err := p.MemoryInfoWithContext(ctx); err == nil && pm != nil {
			usedGB := float64(pm.RSS) / (1024 * 1024 * 1024)
			out.ProcUsedGB = usedGB
			if out.MemTotalGB > 0 {
				out.ProcMemRatio = usedGB / out.MemTotalGB
			}
		}
	}
	out.Score = score(out)
	return out
}

// score 粗粒度健康评分（0~100）：负载、磁盘、内存各按固定系数扣分。
func score(s SystemSnapshot) float64 {
	v := 100.0
	if s.CPULoad > 0 {
		v -= s.CPULoad * 5
	}
	if s.DiskUsageRatio > 0 {
		v -= s.DiskUsageRatio * 20
	}
	if s.ProcMemRatio > 0 {
		v -= s.ProcMemRatio * 30
	}
	if v < 0 {
		v = 0
	}
	return v
}
