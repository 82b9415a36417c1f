package mode

// Mode 任务被指派的具体模拟行为。
// ok/echo/slow 产出结果；fail/timeout 产出模拟错误；hang 永不自然结束；
// flaky 与 random 是策略值，解析后落到具体模式。
type Mode string

const (
	OK      Mode = "ok"
	Echo    Mode = "echo"
	Slow    Mode = "slow"
	Fail    Mode = "fail"
	Hang    Mode = "hang"
	Timeout Mode = "timeout"
	Flaky   Mode = "flaky"
	Random  Mode = "random"
)

// canonical 加权抽取时的固定遍历顺序，决定各模式的桶区间。
// 顺序一旦变化会改变固定种子下的抽取结果，不可调整。
var canonical = []Mode{OK, Echo, Slow, Fail, Hang, Timeout, Flaky}

// Canonical 返回加权遍历顺序的副本。
func Canonical() []Mode {
	out := make([]Mode, len(canonical))
	copy(out, canonical)
	return out
}

// Valid 判断 m 是否是可配置的全局策略值。
func Valid(m Mode) bool {
	switch m {
	case OK, Echo, Slow, Fail, Hang, Timeout, Flaky, Random:
		return true
	}
	return false
}

// Weights 模式权重表。权重为非负整数；0 或缺省表示不参与随机选择。
type Weights map[Mode]int

// Total 权重总和。
func (w Weights) Total() int {
	t := 0
	for _, m := range canonical {
		if v := w[m]; v > 0 {
			t += v
		}
	}
	return t
}

// Clone 复制权重表，用于对外暴露只读视图。
func (w Weights) Clone() Weights {
	if w == nil {
		return nil
	}
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}
