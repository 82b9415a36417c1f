package mode

import "github.com/dummyllm/dummyllm-go/rng"

// Resolver 在任务创建时把全局策略解析为单个任务的具体模式。
// 抽取次数必须精确：固定模式与全零权重表不消耗抽取，flaky 消耗一次，
// random 消耗一次（若落入 flaky 桶则再消耗一次细分）；后续任务的抽取
// 结果依赖这一计数，不能多抽也不能少抽。
type Resolver struct {
	policy  Mode
	weights Weights
	src     *rng.Source
}

// NewResolver 构造解析器。
// 参数：policy 全局策略；weights 仅在 policy=random 时生效；src 共享抽取源。
func NewResolver(policy Mode, weights Weights, src *rng.Source) *Resolver {
	return &Resolver{policy: policy, weights: weights, src: src}
}

// Resolve 返回本次任务的具体模式。
func (r *Resolver) Resolve() Mode {
	switch r.policy {
	case Flaky:
		return r.flakyPick()
	case Random:
		return r.weightedPick()
	default:
		// 固定模式直接返回，不消耗抽取
		return r.policy
	}
}

// flakyPick 按 1/3-1/3-1/3 在 ok/fail/hang 中抽取一次。
func (r *Resolver) flakyPick() Mode {
	switch r.src.Intn(3) {
	case 0:
		return OK
	case 1:
		return Fail
	default:
		return Hang
	}
}

// weightedPick 标准整数加权桶选择：一次抽取落在 [0,total)，
// 按 canonical 顺序累加权重找到所属区间。
func (r *Resolver) weightedPick() Mode {
	total := r.weights.Total()
	if total <= 0 {
		// 全零权重：固定回退 ok，且不消耗抽取，保持后续任务抽取序列对齐
		return OK
	}
	n := r.src.Intn(total)
	acc := 0
	for _, m := range canonical {
		w := r.weights[m]
		if w <= 0 {
			continue
		}
		acc += w
		if n < acc {
			if m == Flaky {
				return r.flakyPick()
			}
			return m
		}
	}
	return OK
}
