package rng

// Source 确定性伪随机抽取源（splitmix64）。
// 功能：给定相同 seed 与相同抽取次数，跨进程产生逐位一致的序列；
// 用于模式选择与加权抽取，保证固定种子下整个模拟可复现。
// 注意：非并发安全，调用方需在创建路径上串行化（见 dummyllm.Server.Submit）。
type Source struct {
	state uint64
	seed  int64
	draws uint64
}

// New 以 seed 构造抽取源。
func New(seed int64) *Source {
	return &Source{state: uint64(seed), seed: seed}
}

// Next 产生下一个 64 位值并使计数器 +1。
// 输出仅由 (seed, 已调用次数) 决定，与时间和调度无关。
func (s *Source) Next() uint64 {
	s.draws++
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Intn 返回 [0, n) 内的一次抽取；n <= 0 时返回 0 且不消耗抽取。
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Next() % uint64(n))
}

// Seed 返回构造时的种子。
func (s *Source) Seed() int64 { return s.seed }

// Draws 返回累计抽取次数，用于校验抽取序列对齐。
func (s *Source) Draws() uint64 { return s.draws }
