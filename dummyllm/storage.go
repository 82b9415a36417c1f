package dummyllm

import "context"

// Store 任务记录存储接口（可由宿主实现或使用内置实现）。
// Transition 是"首个终态转移获胜"规则的唯一落点：对已终态记录的任何
// 变更尝试都返回 ErrAlreadyTerminal 且不产生副作用。
type Store interface {
	// Create 插入 queued 状态的新记录；ID 已存在返回 ErrDuplicateID。
	Create(ctx context.Context, rec *JobRecord) error
	// Get 按 ID 读取记录副本；不存在返回 ErrNotFound。
	Get(ctx context.Context, id string) (*JobRecord, error)
	// Transition 原子地校验记录未终态、应用 mutate 并提交（刷新 UpdatedAt）；
	// 已终态返回 ErrAlreadyTerminal 并保持记录不变。
	Transition(ctx context.Context, id string, mutate func(*JobRecord)) (*JobRecord, error)
	// RequestCancel 置位取消标记；记录已终态返回 ErrAlreadyTerminal。
	// 在途任务上重复置位是幂等的。
	RequestCancel(ctx context.Context, id string) (*JobRecord, error)
	// Counts 各状态的记录数直方图。
	Counts(ctx context.Context) (map[State]int, error)
}
