package dummyllm

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dummyllm/dummyllm-go/mode"
)

// State 任务生命周期状态。转移只沿 queued → running → 终态 进行，
// 终态集合为 {ok, fail, timeout, cancelled}，进入终态后不再变化。
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateOK        State = "ok"
	StateFail      State = "fail"
	StateTimeout   State = "timeout"
	StateCancelled State = "cancelled"
)

// Terminal 判断是否终态。
func (s State) Terminal() bool {
	switch s {
	case StateOK, StateFail, StateTimeout, StateCancelled:
		return true
	}
	return false
}

// 模拟结果错误码。这些是模拟出来的"数据"，不是操作错误。
const (
	CodeSimFail   = "SIM_FAIL"
	CodeTimeout   = "TIMEOUT"
	CodeCancelled = "CANCELLED"
)

// 操作错误：调用方误用或良性竞态，直接向调用方返回。
var (
	ErrNotFound        = errors.New("job not found")
	ErrAlreadyTerminal = errors.New("job already terminal")
	ErrDuplicateID     = errors.New("duplicate job id")
	ErrMissingOp       = errors.New("missing op")
)

// Usage 模拟 token 统计，口径为空白切分计数。
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// JobResult 仅在终态 ok 时出现。
type JobResult struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// JobError 仅在终态 fail/timeout/cancelled 时出现。
type JobError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JobRecord 单个任务的完整记录。
// Mode 在创建时解析后不可变；Args 保留原始请求字节，echo 模式依赖其键序；
// Result 与 Error 互斥，且只在进入终态的那一次转移中被写入。
type JobRecord struct {
	ID        string
	State     State
	Mode      mode.Mode
	CreatedAt time.Time
	UpdatedAt time.Time

	Op        string
	Args      json.RawMessage
	TimeoutMS int
	TraceID   string

	CancelRequested bool
	Result          *JobResult
	Error           *JobError
}

// Clone 复制记录，供存储边界内外传递时解除共享。
func (r *JobRecord) Clone() *JobRecord {
	cp := *r
	if r.Result != nil {
		res := *r.Result
		cp.Result = &res
	}
	if r.Error != nil {
		e := *r.Error
		cp.Error = &e
	}
	if r.Args != nil {
		cp.Args = append(json.RawMessage(nil), r.Args...)
	}
	return &cp
}

// SubmitRequest 创建任务的入参，对应外层请求的标准字段。
type SubmitRequest struct {
	Op        string
	Args      json.RawMessage
	TimeoutMS int
	TraceID   string
}

// RequestView 调试视图：回显任务创建时收到的请求与解析结果，
// 用于核对模式与入参未被中途篡改。
type RequestView struct {
	Op            string          `json:"op"`
	Args          json.RawMessage `json:"args"`
	TimeoutMS     int             `json:"timeout_ms"`
	TraceID       string          `json:"trace_id,omitempty"`
	ChosenMode    mode.Mode       `json:"chosen_mode"`
	BaseLatencyMS int64           `json:"base_latency_ms"`
	RandomWeights map[string]int  `json:"random_weights,omitempty"`
	Seed          int64           `json:"seed"`
}
