package client

import (
	"encoding/json"

	"github.com/dummyllm/dummyllm-go/metrics"
)

// 线协议类型。请求只允许标准字段（op/args/timeout_ms/trace_id），
// 不允许携带任何模拟开关；行为完全由服务端配置决定。

// SubmitJobReq 创建任务请求体。
type SubmitJobReq struct {
	Op        string          `json:"op"`
	Args      json.RawMessage `json:"args,omitempty"`
	TimeoutMS int             `json:"timeout_ms,omitempty"`
	TraceID   string          `json:"trace_id,omitempty"`
}

// JobCreated 创建任务响应。
type JobCreated struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	CreatedAt int64  `json:"created_at"`
}

// Usage 模拟 token 统计。
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// JobResult 终态 ok 的结果载荷。
type JobResult struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// JobError 终态 fail/timeout/cancelled 的模拟错误。
type JobError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JobStatus 任务状态查询响应。
type JobStatus struct {
	ID        string     `json:"id"`
	State     string     `json:"state"`
	CreatedAt int64      `json:"created_at"`
	UpdatedAt int64      `json:"updated_at"`
	Result    *JobResult `json:"result,omitempty"`
	Error     *JobError  `json:"error,omitempty"`
}

// Terminal 判断状态串是否终态。
func (s JobStatus) Terminal() bool {
	switch s.State {
	case "ok", "fail", "timeout", "cancelled":
		return true
	}
	return false
}

// JobRequestView 调试视图：服务端收到的请求与解析出的模式。
type JobRequestView struct {
	Op            string          `json:"op"`
	Args          json.RawMessage `json:"args"`
	TimeoutMS     int             `json:"timeout_ms"`
	TraceID       string          `json:"trace_id,omitempty"`
	ChosenMode    string          `json:"chosen_mode"`
	BaseLatencyMS int64           `json:"base_latency_ms"`
	RandomWeights map[string]int  `json:"random_weights,omitempty"`
	Seed          int64           `json:"seed"`
}

// CancelResp 取消任务响应。
type CancelResp struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// HealthInfo 健康检查响应。
type HealthInfo struct {
	OK            bool                   `json:"ok"`
	Name          string                 `json:"name"`
	Time          int64                  `json:"time"`
	Mode          string                 `json:"mode"`
	LatencyMS     int64                  `json:"latency_ms"`
	Seed          int64                  `json:"seed"`
	RandomWeights map[string]int         `json:"random_weights,omitempty"`
	System        metrics.SystemSnapshot `json:"system"`
}

// ErrorBody 操作错误响应包装。
type ErrorBody struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo 操作错误明细。
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
