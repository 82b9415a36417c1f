package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// API 定义与 dummyllm 服务的交互接口，便于 gomock 打桩。
// base 为服务地址，形如 127.0.0.1:8000。
type API interface {
	Health(ctx context.Context, base string) (HealthInfo, error)
	SubmitJob(ctx context.Context, base string, req SubmitJobReq) (JobCreated, error)
	GetJob(ctx context.Context, base, id string) (JobStatus, error)
	InspectJob(ctx context.Context, base, id string) (JobRequestView, error)
	CancelJob(ctx context.Context, base, id string) (CancelResp, error)
}

// httpAPI 实现 API。
type httpAPI struct{ hc *http.Client }

// NewHTTPAPI 构造 HTTP 实现。
func NewHTTPAPI() API { return &httpAPI{hc: &http.Client{Timeout: 8 * time.Second}} }

// Health 读取健康检查。
func (h *httpAPI) Health(ctx context.Context, base string) (HealthInfo, error) {
	var out HealthInfo
	err := h.get(ctx, fmt.Sprintf("http://%s/health", base), &out)
	return out, err
}

// SubmitJob 创建任务。
func (h *httpAPI) SubmitJob(ctx context.Context, base string, req SubmitJobReq) (JobCreated, error) {
	var out JobCreated
	err := h.post(ctx, fmt.Sprintf("http://%s/v1/jobs", base), req, &out)
	return out, err
}

// GetJob 查询任务状态。
func (h *httpAPI) GetJob(ctx context.Context, base, id string) (JobStatus, error) {
	var out JobStatus
	err := h.get(ctx, fmt.Sprintf("http://%s/v1/jobs/%s", base, id), &out)
	return out, err
}

// InspectJob 读取调试视图。
func (h *httpAPI) InspectJob(ctx context.Context, base, id string) (JobRequestView, error) {
	var out JobRequestView
	err := h.get(ctx, fmt.Sprintf("http://%s/v1/jobs/%s/request", base, id), &out)
	return out, err
}

// CancelJob 取消任务。
func (h *httpAPI) CancelJob(ctx context.Context, base, id string) (CancelResp, error) {
	var out CancelResp
	err := h.post(ctx, fmt.Sprintf("http://%s/v1/jobs/%s/cancel", base, id), nil, &out)
	return out, err
}

// get 执行 GET 请求并解码 JSON。
func (h *httpAPI) get(ctx context.Context, url string, out any) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	res, err := h.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return apiError(http.MethodGet, url, res)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// post 执行 POST 请求并可选解码响应。
func (h *httpAPI) post(ctx context.Context, url string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, rd)
	req.Header.Set("Content-Type", "application/json")
	res, err := h.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return apiError(http.MethodPost, url, res)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// apiError 尽量解析服务端错误包装，失败则回退原始响应体。
func apiError(method, url string, res *http.Response) error {
	b, _ := io.ReadAll(res.Body)
	var eb ErrorBody
	if err := json.Unmarshal(b, &eb); err == nil && eb.Error.Code != "" {
		return fmt.Errorf("%s %s => %d: %s: %s", method, url, res.StatusCode, eb.Error.Code, eb.Error.Message)
	}
	return fmt.Errorf("%s %s => %d: %s", method, url, res.StatusCode, string(b))
}
