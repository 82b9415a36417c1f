package dummyllm

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dummyllm/dummyllm-go/client"
	"github.com/dummyllm/dummyllm-go/logging"
	"github.com/dummyllm/dummyllm-go/metrics"
	"github.com/dummyllm/dummyllm-go/mode"
	"github.com/dummyllm/dummyllm-go/report"
	"github.com/dummyllm/dummyllm-go/rng"
	"github.com/dummyllm/dummyllm-go/tracker"
)

// Server 模拟器主对象：任务创建/查询/取消的核心操作，外加内置 HTTP 服务。
// 模式解析的抽取在 Submit 的提交锁内同步完成，由提交顺序定义抽取全序；
// 执行热路径（延迟等待）不持有任何全局锁。
type Server struct {
	opt   Options
	store Store
	trk   *tracker.Manager

	submitMu sync.Mutex
	src      *rng.Source
	res      *mode.Resolver

	srv    *http.Server
	addrMu sync.RWMutex
	addr   string
}

// NewServer 创建模拟器。
// 功能：按 With... 可选项组合出可运行实例；未注入存储时使用内置内存存储。
// 构造阶段不返回错误，监听失败等运行时问题在 Start 时记录日志。
func NewServer(opts ...Option) *Server {
	cfg := &serverConfig{}
	for _, fn := range opts {
		fn(cfg)
	}
	cfg.opt.withDefaults()
	s := &Server{opt: cfg.opt, trk: tracker.NewManager()}
	s.src = rng.New(cfg.opt.Seed)
	s.res = mode.NewResolver(cfg.opt.Mode, cfg.opt.Weights, s.src)
	if cfg.store != nil {
		s.store = cfg.store
	} else {
		s.store = newDefaultMemStore()
	}
	return s
}

// Submit 创建任务：解析模式、落库 queued、调度执行单元。
// 返回的记录为创建时刻的快照（state=queued，mode 已定）。
func (s *Server) Submit(ctx context.Context, req SubmitRequest) (*JobRecord, error) {
	if strings.TrimSpace(req.Op) == "" {
		return nil, ErrMissingOp
	}
	timeout := req.TimeoutMS
	if timeout <= 0 {
		timeout = 8000
	}
	now := time.Now()
	rec := &JobRecord{
		State:     StateQueued,
		CreatedAt: now,
		UpdatedAt: now,
		Op:        req.Op,
		Args:      req.Args,
		TimeoutMS: timeout,
		TraceID:   req.TraceID,
	}

	// 抽取与落库同锁：提交顺序即抽取顺序，跨并发提交保持可复现
	s.submitMu.Lock()
	rec.Mode = s.res.Resolve()
	rec.ID = newJobID()
	err := s.store.Create(ctx, rec)
	s.submitMu.Unlock()
	if err != nil {
		return nil, err
	}

	j := s.trk.Start(rec.ID)
	go s.execute(rec.ID, j)
	return rec.Clone(), nil
}

// Get 查询任务记录。
func (s *Server) Get(ctx context.Context, id string) (*JobRecord, error) {
	return s.store.Get(ctx, id)
}

// Cancel 请求取消任务：置位标记、提交 cancelled 终态、打断执行单元。
// 发后即忘：不等待执行单元观察到取消。自然完成抢先时返回 ErrAlreadyTerminal。
func (s *Server) Cancel(ctx context.Context, id string) (*JobRecord, error) {
	if _, err := s.store.RequestCancel(ctx, id); err != nil {
		return nil, err
	}
	rec, err := s.store.Transition(ctx, id, func(r *JobRecord) {
		r.State = StateCancelled
		r.Result = nil
		r.Error = &JobError{Code: CodeCancelled, Message: "cancelled by client"}
	})
	// 无论胜负都要打断等待中的执行单元
	s.trk.Stop(id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Inspect 返回调试视图：任务创建时收到的请求与解析出的模式。
func (s *Server) Inspect(ctx context.Context, id string) (*RequestView, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := &RequestView{
		Op:            rec.Op,
		Args:          rec.Args,
		TimeoutMS:     rec.TimeoutMS,
		TraceID:       rec.TraceID,
		ChosenMode:    rec.Mode,
		BaseLatencyMS: s.opt.BaseLatency.Milliseconds(),
		Seed:          s.opt.Seed,
	}
	if s.opt.Mode == mode.Random {
		v.RandomWeights = weightsView(s.opt.Weights)
	}
	return v, nil
}

// newJobID 生成任务 ID：job_ 前缀 + 12 位十六进制。
func newJobID() string {
	u := uuid.New()
	return "job_" + hex.EncodeToString(u[:6])
}

// weightsView 权重表的 JSON 友好视图。
func weightsView(w mode.Weights) map[string]int {
	if w == nil {
		return nil
	}
	out := make(map[string]int, len(w))
	for k, v := range w {
		out[string(k)] = v
	}
	return out
}

// ---- HTTP 服务 ----

// Start 启动内置 HTTP Server 与后台上报任务。
// 生命周期受 ctx 控制，ctx.Done 时优雅关闭。
func (s *Server) Start(ctx context.Context) {
	r := chi.NewRouter()
	s.registerRoutes(r)

	ln, err := net.Listen("tcp", s.opt.ListenAddr)
	if err != nil {
		logging.L().Errorf(ctx, "listen failed: addr=%s err=%v", s.opt.ListenAddr, err)
		return
	}
	s.addrMu.Lock()
	s.addr = ln.Addr().String()
	s.addrMu.Unlock()

	s.srv = &http.Server{Addr: s.addr, Handler: r}
	go func() {
		<-ctx.Done()
		_ = s.srv.Shutdown(context.Background())
		// 排空在途执行单元，hang 任务不随进程关停而悬挂
		s.trk.StopAll()
	}()
	go func() { _ = s.srv.Serve(ln) }()
	logging.L().Info(ctx, "dummyllm listening", "addr", s.addr, "mode", string(s.opt.Mode), "seed", s.opt.Seed)

	if s.opt.ReportEvery > 0 {
		report.NewReporter(countsAdapter{s.store}, s.opt.ReportEvery).Start(ctx)
	}
}

// Addr 返回实际监听地址（用于 :0 随机端口场景）。
func (s *Server) Addr() string {
	s.addrMu.RLock()
	defer s.addrMu.RUnlock()
	return s.addr
}

// registerRoutes 挂载 HTTP 路由。
func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Post("/v1/jobs", s.handleCreateJob)
	r.Get("/v1/jobs/{id}", s.handleGetJob)
	r.Get("/v1/jobs/{id}/request", s.handleJobRequest)
	r.Post("/v1/jobs/{id}/cancel", s.handleCancelJob)
}

// handleHealth 健康检查：行为配置 + 宿主系统概况。
func (s *Server) handleHealth(rw http.ResponseWriter, r *http.Request) {
	info := client.HealthInfo{
		OK:        true,
		Name:      "dummyllm",
		Time:      time.Now().Unix(),
		Mode:      string(s.opt.Mode),
		LatencyMS: s.opt.BaseLatency.Milliseconds(),
		Seed:      s.opt.Seed,
		System:    metrics.Collect(r.Context()),
	}
	if s.opt.Mode == mode.Random {
		info.RandomWeights = weightsView(s.opt.Weights)
	}
	writeJSON(rw, http.StatusOK, info)
}

// handleCreateJob 创建任务。
func (s *Server) handleCreateJob(rw http.ResponseWriter, r *http.Request) {
	var req client.SubmitJobReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(rw, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	rec, err := s.Submit(r.Context(), SubmitRequest{Op: req.Op, Args: req.Args, TimeoutMS: req.TimeoutMS, TraceID: req.TraceID})
	if err != nil {
		writeOpErr(rw, err)
		return
	}
	writeJSON(rw, http.StatusCreated, client.JobCreated{ID: rec.ID, State: string(rec.State), CreatedAt: rec.CreatedAt.Unix()})
}

// handleGetJob 查询任务状态。
func (s *Server) handleGetJob(rw http.ResponseWriter, r *http.Request) {
	rec, err := s.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeOpErr(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, statusView(rec))
}

// handleJobRequest 调试视图。
func (s *Server) handleJobRequest(rw http.ResponseWriter, r *http.Request) {
	v, err := s.Inspect(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeOpErr(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, v)
}

// handleCancelJob 取消任务。
func (s *Server) handleCancelJob(rw http.ResponseWriter, r *http.Request) {
	rec, err := s.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeOpErr(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, client.CancelResp{ID: rec.ID, State: string(rec.State)})
}

// statusView 领域记录到应答视图的映射。
func statusView(rec *JobRecord) client.JobStatus {
	out := client.JobStatus{
		ID:        rec.ID,
		State:     string(rec.State),
		CreatedAt: rec.CreatedAt.Unix(),
		UpdatedAt: rec.UpdatedAt.Unix(),
	}
	if rec.Result != nil {
		out.Result = &client.JobResult{
			Text: rec.Result.Text,
			Usage: client.Usage{
				PromptTokens:     rec.Result.Usage.PromptTokens,
				CompletionTokens: rec.Result.Usage.CompletionTokens,
			},
		}
	}
	if rec.Error != nil {
		out.Error = &client.JobError{Code: rec.Error.Code, Message: rec.Error.Message}
	}
	return out
}

// writeOpErr 操作错误到 HTTP 状态码的映射。
func writeOpErr(rw http.ResponseWriter, err error) {
	switch {
	case err == ErrNotFound:
		writeErr(rw, http.StatusNotFound, "NOT_FOUND", "job not found")
	case err == ErrAlreadyTerminal:
		writeErr(rw, http.StatusConflict, "ALREADY_TERMINAL", "job already terminal")
	case err == ErrMissingOp:
		writeErr(rw, http.StatusBadRequest, "BAD_REQUEST", "missing op")
	case err == ErrDuplicateID:
		writeErr(rw, http.StatusConflict, "DUPLICATE_ID", "duplicate job id")
	default:
		writeErr(rw, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

// writeErr/writeJSON 公共返回工具。
func writeErr(rw http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(rw, code, client.ErrorBody{Error: client.ErrorInfo{Code: errCode, Message: msg}})
}

func writeJSON(rw http.ResponseWriter, code int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	_ = json.NewEncoder(rw).Encode(v)
}

// countsAdapter 把存储的状态直方图适配为上报器的精简视图。
type countsAdapter struct{ Store }

// StateCounts 实现 report.Counter。
func (a countsAdapter) StateCounts(ctx context.Context) (map[string]int, error) {
	m, err := a.Store.Counts(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out, nil
}
