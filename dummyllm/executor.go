package dummyllm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dummyllm/dummyllm-go/logging"
	"github.com/dummyllm/dummyllm-go/mode"
	"github.com/dummyllm/dummyllm-go/reply"
	"github.com/dummyllm/dummyllm-go/tracker"
)

// execute 单个任务的执行单元：queued → running → 终态。
// 每个任务恰好调度一次、至多提交一次终态；hang 在无取消时永远停在 running。
// 存储返回的 ErrAlreadyTerminal 是取消竞态的正常输家，吞掉即可。
func (s *Server) execute(id string, j *tracker.Job) {
	defer s.trk.Stop(id)

	rec, err := s.store.Transition(context.Background(), id, func(r *JobRecord) {
		r.State = StateRunning
	})
	if err != nil {
		// 进入 running 前已被取消（或记录异常缺失），直接退出
		if !errors.Is(err, ErrAlreadyTerminal) && !errors.Is(err, ErrNotFound) {
			logging.L().Warnf(context.Background(), "run transition failed: id=%s err=%v", id, err)
		}
		return
	}

	base := s.opt.BaseLatency
	switch rec.Mode {
	case mode.Hang:
		// 永不自然结束，逼调用方走自己的超时逻辑；只有取消能解围
		<-j.Ctx.Done()
		s.finishCancelled(id)

	case mode.Timeout:
		if !wait(j.Ctx, timeoutDelay(base, rec.TimeoutMS)) {
			s.finishCancelled(id)
			return
		}
		s.finish(id, func(r *JobRecord) {
			r.State = StateTimeout
			r.Error = &JobError{Code: CodeTimeout, Message: "simulated timeout"}
		})

	case mode.Fail:
		// 短暂停顿，让轮询方有机会观察到 running
		d := base
		if d > 200*time.Millisecond {
			d = 200 * time.Millisecond
		}
		if !wait(j.Ctx, d) {
			s.finishCancelled(id)
			return
		}
		msg := s.opt.FailMessage
		s.finish(id, func(r *JobRecord) {
			r.State = StateFail
			r.Error = &JobError{Code: CodeSimFail, Message: msg}
		})

	default: // ok / echo / slow
		d := base
		if rec.Mode == mode.Slow {
			d *= 6
		}
		if !wait(j.Ctx, d) {
			s.finishCancelled(id)
			return
		}
		res := s.buildResult(rec)
		s.finish(id, func(r *JobRecord) {
			r.State = StateOK
			r.Result = res
		})
	}
}

// wait 可取消的延迟等待；取消先于延迟到期返回 false。
func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// timeoutDelay timeout 模式的等待时长：基础延迟与客户端超时二者取小，
// 各自钳到至少 50ms。
func timeoutDelay(base time.Duration, timeoutMS int) time.Duration {
	a := base
	if a < 50*time.Millisecond {
		a = 50 * time.Millisecond
	}
	b := time.Duration(timeoutMS) * time.Millisecond
	if b < 50*time.Millisecond {
		b = 50 * time.Millisecond
	}
	if b < a {
		return b
	}
	return a
}

// finish 提交终态转移；竞态输家静默退出，其余错误仅记日志。
func (s *Server) finish(id string, mutate func(*JobRecord)) {
	if _, err := s.store.Transition(context.Background(), id, mutate); err != nil {
		if !errors.Is(err, ErrAlreadyTerminal) {
			logging.L().Warnf(context.Background(), "terminal transition failed: id=%s err=%v", id, err)
		}
	}
}

// finishCancelled 执行器侧的取消收尾；通常取消路径已先行提交，这里只兜底。
func (s *Server) finishCancelled(id string) {
	s.finish(id, func(r *JobRecord) {
		r.State = StateCancelled
		r.Error = &JobError{Code: CodeCancelled, Message: "cancelled by client"}
	})
}

// buildResult 生成 ok 终态的结果载荷。
func (s *Server) buildResult(rec *JobRecord) *JobResult {
	var args struct {
		Messages json.RawMessage `json:"messages"`
	}
	_ = json.Unmarshal(rec.Args, &args)
	var msgs []reply.Message
	if len(args.Messages) > 0 {
		_ = json.Unmarshal(args.Messages, &msgs)
	}

	if rec.Mode == mode.Echo {
		txt, err := reply.EchoText(args.Messages)
		if err != nil {
			txt = "[]"
		}
		return &JobResult{
			Text:  txt,
			Usage: Usage{PromptTokens: reply.PromptTokens(msgs), CompletionTokens: reply.CountTokens(txt)},
		}
	}

	var txt string
	if rec.Op == "llm.chat" {
		txt = reply.Generate(reply.LastUserContent(msgs), s.opt.Seed)
	} else {
		txt = "ok :: op=" + rec.Op
	}
	return &JobResult{
		Text:  txt,
		Usage: Usage{PromptTokens: reply.PromptTokens(msgs), CompletionTokens: reply.CountTokens(txt)},
	}
}
