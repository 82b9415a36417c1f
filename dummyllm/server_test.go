package dummyllm

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/dummyllm/dummyllm-go/mode"
	"github.com/dummyllm/dummyllm-go/reply"
)

// waitTerminal 轮询直至任务进入终态或超时，返回最后一次读到的记录。
func waitTerminal(t *testing.T, s *Server, id string, d time.Duration) *JobRecord {
	t.Helper()
	deadline := time.Now().Add(d)
	for {
		rec, err := s.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if rec.State.Terminal() || time.Now().After(deadline) {
			return rec
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func chatArgs(content string) json.RawMessage {
	return json.RawMessage(`{"messages":[{"role":"user","content":"` + content + `"}]}`)
}

func TestServer_FailMode(t *testing.T) {
	Convey("fail mode should end in fail with SIM_FAIL and the configured message", t, func() {
		s := NewServer(WithMode(mode.Fail), WithBaseLatency(20*time.Millisecond), WithFailMessage("boom"))
		rec, err := s.Submit(context.Background(), SubmitRequest{Op: "llm.chat", Args: chatArgs("hi")})
		So(err, ShouldBeNil)
		So(rec.State, ShouldEqual, StateQueued)
		So(rec.Mode, ShouldEqual, mode.Fail)

		got := waitTerminal(t, s, rec.ID, 2*time.Second)
		So(got.State, ShouldEqual, StateFail)
		So(got.Result, ShouldBeNil)
		So(got.Error, ShouldNotBeNil)
		So(got.Error.Code, ShouldEqual, CodeSimFail)
		So(got.Error.Message, ShouldEqual, "boom")
	})
}

func TestServer_TimeoutMode(t *testing.T) {
	Convey("timeout mode should end in timeout after the clamped delay", t, func() {
		s := NewServer(WithMode(mode.Timeout), WithBaseLatency(10*time.Millisecond))
		rec, err := s.Submit(context.Background(), SubmitRequest{Op: "llm.chat", Args: chatArgs("hi"), TimeoutMS: 120})
		So(err, ShouldBeNil)

		got := waitTerminal(t, s, rec.ID, 2*time.Second)
		So(got.State, ShouldEqual, StateTimeout)
		So(got.Error.Code, ShouldEqual, CodeTimeout)
		So(got.Error.Message, ShouldEqual, "simulated timeout")
	})
}

func TestServer_HangThenCancel(t *testing.T) {
	Convey("hang mode should stay running until cancelled, second cancel conflicts", t, func() {
		s := NewServer(WithMode(mode.Hang), WithBaseLatency(10*time.Millisecond))
		rec, err := s.Submit(context.Background(), SubmitRequest{Op: "llm.chat", Args: chatArgs("hi")})
		So(err, ShouldBeNil)

		// 给执行单元进入 running 的时间，hang 不应自然终结
		time.Sleep(100 * time.Millisecond)
		cur, err := s.Get(context.Background(), rec.ID)
		So(err, ShouldBeNil)
		So(cur.State, ShouldEqual, StateRunning)

		got, err := s.Cancel(context.Background(), rec.ID)
		So(err, ShouldBeNil)
		So(got.State, ShouldEqual, StateCancelled)
		So(got.Error.Code, ShouldEqual, CodeCancelled)
		So(got.CancelRequested, ShouldBeTrue)

		// 终态不可再变
		_, err = s.Cancel(context.Background(), rec.ID)
		So(err, ShouldEqual, ErrAlreadyTerminal)
		again, err := s.Get(context.Background(), rec.ID)
		So(err, ShouldBeNil)
		So(again.State, ShouldEqual, StateCancelled)
	})
}

func TestServer_CancelRacesLatency(t *testing.T) {
	Convey("cancel during simulated latency should win over natural completion", t, func() {
		s := NewServer(WithMode(mode.OK), WithBaseLatency(500*time.Millisecond))
		rec, err := s.Submit(context.Background(), SubmitRequest{Op: "llm.chat", Args: chatArgs("hi")})
		So(err, ShouldBeNil)

		time.Sleep(50 * time.Millisecond)
		got, err := s.Cancel(context.Background(), rec.ID)
		So(err, ShouldBeNil)
		So(got.State, ShouldEqual, StateCancelled)

		// 延迟到期后执行单元也不得改写终态
		time.Sleep(600 * time.Millisecond)
		cur, err := s.Get(context.Background(), rec.ID)
		So(err, ShouldBeNil)
		So(cur.State, ShouldEqual, StateCancelled)
		So(cur.Result, ShouldBeNil)
	})
}

func TestServer_EchoFidelity(t *testing.T) {
	Convey("echo mode should return the minified messages array with key order kept", t, func() {
		s := NewServer(WithMode(mode.Echo), WithBaseLatency(10*time.Millisecond))
		args := json.RawMessage(`{"messages": [ {"role": "user", "content": "Hi  there"} ]}`)
		rec, err := s.Submit(context.Background(), SubmitRequest{Op: "llm.chat", Args: args})
		So(err, ShouldBeNil)

		got := waitTerminal(t, s, rec.ID, 2*time.Second)
		So(got.State, ShouldEqual, StateOK)
		So(got.Result, ShouldNotBeNil)
		// 键间空白去除，content 内部空白保留
		So(got.Result.Text, ShouldEqual, `[{"role":"user","content":"Hi  there"}]`)
	})
}

func TestServer_ChatReply(t *testing.T) {
	Convey("ok mode on llm.chat should produce the seeded canned reply with usage", t, func() {
		s := NewServer(WithMode(mode.OK), WithBaseLatency(10*time.Millisecond), WithSeed(42))
		rec, err := s.Submit(context.Background(), SubmitRequest{Op: "llm.chat", Args: chatArgs("I need my coffee")})
		So(err, ShouldBeNil)

		got := waitTerminal(t, s, rec.ID, 2*time.Second)
		So(got.State, ShouldEqual, StateOK)
		So(got.Result, ShouldNotBeNil)
		So(got.Result.Text, ShouldEqual, reply.Generate("I need my coffee", 42))
		So(got.Result.Usage.PromptTokens, ShouldEqual, 4)
		So(got.Result.Usage.CompletionTokens, ShouldBeGreaterThan, 0)
	})
}

func TestServer_NonChatOp(t *testing.T) {
	Convey("ok mode on a non-chat op should return the generic acknowledgement", t, func() {
		s := NewServer(WithMode(mode.OK), WithBaseLatency(10*time.Millisecond))
		rec, err := s.Submit(context.Background(), SubmitRequest{Op: "demo.task"})
		So(err, ShouldBeNil)

		got := waitTerminal(t, s, rec.ID, 2*time.Second)
		So(got.State, ShouldEqual, StateOK)
		So(got.Result.Text, ShouldEqual, "ok :: op=demo.task")
		So(got.Result.Usage.PromptTokens, ShouldEqual, 0)
	})
}

func TestServer_MissingOp(t *testing.T) {
	Convey("submit without op should be rejected", t, func() {
		s := NewServer(WithMode(mode.OK), WithBaseLatency(10*time.Millisecond))
		_, err := s.Submit(context.Background(), SubmitRequest{Op: "   "})
		So(err, ShouldEqual, ErrMissingOp)
	})
}

func TestServer_CancelUnknown(t *testing.T) {
	Convey("cancel of an unknown job should report not found", t, func() {
		s := NewServer(WithMode(mode.OK))
		_, err := s.Cancel(context.Background(), "job_nope")
		So(err, ShouldEqual, ErrNotFound)
	})
}

func TestServer_SlowScalesLatency(t *testing.T) {
	Convey("slow mode should take noticeably longer than the base latency", t, func() {
		s := NewServer(WithMode(mode.Slow), WithBaseLatency(50*time.Millisecond))
		rec, err := s.Submit(context.Background(), SubmitRequest{Op: "llm.chat", Args: chatArgs("hi")})
		So(err, ShouldBeNil)

		// 基础延迟刚过时必然还在跑（slow 为 6 倍）
		time.Sleep(100 * time.Millisecond)
		cur, err := s.Get(context.Background(), rec.ID)
		So(err, ShouldBeNil)
		So(cur.State, ShouldEqual, StateRunning)

		got := waitTerminal(t, s, rec.ID, 2*time.Second)
		So(got.State, ShouldEqual, StateOK)
	})
}

func TestServer_RandomSequenceDeterministic(t *testing.T) {
	Convey("same seed and weights should yield the same mode sequence across servers", t, func() {
		w := mode.Weights{mode.OK: 70, mode.Echo: 10, mode.Slow: 10, mode.Fail: 5, mode.Hang: 3, mode.Timeout: 2}
		mk := func() *Server {
			return NewServer(WithMode(mode.Random), WithWeights(w), WithSeed(1337), WithBaseLatency(10*time.Millisecond))
		}
		a, b := mk(), mk()

		var seqA, seqB []mode.Mode
		for i := 0; i < 30; i++ {
			ra, err := a.Submit(context.Background(), SubmitRequest{Op: "demo.task"})
			So(err, ShouldBeNil)
			rb, err := b.Submit(context.Background(), SubmitRequest{Op: "demo.task"})
			So(err, ShouldBeNil)
			seqA = append(seqA, ra.Mode)
			seqB = append(seqB, rb.Mode)
		}
		So(seqA, ShouldResemble, seqB)
	})
}

func TestServer_Inspect(t *testing.T) {
	Convey("inspect should echo the stored request and expose weights only under random", t, func() {
		w := mode.Weights{mode.OK: 1}
		s := NewServer(WithMode(mode.Random), WithWeights(w), WithSeed(7), WithBaseLatency(30*time.Millisecond))
		rec, err := s.Submit(context.Background(), SubmitRequest{Op: "llm.chat", Args: chatArgs("hello"), TimeoutMS: 900, TraceID: "t-1"})
		So(err, ShouldBeNil)

		v, err := s.Inspect(context.Background(), rec.ID)
		So(err, ShouldBeNil)
		So(v.Op, ShouldEqual, "llm.chat")
		So(v.TimeoutMS, ShouldEqual, 900)
		So(v.TraceID, ShouldEqual, "t-1")
		So(v.ChosenMode, ShouldEqual, mode.OK)
		So(v.BaseLatencyMS, ShouldEqual, 30)
		So(v.Seed, ShouldEqual, 7)
		So(v.RandomWeights, ShouldResemble, map[string]int{"ok": 1})

		fixed := NewServer(WithMode(mode.OK))
		rec2, err := fixed.Submit(context.Background(), SubmitRequest{Op: "demo.task"})
		So(err, ShouldBeNil)
		v2, err := fixed.Inspect(context.Background(), rec2.ID)
		So(err, ShouldBeNil)
		So(v2.RandomWeights, ShouldBeNil)
	})
}

func TestTimeoutDelay(t *testing.T) {
	Convey("timeout delay should clamp both sides to 50ms and take the minimum", t, func() {
		So(timeoutDelay(10*time.Millisecond, 8000), ShouldEqual, 50*time.Millisecond)
		So(timeoutDelay(250*time.Millisecond, 8000), ShouldEqual, 250*time.Millisecond)
		So(timeoutDelay(250*time.Millisecond, 100), ShouldEqual, 100*time.Millisecond)
		So(timeoutDelay(250*time.Millisecond, 0), ShouldEqual, 50*time.Millisecond)
	})
}

func TestSubmitDefaultTimeout(t *testing.T) {
	Convey("missing timeout_ms should default to 8000", t, func() {
		s := NewServer(WithMode(mode.Hang))
		rec, err := s.Submit(context.Background(), SubmitRequest{Op: "demo.task"})
		So(err, ShouldBeNil)
		So(rec.TimeoutMS, ShouldEqual, 8000)
		_, _ = s.Cancel(context.Background(), rec.ID)
	})
}
