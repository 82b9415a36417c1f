package dummyllm

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/dummyllm/dummyllm-go/client"
	"github.com/dummyllm/dummyllm-go/mode"
)

func TestServer_HTTPRoundTrip(t *testing.T) {
	Convey("HTTP surface should cover health, create, poll, inspect on a random port", t, func() {
		s := NewServer(
			WithListenAddr("127.0.0.1:0"),
			WithMode(mode.OK),
			WithBaseLatency(20*time.Millisecond),
			WithSeed(42),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		s.Start(ctx)
		So(s.Addr(), ShouldNotEqual, "")

		api := client.NewHTTPAPI()
		base := s.Addr()

		h, err := api.Health(ctx, base)
		So(err, ShouldBeNil)
		So(h.OK, ShouldBeTrue)
		So(h.Name, ShouldEqual, "dummyllm")
		So(h.Mode, ShouldEqual, "ok")
		So(h.LatencyMS, ShouldEqual, 20)
		So(h.Seed, ShouldEqual, 42)

		created, err := api.SubmitJob(ctx, base, client.SubmitJobReq{
			Op:   "llm.chat",
			Args: json.RawMessage(`{"messages":[{"role":"user","content":"hello"}]}`),
		})
		So(err, ShouldBeNil)
		So(created.ID, ShouldStartWith, "job_")
		So(created.State, ShouldEqual, "queued")

		wctx, wcancel := context.WithTimeout(ctx, 3*time.Second)
		defer wcancel()
		st, err := client.WaitTerminal(wctx, api, base, created.ID, 20*time.Millisecond)
		So(err, ShouldBeNil)
		So(st.State, ShouldEqual, "ok")
		So(st.Result, ShouldNotBeNil)
		So(st.Result.Text, ShouldNotEqual, "")

		v, err := api.InspectJob(ctx, base, created.ID)
		So(err, ShouldBeNil)
		So(v.Op, ShouldEqual, "llm.chat")
		So(v.ChosenMode, ShouldEqual, "ok")
		So(v.Seed, ShouldEqual, 42)
	})
}

func TestServer_HTTPCancel(t *testing.T) {
	Convey("cancel over HTTP should terminate a hung job, replay conflicts with 409", t, func() {
		s := NewServer(WithListenAddr("127.0.0.1:0"), WithMode(mode.Hang), WithBaseLatency(10*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		s.Start(ctx)

		api := client.NewHTTPAPI()
		base := s.Addr()

		created, err := api.SubmitJob(ctx, base, client.SubmitJobReq{Op: "llm.chat"})
		So(err, ShouldBeNil)
		time.Sleep(50 * time.Millisecond)

		cr, err := api.CancelJob(ctx, base, created.ID)
		So(err, ShouldBeNil)
		So(cr.State, ShouldEqual, "cancelled")

		_, err = api.CancelJob(ctx, base, created.ID)
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "ALREADY_TERMINAL")

		st, err := api.GetJob(ctx, base, created.ID)
		So(err, ShouldBeNil)
		So(st.State, ShouldEqual, "cancelled")
		So(st.Error.Code, ShouldEqual, "CANCELLED")
	})
}

func TestServer_ShutdownDrainsHangs(t *testing.T) {
	Convey("ending the Start ctx should drain hung executors", t, func() {
		s := NewServer(WithListenAddr("127.0.0.1:0"), WithMode(mode.Hang), WithBaseLatency(10*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		s.Start(ctx)

		rec, err := s.Submit(context.Background(), SubmitRequest{Op: "llm.chat"})
		So(err, ShouldBeNil)
		time.Sleep(50 * time.Millisecond)
		cur, err := s.Get(context.Background(), rec.ID)
		So(err, ShouldBeNil)
		So(cur.State, ShouldEqual, StateRunning)

		cancel()
		got := waitTerminal(t, s, rec.ID, 2*time.Second)
		So(got.State, ShouldEqual, StateCancelled)
	})
}

func TestServer_HTTPErrors(t *testing.T) {
	Convey("operation errors should map onto HTTP status codes", t, func() {
		s := NewServer(WithListenAddr("127.0.0.1:0"), WithMode(mode.OK), WithBaseLatency(10*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		s.Start(ctx)
		base := s.Addr()

		// 未知任务 → 404
		resp, err := http.Get("http://" + base + "/v1/jobs/job_missing")
		So(err, ShouldBeNil)
		So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		var eb client.ErrorBody
		So(json.NewDecoder(resp.Body).Decode(&eb), ShouldBeNil)
		resp.Body.Close()
		So(eb.Error.Code, ShouldEqual, "NOT_FOUND")

		// 缺 op → 400
		resp, err = http.Post("http://"+base+"/v1/jobs", "application/json", bytes.NewReader([]byte(`{"args":{}}`)))
		So(err, ShouldBeNil)
		So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		resp.Body.Close()

		// 非法 JSON → 400
		resp, err = http.Post("http://"+base+"/v1/jobs", "application/json", bytes.NewReader([]byte(`{`)))
		So(err, ShouldBeNil)
		So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		resp.Body.Close()
	})
}
