package dummyllm

import (
	"time"

	"github.com/dummyllm/dummyllm-go/mode"
)

// Options 模拟器运行参数，构造后整个进程生命周期内不可变。
type Options struct {
	ListenAddr  string        // HTTP 监听地址，支持 "127.0.0.1:0" 随机端口
	Mode        mode.Mode     // 全局策略：固定模式或 flaky/random
	Weights     mode.Weights  // 仅 Mode=random 时生效
	BaseLatency time.Duration // 基础模拟延迟
	Seed        int64         // 抽取源与模板选择共用的种子
	FailMessage string        // fail 模式错误文案
	ReportEvery time.Duration // 状态直方图上报周期，0 关闭
}

// withDefaults 填充默认值。
func (o *Options) withDefaults() {
	if o.ListenAddr == "" {
		o.ListenAddr = ":8000"
	}
	if o.Mode == "" {
		o.Mode = mode.OK
	}
	if o.BaseLatency <= 0 {
		o.BaseLatency = 250 * time.Millisecond
	}
	if o.FailMessage == "" {
		o.FailMessage = "simulated error"
	}
}

// serverConfig 聚合可选项。
type serverConfig struct {
	opt   Options
	store Store
}

// Option 配置函数。
type Option func(*serverConfig)

// WithListenAddr 设置 HTTP 监听地址。
func WithListenAddr(addr string) Option { return func(c *serverConfig) { c.opt.ListenAddr = addr } }

// WithMode 设置全局策略。
func WithMode(m mode.Mode) Option { return func(c *serverConfig) { c.opt.Mode = m } }

// WithWeights 设置随机权重表。
func WithWeights(w mode.Weights) Option { return func(c *serverConfig) { c.opt.Weights = w } }

// WithBaseLatency 设置基础模拟延迟。
func WithBaseLatency(d time.Duration) Option { return func(c *serverConfig) { c.opt.BaseLatency = d } }

// WithSeed 设置种子。
func WithSeed(seed int64) Option { return func(c *serverConfig) { c.opt.Seed = seed } }

// WithFailMessage 设置 fail 模式的错误文案。
func WithFailMessage(msg string) Option { return func(c *serverConfig) { c.opt.FailMessage = msg } }

// WithReportEvery 设置状态直方图上报周期。
func WithReportEvery(d time.Duration) Option { return func(c *serverConfig) { c.opt.ReportEvery = d } }

// WithStore 注入外部存储实现（如 storage/gormstore）。
func WithStore(st Store) Option { return func(c *serverConfig) { c.store = st } }
