package config

import (
	"strconv"
	"strings"

	"github.com/dummyllm/dummyllm-go/mode"
)

// Config 模拟器进程级配置。
// 功能：承载行为策略（模式/权重/延迟/种子）与 HTTP 监听地址；
// 在构造后视为不可变，整个进程生命周期内不再修改。
type Config struct {
	Addr string `yaml:"addr"` // 监听地址，例如 :8000

	Mode          string `yaml:"mode"`          // ok|echo|slow|fail|hang|timeout|flaky|random
	RandomWeights string `yaml:"randomWeights"` // 形如 ok=70,echo=10,...，仅 mode=random 时生效
	LatencyMS     int    `yaml:"latencyMS"`     // 基础模拟延迟（毫秒）
	Seed          int64  `yaml:"seed"`          // 抽取源种子
	FailMessage   string `yaml:"failMessage"`   // fail 模式的错误文案，留空用默认
	ReportSeconds int    `yaml:"reportSeconds"` // 状态直方图上报周期（秒），0 表示关闭
}

// DefaultWeights 默认权重串，与历史行为保持一致。
const DefaultWeights = "ok=70,echo=10,slow=10,fail=5,hang=3,timeout=2,flaky=0"

// Default 返回默认配置。
func Default() Config {
	return Config{
		Addr:          ":8000",
		Mode:          string(mode.OK),
		RandomWeights: DefaultWeights,
		LatencyMS:     250,
		Seed:          1337,
	}
}

// Weights 解析权重串为权重表。
func (c Config) Weights() mode.Weights { return ParseWeights(c.RandomWeights) }

// ParseWeights 解析 "ok=70,echo=10,slow=10,fail=5,hang=3,timeout=2,flaky=0"。
// 未知键忽略，非法或负值按 0 处理，缺省键为 0。
func ParseWeights(s string) mode.Weights {
	out := mode.Weights{}
	for _, m := range mode.Canonical() {
		out[m] = 0
	}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k, v, found := strings.Cut(p, "=")
		if !found {
			continue
		}
		m := mode.Mode(strings.TrimSpace(k))
		if _, ok := out[m]; !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			n = 0
		}
		out[m] = n
	}
	return out
}
