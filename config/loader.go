package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load 从 YAML 文件加载配置，未出现的字段保留默认值。
func Load(file string) (Config, error) {
	c := Default()
	b, err := os.ReadFile(file)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}

// MustLoad 从 YAML 文件加载配置（失败 panic）。
func MustLoad(file string) Config {
	c, err := Load(file)
	if err != nil {
		panic(err)
	}
	return c
}

// FromEnv 在 c 之上叠加 DUMMYLLM_* 环境变量（环境变量优先）。
// 变量：DUMMYLLM_ADDR、DUMMYLLM_MODE、DUMMYLLM_RANDOM_WEIGHTS、
// DUMMYLLM_LATENCY_MS、DUMMYLLM_SEED、DUMMYLLM_FAIL_MESSAGE、
// DUMMYLLM_REPORT_SECONDS。
func FromEnv(c Config) Config {
	if v := envStr("DUMMYLLM_ADDR"); v != "" {
		c.Addr = v
	}
	if v := envStr("DUMMYLLM_MODE"); v != "" {
		c.Mode = v
	}
	if v := envStr("DUMMYLLM_RANDOM_WEIGHTS"); v != "" {
		c.RandomWeights = v
	}
	if v, ok := envInt("DUMMYLLM_LATENCY_MS"); ok && v >= 0 {
		c.LatencyMS = v
	}
	if v, ok := envInt("DUMMYLLM_SEED"); ok {
		c.Seed = int64(v)
	}
	if v := envStr("DUMMYLLM_FAIL_MESSAGE"); v != "" {
		c.FailMessage = v
	}
	if v, ok := envInt("DUMMYLLM_REPORT_SECONDS"); ok && v >= 0 {
		c.ReportSeconds = v
	}
	return c
}

// envStr 读取去除首尾空白后的环境变量。
func envStr(name string) string { return strings.TrimSpace(os.Getenv(name)) }

// envInt 读取整型环境变量，非法值视为未设置。
func envInt(name string) (int, bool) {
	v := envStr(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
