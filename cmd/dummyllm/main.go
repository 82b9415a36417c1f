package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"

	"github.com/dummyllm/dummyllm-go/config"
	"github.com/dummyllm/dummyllm-go/dummyllm"
	"github.com/dummyllm/dummyllm-go/logging"
	"github.com/dummyllm/dummyllm-go/mode"
)

// 配置优先级：环境变量 > YAML 文件 > 默认值。
func main() {
	cfgFile := flag.String("config", "", "YAML 配置文件路径，留空仅用默认值与环境变量")
	flag.Parse()

	// .env 可选，缺失忽略
	_ = godotenv.Load()

	cfg := config.Default()
	if *cfgFile != "" {
		cfg = config.MustLoad(*cfgFile)
	}
	cfg = config.FromEnv(cfg)

	if !mode.Valid(mode.Mode(cfg.Mode)) {
		logging.L().Errorf(context.Background(), "invalid mode: %s", cfg.Mode)
		return
	}

	s := dummyllm.NewServer(
		dummyllm.WithListenAddr(cfg.Addr),
		dummyllm.WithMode(mode.Mode(cfg.Mode)),
		dummyllm.WithWeights(cfg.Weights()),
		dummyllm.WithBaseLatency(time.Duration(cfg.LatencyMS)*time.Millisecond),
		dummyllm.WithSeed(cfg.Seed),
		dummyllm.WithFailMessage(cfg.FailMessage),
		dummyllm.WithReportEvery(time.Duration(cfg.ReportSeconds)*time.Second),
	)

	ctx, stop := dummyllm.WithSignalCancel(context.Background())
	defer stop()

	s.Start(ctx)
	<-ctx.Done()
	logging.L().Info(context.Background(), "dummyllm shutting down")
}
