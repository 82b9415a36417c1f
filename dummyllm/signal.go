package dummyllm

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithSignalCancel 创建一个可响应进程信号的上下文。
// 功能：收到 SIGINT/SIGTERM（或指定信号）时取消返回的 Context，
// 用于触发 Server 的优雅关闭。
// 返回的 stop 释放底层 signal 监听，通常在退出时 defer 调用。
func WithSignalCancel(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	return signal.NotifyContext(parent, signals...)
}
