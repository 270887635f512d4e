// Package logger 基于log/slog构建进程级日志器
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options 日志配置
type Options struct {
	Level     string // debug | info | warn | error
	Format    string // text | json
	Output    string // stdout | stderr | 文件路径
	AddSource bool
}

// New 创建日志器并设置为slog默认日志器
// 返回的closer用于关闭文件输出，stdout/stderr时为空操作
func New(opts Options) (*slog.Logger, func() error, error) {
	w, closer, err := openOutput(opts.Output)
	if err != nil {
		return nil, nil, err
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.AddSource,
	}

	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(w, handlerOpts)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
	}

	l := slog.New(h)
	slog.SetDefault(l)
	return l, closer, nil
}

// ParseLevel 解析日志级别，未知值按info处理
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openOutput(output string) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	switch output {
	case "", "stdout":
		return os.Stdout, noop, nil
	case "stderr":
		return os.Stderr, noop, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
