// Package log 提供 go-raisin 统一日志接口
//
// 基于 log/slog，每个组件通过 Logger("组件名") 获取一个 LazyLogger，
// 每次输出时读取当前的默认 handler，因此 SetOutput/SetLevel 对已创建的
// logger 同样生效。
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 日志级别常量
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stderr
	level  = new(slog.LevelVar)
	format = "text"
	root   *slog.Logger
)

func init() {
	if v := os.Getenv("RAISIN_LOG_LEVEL"); v != "" {
		if l, ok := ParseLevel(v); ok {
			level.Set(l)
		}
	}
	if strings.EqualFold(os.Getenv("RAISIN_LOG_FORMAT"), "json") {
		format = "json"
	}
	rebuild()
}

// rebuild 根据当前输出与格式重建根 logger（调用方需持有写锁或处于 init）
func rebuild() {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		root = slog.New(slog.NewJSONHandler(out, opts))
		return
	}
	root = slog.New(slog.NewTextHandler(out, opts))
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// SetOutput 设置日志输出目标
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	rebuild()
	mu.Unlock()
}

// SetLevel 设置全局日志级别
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetFormat 设置输出格式（text 或 json）
func SetFormat(f string) {
	mu.Lock()
	format = strings.ToLower(f)
	rebuild()
	mu.Unlock()
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 带组件名的懒加载 logger
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
//
//	var logger = log.Logger("core/transport")
//	logger.Info("连接已建立", "remote", addr)
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) base() *slog.Logger {
	return current().With("component", l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) { l.base().Debug(msg, args...) }

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) { l.base().Info(msg, args...) }

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) { l.base().Warn(msg, args...) }

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) { l.base().Error(msg, args...) }

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.base().With(args...)
}

// TruncateID 安全截取 ID 用于日志显示
func TruncateID(id string, maxLen int) string {
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen]
}
