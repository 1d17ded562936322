package types

import "errors"

// ============================================================================
//                              传输相关错误
// ============================================================================

var (
	// ErrFrameTooLarge 帧超过允许的最大长度
	ErrFrameTooLarge = errors.New("frame too large")

	// ErrConnClosed 传输连接已关闭
	ErrConnClosed = errors.New("connection closed")

	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("listener closed")
)
