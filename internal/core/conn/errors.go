package conn

import "errors"

// 错误定义
var (
	// ErrHandshakeTimeout 握手超时
	ErrHandshakeTimeout = errors.New("conn: handshake timeout")

	// ErrHandshakeCancelled 握手被取消
	ErrHandshakeCancelled = errors.New("conn: handshake cancelled")

	// ErrDisconnected 连接已断开
	ErrDisconnected = errors.New("conn: disconnected")

	// ErrAlreadyConnected 已连接
	ErrAlreadyConnected = errors.New("conn: already connected")
)
