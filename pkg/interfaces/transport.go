package interfaces

import (
	"context"

	"github.com/dep2p/go-raisin/pkg/types"
)

// Conn 定义面向帧的传输连接
//
// 每次 WriteFrame 写出一个完整的帧，对端的 ReadFrame 读到同一个帧。
// 连接断开时 ReadFrame 返回错误。
type Conn interface {
	// ReadFrame 读取下一个帧（仅由连接的读协程调用）
	ReadFrame() ([]byte, error)

	// WriteFrame 写出一个帧（并发安全）
	WriteFrame(frame []byte) error

	// Close 关闭连接（幂等）
	Close() error

	// RemoteAddr 返回对端地址
	RemoteAddr() string

	// NetworkType 返回传输类型
	NetworkType() types.NetworkType
}

// Dialer 定义拨号器接口
type Dialer interface {
	// Dial 连接到 ip:port
	Dial(ctx context.Context, ip string, port int) (Conn, error)

	// NetworkType 返回拨号器的传输类型
	NetworkType() types.NetworkType
}

// Listener 定义监听器接口
type Listener interface {
	// Accept 接受新连接，监听器关闭后返回 types.ErrListenerClosed
	Accept() (Conn, error)

	// Addr 返回监听地址
	Addr() string

	// Port 返回实际监听的端口
	Port() int

	// Close 关闭监听器
	Close() error
}
