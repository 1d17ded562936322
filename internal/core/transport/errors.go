package transport

import "errors"

var (
	// ErrUnsupportedNetwork 不支持的传输类型
	ErrUnsupportedNetwork = errors.New("transport: unsupported network type")

	// ErrManagerClosed 传输管理器已关闭
	ErrManagerClosed = errors.New("transport: manager closed")
)
