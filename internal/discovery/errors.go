package discovery

import "errors"

var (
	// ErrDiscoveryStopped 发现服务已停止
	ErrDiscoveryStopped = errors.New("discovery: stopped")
)
