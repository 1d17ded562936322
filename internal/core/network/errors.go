package network

import "errors"

// 错误定义
var (
	// ErrNodeNotFound 发现表中没有该节点
	ErrNodeNotFound = errors.New("network: node not found")

	// ErrNetworkClosed 网络已关闭
	ErrNetworkClosed = errors.New("network: closed")
)
