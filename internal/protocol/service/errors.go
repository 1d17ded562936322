package service

import "errors"

// 错误定义
var (
	// ErrInvokerClosed 调用器已关闭
	ErrInvokerClosed = errors.New("service: invoker closed")

	// ErrEmptyService 服务名为空
	ErrEmptyService = errors.New("service: empty service name")
)
