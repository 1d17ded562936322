package mdns

import "errors"

var (
	// ErrInterfaceNotFound 指定的网络接口不存在
	ErrInterfaceNotFound = errors.New("mdns: interface not found")

	// ErrNoAddress 接口上没有可宣告的地址
	ErrNoAddress = errors.New("mdns: no usable address on interface")
)
