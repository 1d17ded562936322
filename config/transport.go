package config

import (
	"errors"
	"strings"
	"time"
)

// TransportConfig 传输层配置
type TransportConfig struct {
	// DialTimeout 拨号超时
	DialTimeout Duration `json:"dial_timeout" yaml:"dial_timeout"`

	// WriteTimeout 单帧写超时
	WriteTimeout Duration `json:"write_timeout" yaml:"write_timeout"`

	// MaxFrameSize 单帧最大字节数
	MaxFrameSize int `json:"max_frame_size" yaml:"max_frame_size"`

	// WebSocketPath WebSocket 升级路径
	WebSocketPath string `json:"websocket_path" yaml:"websocket_path"`

	// WebSocketHandshakeTimeout WebSocket 升级握手超时
	WebSocketHandshakeTimeout Duration `json:"websocket_handshake_timeout" yaml:"websocket_handshake_timeout"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		DialTimeout:               Duration(3 * time.Second), // 局域网内足够
		WriteTimeout:              Duration(2 * time.Second),
		MaxFrameSize:              4 << 20, // 4 MiB
		WebSocketPath:             "/raisin",
		WebSocketHandshakeTimeout: Duration(3 * time.Second),
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if c.DialTimeout <= 0 {
		return errors.New("transport: dial timeout must be positive")
	}
	if c.WriteTimeout < 0 {
		return errors.New("transport: write timeout must not be negative")
	}
	if c.MaxFrameSize <= 0 {
		return errors.New("transport: max frame size must be positive")
	}
	if !strings.HasPrefix(c.WebSocketPath, "/") {
		return errors.New("transport: websocket path must start with /")
	}
	if c.WebSocketHandshakeTimeout <= 0 {
		return errors.New("transport: websocket handshake timeout must be positive")
	}
	return nil
}
