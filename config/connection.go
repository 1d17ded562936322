package config

import (
	"errors"
	"time"
)

// ConnectionConfig 连接与握手配置
type ConnectionConfig struct {
	// HandshakeTimeout Connect 未指定超时时使用的默认值
	HandshakeTimeout Duration `json:"handshake_timeout" yaml:"handshake_timeout"`

	// PollInterval 等待握手时检查取消标志的间隔
	PollInterval Duration `json:"poll_interval" yaml:"poll_interval"`
}

// DefaultConnectionConfig 返回默认连接配置
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		HandshakeTimeout: Duration(10 * time.Second),
		PollInterval:     Duration(50 * time.Millisecond),
	}
}

// Validate 验证连接配置
func (c ConnectionConfig) Validate() error {
	if c.HandshakeTimeout <= 0 {
		return errors.New("connection: handshake timeout must be positive")
	}
	if c.PollInterval <= 0 || c.PollInterval > c.HandshakeTimeout {
		return errors.New("connection: poll interval must be positive and not exceed handshake timeout")
	}
	return nil
}

// ServiceConfig 服务调用配置
type ServiceConfig struct {
	// CallTimeout 服务调用超时
	CallTimeout Duration `json:"call_timeout" yaml:"call_timeout"`
}

// DefaultServiceConfig 返回默认服务调用配置
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{CallTimeout: Duration(5 * time.Second)}
}

// Validate 验证服务调用配置
func (c ServiceConfig) Validate() error {
	if c.CallTimeout <= 0 {
		return errors.New("service: call timeout must be positive")
	}
	return nil
}
