package config

import "errors"

// ValidateAll 验证整个配置的有效性
//
// 这是 Config.Validate() 的别名，额外处理 nil。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 浏览超时大于浏览间隔 -> 截断为浏览间隔
//   - 过期时间不大于浏览间隔 -> 设为浏览间隔的 5 倍
//   - 非正的超时 -> 使用默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	defDisc := DefaultDiscoveryConfig()
	if c.Discovery.BrowseInterval <= 0 {
		c.Discovery.BrowseInterval = defDisc.BrowseInterval
	}
	if c.Discovery.BrowseTimeout <= 0 || c.Discovery.BrowseTimeout > c.Discovery.BrowseInterval {
		c.Discovery.BrowseTimeout = c.Discovery.BrowseInterval
	}
	if c.Discovery.StaleAfter <= c.Discovery.BrowseInterval {
		c.Discovery.StaleAfter = 5 * c.Discovery.BrowseInterval
	}
	if c.Discovery.MaxNodes <= 0 {
		c.Discovery.MaxNodes = defDisc.MaxNodes
	}
	if c.Discovery.RetryInterval <= 0 {
		c.Discovery.RetryInterval = defDisc.RetryInterval
	}

	defTrans := DefaultTransportConfig()
	if c.Transport.DialTimeout <= 0 {
		c.Transport.DialTimeout = defTrans.DialTimeout
	}
	if c.Transport.MaxFrameSize <= 0 {
		c.Transport.MaxFrameSize = defTrans.MaxFrameSize
	}
	if c.Transport.WebSocketPath == "" {
		c.Transport.WebSocketPath = defTrans.WebSocketPath
	}
	if c.Transport.WebSocketHandshakeTimeout <= 0 {
		c.Transport.WebSocketHandshakeTimeout = defTrans.WebSocketHandshakeTimeout
	}

	if c.Connection.HandshakeTimeout <= 0 {
		c.Connection.HandshakeTimeout = DefaultConnectionConfig().HandshakeTimeout
	}
	if c.Connection.PollInterval <= 0 {
		c.Connection.PollInterval = DefaultConnectionConfig().PollInterval
	}
	if c.Service.CallTimeout <= 0 {
		c.Service.CallTimeout = DefaultServiceConfig().CallTimeout
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
