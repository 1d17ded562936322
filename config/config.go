// Package config 提供 go-raisin 的统一配置管理
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义，
// 支持从 JSON 或 YAML 文件加载。
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Discovery.Interfaces = []string{"eth0"}
//
//	// 从文件加载（按扩展名选择格式）
//	cfg, err := config.Load("raisin.yaml")
package config

// Config 是 go-raisin 客户端的完整配置结构
//
// 配置按照功能模块组织：
//   - Discovery: 节点发现（mDNS / 静态节点）
//   - Transport: 传输层（TCP / WebSocket）
//   - Connection: 连接与握手
//   - Service: 服务调用
//   - Metrics: 指标
type Config struct {
	// Discovery 节点发现配置
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`

	// Transport 传输层配置
	Transport TransportConfig `json:"transport" yaml:"transport"`

	// Connection 连接与握手配置
	Connection ConnectionConfig `json:"connection" yaml:"connection"`

	// Service 服务调用配置
	Service ServiceConfig `json:"service" yaml:"service"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Namespace prometheus 指标命名空间
	Namespace string `json:"namespace" yaml:"namespace"`
}

// NewConfig 创建默认配置
//
// 返回的配置使用所有组件的默认值，适用于大多数场景。
func NewConfig() *Config {
	return &Config{
		Discovery:  DefaultDiscoveryConfig(),
		Transport:  DefaultTransportConfig(),
		Connection: DefaultConnectionConfig(),
		Service:    DefaultServiceConfig(),
		Metrics:    MetricsConfig{Namespace: "raisin"},
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置是否有效，如果发现无效配置则返回错误。
func (c *Config) Validate() error {
	if err := c.Discovery.Validate(); err != nil {
		return err
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if err := c.Connection.Validate(); err != nil {
		return err
	}
	if err := c.Service.Validate(); err != nil {
		return err
	}
	return nil
}

// Clone 返回配置的深拷贝
func (c *Config) Clone() *Config {
	out := *c
	out.Discovery.Interfaces = append([]string(nil), c.Discovery.Interfaces...)
	out.Discovery.StaticNodes = append([]StaticNode(nil), c.Discovery.StaticNodes...)
	return &out
}
