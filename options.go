package raisin

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/pkg/interfaces"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config *config.Config

	// 覆盖配置文件中的同名字段
	interfaces  []string
	staticNodes []config.StaticNode

	registry prometheus.Registerer
	sources  []interfaces.DiscoverySource
	clock    clock.Clock

	userFxOptions []fx.Option
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// apply 应用选项并返回最终配置
func (o *options) apply(opts []Option) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return fmt.Errorf("apply option: %w", err)
		}
	}
	if len(o.interfaces) > 0 {
		o.config.Discovery.Interfaces = append([]string(nil), o.interfaces...)
	}
	if len(o.staticNodes) > 0 {
		o.config.Discovery.StaticNodes = append(o.config.Discovery.StaticNodes, o.staticNodes...)
	}
	return o.config.Validate()
}

// WithConfig 使用给定配置（会被复制）
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg.Clone()
		return nil
	}
}

// WithConfigFile 从 JSON 或 YAML 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithInterfaces 设置参与发现的网卡
func WithInterfaces(ifaces ...string) Option {
	return func(o *options) error {
		o.interfaces = append(o.interfaces, ifaces...)
		return nil
	}
}

// WithStaticNodes 添加静态节点
func WithStaticNodes(nodes ...config.StaticNode) Option {
	return func(o *options) error {
		o.staticNodes = append(o.staticNodes, nodes...)
		return nil
	}
}

// WithMDNS 启用或禁用 mDNS
func WithMDNS(enable bool) Option {
	return func(o *options) error {
		o.config.Discovery.EnableMDNS = enable
		return nil
	}
}

// WithMetricsRegistry 把指标注册到 reg（默认使用私有 Registry）
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registry = reg
		return nil
	}
}

// WithDiscoverySource 添加额外的发现来源
func WithDiscoverySource(src interfaces.DiscoverySource) Option {
	return func(o *options) error {
		if src == nil {
			return errors.New("discovery source is nil")
		}
		o.sources = append(o.sources, src)
		return nil
	}
}

// WithClock 替换时钟（测试用）
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithFxOptions 追加 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
