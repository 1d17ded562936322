package sim

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/pkg/types"
)

// Config 模拟节点配置
type Config struct {
	// ID 节点 ID
	ID string

	// ListenAddr 监听地址，端口为 0 表示自动分配
	ListenAddr string

	// Network 传输类型
	Network types.NetworkType

	// PublishRate robot_state 发布频率（Hz）
	PublishRate float64

	// TransitionTime 站立/坐下动作耗时
	TransitionTime time.Duration

	// RequireControl 站立/坐下是否要求先获取控制权
	RequireControl bool

	// Announce 是否通过 mDNS 宣告
	Announce bool

	// Interface mDNS 宣告使用的网卡，空表示默认
	Interface string

	Transport config.TransportConfig
	Discovery config.DiscoveryConfig

	// Clock 为 nil 时使用系统时钟
	Clock clock.Clock
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		ID:             "raibo",
		ListenAddr:     "127.0.0.1:0",
		Network:        types.NetworkTCP,
		PublishRate:    50,
		TransitionTime: time.Second,
		RequireControl: true,
		Transport:      config.DefaultTransportConfig(),
		Discovery:      config.DefaultDiscoveryConfig(),
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.ID == "" {
		return errors.New("sim: id is required")
	}
	if c.PublishRate <= 0 || c.PublishRate > 1000 {
		return errors.New("sim: publish rate must be in (0, 1000]")
	}
	if c.TransitionTime < 0 {
		return errors.New("sim: transition time must not be negative")
	}
	return c.Transport.Validate()
}
