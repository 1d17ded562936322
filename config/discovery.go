package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dep2p/go-raisin/pkg/types"
)

// StaticNode 静态配置的机器人节点
//
// 用于无组播的网络（跨网段、VPN），每次刷新都会注入发现表。
type StaticNode struct {
	// ID 节点 ID，为空时使用 "ip:port"
	ID string `json:"id" yaml:"id"`

	// IP 节点地址
	IP string `json:"ip" yaml:"ip"`

	// Port 节点端口
	Port int `json:"port" yaml:"port"`

	// Network 传输类型（tcp / websocket）
	Network string `json:"network,omitempty" yaml:"network,omitempty"`
}

// Advertisement 转换为节点广播
func (s StaticNode) Advertisement() (types.NodeAdvertisement, error) {
	nt, err := types.ParseNetworkType(s.Network)
	if err != nil {
		return types.NodeAdvertisement{}, err
	}
	adv := types.NodeAdvertisement{
		ID:          s.ID,
		IP:          s.IP,
		Port:        s.Port,
		NetworkType: nt,
	}
	if adv.ID == "" {
		adv.ID = adv.Address()
	}
	return adv, nil
}

// DiscoveryConfig 节点发现配置
type DiscoveryConfig struct {
	// Interfaces 参与发现的网络接口，为空时使用系统默认接口
	Interfaces []string `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`

	// EnableMDNS 是否启用 mDNS
	EnableMDNS bool `json:"enable_mdns" yaml:"enable_mdns"`

	// ServiceTag mDNS 服务类型
	ServiceTag string `json:"service_tag" yaml:"service_tag"`

	// Domain mDNS 域
	Domain string `json:"domain" yaml:"domain"`

	// BrowseInterval 两次浏览之间的间隔
	BrowseInterval Duration `json:"browse_interval" yaml:"browse_interval"`

	// BrowseTimeout 单次浏览等待应答的时间
	BrowseTimeout Duration `json:"browse_timeout" yaml:"browse_timeout"`

	// StaleAfter 广播过期时间，超过后节点从快照中移除
	StaleAfter Duration `json:"stale_after" yaml:"stale_after"`

	// MaxNodes 发现表容量
	MaxNodes int `json:"max_nodes" yaml:"max_nodes"`

	// RetryInterval 接口出错后的最小重试间隔
	RetryInterval Duration `json:"retry_interval" yaml:"retry_interval"`

	// StaticNodes 静态节点列表
	StaticNodes []StaticNode `json:"static_nodes,omitempty" yaml:"static_nodes,omitempty"`
}

// DefaultDiscoveryConfig 返回默认发现配置
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		EnableMDNS:     true,
		ServiceTag:     "_raisin._tcp",
		Domain:         "local.",
		BrowseInterval: Duration(time.Second),
		BrowseTimeout:  Duration(500 * time.Millisecond),
		StaleAfter:     Duration(5 * time.Second),
		MaxNodes:       256,
		RetryInterval:  Duration(2 * time.Second),
	}
}

// Validate 验证发现配置
func (c DiscoveryConfig) Validate() error {
	if c.EnableMDNS && c.ServiceTag == "" {
		return errors.New("discovery: service tag is required when mdns is enabled")
	}
	if c.BrowseInterval <= 0 {
		return errors.New("discovery: browse interval must be positive")
	}
	if c.BrowseTimeout <= 0 || c.BrowseTimeout > c.BrowseInterval {
		return errors.New("discovery: browse timeout must be positive and not exceed browse interval")
	}
	if c.StaleAfter <= c.BrowseInterval {
		return errors.New("discovery: stale_after must be greater than browse interval")
	}
	if c.MaxNodes <= 0 {
		return errors.New("discovery: max nodes must be positive")
	}
	if c.RetryInterval <= 0 {
		return errors.New("discovery: retry interval must be positive")
	}
	for i, n := range c.StaticNodes {
		if n.IP == "" {
			return fmt.Errorf("discovery: static node %d: ip is required", i)
		}
		if n.Port <= 0 || n.Port > 65535 {
			return fmt.Errorf("discovery: static node %d: invalid port %d", i, n.Port)
		}
		if _, err := types.ParseNetworkType(n.Network); err != nil {
			return fmt.Errorf("discovery: static node %d: %w", i, err)
		}
	}
	return nil
}
