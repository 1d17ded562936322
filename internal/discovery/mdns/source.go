package mdns

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/mdns"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/lib/log"
	"github.com/dep2p/go-raisin/pkg/types"
)

var logger = log.Logger("discovery/mdns")

var _ interfaces.DiscoverySource = (*Source)(nil)

// ============================================================================
//                              配置
// ============================================================================

// Config mDNS 来源配置
type Config struct {
	// ServiceTag 服务类型，例如 "_raisin._tcp"
	ServiceTag string

	// Domain 域名
	Domain string

	// BrowseInterval 两次查询之间的间隔
	BrowseInterval time.Duration

	// BrowseTimeout 单次查询等待应答的时间
	BrowseTimeout time.Duration

	// DisableIPv6 禁用 IPv6
	DisableIPv6 bool

	// Clock 为 nil 时使用系统时钟
	Clock clock.Clock
}

// ConfigFromUnified 从统一配置创建 mDNS 配置
func ConfigFromUnified(cfg config.DiscoveryConfig) Config {
	return Config{
		ServiceTag:     cfg.ServiceTag,
		Domain:         cfg.Domain,
		BrowseInterval: cfg.BrowseInterval.Duration(),
		BrowseTimeout:  cfg.BrowseTimeout.Duration(),
		DisableIPv6:    true, // 机器人局域网以 IPv4 为主
	}
}

// ============================================================================
//                              Source
// ============================================================================

// Source mDNS 广播来源
type Source struct {
	cfg   Config
	self  types.NodeAdvertisement
	clock clock.Clock
}

// New 创建 mDNS 来源，self 是本节点要宣告的广播
func New(cfg Config, self types.NodeAdvertisement) *Source {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Source{
		cfg:   cfg,
		self:  self.Clone(),
		clock: clk,
	}
}

// Name 返回来源名称
func (s *Source) Name() string { return "mdns" }

// Run 在 iface 上宣告自身并周期性查询，直到 ctx 取消
func (s *Source) Run(ctx context.Context, iface string, emit func(types.NodeAdvertisement)) error {
	var ifi *net.Interface
	if iface != "" {
		found, err := net.InterfaceByName(iface)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInterfaceNotFound, iface, err)
		}
		ifi = found
	}

	announcer, err := announce(s.cfg, s.self, ifi)
	if err != nil {
		return err
	}
	defer func() {
		_ = announcer.Close()
	}()

	ticker := s.clock.Ticker(s.cfg.BrowseInterval)
	defer ticker.Stop()

	for {
		if err := s.browse(ifi, emit); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// browse 执行一次查询，阻塞至多 BrowseTimeout
func (s *Source) browse(ifi *net.Interface, emit func(types.NodeAdvertisement)) error {
	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			if adv, ok := decodeEntry(entry); ok {
				emit(adv)
			}
		}
	}()

	params := &mdns.QueryParam{
		Service:     s.cfg.ServiceTag,
		Domain:      s.cfg.Domain,
		Timeout:     s.cfg.BrowseTimeout,
		Interface:   ifi,
		Entries:     entries,
		DisableIPv6: s.cfg.DisableIPv6,
	}
	err := mdns.Query(params)

	close(entries)
	<-done

	if err != nil {
		return fmt.Errorf("mDNS 查询失败: %w", err)
	}
	return nil
}

// decodeEntry 把查询结果转换为节点广播
func decodeEntry(entry *mdns.ServiceEntry) (types.NodeAdvertisement, bool) {
	if entry == nil {
		return types.NodeAdvertisement{}, false
	}
	adv, hasPort := DecodeTXT(entry.InfoFields)
	if adv.ID == "" {
		logger.Debug("跳过缺少 id 的 mDNS 条目", "name", entry.Name)
		return adv, false
	}

	switch {
	case entry.AddrV4 != nil:
		adv.IP = entry.AddrV4.String()
	case entry.AddrV6 != nil:
		adv.IP = entry.AddrV6.String()
	default:
		return adv, false
	}
	if !hasPort {
		adv.Port = entry.Port
	}
	return adv, true
}
