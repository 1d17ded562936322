package mdns

import (
	"fmt"
	"net"

	"github.com/hashicorp/mdns"

	"github.com/dep2p/go-raisin/pkg/types"
)

// placeholderPort 自身不监听时 SRV 记录使用的端口（TXT 中的 port=-1 才是权威值）
const placeholderPort = 9

// Announcer 持续应答针对本节点的 mDNS 查询
type Announcer struct {
	server   *mdns.Server
	instance string
}

// Announce 在 iface 上宣告 adv，iface 为空表示系统默认接口
func Announce(cfg Config, adv types.NodeAdvertisement, iface string) (*Announcer, error) {
	var ifi *net.Interface
	if iface != "" {
		found, err := net.InterfaceByName(iface)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInterfaceNotFound, iface, err)
		}
		ifi = found
	}
	return announce(cfg, adv, ifi)
}

func announce(cfg Config, adv types.NodeAdvertisement, ifi *net.Interface) (*Announcer, error) {
	ips, err := localIPs(ifi, cfg.DisableIPv6)
	if err != nil {
		return nil, fmt.Errorf("获取本地 IP 失败: %w", err)
	}
	if len(ips) == 0 {
		return nil, ErrNoAddress
	}

	port := adv.Port
	if port <= 0 {
		port = placeholderPort
	}

	instance := instanceName(adv.ID)
	service, err := mdns.NewMDNSService(
		instance,
		cfg.ServiceTag,
		cfg.Domain,
		"",
		port,
		ips,
		EncodeTXT(adv),
	)
	if err != nil {
		return nil, fmt.Errorf("创建 mDNS 服务失败: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service, Iface: ifi})
	if err != nil {
		return nil, fmt.Errorf("创建 mDNS 服务器失败: %w", err)
	}

	logger.Info("mDNS 宣告已启动",
		"instance", instance,
		"service", cfg.ServiceTag,
		"port", adv.Port,
		"ips", len(ips),
		"publishers", sortedKeys(adv.Publishers),
		"services", sortedKeys(adv.Services))
	return &Announcer{server: server, instance: instance}, nil
}

// Close 停止宣告
func (a *Announcer) Close() error {
	logger.Debug("mDNS 宣告已停止", "instance", a.instance)
	return a.server.Shutdown()
}
