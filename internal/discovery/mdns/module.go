package mdns

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/internal/discovery"
	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/types"
)

// Module 返回 Fx 模块
//
// 启用 mDNS 时向 group "discovery_sources" 提供一个来源。
func Module() fx.Option {
	return fx.Module("discovery/mdns",
		fx.Provide(
			fx.Annotate(
				ProvideSources,
				fx.ResultTags(`group:"discovery_sources,flatten"`),
			),
		),
	)
}

// SourceParams mDNS 来源依赖参数
type SourceParams struct {
	fx.In

	Config *config.Config
	Local  discovery.LocalNode
	Clock  clock.Clock `optional:"true"`
}

// ProvideSources 按配置提供 mDNS 来源
//
// 客户端不监听端口，自身广播使用 port=-1，对其他客户端不可见。
func ProvideSources(p SourceParams) []interfaces.DiscoverySource {
	if !p.Config.Discovery.EnableMDNS {
		return nil
	}
	cfg := ConfigFromUnified(p.Config.Discovery)
	cfg.Clock = p.Clock
	self := types.NodeAdvertisement{ID: p.Local.ID, Port: -1}
	return []interfaces.DiscoverySource{New(cfg, self)}
}
