package network

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/internal/core/metrics"
	"github.com/dep2p/go-raisin/internal/core/transport"
	"github.com/dep2p/go-raisin/internal/discovery"
	"github.com/dep2p/go-raisin/pkg/interfaces"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config    *config.Config
	Local     discovery.LocalNode
	Discovery interfaces.Discovery
	Transport *transport.TransportManager
	Clock     clock.Clock      `optional:"true"`
	Metrics   *metrics.Metrics `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("network",
		fx.Provide(ProvideNetwork),
	)
}

// ProvideNetwork 提供网络，并在停止时关闭
func ProvideNetwork(lc fx.Lifecycle, in ModuleInput) *Network {
	n := New(
		Identity{Name: in.Local.Name, ID: in.Local.ID},
		in.Config,
		in.Discovery,
		in.Transport.Dial,
		in.Clock,
		in.Metrics,
	)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return n.Close()
		},
	})
	return n
}
