package discovery

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/internal/core/metrics"
	"github.com/dep2p/go-raisin/pkg/interfaces"
)

// LocalNode 本地客户端身份，用于自身广播
type LocalNode struct {
	Name string
	ID   string
}

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config  *config.Config
	Sources []interfaces.DiscoverySource `group:"discovery_sources"`
	Clock   clock.Clock                  `optional:"true"`
	Metrics *metrics.Metrics             `optional:"true"`
}

// Module 返回 Fx 模块
//
// 来源通过 group "discovery_sources" 注入。
func Module() fx.Option {
	return fx.Module("discovery",
		fx.Provide(
			ProvideService,
			func(s *Service) interfaces.Discovery { return s },
		),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideService 提供发现服务
func ProvideService(in ModuleInput) (*Service, error) {
	return NewService(in.Config.Discovery, in.Sources, in.Clock, in.Metrics)
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, s *Service, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start(ctx, cfg.Discovery.Interfaces)
		},
		OnStop: func(_ context.Context) error {
			return s.Stop()
		},
	})
}
