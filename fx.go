package raisin

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-raisin/internal/core/metrics"
	"github.com/dep2p/go-raisin/internal/core/network"
	"github.com/dep2p/go-raisin/internal/core/transport"
	"github.com/dep2p/go-raisin/internal/discovery"
	"github.com/dep2p/go-raisin/internal/discovery/mdns"
	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/lib/log"
)

var fxLogger = log.Logger("raisin/fx")

// components fx 应用构建出的组件
type components struct {
	fx.In

	Network   *network.Network
	Discovery *discovery.Service
	Metrics   *metrics.Metrics
}

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. Metrics
//  2. Transport
//  3. Discovery: mDNS 来源 → 发现服务
//  4. Network
//
// 停止时按相反顺序：先断开所有连接，再停止发现，最后关闭传输与注销指标。
func buildFxApp(o *options, local discovery.LocalNode, out *components) *fx.App {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置与身份
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(o.config),
		fx.Supply(local),
	}
	if reg := o.registry; reg != nil {
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}
	if clk := o.clock; clk != nil {
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		metrics.Module(),
		transport.Module(),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 3. 发现层
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, mdns.Module())
	for _, src := range o.sources {
		modules = append(modules, fx.Provide(
			fx.Annotate(
				sourceProvider(src),
				fx.ResultTags(`group:"discovery_sources"`),
			),
		))
	}
	modules = append(modules, discovery.Module())

	// ════════════════════════════════════════════════════════════════════════
	// 4. 网络层
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, network.Module())

	// ════════════════════════════════════════════════════════════════════════
	// 5. 用户扩展与组件注入
	// ════════════════════════════════════════════════════════════════════════
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}
	modules = append(modules,
		fx.Invoke(func(c components) { *out = c }),
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	return fx.New(modules...)
}

func sourceProvider(src interfaces.DiscoverySource) func() interfaces.DiscoverySource {
	return func() interfaces.DiscoverySource { return src }
}

// startApp 构建并启动 Fx 应用，失败时已启动的部分会被回滚
func startApp(ctx context.Context, o *options, local discovery.LocalNode) (*fx.App, components, error) {
	var c components
	app := buildFxApp(o, local, &c)
	if err := app.Err(); err != nil {
		return nil, c, fmt.Errorf("build fx app: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		return nil, c, fmt.Errorf("start fx app: %w", err)
	}
	fxLogger.Debug("Fx 应用已启动", "client", local.Name, "id", log.TruncateID(local.ID, 8))
	return app, c, nil
}
