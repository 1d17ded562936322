package discovery

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/internal/core/metrics"
	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/lib/log"
	"github.com/dep2p/go-raisin/pkg/types"
)

var logger = log.Logger("discovery")

var _ interfaces.Discovery = (*Service)(nil)

// staticSource 静态节点在指标中的来源名称
const staticSource = "static"

// Service 发现服务
type Service struct {
	cfg     config.DiscoveryConfig
	table   *Table
	sources []interfaces.DiscoverySource
	static  []types.NodeAdvertisement
	clock   clock.Clock
	metrics *metrics.Metrics

	mu      sync.Mutex
	running bool
	stopped bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// NewService 创建发现服务
func NewService(cfg config.DiscoveryConfig, sources []interfaces.DiscoverySource, clk clock.Clock, m *metrics.Metrics) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}

	static := make([]types.NodeAdvertisement, 0, len(cfg.StaticNodes))
	for _, n := range cfg.StaticNodes {
		adv, err := n.Advertisement()
		if err != nil {
			return nil, err
		}
		static = append(static, adv)
	}

	return &Service{
		cfg:     cfg,
		table:   NewTable(cfg.MaxNodes, cfg.StaleAfter.Duration(), clk),
		sources: sources,
		static:  static,
		clock:   clk,
		metrics: m,
	}, nil
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 在给定接口上启动所有来源
//
// ifaces 为空时使用配置中的接口；配置也为空时使用系统默认接口。
// 后台协程与 ctx 无关，由 Stop 结束。
func (s *Service) Start(_ context.Context, ifaces []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrDiscoveryStopped
	}
	if s.running {
		return nil
	}

	if len(ifaces) == 0 {
		ifaces = s.cfg.Interfaces
	}
	if len(ifaces) == 0 {
		ifaces = []string{""}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(runCtx)
	s.cancel = cancel
	s.group = g

	s.injectStatic()
	ticker := s.clock.Ticker(s.cfg.BrowseInterval.Duration())
	g.Go(func() error {
		s.refreshLoop(gctx, ticker)
		return nil
	})
	for _, iface := range ifaces {
		for _, src := range s.sources {
			iface, src := iface, src
			g.Go(func() error {
				s.runSource(gctx, src, iface)
				return nil
			})
		}
	}

	s.running = true
	logger.Info("发现服务已启动",
		"interfaces", ifaces,
		"sources", len(s.sources),
		"staticNodes", len(s.static))
	return nil
}

// Stop 停止所有来源并等待后台协程退出（幂等）
func (s *Service) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	running := s.running
	s.running = false
	cancel, g := s.cancel, s.group
	s.mu.Unlock()

	if !running {
		return nil
	}
	cancel()
	err := g.Wait()
	logger.Info("发现服务已停止")
	return err
}

// ============================================================================
//                              查询
// ============================================================================

// GetAllConnections 返回当前可见节点快照
func (s *Service) GetAllConnections() []types.NodeAdvertisement {
	return s.table.Snapshot()
}

// Lookup 按节点 ID、IP 或 ip:port 查找可见节点
func (s *Service) Lookup(robotID string) (types.NodeAdvertisement, bool) {
	return s.table.Lookup(robotID)
}

// Inject 手动写入一条广播（与来源收到的广播同等对待）
func (s *Service) Inject(adv types.NodeAdvertisement) {
	s.handle(staticSource, adv)
}

// ============================================================================
//                              内部实现
// ============================================================================

func (s *Service) handle(source string, adv types.NodeAdvertisement) {
	if adv.ID == "" {
		logger.Debug("丢弃缺少 ID 的广播", "source", source, "ip", adv.IP)
		return
	}
	if existed := s.table.Upsert(adv); !existed && adv.Visible() {
		logger.Debug("发现节点",
			"source", source,
			"id", log.TruncateID(adv.ID, 16),
			"addr", adv.Address(),
			"network", adv.NetworkType.String())
	}
	s.metrics.Advertisement(source)
}

func (s *Service) injectStatic() {
	for _, adv := range s.static {
		s.handle(staticSource, adv)
	}
}

// refreshLoop 周期性注入静态节点并更新可见节点数
func (s *Service) refreshLoop(ctx context.Context, ticker *clock.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.injectStatic()
			s.metrics.VisibleNodes(len(s.table.Snapshot()))
		}
	}
}

// runSource 在一个接口上运行来源，出错后限速重试
func (s *Service) runSource(ctx context.Context, src interfaces.DiscoverySource, iface string) {
	limiter := rate.NewLimiter(rate.Every(s.cfg.RetryInterval.Duration()), 1)
	emit := func(adv types.NodeAdvertisement) { s.handle(src.Name(), adv) }

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		started := s.clock.Now()
		err := src.Run(ctx, iface, emit)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn("发现来源出错，稍后重试",
				"source", src.Name(),
				"interface", iface,
				"uptime", s.clock.Since(started),
				"error", err)
			continue
		}
		logger.Debug("发现来源意外退出，重新启动", "source", src.Name(), "interface", iface)
	}
}
