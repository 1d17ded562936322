package transport

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/internal/core/transport/tcp"
	"github.com/dep2p/go-raisin/internal/core/transport/websocket"
	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/lib/log"
	"github.com/dep2p/go-raisin/pkg/types"
)

var logger = log.Logger("core/transport")

// NewDialer 按传输类型创建拨号器
func NewDialer(nt types.NetworkType, cfg config.TransportConfig) (interfaces.Dialer, error) {
	switch nt {
	case types.NetworkTCP:
		return tcp.NewDialer(cfg), nil
	case types.NetworkWebSocket:
		return websocket.NewDialer(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedNetwork, nt)
	}
}

// Listen 按传输类型创建监听器
func Listen(nt types.NetworkType, addr string, cfg config.TransportConfig) (interfaces.Listener, error) {
	switch nt {
	case types.NetworkTCP:
		return tcp.Listen(addr, cfg)
	case types.NetworkWebSocket:
		return websocket.Listen(addr, cfg)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedNetwork, nt)
	}
}

// ============================================================================
//                              TransportManager
// ============================================================================

// TransportManager 传输管理器
//
// 持有每种传输类型的拨号器，并跟踪所有拨出的连接。
type TransportManager struct {
	cfg     config.TransportConfig
	dialers map[types.NetworkType]interfaces.Dialer

	mu     sync.Mutex
	conns  map[interfaces.Conn]struct{}
	closed bool
}

// NewTransportManager 创建传输管理器
func NewTransportManager(cfg config.TransportConfig) *TransportManager {
	tm := &TransportManager{
		cfg:     cfg,
		dialers: make(map[types.NetworkType]interfaces.Dialer),
		conns:   make(map[interfaces.Conn]struct{}),
	}
	for _, nt := range []types.NetworkType{types.NetworkTCP, types.NetworkWebSocket} {
		d, _ := NewDialer(nt, cfg)
		tm.dialers[nt] = d
	}
	logger.Debug("创建传输管理器", "maxFrameSize", cfg.MaxFrameSize)
	return tm
}

// Dial 按节点广播拨号
func (tm *TransportManager) Dial(ctx context.Context, adv types.NodeAdvertisement) (interfaces.Conn, error) {
	d, ok := tm.dialers[adv.NetworkType]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedNetwork, adv.NetworkType)
	}

	tm.mu.Lock()
	closed := tm.closed
	tm.mu.Unlock()
	if closed {
		return nil, ErrManagerClosed
	}

	c, err := d.Dial(ctx, adv.IP, adv.Port)
	if err != nil {
		return nil, err
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.closed {
		c.Close()
		return nil, ErrManagerClosed
	}
	tracked := &trackedConn{Conn: c, tm: tm}
	tm.conns[tracked] = struct{}{}
	return tracked, nil
}

// ActiveConns 返回当前跟踪的连接数
func (tm *TransportManager) ActiveConns() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.conns)
}

// Close 关闭所有拨出的连接
func (tm *TransportManager) Close() error {
	tm.mu.Lock()
	tm.closed = true
	conns := make([]interfaces.Conn, 0, len(tm.conns))
	for c := range tm.conns {
		conns = append(conns, c)
	}
	tm.mu.Unlock()

	var err error
	for _, c := range conns {
		err = multierr.Append(err, c.Close())
	}
	return err
}

func (tm *TransportManager) untrack(c interfaces.Conn) {
	tm.mu.Lock()
	delete(tm.conns, c)
	tm.mu.Unlock()
}

// trackedConn 关闭时从管理器中移除
type trackedConn struct {
	interfaces.Conn
	tm   *TransportManager
	once sync.Once
}

func (c *trackedConn) Close() error {
	c.once.Do(func() { c.tm.untrack(c) })
	return c.Conn.Close()
}

// ============================================================================
//                              Fx 模块
// ============================================================================

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(ProvideTransportManager),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideTransportManager 从统一配置提供传输管理器
func ProvideTransportManager(cfg *config.Config) *TransportManager {
	return NewTransportManager(cfg.Transport)
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, tm *TransportManager) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return tm.Close()
		},
	})
}
