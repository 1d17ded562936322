package network

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/internal/core/conn"
	"github.com/dep2p/go-raisin/internal/core/metrics"
	"github.com/dep2p/go-raisin/internal/protocol/pubsub"
	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/lib/log"
	"github.com/dep2p/go-raisin/pkg/types"
)

var logger = log.Logger("core/network")

// Identity 本地客户端身份
type Identity struct {
	Name string
	ID   string
}

// Network 原始网络 API
type Network struct {
	identity  Identity
	cfg       *config.Config
	discovery interfaces.Discovery
	dial      conn.DialFunc
	clock     clock.Clock
	metrics   *metrics.Metrics

	locks *keyLock

	mu     sync.Mutex
	conns  map[string]*conn.Connection
	closed bool

	wg sync.WaitGroup
}

// New 创建网络
func New(identity Identity, cfg *config.Config, disc interfaces.Discovery, dial conn.DialFunc, clk clock.Clock, m *metrics.Metrics) *Network {
	if clk == nil {
		clk = clock.New()
	}
	return &Network{
		identity:  identity,
		cfg:       cfg,
		discovery: disc,
		dial:      dial,
		clock:     clk,
		metrics:   m,
		locks:     newKeyLock(),
		conns:     make(map[string]*conn.Connection),
	}
}

// GetAllConnections 返回当前可见的节点广播（按 ID 排序）
func (n *Network) GetAllConnections() []types.NodeAdvertisement {
	return n.discovery.GetAllConnections()
}

// Connect 连接已发现的节点
//
// robotID 可以是节点 ID、IP 或 ip:port。节点不在发现表中时立即返回
// ErrNodeNotFound。已有存活连接时直接返回该连接。timeout <= 0 使用
// 配置的握手超时，等待同节点并发连接的时间也计入其中。
func (n *Network) Connect(ctx context.Context, robotID string, timeout time.Duration, cancel *atomic.Bool) (*conn.Connection, error) {
	return n.ConnectWith(ctx, robotID, timeout, cancel, nil)
}

// ConnectWith 与 Connect 相同，setup 在连接的读协程启动前调用
//
// 复用已有连接时 setup 同样会被调用。
func (n *Network) ConnectWith(ctx context.Context, robotID string, timeout time.Duration, cancel *atomic.Bool, setup func(*conn.Connection)) (*conn.Connection, error) {
	if n.isClosed() {
		return nil, ErrNetworkClosed
	}

	adv, ok := n.discovery.Lookup(robotID)
	if !ok {
		n.metrics.ConnectAttempt("not_found")
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, robotID)
	}
	if timeout <= 0 {
		timeout = n.cfg.Connection.HandshakeTimeout.Duration()
	}
	deadline := n.clock.Now().Add(timeout)

	lctx, stop := n.clock.WithDeadline(ctx, deadline)
	unlock, err := n.locks.Lock(lctx, adv.ID)
	stop()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", conn.ErrHandshakeCancelled, ctx.Err())
		}
		return nil, conn.ErrHandshakeTimeout
	}
	defer unlock()

	if existing, ok := n.Connection(adv.ID); ok && existing.IsConnected() {
		logger.Debug("复用已有连接", "node", adv.ID)
		if setup != nil {
			setup(existing)
		}
		return existing, nil
	}

	logger.Info("正在连接节点", "node", adv.ID, "addr", adv.Address(), "network", adv.NetworkType)

	c, err := conn.Dial(ctx, n.dial, adv, n.clock.Until(deadline), cancel, conn.Options{
		ClientName:   n.identity.Name,
		ClientID:     n.identity.ID,
		PollInterval: n.cfg.Connection.PollInterval.Duration(),
		CallTimeout:  n.cfg.Service.CallTimeout.Duration(),
		OnOpen:       setup,
		Clock:        n.clock,
		Metrics:      n.metrics,
	})
	if err != nil {
		logger.Warn("连接节点失败", "node", adv.ID, "err", err)
		return nil, err
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		c.Disconnect()
		return nil, ErrNetworkClosed
	}
	n.conns[adv.ID] = c
	n.wg.Add(1)
	n.mu.Unlock()

	go n.watch(adv.ID, c)
	return c, nil
}

// watch 连接断开后从表中移除
func (n *Network) watch(id string, c *conn.Connection) {
	defer n.wg.Done()
	<-c.Done()

	n.mu.Lock()
	if n.conns[id] == c {
		delete(n.conns, id)
	}
	n.mu.Unlock()
	logger.Debug("连接已移除", "node", id, "reason", c.DisconnectReason())
}

// Connection 返回到 id 的连接
func (n *Network) Connection(id string) (*conn.Connection, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	c, ok := n.conns[id]
	return c, ok
}

// Connections 返回所有连接（按 ID 排序）
func (n *Network) Connections() []*conn.Connection {
	n.mu.Lock()
	out := make([]*conn.Connection, 0, len(n.conns))
	for _, c := range n.conns {
		out = append(out, c)
	}
	n.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Call 调用连接上的服务
func (n *Network) Call(ctx context.Context, c *conn.Connection, service string, payload []byte, timeout time.Duration) types.ServiceResult {
	if c == nil {
		return types.Failure(types.MessageDisconnected)
	}
	return c.Call(ctx, service, payload, timeout)
}

// Subscribe 订阅连接上的话题
func (n *Network) Subscribe(c *conn.Connection, topic string, fn pubsub.Callback) (unsubscribe func()) {
	if c == nil {
		return func() {}
	}
	return c.Subscribe(topic, fn)
}

func (n *Network) isClosed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

// Close 断开所有连接并等待读协程退出（幂等）
func (n *Network) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	conns := make([]*conn.Connection, 0, len(n.conns))
	for _, c := range n.conns {
		conns = append(conns, c)
	}
	n.mu.Unlock()

	for _, c := range conns {
		c.Disconnect()
	}
	for _, c := range conns {
		c.Wait()
	}
	n.wg.Wait()

	logger.Info("网络已关闭", "connections", len(conns))
	return nil
}
