package conn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-raisin/internal/core/metrics"
	"github.com/dep2p/go-raisin/internal/core/wire"
	"github.com/dep2p/go-raisin/internal/protocol/pubsub"
	"github.com/dep2p/go-raisin/internal/protocol/service"
	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/lib/log"
	"github.com/dep2p/go-raisin/pkg/types"
)

var logger = log.Logger("core/conn")

// DialFunc 按节点广播建立传输连接
type DialFunc func(ctx context.Context, adv types.NodeAdvertisement) (interfaces.Conn, error)

// Options 连接参数
type Options struct {
	// ClientName 握手时上报的客户端名称
	ClientName string

	// ClientID 握手时上报的客户端 ID
	ClientID string

	// PollInterval 等待握手时检查取消标志的间隔
	PollInterval time.Duration

	// CallTimeout 服务调用的默认超时
	CallTimeout time.Duration

	// OnOpen 在读协程启动前调用，用于预先注册订阅
	OnOpen func(*Connection)

	Clock   clock.Clock
	Metrics *metrics.Metrics
}

func (o *Options) fill() {
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 50 * time.Millisecond
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = 5 * time.Second
	}
}

// Connection 到单个机器人节点的连接
type Connection struct {
	adv       types.NodeAdvertisement
	transport interfaces.Conn
	opts      Options

	channel *pubsub.Channel
	invoker *service.Invoker

	mu         sync.RWMutex
	connected  bool
	nodeID     string
	publishers map[string]types.TypeDescriptor
	services   map[string]types.TypeDescriptor
	reason     string

	handshake     chan struct{}
	handshakeOnce sync.Once
	done          chan struct{}
	closeOnce     sync.Once
	closing       atomic.Bool
}

// ============================================================================
//                              建立连接
// ============================================================================

// Dial 拨号并完成握手
//
// 拨号与握手共享同一截止时间，总耗时至多 timeout。
// 每隔 PollInterval 检查 cancel，同时响应 ctx。
// 取消返回 ErrHandshakeCancelled，超时返回 ErrHandshakeTimeout；
// 失败时已打开的传输连接会被关闭。
func Dial(ctx context.Context, dial DialFunc, adv types.NodeAdvertisement, timeout time.Duration, cancel *atomic.Bool, opts Options) (*Connection, error) {
	opts.fill()
	deadline := opts.Clock.Now().Add(timeout)

	if timeout <= 0 {
		opts.Metrics.ConnectAttempt("timeout")
		return nil, ErrHandshakeTimeout
	}

	dctx, stop := opts.Clock.WithDeadline(ctx, deadline)
	defer stop()
	go watchCancel(dctx, stop, cancel, opts.Clock, opts.PollInterval)

	tr, err := dial(dctx, adv)
	if err != nil {
		switch {
		case cancelled(cancel):
			opts.Metrics.ConnectAttempt("cancelled")
			return nil, ErrHandshakeCancelled
		case ctx.Err() != nil:
			opts.Metrics.ConnectAttempt("cancelled")
			return nil, fmt.Errorf("%w: %v", ErrHandshakeCancelled, ctx.Err())
		case errors.Is(dctx.Err(), context.DeadlineExceeded), !opts.Clock.Now().Before(deadline):
			opts.Metrics.ConnectAttempt("timeout")
			logger.Debug("拨号超时", "node", adv.ID, "addr", adv.Address(), "err", err)
			return nil, ErrHandshakeTimeout
		}
		opts.Metrics.ConnectAttempt("dial_error")
		return nil, fmt.Errorf("dial %s: %w", adv.Address(), err)
	}

	c, err := Open(tr, adv, opts)
	if err != nil {
		opts.Metrics.ConnectAttempt("dial_error")
		return nil, err
	}

	if err := c.WaitHandshake(ctx, opts.Clock.Until(deadline), cancel); err != nil {
		c.Disconnect()
		switch {
		case errors.Is(err, ErrHandshakeTimeout):
			opts.Metrics.ConnectAttempt("timeout")
		case errors.Is(err, ErrHandshakeCancelled):
			opts.Metrics.ConnectAttempt("cancelled")
		default:
			opts.Metrics.ConnectAttempt("disconnected")
		}
		return nil, err
	}
	opts.Metrics.ConnectAttempt("success")
	return c, nil
}

// Open 在已建立的传输连接上发送 Hello 并启动读协程
func Open(tr interfaces.Conn, adv types.NodeAdvertisement, opts Options) (*Connection, error) {
	opts.fill()
	c := &Connection{
		adv:        adv.Clone(),
		transport:  tr,
		opts:       opts,
		channel:    pubsub.NewChannel(opts.Clock, opts.Metrics),
		publishers: make(map[string]types.TypeDescriptor),
		services:   make(map[string]types.TypeDescriptor),
		handshake:  make(chan struct{}),
		done:       make(chan struct{}),
	}
	c.invoker = service.NewInvoker(c.sendRequest, opts.CallTimeout, opts.Clock, opts.Metrics)

	hello := &wire.Hello{ClientName: opts.ClientName, ClientID: opts.ClientID}
	if err := c.write(hello); err != nil {
		_ = tr.Close()
		return nil, fmt.Errorf("send hello: %w", err)
	}

	logger.Debug("已发送握手请求", "node", adv.ID, "addr", adv.Address(), "network", adv.NetworkType)

	if opts.OnOpen != nil {
		opts.OnOpen(c)
	}
	go c.readLoop()
	return c, nil
}

// WaitHandshake 等待握手完成
func (c *Connection) WaitHandshake(ctx context.Context, timeout time.Duration, cancel *atomic.Bool) error {
	if timeout <= 0 {
		return ErrHandshakeTimeout
	}
	timer := c.opts.Clock.Timer(timeout)
	defer timer.Stop()
	ticker := c.opts.Clock.Ticker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		if cancelled(cancel) {
			return ErrHandshakeCancelled
		}
		select {
		case <-c.handshake:
			return nil
		case <-c.done:
			return fmt.Errorf("%w: %s", ErrDisconnected, c.DisconnectReason())
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrHandshakeCancelled, ctx.Err())
		case <-timer.C:
			return ErrHandshakeTimeout
		case <-ticker.C:
		}
	}
}

func cancelled(flag *atomic.Bool) bool {
	return flag != nil && flag.Load()
}

// watchCancel 轮询取消标志，置位后取消 ctx
func watchCancel(ctx context.Context, stop context.CancelFunc, flag *atomic.Bool, clk clock.Clock, interval time.Duration) {
	if flag == nil {
		return
	}
	ticker := clk.Ticker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if flag.Load() {
				stop()
				return
			}
		}
	}
}

// ============================================================================
//                              读协程
// ============================================================================

func (c *Connection) readLoop() {
	defer close(c.done)

	reason := "closed"
	defer func() { c.teardown(reason) }()

	for {
		frame, err := c.transport.ReadFrame()
		if err != nil {
			if !c.closing.Load() {
				reason = err.Error()
				logger.Info("连接已断开", "node", c.adv.ID, "err", err)
			}
			return
		}

		msg, err := wire.Decode(frame)
		if err != nil {
			c.opts.Metrics.DecodeError()
			logger.Debug("丢弃无法解码的帧", "node", c.adv.ID, "err", err)
			continue
		}
		c.opts.Metrics.FrameReceived(msg.Kind().String())

		switch m := msg.(type) {
		case *wire.HelloAck:
			c.onHelloAck(m)
		case *wire.Publish:
			if !c.IsConnected() {
				logger.Debug("握手完成前丢弃发布帧", "node", c.adv.ID, "topic", m.Topic)
				continue
			}
			c.channel.Dispatch(m.Topic, m.Sequence, m.Payload)
		case *wire.Response:
			if !c.IsConnected() {
				logger.Debug("握手完成前丢弃应答", "node", c.adv.ID)
				continue
			}
			c.invoker.Complete(m)
		case *wire.Bye:
			reason = "remote bye"
			if m.Reason != "" {
				reason = "remote bye: " + m.Reason
			}
			logger.Info("对端主动断开", "node", c.adv.ID, "reason", m.Reason)
			return
		default:
			logger.Debug("忽略意外的消息", "node", c.adv.ID, "kind", msg.Kind())
		}
	}
}

func (c *Connection) onHelloAck(m *wire.HelloAck) {
	c.mu.Lock()
	c.nodeID = m.NodeID
	c.publishers = types.CloneCatalog(m.Publishers)
	c.services = types.CloneCatalog(m.Services)
	first := !c.connected
	c.connected = true
	c.mu.Unlock()

	if first {
		c.handshakeOnce.Do(func() { close(c.handshake) })
		c.opts.Metrics.ConnectionOpened()
		logger.Info("握手完成",
			"node", c.adv.ID,
			"addr", c.adv.Address(),
			"publishers", len(m.Publishers),
			"services", len(m.Services))
		return
	}
	logger.Debug("目录已刷新", "node", c.adv.ID)
}

// teardown 仅执行一次：标记断开、结束挂起调用、停止分发、关闭传输
func (c *Connection) teardown(reason string) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		wasConnected := c.connected
		c.connected = false
		c.reason = reason
		c.mu.Unlock()

		failed := c.invoker.FailAll(types.MessageDisconnected)
		c.channel.Close()
		_ = c.transport.Close()

		if wasConnected {
			c.opts.Metrics.ConnectionClosed()
		}
		logger.Debug("连接已清理", "node", c.adv.ID, "reason", reason, "failedCalls", failed)
	})
}

// ============================================================================
//                              写入
// ============================================================================

func (c *Connection) write(m wire.Message) error {
	if err := c.transport.WriteFrame(wire.Encode(m)); err != nil {
		return err
	}
	c.opts.Metrics.FrameSent(m.Kind().String())
	return nil
}

func (c *Connection) sendRequest(req *wire.Request) error {
	if !c.IsConnected() {
		return ErrDisconnected
	}
	return c.write(req)
}

// ============================================================================
//                              公共方法
// ============================================================================

// Call 调用节点上的服务
func (c *Connection) Call(ctx context.Context, service string, payload []byte, timeout time.Duration) types.ServiceResult {
	return c.invoker.Call(ctx, service, payload, timeout)
}

// Subscribe 订阅话题，回调在读协程上执行
func (c *Connection) Subscribe(topic string, fn pubsub.Callback) (unsubscribe func()) {
	return c.channel.Subscribe(topic, fn)
}

// Latest 返回话题最近一帧
func (c *Connection) Latest(topic string) (pubsub.Frame, bool) {
	return c.channel.Latest(topic)
}

// PendingCalls 返回挂起的服务调用数量
func (c *Connection) PendingCalls() int {
	return c.invoker.Pending()
}

// Disconnect 断开连接（幂等）
//
// 尽力发送 Bye，然后关闭传输并以 "disconnected" 结束挂起的调用。
// 不等待读协程退出，需要时使用 Wait。
func (c *Connection) Disconnect() {
	if c.closing.Swap(true) {
		return
	}
	if c.IsConnected() {
		if err := c.write(&wire.Bye{Reason: "client disconnect"}); err != nil {
			logger.Debug("发送 Bye 失败", "node", c.adv.ID, "err", err)
		}
	}
	c.teardown("local disconnect")
	logger.Info("已断开连接", "node", c.adv.ID)
}

// Done 在读协程退出后关闭
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Wait 等待读协程退出
func (c *Connection) Wait() {
	<-c.done
}

// IsConnected 是否已完成握手且未断开
func (c *Connection) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// DisconnectReason 返回断开原因，连接中返回空字符串
func (c *Connection) DisconnectReason() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reason
}

// Publishers 返回节点发布的话题（副本）
func (c *Connection) Publishers() map[string]types.TypeDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return types.CloneCatalog(c.publishers)
}

// Services 返回节点提供的服务（副本）
func (c *Connection) Services() map[string]types.TypeDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return types.CloneCatalog(c.services)
}

// NodeID 返回握手中节点上报的 ID
func (c *Connection) NodeID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodeID
}

// ID 返回发现层中的节点 ID
func (c *Connection) ID() string { return c.adv.ID }

// IP 返回节点 IP
func (c *Connection) IP() string { return c.adv.IP }

// Port 返回节点端口
func (c *Connection) Port() int { return c.adv.Port }

// NetworkType 返回传输类型
func (c *Connection) NetworkType() types.NetworkType { return c.adv.NetworkType }

// Address 返回 ip:port
func (c *Connection) Address() string { return c.adv.Address() }
