package raisin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/internal/core/conn"
	"github.com/dep2p/go-raisin/internal/core/metrics"
	"github.com/dep2p/go-raisin/internal/core/network"
	"github.com/dep2p/go-raisin/internal/core/wire"
	"github.com/dep2p/go-raisin/internal/discovery"
	"github.com/dep2p/go-raisin/internal/protocol/pubsub"
	"github.com/dep2p/go-raisin/pkg/lib/log"
	"github.com/dep2p/go-raisin/pkg/types"
)

var logger = log.Logger("raisin")

// stopTimeout 关闭时等待 Fx 停止钩子的上限
const stopTimeout = 10 * time.Second

// RobotStateCallback 机器人状态回调，在连接的读协程上执行
type RobotStateCallback func(*types.ExtendedRobotState)

type stateSubscriber struct {
	id     uint64
	fn     RobotStateCallback
	active atomic.Bool
}

// Client 机器人客户端
//
// 一个 Client 同时最多连接一个机器人。所有方法都可以并发调用。
type Client struct {
	name   string
	id     string
	cfg    *config.Config
	clock  clock.Clock
	app    *fx.App
	net    *network.Network
	disc   *discovery.Service
	metric *metrics.Metrics

	// connectSem 串行化 Connect，容量为 1
	connectSem chan struct{}

	mu     sync.Mutex
	conn   *conn.Connection
	closed bool
	wg     sync.WaitGroup

	mode atomic.Int32

	stateMu  sync.RWMutex
	latest   types.ExtendedRobotState
	subs     []*stateSubscriber
	nextSub  uint64
	hasState bool
}

// New 创建并启动客户端
//
// 启动失败（例如无法创建套接字）时已启动的组件会被停止。
func New(name string, opts ...Option) (*Client, error) {
	o := newOptions()
	if err := o.apply(opts); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	clk := o.clock
	if clk == nil {
		clk = clock.New()
	}

	c := &Client{
		name:  name,
		id:    types.NewClientID(),
		cfg:   o.config,
		clock: clk,

		connectSem: make(chan struct{}, 1),
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	app, comps, err := startApp(ctx, o, discovery.LocalNode{Name: name, ID: c.id})
	if err != nil {
		return nil, err
	}
	c.app = app
	c.net = comps.Network
	c.disc = comps.Discovery
	c.metric = comps.Metrics

	logger.Info("客户端已启动",
		"name", name,
		"id", types.ShortID(c.id),
		"interfaces", o.config.Discovery.Interfaces,
		"mdns", o.config.Discovery.EnableMDNS,
		"staticNodes", len(o.config.Discovery.StaticNodes))
	return c, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              基本信息
// ════════════════════════════════════════════════════════════════════════════

// Name 返回客户端名称
func (c *Client) Name() string { return c.name }

// ID 返回客户端 ID
func (c *Client) ID() string { return c.id }

// Config 返回生效配置的副本
func (c *Client) Config() *config.Config { return c.cfg.Clone() }

// Network 返回原始网络 API
func (c *Client) Network() *network.Network { return c.net }

// GetAllConnections 返回当前发现的节点
func (c *Client) GetAllConnections() []types.NodeAdvertisement {
	return c.net.GetAllConnections()
}

// ════════════════════════════════════════════════════════════════════════════
//                              连接
// ════════════════════════════════════════════════════════════════════════════

// Connect 连接机器人
//
// 先等待 robotID 出现在发现表中，再完成握手；两者共享同一个 timeout
// （<= 0 使用配置的握手超时）。robotID 可以是节点 ID、IP 或 ip:port。
// 每隔 poll_interval 检查一次 cancel。已连接到同一机器人时直接返回 nil，
// 已连接到其他机器人时返回 ErrAlreadyConnected。并发调用串行执行，
// 排队时间同样计入 timeout。
func (c *Client) Connect(ctx context.Context, robotID string, timeout time.Duration, cancel *atomic.Bool) error {
	if done, err := c.checkExisting(robotID); done {
		return err
	}

	if timeout <= 0 {
		timeout = c.cfg.Connection.HandshakeTimeout.Duration()
	}
	deadline := c.clock.Now().Add(timeout)

	if err := c.acquireConnect(ctx, deadline, cancel); err != nil {
		return err
	}
	defer func() { <-c.connectSem }()

	// 等待期间可能已有其他调用完成连接
	if done, err := c.checkExisting(robotID); done {
		return err
	}

	if err := c.waitDiscovered(ctx, robotID, deadline, cancel); err != nil {
		logger.Warn("等待节点出现超时或被取消", "robot", robotID, "err", err)
		return err
	}

	remaining := c.clock.Until(deadline)
	if remaining <= 0 {
		return ErrHandshakeTimeout
	}
	cn, err := c.net.ConnectWith(ctx, robotID, remaining, cancel, c.attach)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cn.Disconnect()
		return ErrClientClosed
	}
	if c.conn == cn {
		c.mu.Unlock()
		return nil
	}
	if existing := c.conn; existing != nil && existing.IsConnected() {
		c.mu.Unlock()
		cn.Disconnect()
		return fmt.Errorf("%w: %s", ErrAlreadyConnected, existing.ID())
	}
	c.conn = cn
	c.wg.Add(1)
	c.mu.Unlock()

	go c.watch(cn)

	logger.Info("已连接机器人", "robot", cn.ID(), "addr", cn.Address(), "network", cn.NetworkType().DisplayName())
	return nil
}

// checkExisting 检查当前连接，done 为 true 时 Connect 直接返回 err
//
// 已连接同一机器人返回 nil，已连接其他机器人返回 ErrAlreadyConnected。
func (c *Client) checkExisting(robotID string) (done bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true, ErrClientClosed
	}
	existing := c.conn
	if existing == nil || !existing.IsConnected() {
		return false, nil
	}
	if c.resolveID(robotID) == existing.ID() {
		return true, nil
	}
	return true, fmt.Errorf("%w: %s", ErrAlreadyConnected, existing.ID())
}

// attach 在连接读协程启动前注册状态订阅
//
// 连接已被当前客户端持有时跳过，避免重复订阅。
func (c *Client) attach(cn *conn.Connection) {
	c.mu.Lock()
	owned := c.conn == cn
	c.mu.Unlock()
	if !owned {
		cn.Subscribe(types.TopicRobotState, c.onStateFrame)
	}
}

// acquireConnect 获取连接许可，等待时间计入 deadline
func (c *Client) acquireConnect(ctx context.Context, deadline time.Time, cancel *atomic.Bool) error {
	select {
	case c.connectSem <- struct{}{}:
		return nil
	default:
	}

	ticker := c.clock.Ticker(c.cfg.Connection.PollInterval.Duration())
	defer ticker.Stop()
	timer := c.clock.Timer(c.clock.Until(deadline))
	defer timer.Stop()

	for {
		select {
		case c.connectSem <- struct{}{}:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrHandshakeCancelled, ctx.Err())
		case <-timer.C:
			return ErrHandshakeTimeout
		case <-ticker.C:
			if cancel != nil && cancel.Load() {
				return ErrHandshakeCancelled
			}
		}
	}
}

// resolveID 把 robotID 解析为发现表中的节点 ID
func (c *Client) resolveID(robotID string) string {
	if adv, ok := c.disc.Lookup(robotID); ok {
		return adv.ID
	}
	return robotID
}

// waitDiscovered 轮询发现表直到 robotID 可见
func (c *Client) waitDiscovered(ctx context.Context, robotID string, deadline time.Time, cancel *atomic.Bool) error {
	if _, ok := c.disc.Lookup(robotID); ok {
		return nil
	}

	ticker := c.clock.Ticker(c.cfg.Connection.PollInterval.Duration())
	defer ticker.Stop()
	timer := c.clock.Timer(c.clock.Until(deadline))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrHandshakeCancelled, ctx.Err())
		case <-timer.C:
			return fmt.Errorf("%w: %s not discovered", ErrHandshakeTimeout, robotID)
		case <-ticker.C:
		}
		if cancel != nil && cancel.Load() {
			return ErrHandshakeCancelled
		}
		if _, ok := c.disc.Lookup(robotID); ok {
			return nil
		}
	}
}

// watch 连接断开后清理
func (c *Client) watch(cn *conn.Connection) {
	defer c.wg.Done()
	<-cn.Done()

	c.mu.Lock()
	if c.conn == cn {
		c.conn = nil
	}
	c.mu.Unlock()
	logger.Info("机器人连接已断开", "robot", cn.ID(), "reason", cn.DisconnectReason())
}

// Connection 返回当前连接
func (c *Client) Connection() (*conn.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	if c.conn == nil || !c.conn.IsConnected() {
		return nil, ErrNotConnected
	}
	return c.conn, nil
}

// IsConnected 是否已连接机器人
func (c *Client) IsConnected() bool {
	_, err := c.Connection()
	return err == nil
}

// Disconnect 断开当前机器人并等待读协程退出
func (c *Client) Disconnect() error {
	c.mu.Lock()
	cn := c.conn
	c.mu.Unlock()
	if cn == nil {
		return ErrNotConnected
	}
	cn.Disconnect()
	cn.Wait()
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              机器人状态
// ════════════════════════════════════════════════════════════════════════════

// onStateFrame 在读协程上执行：解码、更新缓存与控制模式镜像、回调订阅者
func (c *Client) onStateFrame(f pubsub.Frame) {
	state, err := wire.DecodeRobotState(f.Payload)
	if err != nil {
		c.metric.DecodeError()
		logger.Debug("丢弃无法解码的状态帧", "seq", f.Sequence, "err", err)
		return
	}
	state.Sequence = f.Sequence
	state.ReceivedAt = f.ReceivedAt

	c.stateMu.Lock()
	c.latest = state
	c.hasState = true
	subs := c.subs
	c.stateMu.Unlock()

	c.mode.Store(int32(modeFromJoy(state.JoySource)))

	for _, s := range subs {
		if !s.active.Load() {
			continue
		}
		c.deliver(s, state)
	}
}

func (c *Client) deliver(s *stateSubscriber, state types.ExtendedRobotState) {
	defer func() {
		if r := recover(); r != nil {
			c.metric.CallbackPanic()
			logger.Error("状态回调 panic", "seq", state.Sequence, "panic", r)
		}
	}()
	// 每个回调拿到独立副本
	cp := state.Clone()
	s.fn(&cp)
}

// SubscribeRobotState 订阅机器人状态
//
// 回调在连接的读协程上按到达顺序执行，可以在连接之前订阅。
// 返回的取消函数可重复调用。
func (c *Client) SubscribeRobotState(fn RobotStateCallback) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	c.stateMu.Lock()
	c.nextSub++
	s := &stateSubscriber{id: c.nextSub, fn: fn}
	s.active.Store(true)
	subs := make([]*stateSubscriber, len(c.subs), len(c.subs)+1)
	copy(subs, c.subs)
	c.subs = append(subs, s)
	c.stateMu.Unlock()

	return func() {
		if !s.active.Swap(false) {
			return
		}
		c.stateMu.Lock()
		defer c.stateMu.Unlock()
		out := make([]*stateSubscriber, 0, len(c.subs))
		for _, x := range c.subs {
			if x.id != s.id {
				out = append(out, x)
			}
		}
		c.subs = out
	}
}

// GetExtendedRobotState 返回最近一次收到的状态副本，尚未收到时返回零值
func (c *Client) GetExtendedRobotState() types.ExtendedRobotState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	if !c.hasState {
		return types.ExtendedRobotState{}
	}
	return c.latest.Clone()
}

// ════════════════════════════════════════════════════════════════════════════
//                              控制
// ════════════════════════════════════════════════════════════════════════════

// ControlMode 返回本地镜像的控制模式
func (c *Client) ControlMode() ControlMode {
	return ControlMode(c.mode.Load())
}

// SetManualControl 请求手动控制权（joy/gui）
func (c *Client) SetManualControl(ctx context.Context) types.ServiceResult {
	res := c.call(ctx, types.ServiceManualControl, nil)
	if res.Success {
		c.mode.Store(int32(ControlManual))
	}
	return res
}

// SetAutonomousControl 请求自主控制权（vel_cmd/autonomy）
func (c *Client) SetAutonomousControl(ctx context.Context) types.ServiceResult {
	res := c.call(ctx, types.ServiceAutonomousControl, nil)
	if res.Success {
		c.mode.Store(int32(ControlAutonomous))
	}
	return res
}

// ReleaseControl 释放控制源 source 的控制权
//
// 各控制源独立释放；成功且 source 正持有控制权时，镜像回到 Unset。
func (c *Client) ReleaseControl(ctx context.Context, source string) types.ServiceResult {
	res := c.call(ctx, types.ServiceReleaseControl, wire.EncodeString(source))
	if res.Success {
		for {
			cur := ControlMode(c.mode.Load())
			next := afterRelease(cur, source)
			if c.mode.CompareAndSwap(int32(cur), int32(next)) {
				break
			}
		}
	}
	return res
}

// StandUp 请求站立
func (c *Client) StandUp(ctx context.Context) types.ServiceResult {
	return c.call(ctx, types.ServiceStandUp, nil)
}

// SitDown 请求坐下
func (c *Client) SitDown(ctx context.Context) types.ServiceResult {
	return c.call(ctx, types.ServiceSitDown, nil)
}

func (c *Client) call(ctx context.Context, service string, payload []byte) types.ServiceResult {
	cn, err := c.Connection()
	if err != nil {
		logger.Debug("未连接，跳过服务调用", "service", service, "err", err)
		return types.Failure(types.MessageDisconnected)
	}
	res := c.net.Call(ctx, cn, service, payload, c.cfg.Service.CallTimeout.Duration())
	logger.Debug("服务调用完成", "service", service, "result", res.String())
	return res
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Close 关闭客户端（幂等）
//
// 停止发现，断开连接并以 "disconnected" 结束挂起的调用，等待所有
// 后台协程退出。返回后不会再触发任何回调。
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	var err error
	if stopErr := c.app.Stop(ctx); stopErr != nil && !errors.Is(stopErr, ErrDiscoveryStopped) {
		err = multierr.Append(err, stopErr)
	}
	c.wg.Wait()

	c.stateMu.Lock()
	for _, s := range c.subs {
		s.active.Store(false)
	}
	c.subs = nil
	c.stateMu.Unlock()

	logger.Info("客户端已关闭", "name", c.name)
	return err
}
