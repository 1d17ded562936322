package sim

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	tec "github.com/jbenet/go-temp-err-catcher"
	"go.uber.org/multierr"

	"github.com/dep2p/go-raisin/internal/core/transport"
	"github.com/dep2p/go-raisin/internal/core/wire"
	"github.com/dep2p/go-raisin/internal/discovery/mdns"
	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/lib/log"
	"github.com/dep2p/go-raisin/pkg/types"
)

var logger = log.Logger("sim")

// ErrRobotClosed 模拟节点已关闭
var ErrRobotClosed = errors.New("sim: robot closed")

// Robot 模拟机器人节点
type Robot struct {
	cfg   Config
	clock clock.Clock
	ln    interfaces.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	announcer *mdns.Announcer

	// pubMu 保证状态帧与服务应答按状态变化的先后写出
	pubMu sync.Mutex

	mu       sync.Mutex
	dyn      *dynamics
	sequence uint64
	faults   map[string]string
	delays   map[string]time.Duration
	hangs    map[string]bool
	sessions map[*session]struct{}
	started  bool
	closed   bool
}

// New 创建模拟节点并开始监听
func New(cfg Config) (*Robot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	ln, err := transport.Listen(cfg.Network, cfg.ListenAddr, cfg.Transport)
	if err != nil {
		return nil, fmt.Errorf("sim: listen %s: %w", cfg.ListenAddr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Robot{
		cfg:      cfg,
		clock:    clk,
		ln:       ln,
		ctx:      ctx,
		cancel:   cancel,
		dyn:      newDynamics(),
		faults:   make(map[string]string),
		delays:   make(map[string]time.Duration),
		hangs:    make(map[string]bool),
		sessions: make(map[*session]struct{}),
	}, nil
}

// Start 启动接受循环与状态发布，按配置宣告 mDNS
func (r *Robot) Start() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRobotClosed
	}
	if r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = true
	r.mu.Unlock()

	if r.cfg.Announce {
		a, err := mdns.Announce(mdns.ConfigFromUnified(r.cfg.Discovery), r.Advertisement(), r.cfg.Interface)
		if err != nil {
			return fmt.Errorf("sim: announce: %w", err)
		}
		r.announcer = a
	}

	interval := time.Duration(float64(time.Second) / r.cfg.PublishRate)
	ticker := r.clock.Ticker(interval)

	r.wg.Add(2)
	go r.acceptLoop()
	go r.publishLoop(ticker, interval)

	logger.Info("模拟节点已启动",
		"id", r.cfg.ID,
		"addr", r.ln.Addr(),
		"network", r.cfg.Network,
		"rate", r.cfg.PublishRate)
	return nil
}

// ============================================================================
//                              元信息
// ============================================================================

// Port 返回实际监听端口
func (r *Robot) Port() int { return r.ln.Port() }

// Addr 返回监听地址
func (r *Robot) Addr() string { return r.ln.Addr() }

// ID 返回节点 ID
func (r *Robot) ID() string { return r.cfg.ID }

// Publishers 返回话题目录
func (r *Robot) Publishers() map[string]types.TypeDescriptor {
	return map[string]types.TypeDescriptor{
		types.TopicRobotState: {DataType: types.DataTypeRobotState},
	}
}

// Services 返回服务目录
func (r *Robot) Services() map[string]types.TypeDescriptor {
	return map[string]types.TypeDescriptor{
		types.ServiceManualControl:     {DataType: types.DataTypeTrigger},
		types.ServiceAutonomousControl: {DataType: types.DataTypeTrigger},
		types.ServiceReleaseControl:    {DataType: types.DataTypeString},
		types.ServiceStandUp:           {DataType: types.DataTypeTrigger},
		types.ServiceSitDown:           {DataType: types.DataTypeTrigger},
	}
}

// Advertisement 返回本节点的广播
func (r *Robot) Advertisement() types.NodeAdvertisement {
	host, _, err := net.SplitHostPort(r.ln.Addr())
	if err != nil {
		host = ""
	}
	if ip := net.ParseIP(host); ip == nil || ip.IsUnspecified() {
		host = "127.0.0.1"
	}
	return types.NodeAdvertisement{
		ID:          r.cfg.ID,
		IP:          host,
		Port:        r.Port(),
		NetworkType: r.cfg.Network,
		Publishers:  r.Publishers(),
		Services:    r.Services(),
	}
}

// StaticAddress 返回 ip:port，可用作静态节点 ID
func (r *Robot) StaticAddress() string {
	adv := r.Advertisement()
	return net.JoinHostPort(adv.IP, strconv.Itoa(adv.Port))
}

// ============================================================================
//                              测试控制
// ============================================================================

// State 返回当前模拟状态的副本
func (r *Robot) State() types.ExtendedRobotState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dyn.state.Clone()
}

// UpdateState 修改模拟状态
func (r *Robot) UpdateState(fn func(*types.ExtendedRobotState)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.dyn.state)
}

// InjectFault 让 service 以 message 拒绝，message 为空时清除
func (r *Robot) InjectFault(service, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message == "" {
		delete(r.faults, service)
		return
	}
	r.faults[service] = message
}

// SetDelay 设置 service 的应答延迟
func (r *Robot) SetDelay(service string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays[service] = d
}

// Hang 让 service 永不应答
func (r *Robot) Hang(service string, hang bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hangs[service] = hang
}

// Sessions 返回已完成握手的会话数
func (r *Robot) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for s := range r.sessions {
		if s.ready.Load() {
			n++
		}
	}
	return n
}

// DropSessions 不发送 Bye 直接关闭所有会话
func (r *Robot) DropSessions() {
	r.mu.Lock()
	sessions := make([]*session, 0, len(r.sessions))
	for s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		_ = s.conn.Close()
	}
	logger.Info("已强制断开所有会话", "count", len(sessions))
}

// ============================================================================
//                              后台循环
// ============================================================================

func (r *Robot) acceptLoop() {
	defer r.wg.Done()

	var catcher tec.TempErrCatcher
	for {
		c, err := r.ln.Accept()
		if err != nil {
			if catcher.IsTemporary(err) {
				continue
			}
			if !errors.Is(err, types.ErrListenerClosed) {
				logger.Warn("接受连接失败", "err", err)
			}
			return
		}

		s := newSession(r, c)
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			_ = c.Close()
			return
		}
		r.sessions[s] = struct{}{}
		r.wg.Add(1)
		r.mu.Unlock()

		logger.Debug("接受新连接", "remote", c.RemoteAddr())
		go s.serve()
	}
}

func (r *Robot) publishLoop(ticker *clock.Ticker, interval time.Duration) {
	defer r.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
		}
		r.publishOnce(interval)
	}
}

func (r *Robot) publishOnce(interval time.Duration) {
	r.pubMu.Lock()
	defer r.pubMu.Unlock()

	r.mu.Lock()
	r.dyn.step(interval)
	r.sequence++
	seq := r.sequence
	state := r.dyn.state.Clone()
	sessions := make([]*session, 0, len(r.sessions))
	for s := range r.sessions {
		if s.ready.Load() {
			sessions = append(sessions, s)
		}
	}
	r.mu.Unlock()

	if len(sessions) == 0 {
		return
	}
	frame := wire.Encode(&wire.Publish{
		Topic:    types.TopicRobotState,
		Sequence: seq,
		Payload:  wire.EncodeRobotState(&state),
	})
	for _, s := range sessions {
		if err := s.conn.WriteFrame(frame); err != nil {
			logger.Debug("发布状态失败", "remote", s.conn.RemoteAddr(), "err", err)
		}
	}
}

// greet 标记会话就绪并立即发送一次当前状态
func (r *Robot) greet(s *session) {
	r.pubMu.Lock()
	defer r.pubMu.Unlock()

	r.mu.Lock()
	r.sequence++
	seq := r.sequence
	state := r.dyn.state.Clone()
	r.mu.Unlock()

	s.ready.Store(true)
	frame := wire.Encode(&wire.Publish{
		Topic:    types.TopicRobotState,
		Sequence: seq,
		Payload:  wire.EncodeRobotState(&state),
	})
	if err := s.conn.WriteFrame(frame); err != nil {
		logger.Debug("发送初始状态失败", "remote", s.conn.RemoteAddr(), "err", err)
	}
}

func (r *Robot) removeSession(s *session) {
	r.mu.Lock()
	delete(r.sessions, s)
	r.mu.Unlock()
}

// Close 停止模拟节点（幂等）
//
// 向已连接的客户端发送 Bye，关闭监听器并等待所有后台协程退出。
func (r *Robot) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sessions := make([]*session, 0, len(r.sessions))
	for s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	r.cancel()

	var err error
	if r.announcer != nil {
		err = multierr.Append(err, r.announcer.Close())
	}
	err = multierr.Append(err, r.ln.Close())
	for _, s := range sessions {
		s.close("robot shutdown")
	}
	r.wg.Wait()

	logger.Info("模拟节点已关闭", "id", r.cfg.ID)
	return err
}
