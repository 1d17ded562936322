package websocket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/lib/log"
	"github.com/dep2p/go-raisin/pkg/types"
)

var logger = log.Logger("core/transport/websocket")

var (
	_ interfaces.Dialer   = (*Dialer)(nil)
	_ interfaces.Listener = (*Listener)(nil)
)

// ============================================================================
//                              Dialer
// ============================================================================

// Dialer WebSocket 拨号器
type Dialer struct {
	cfg    config.TransportConfig
	dialer *websocket.Dialer
}

// NewDialer 创建 WebSocket 拨号器
func NewDialer(cfg config.TransportConfig) *Dialer {
	return &Dialer{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.WebSocketHandshakeTimeout.Duration(),
			NetDialContext:   (&net.Dialer{Timeout: cfg.DialTimeout.Duration()}).DialContext,
		},
	}
}

// Dial 连接到 ws://ip:port/<path>
func (d *Dialer) Dial(ctx context.Context, ip string, port int) (interfaces.Conn, error) {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(ip, strconv.Itoa(port)),
		Path:   d.cfg.WebSocketPath,
	}
	ws, resp, err := d.dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", u.String(), err)
	}
	logger.Debug("WebSocket 连接已建立", "url", u.String())
	return newConn(ws, d.cfg.MaxFrameSize, d.cfg.WriteTimeout.Duration()), nil
}

// NetworkType 返回 WebSocket
func (d *Dialer) NetworkType() types.NetworkType {
	return types.NetworkWebSocket
}

// ============================================================================
//                              Listener
// ============================================================================

// Listener WebSocket 监听器
//
// 内部运行一个 http.Server，升级成功的连接经由通道交给 Accept。
type Listener struct {
	ln       net.Listener
	srv      *http.Server
	upgrader websocket.Upgrader
	cfg      config.TransportConfig

	conns     chan *Conn
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Listen 在 addr 上监听 WebSocket 升级请求
func Listen(addr string, cfg config.TransportConfig) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("websocket listen %s: %w", addr, err)
	}
	l := &Listener{
		ln:  ln,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: cfg.WebSocketHandshakeTimeout.Duration(),
			// 客户端不是浏览器，不校验 Origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(chan *Conn),
		done:  make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.WebSocketPath, l.handleUpgrade)
	l.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: cfg.WebSocketHandshakeTimeout.Duration(),
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("WebSocket 服务退出", "error", err)
		}
	}()

	logger.Info("WebSocket 监听已启动", "addr", ln.Addr().String(), "path", cfg.WebSocketPath)
	return l, nil
}

func (l *Listener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	ws, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("WebSocket 升级失败", "remote", r.RemoteAddr, "error", err)
		return
	}
	c := newConn(ws, l.cfg.MaxFrameSize, l.cfg.WriteTimeout.Duration())
	select {
	case l.conns <- c:
	case <-l.done:
		c.Close()
	}
}

// Accept 接受新连接
func (l *Listener) Accept() (interfaces.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, types.ErrListenerClosed
	}
}

// Addr 返回监听地址
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Port 返回监听端口
func (l *Listener) Port() int {
	if addr, ok := l.ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// Close 关闭监听器（已升级的连接不受影响）
func (l *Listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		err = l.srv.Close()
		l.wg.Wait()
	})
	return err
}
