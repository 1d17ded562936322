package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/lib/log"
	"github.com/dep2p/go-raisin/pkg/types"
)

var logger = log.Logger("core/transport/tcp")

var (
	_ interfaces.Dialer   = (*Dialer)(nil)
	_ interfaces.Listener = (*Listener)(nil)
)

// ============================================================================
//                              Dialer
// ============================================================================

// Dialer TCP 拨号器
type Dialer struct {
	cfg config.TransportConfig
}

// NewDialer 创建 TCP 拨号器
func NewDialer(cfg config.TransportConfig) *Dialer {
	return &Dialer{cfg: cfg}
}

// Dial 连接到 ip:port
func (d *Dialer) Dial(ctx context.Context, ip string, port int) (interfaces.Conn, error) {
	addr := net.JoinHostPort(ip, strconv.Itoa(port))
	nd := net.Dialer{Timeout: d.cfg.DialTimeout.Duration()}
	nc, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp dial %s: %w", addr, err)
	}
	logger.Debug("TCP 连接已建立", "remote", addr)
	return NewConn(nc, d.cfg.MaxFrameSize, d.cfg.WriteTimeout.Duration()), nil
}

// NetworkType 返回 TCP
func (d *Dialer) NetworkType() types.NetworkType {
	return types.NetworkTCP
}

// ============================================================================
//                              Listener
// ============================================================================

// Listener TCP 监听器
type Listener struct {
	ln  net.Listener
	cfg config.TransportConfig
}

// Listen 在 addr 上监听（例如 "127.0.0.1:0"）
func Listen(addr string, cfg config.TransportConfig) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp listen %s: %w", addr, err)
	}
	logger.Info("TCP 监听已启动", "addr", ln.Addr().String())
	return &Listener{ln: ln, cfg: cfg}, nil
}

// Accept 接受新连接
func (l *Listener) Accept() (interfaces.Conn, error) {
	nc, err := l.ln.Accept()
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, types.ErrListenerClosed
		}
		return nil, err
	}
	return NewConn(nc, l.cfg.MaxFrameSize, l.cfg.WriteTimeout.Duration()), nil
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

// Close 关闭监听器
func (l *Listener) Close() error {
	return l.ln.Close()
}
