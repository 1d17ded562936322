package websocket

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/types"
)

var _ interfaces.Conn = (*Conn)(nil)

// closeGrace 发送关闭帧的等待上限
const closeGrace = 200 * time.Millisecond

// Conn WebSocket 帧连接
type Conn struct {
	ws *websocket.Conn

	maxFrameSize int
	writeTimeout time.Duration

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newConn(ws *websocket.Conn, maxFrameSize int, writeTimeout time.Duration) *Conn {
	ws.SetReadLimit(int64(maxFrameSize))
	return &Conn{ws: ws, maxFrameSize: maxFrameSize, writeTimeout: writeTimeout}
}

// ReadFrame 读取下一个二进制消息，文本消息被忽略
func (c *Conn) ReadFrame() ([]byte, error) {
	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, c.readErr(err)
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		return data, nil
	}
}

// WriteFrame 写出一个二进制消息
func (c *Conn) WriteFrame(frame []byte) error {
	if len(frame) > c.maxFrameSize {
		return fmt.Errorf("%w: %d > %d", types.ErrFrameTooLarge, len(frame), c.maxFrameSize)
	}
	if c.closed.Load() {
		return types.ErrConnClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if err := c.ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		if c.closed.Load() {
			return types.ErrConnClosed
		}
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

// Close 发送关闭帧后关闭连接（幂等）
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

// RemoteAddr 返回对端地址
func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

// NetworkType 返回 WebSocket
func (c *Conn) NetworkType() types.NetworkType {
	return types.NetworkWebSocket
}

func (c *Conn) readErr(err error) error {
	if errors.Is(err, websocket.ErrReadLimit) {
		return fmt.Errorf("%w: exceeds %d", types.ErrFrameTooLarge, c.maxFrameSize)
	}
	if c.closed.Load() || errors.Is(err, net.ErrClosed) {
		return types.ErrConnClosed
	}
	return err
}
