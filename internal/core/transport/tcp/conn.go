package tcp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/multiformats/go-varint"

	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/types"
)

// 确保实现了接口
var _ interfaces.Conn = (*Conn)(nil)

// Conn TCP 帧连接
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader

	maxFrameSize int
	writeTimeout time.Duration

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewConn 包装已建立的 net.Conn
func NewConn(nc net.Conn, maxFrameSize int, writeTimeout time.Duration) *Conn {
	return &Conn{
		conn:         nc,
		reader:       bufio.NewReader(nc),
		maxFrameSize: maxFrameSize,
		writeTimeout: writeTimeout,
	}
}

// ReadFrame 读取下一个帧
func (c *Conn) ReadFrame() ([]byte, error) {
	n, err := varint.ReadUvarint(c.reader)
	if err != nil {
		return nil, c.readErr(err)
	}
	if n > uint64(c.maxFrameSize) {
		return nil, fmt.Errorf("%w: %d > %d", types.ErrFrameTooLarge, n, c.maxFrameSize)
	}
	frame := make([]byte, n)
	if _, err := io.ReadFull(c.reader, frame); err != nil {
		return nil, c.readErr(err)
	}
	return frame, nil
}

// WriteFrame 写出一个帧
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
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	bufs := net.Buffers{varint.ToUvarint(uint64(len(frame))), frame}
	if _, err := bufs.WriteTo(c.conn); err != nil {
		if c.closed.Load() {
			return types.ErrConnClosed
		}
		return fmt.Errorf("tcp write: %w", err)
	}
	return nil
}

// Close 关闭连接（幂等）
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// RemoteAddr 返回对端地址
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// NetworkType 返回 TCP
func (c *Conn) NetworkType() types.NetworkType {
	return types.NetworkTCP
}

func (c *Conn) readErr(err error) error {
	if c.closed.Load() || errors.Is(err, net.ErrClosed) {
		return types.ErrConnClosed
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("tcp read: truncated frame: %w", err)
	}
	return err
}
