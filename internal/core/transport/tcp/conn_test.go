package tcp

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/multiformats/go-varint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/types"
)

func testConfig() config.TransportConfig {
	cfg := config.DefaultTransportConfig()
	cfg.MaxFrameSize = 1024
	return cfg
}

func dialPair(t *testing.T) (client, server interfaces.Conn) {
	t.Helper()
	ln, err := Listen("127.0.0.1:0", testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	accepted := make(chan interfaces.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	client, err = NewDialer(testConfig()).Dial(context.Background(), "127.0.0.1", ln.Port())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("accept timeout")
	}
	t.Cleanup(func() { server.Close() })
	return client, server
}

// TestConn_RoundTrip 测试帧往返
func TestConn_RoundTrip(t *testing.T) {
	client, server := dialPair(t)

	frames := [][]byte{[]byte("hello"), {}, make([]byte, 1024)}
	for _, f := range frames {
		require.NoError(t, client.WriteFrame(f))
	}
	for _, want := range frames {
		got, err := server.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, len(want), len(got))
	}
	assert.Equal(t, types.NetworkTCP, client.NetworkType())
	assert.NotEmpty(t, client.RemoteAddr())

	t.Log("✅ TCP 帧往返测试通过")
}

// TestConn_ConcurrentWrites 测试并发写不会交错
func TestConn_ConcurrentWrites(t *testing.T) {
	client, server := dialPair(t)

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(b byte) {
			defer wg.Done()
			frame := make([]byte, 100)
			for j := range frame {
				frame[j] = b
			}
			for j := 0; j < perWriter; j++ {
				assert.NoError(t, client.WriteFrame(frame))
			}
		}(byte(i))
	}

	for i := 0; i < writers*perWriter; i++ {
		f, err := server.ReadFrame()
		require.NoError(t, err)
		require.Len(t, f, 100)
		for _, b := range f {
			require.Equal(t, f[0], b)
		}
	}
	wg.Wait()
}

func TestConn_FrameTooLarge(t *testing.T) {
	t.Run("Write", func(t *testing.T) {
		client, _ := dialPair(t)
		err := client.WriteFrame(make([]byte, 1025))
		assert.ErrorIs(t, err, types.ErrFrameTooLarge)
	})

	t.Run("Read", func(t *testing.T) {
		a, b := net.Pipe()
		defer a.Close()
		conn := NewConn(b, 1024, 0)
		defer conn.Close()

		go a.Write(varint.ToUvarint(1 << 20))

		_, err := conn.ReadFrame()
		assert.ErrorIs(t, err, types.ErrFrameTooLarge)
	})
}

// TestConn_Close 测试关闭后的行为
func TestConn_Close(t *testing.T) {
	client, server := dialPair(t)

	require.NoError(t, client.Close())
	assert.NoError(t, client.Close(), "Close 应幂等")
	assert.ErrorIs(t, client.WriteFrame([]byte("x")), types.ErrConnClosed)

	_, err := server.ReadFrame()
	assert.Error(t, err, "对端关闭后读取应失败")

	_, err = client.ReadFrame()
	assert.ErrorIs(t, err, types.ErrConnClosed)
}

func TestListener_CloseUnblocksAccept(t *testing.T) {
	ln, err := Listen("127.0.0.1:0", testConfig())
	require.NoError(t, err)
	assert.NotZero(t, ln.Port())

	done := make(chan error, 1)
	go func() {
		_, err := ln.Accept()
		done <- err
	}()
	require.NoError(t, ln.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, types.ErrListenerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Accept 未返回")
	}
}

func TestDialer_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	_, err = NewDialer(testConfig()).Dial(context.Background(), "127.0.0.1", port)
	assert.Error(t, err)
}
