package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/pkg/types"
)

func TestNewDialer_Unsupported(t *testing.T) {
	_, err := NewDialer(types.NetworkType(7), config.DefaultTransportConfig())
	assert.ErrorIs(t, err, ErrUnsupportedNetwork)

	_, err = Listen(types.NetworkType(7), "127.0.0.1:0", config.DefaultTransportConfig())
	assert.ErrorIs(t, err, ErrUnsupportedNetwork)
}

// TestTransportManager_Dial 测试两种传输的拨号与跟踪
func TestTransportManager_Dial(t *testing.T) {
	cfg := config.DefaultTransportConfig()

	for _, nt := range []types.NetworkType{types.NetworkTCP, types.NetworkWebSocket} {
		t.Run(nt.String(), func(t *testing.T) {
			ln, err := Listen(nt, "127.0.0.1:0", cfg)
			require.NoError(t, err)
			defer ln.Close()

			go func() {
				c, err := ln.Accept()
				if err != nil {
					return
				}
				if f, err := c.ReadFrame(); err == nil {
					_ = c.WriteFrame(f)
				}
			}()

			tm := NewTransportManager(cfg)
			adv := types.NodeAdvertisement{ID: "r1", IP: "127.0.0.1", Port: ln.Port(), NetworkType: nt}
			conn, err := tm.Dial(context.Background(), adv)
			require.NoError(t, err)
			assert.Equal(t, 1, tm.ActiveConns())

			require.NoError(t, conn.WriteFrame([]byte("echo")))
			got, err := conn.ReadFrame()
			require.NoError(t, err)
			assert.Equal(t, "echo", string(got))

			require.NoError(t, conn.Close())
			assert.Equal(t, 0, tm.ActiveConns())
			require.NoError(t, tm.Close())

			_, err = tm.Dial(context.Background(), adv)
			assert.ErrorIs(t, err, ErrManagerClosed)
		})
	}
	t.Log("✅ TransportManager 拨号测试通过")
}

func TestTransportManager_CloseClosesConns(t *testing.T) {
	cfg := config.DefaultTransportConfig()
	ln, err := Listen(types.NetworkTCP, "127.0.0.1:0", cfg)
	require.NoError(t, err)
	defer ln.Close()
	go ln.Accept()

	tm := NewTransportManager(cfg)
	conn, err := tm.Dial(context.Background(), types.NodeAdvertisement{IP: "127.0.0.1", Port: ln.Port()})
	require.NoError(t, err)

	require.NoError(t, tm.Close())
	done := make(chan error, 1)
	go func() {
		_, err := conn.ReadFrame()
		done <- err
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, types.ErrConnClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("连接未被关闭")
	}
}

func TestModule(t *testing.T) {
	var tm *TransportManager
	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		Module(),
		fx.Populate(&tm),
	)
	app.RequireStart()
	assert.NotNil(t, tm)
	app.RequireStop()
}
