package raisin

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/fx"

	"github.com/dep2p/go-raisin/internal/core/network"
	"github.com/dep2p/go-raisin/internal/discovery"
	"github.com/dep2p/go-raisin/pkg/types"
)

// Network 独立运行的原始网络
//
// 不经过 Client 门面，直接枚举节点、连接并调用服务或订阅话题。
type Network struct {
	*network.Network

	id  string
	app *fx.App

	closeOnce sync.Once
	closeErr  error
}

// NewNetwork 创建并启动原始网络，ifaces 为参与发现的网卡
func NewNetwork(name string, ifaces []string, opts ...Option) (*Network, error) {
	o := newOptions()
	if len(ifaces) > 0 {
		opts = append(opts, WithInterfaces(ifaces...))
	}
	if err := o.apply(opts); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	id := types.NewClientID()
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	app, comps, err := startApp(ctx, o, discovery.LocalNode{Name: name, ID: id})
	if err != nil {
		return nil, err
	}

	logger.Info("原始网络已启动", "name", name, "id", types.ShortID(id), "interfaces", ifaces)
	return &Network{Network: comps.Network, id: id, app: app}, nil
}

// ID 返回本地 ID
func (n *Network) ID() string { return n.id }

// Close 断开所有连接并停止发现（幂等）
func (n *Network) Close() error {
	n.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		n.closeErr = n.app.Stop(ctx)
	})
	return n.closeErr
}
