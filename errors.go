package raisin

import (
	"errors"

	"github.com/dep2p/go-raisin/internal/core/conn"
	"github.com/dep2p/go-raisin/internal/core/network"
	"github.com/dep2p/go-raisin/internal/discovery"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 客户端错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrClientClosed 客户端已关闭
	ErrClientClosed = errors.New("client closed")

	// ErrNotConnected 尚未连接机器人
	ErrNotConnected = errors.New("not connected")

	// ────────────────────────────────────────────────────────────────────────
	// 连接错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNodeNotFound 发现表中没有该节点
	ErrNodeNotFound = network.ErrNodeNotFound

	// ErrHandshakeTimeout 在超时内未完成握手
	ErrHandshakeTimeout = conn.ErrHandshakeTimeout

	// ErrHandshakeCancelled 握手被取消
	ErrHandshakeCancelled = conn.ErrHandshakeCancelled

	// ErrDisconnected 连接已断开
	ErrDisconnected = conn.ErrDisconnected

	// ErrAlreadyConnected 已连接到另一个机器人
	ErrAlreadyConnected = conn.ErrAlreadyConnected

	// ────────────────────────────────────────────────────────────────────────
	// 发现错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrDiscoveryStopped 发现服务已停止
	ErrDiscoveryStopped = discovery.ErrDiscoveryStopped
)
