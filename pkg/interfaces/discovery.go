package interfaces

import (
	"context"

	"github.com/dep2p/go-raisin/pkg/types"
)

// DiscoverySource 定义一个节点广播来源（mDNS 浏览、测试注入等）
//
// Run 在指定网络接口上持续工作，直到 ctx 取消；每收到一条广播调用 emit。
// iface 为空表示系统默认接口。返回非 nil 错误表示该接口暂时不可用，
// 调用方会限速后重试。
type DiscoverySource interface {
	// Name 来源名称（用于日志与指标）
	Name() string

	// Run 运行直到 ctx 取消
	Run(ctx context.Context, iface string, emit func(types.NodeAdvertisement)) error
}

// Discovery 定义发现服务对外的只读视图
type Discovery interface {
	// GetAllConnections 返回当前可见节点快照（按 ID 排序，不阻塞）
	GetAllConnections() []types.NodeAdvertisement

	// Lookup 按节点 ID、IP 或 ip:port 查找可见节点
	Lookup(robotID string) (types.NodeAdvertisement, bool)
}
