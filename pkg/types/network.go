package types

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
//                              NetworkType - 网络类型
// ============================================================================

// NetworkType 节点连接使用的传输类型
type NetworkType int

const (
	// NetworkTCP TCP 传输（varint 长度前缀帧）
	NetworkTCP NetworkType = iota
	// NetworkWebSocket WebSocket 传输（每帧一个二进制消息）
	NetworkWebSocket
)

// String 返回网络类型的字符串表示
func (n NetworkType) String() string {
	switch n {
	case NetworkTCP:
		return "tcp"
	case NetworkWebSocket:
		return "websocket"
	default:
		return "unknown"
	}
}

// DisplayName 返回用于表格展示的名称
func (n NetworkType) DisplayName() string {
	if n == NetworkWebSocket {
		return "WebSocket"
	}
	return "TCP"
}

// ParseNetworkType 解析网络类型名称
//
// 接受 "tcp"、"websocket"、"ws"（大小写不敏感），空字符串视为 TCP。
func ParseNetworkType(s string) (NetworkType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tcp":
		return NetworkTCP, nil
	case "websocket", "ws":
		return NetworkWebSocket, nil
	default:
		return NetworkTCP, fmt.Errorf("unknown network type %q", s)
	}
}

// ============================================================================
//                              NodeAdvertisement - 节点广播
// ============================================================================

// TypeDescriptor 话题或服务的类型描述
type TypeDescriptor struct {
	DataType string
}

// CatalogEntry 目录中的一项（按名称排序后输出）
type CatalogEntry struct {
	Name     string
	DataType string
}

// NodeAdvertisement 发现层收到的节点广播
//
// 收到后不可修改；同一 ID 的新广播整体替换旧记录（不合并）。
// Port < 0 表示自身或格式错误的条目，不对外可见。
type NodeAdvertisement struct {
	ID          string
	IP          string
	Port        int
	NetworkType NetworkType
	Publishers  map[string]TypeDescriptor
	Services    map[string]TypeDescriptor

	// LastSeen 最后一次收到该广播的时间（由发现层填写）
	LastSeen time.Time
}

// Visible 是否对外可见
func (a NodeAdvertisement) Visible() bool {
	return a.ID != "" && a.Port >= 0 && a.Port <= 65535
}

// Address 返回 host:port 形式的拨号地址
func (a NodeAdvertisement) Address() string {
	return net.JoinHostPort(a.IP, strconv.Itoa(a.Port))
}

// Matches 判断 robotID 是否指向该节点
//
// robotID 可以是节点 ID、IP，或 "ip:port"。
func (a NodeAdvertisement) Matches(robotID string) bool {
	if robotID == "" {
		return false
	}
	if a.ID == robotID {
		return true
	}
	if a.IP == robotID {
		return true
	}
	return a.Address() == robotID
}

// Clone 返回深拷贝
func (a NodeAdvertisement) Clone() NodeAdvertisement {
	a.Publishers = CloneCatalog(a.Publishers)
	a.Services = CloneCatalog(a.Services)
	return a
}

// CloneCatalog 复制目录
func CloneCatalog(in map[string]TypeDescriptor) map[string]TypeDescriptor {
	out := make(map[string]TypeDescriptor, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// SortedCatalog 按名称排序输出目录
func SortedCatalog(in map[string]TypeDescriptor) []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(in))
	for name, desc := range in {
		entries = append(entries, CatalogEntry{Name: name, DataType: desc.DataType})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
