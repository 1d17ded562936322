// Package interfaces 定义 go-raisin 的公共接口
//
// 接口按层组织（一个接口文件对应一个实现目录）：
//
// # Transport
//
//   - transport.go      - 面向帧的连接、拨号器与监听器
//     实现：internal/core/transport/tcp、internal/core/transport/websocket
//
// # Discovery
//
//   - discovery.go      - 广播来源与发现服务只读视图
//     实现：internal/discovery、internal/discovery/mdns
//
// 测试替身位于 internal/core/transport/mocks。
package interfaces
