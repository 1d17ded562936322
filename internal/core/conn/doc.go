// Package conn 实现到单个机器人节点的有状态连接
//
// 连接建立流程:
//
//	拨号 → 发送 Hello → 读协程收到 HelloAck → 填充目录并标记 connected
//
// 每个连接拥有一个读协程，负责解码帧并分发：Publish 交给订阅分发器，
// Response 交给服务调用器。握手完成之前到达的 Publish/Response 被丢弃。
// 读协程退出（对端断开、收到 Bye 或本地 Disconnect）时，所有挂起的
// 服务调用以 "disconnected" 结束。
package conn
