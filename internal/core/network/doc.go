// Package network 组合发现、连接、服务调用与订阅，提供原始网络 API
//
//	GetAllConnections  当前可见的节点广播
//	Connect            按 ID / IP / ip:port 连接已发现的节点并完成握手
//	Call               调用连接上的服务
//	Subscribe          订阅连接上的话题
//
// 对同一节点的并发 Connect 通过按 ID 的互斥锁串行化。
package network
