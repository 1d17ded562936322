// Package pubsub 实现单连接上的话题订阅分发
//
// # 核心功能
//
//  1. 订阅 (Subscribe) - 为话题注册回调，返回取消函数
//  2. 分发 (Dispatch) - 在连接的读 goroutine 上按到达顺序调用回调
//  3. 最新值 (Latest) - 每个话题缓存最近一帧，供同步读取
//
// # 并发模型
//
// 分发不经过缓冲队列：回调直接在读 goroutine 上执行，慢回调只拖慢
// 它所在的连接。分发前对订阅者列表取快照，取消订阅只影响之后的帧。
// 回调 panic 会被恢复并记录。
package pubsub
