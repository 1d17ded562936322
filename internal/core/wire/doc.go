// Package wire 定义客户端与机器人节点之间的协议帧
//
// 每个传输帧是一个信封：字段 1 为消息种类（varint），字段 2 为消息体（bytes）。
// 消息体与机器人状态负载均使用 protowire 手工编码，未知字段被跳过，
// 不完整或损坏的输入返回 ErrMalformed。
//
// 消息种类：
//
//	Hello     客户端 -> 节点   握手请求
//	HelloAck  节点 -> 客户端   握手应答，携带话题与服务目录
//	Publish   节点 -> 客户端   话题数据
//	Request   客户端 -> 节点   服务调用
//	Response  节点 -> 客户端   服务应答
//	Bye       双向             主动断开
package wire
