// Package sim 实现一个模拟机器人节点
//
// 模拟节点是客户端协议的服务端一侧：在 TCP 或 WebSocket 上监听，
// 回应握手并携带话题/服务目录，按固定频率发布 robot_state，提供
// 控制权与站立/坐下服务，并可通过 mDNS 宣告自身。
//
// 测试可以注入故障、设置服务延迟、挂起服务或强制断开所有会话。
package sim
