// Package transport 实现面向帧的传输层
//
// 传输层把 TCP（varint 长度前缀）和 WebSocket（每帧一个二进制消息）
// 统一为 interfaces.Conn：ReadFrame / WriteFrame / Close。
//
// # 核心职责
//
//   - 按节点广播中的 NetworkType 选择拨号器
//   - 跟踪所有由本管理器拨出的连接，关闭时统一释放
//   - 为模拟节点提供监听器
//
// # 使用示例
//
//	tm := transport.NewTransportManager(cfg.Transport)
//	conn, err := tm.Dial(ctx, adv)
//	frame, err := conn.ReadFrame()
//
// # 并发安全
//
// TransportManager 的所有方法可并发调用。
//
// # Fx 模块集成
//
//	app := fx.New(
//	    transport.Module(),
//	    fx.Invoke(func(tm *transport.TransportManager) {
//	        // 使用传输管理器
//	    }),
//	)
package transport
