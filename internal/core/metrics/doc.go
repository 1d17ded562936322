// Package metrics 提供 prometheus 监控指标
//
// 每个客户端拥有独立的 Registry（可通过选项注入），指标包括：
//   - 帧收发计数（按消息种类）与解码错误
//   - 服务调用次数（按服务与结果）、耗时直方图、在途调用数
//   - 连接数、连接尝试结果
//   - 发现事件计数与当前可见节点数
//   - 回调 panic 次数
//
// 所有记录方法对 nil *Metrics 安全，未启用指标的组件可直接传 nil。
package metrics
