// Package types 定义 go-raisin 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
//
// # 文件组织
//
//   - network.go     - NetworkType, TypeDescriptor, NodeAdvertisement
//   - robot_state.go - ActuatorState, ExtendedRobotState 及派生查询
//   - status.go      - 执行器状态码、运动状态、控制源的查找表
//   - service.go     - ServiceResult、话题与服务名常量
//   - ids.go         - 客户端 ID 生成
//   - errors.go      - 传输层共享的错误
//
// 所有查询函数都是纯函数，不涉及 I/O。
package types
