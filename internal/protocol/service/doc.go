// Package service 实现基于关联 ID 的请求/应答服务调用
//
// 每次调用生成新的 uuid 作为关联 ID，在挂起表中登记一个单等待者的
// 完成槽位。应答、超时、取消与断开四种结果中只会有一种送达调用方。
// 迟到或未知关联 ID 的应答被丢弃。
package service
