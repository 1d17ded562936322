// Package discovery 维护局域网内可达机器人节点的实时表
//
// 发现服务在每个配置的网络接口上运行所有 DiscoverySource（默认是 mDNS），
// 把收到的广播写入一张带过期时间的表；静态配置的节点在每次刷新时重新注入。
//
// # 表语义
//
//   - 同一 ID 的新广播整体替换旧记录，并重置过期时间
//   - 超过 stale_after 未再收到广播的节点不再出现在快照中
//   - 端口无效（自身广播使用 -1）的记录保留在表中，但不对外可见
//
// # 出错与重试
//
// 某个接口上的来源出错不影响其他接口，错误被记录后按 retry_interval 限速重试。
package discovery
