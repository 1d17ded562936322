// Package mdns 提供基于 hashicorp/mdns 的节点广播来源
//
// 每个接口上同时运行一个 mDNS 服务器（宣告自身）和一个周期性查询循环。
// 节点信息编码在 TXT 记录中：
//
//	id=<节点 ID>
//	port=<监听端口>      自身（不监听的客户端）为 -1
//	net=<tcp|websocket>
//	pub=<话题名>:<类型>  可重复
//	srv=<服务名>:<类型>  可重复
//
// 地址取自 A/AAAA 记录；TXT 中的 port 优先于 SRV 端口。
package mdns
