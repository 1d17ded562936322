// Package raisin 提供局域网腿式机器人的客户端运行时
//
// # 核心概念
//
//   - Client: 客户端门面，连接机器人、订阅状态、切换控制模式
//   - Network: 原始网络 API，枚举发现的节点并直接调用服务/订阅话题
//   - Node: 网络上可达的机器人，通过 mDNS 或静态配置发现
//
// # 快速开始
//
//	client, err := raisin.New("monitor")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if err := client.Connect(ctx, "raibo", 5*time.Second, nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	unsubscribe := client.SubscribeRobotState(func(s *types.ExtendedRobotState) {
//	    fmt.Printf("battery %.1f%%\n", s.BatteryPercentage())
//	})
//	defer unsubscribe()
//
//	if res := client.SetManualControl(ctx); res.Success {
//	    client.StandUp(ctx)
//	}
//
// # 并发模型
//
// 所有网络 I/O 都在客户端持有的后台协程上进行（每个网卡的发现协程、
// 每个连接的读协程）。订阅回调在连接的读协程上执行，调用方协程只
// 发起命令和读取缓存的最新状态。Close 返回后不会再触发任何回调。
//
// # 文件组织
//
//	raisin/
//	├── doc.go        # 包文档
//	├── client.go     # Client、连接、状态缓存
//	├── control.go    # 控制模式状态机
//	├── network.go    # NewNetwork 原始网络入口
//	├── options.go    # 选项
//	├── fx.go         # Fx 应用组装
//	└── errors.go     # 公共错误
package raisin
