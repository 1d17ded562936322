// Package main 提供模拟机器人节点 raisin-sim
//
// 在本地监听一个 TCP 或 WebSocket 端口，按固定频率发布 robot_state，
// 并应答控制类服务，便于在没有真实机器人时调试客户端。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dep2p/go-raisin/internal/sim"
	"github.com/dep2p/go-raisin/pkg/lib/log"
	"github.com/dep2p/go-raisin/pkg/types"
)

var logger = log.Logger("raisin/sim-cmd")

var (
	id         = flag.String("id", "raibo", "节点 ID")
	listen     = flag.String("listen", "0.0.0.0:0", "监听地址（端口 0 = 随机端口）")
	network    = flag.String("network", "tcp", "传输类型（tcp / websocket）")
	rate       = flag.Float64("rate", 50, "robot_state 发布频率（Hz）")
	transition = flag.Duration("transition", time.Second, "站立/坐下动作耗时")
	free       = flag.Bool("free", false, "站立/坐下不要求先获取控制权")
	announce   = flag.Bool("announce", true, "通过 mDNS 宣告")
	iface      = flag.String("iface", "", "mDNS 宣告使用的网卡")
	logLevel   = flag.String("log-level", "info", "日志级别（debug / info / warn / error）")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	if l, ok := log.ParseLevel(*logLevel); ok {
		log.SetLevel(l)
	}

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	robot, err := sim.New(cfg)
	if err != nil {
		return fmt.Errorf("创建模拟节点失败: %w", err)
	}
	if err := robot.Start(); err != nil {
		_ = robot.Close()
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = robot.Close() }()

	printInfo(robot, cfg)
	logger.Info("模拟节点已启动", "id", robot.ID(), "addr", robot.Addr(), "network", cfg.Network)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	fmt.Println("\n正在关闭模拟节点...")
	return nil
}

func buildConfig() (sim.Config, error) {
	cfg := sim.DefaultConfig()
	nt, err := types.ParseNetworkType(*network)
	if err != nil {
		return cfg, err
	}
	cfg.ID = *id
	cfg.ListenAddr = *listen
	cfg.Network = nt
	cfg.PublishRate = *rate
	cfg.TransitionTime = *transition
	cfg.RequireControl = !*free
	cfg.Announce = *announce
	cfg.Interface = *iface
	return cfg, cfg.Validate()
}

func printInfo(r *sim.Robot, cfg sim.Config) {
	fmt.Println()
	fmt.Println("╔════════════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                       Raisin Simulated Robot                           ║")
	fmt.Println("╠════════════════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Node ID:  %-59s ║\n", r.ID())
	fmt.Printf("║  Address:  %-59s ║\n", r.StaticAddress())
	fmt.Printf("║  Network:  %-59s ║\n", cfg.Network.DisplayName())
	fmt.Printf("║  Rate:     %-59s ║\n", fmt.Sprintf("%.0f Hz", cfg.PublishRate))
	fmt.Printf("║  mDNS:     %-59v ║\n", cfg.Announce)
	fmt.Println("╚════════════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("连接示例: raisin -static %s@%s -robot %s state\n", r.ID(), r.StaticAddress(), r.ID())
	fmt.Println("按 Ctrl+C 退出")
}
