// Package main 提供 raisin 命令行入口
//
// 用法：
//
//	raisin [参数] <命令> [命令参数]
//
// 命令：
//
//	discover   列出发现到的机器人节点
//	state      持续输出机器人状态
//	battery    输出电池状态
//	actuators  输出执行器状态表
//	control    请求控制权或运动（manual / auto / release-gui / release-auto / stand / sit）
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	raisin "github.com/dep2p/go-raisin"
	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/pkg/lib/log"
)

var logger = log.Logger("raisin/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile = flag.String("config", "", "配置文件路径（.json / .yaml）")
	ifaces     = flag.String("iface", "", "参与发现的网络接口，逗号分隔")
	static     = flag.String("static", "", "静态节点，逗号分隔（[id@]ip:port[/websocket]）")
	robotID    = flag.String("robot", "", "目标机器人（节点 ID、IP 或 ip:port）")
	timeout    = flag.Duration("timeout", 10*time.Second, "等待发现与握手的超时")
	noMDNS     = flag.Bool("no-mdns", false, "禁用 mDNS，只使用静态节点")
	logLevel   = flag.String("log-level", "warn", "日志级别（debug / info / warn / error）")
	once       = flag.Bool("once", false, "discover / state 只输出一次")
)

// command 子命令
type command struct {
	name    string
	summary string
	run     func(ctx context.Context, c *raisin.Client, args []string) error
}

var commands = []command{
	{"discover", "列出发现到的机器人节点", runDiscover},
	{"state", "持续输出机器人状态", runState},
	{"battery", "输出电池状态", runBattery},
	{"actuators", "输出执行器状态表", runActuators},
	{"control", "请求控制权或运动: manual | auto | release-gui | release-auto | stand | sit", runControl},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Usage = printHelp
	flag.Parse()

	if flag.NArg() == 0 {
		printHelp()
		return errors.New("缺少命令")
	}
	cmd, ok := findCommand(flag.Arg(0))
	if !ok {
		printHelp()
		return fmt.Errorf("未知命令 %q", flag.Arg(0))
	}

	if l, ok := log.ParseLevel(*logLevel); ok {
		log.SetLevel(l)
	}

	opts, err := buildOptions()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := raisin.New("raisin-cli", opts...)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = client.Close() }()

	logger.Info("执行命令", "command", cmd.name, "robot", *robotID)
	return cmd.run(ctx, client, flag.Args()[1:])
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// buildOptions 构建客户端选项
//
// 配置优先级：命令行参数 > 配置文件 > 默认值。
func buildOptions() ([]raisin.Option, error) {
	var opts []raisin.Option
	if *configFile != "" {
		opts = append(opts, raisin.WithConfigFile(*configFile))
	}
	if *ifaces != "" {
		opts = append(opts, raisin.WithInterfaces(splitList(*ifaces)...))
	}
	if *static != "" {
		nodes, err := parseStaticNodes(*static)
		if err != nil {
			return nil, err
		}
		opts = append(opts, raisin.WithStaticNodes(nodes...))
	}
	if *noMDNS {
		opts = append(opts, raisin.WithMDNS(false))
	}
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseStaticNodes 解析 "id@ip:port,ip:port/websocket" 形式的静态节点列表
func parseStaticNodes(s string) ([]config.StaticNode, error) {
	var nodes []config.StaticNode
	for _, item := range splitList(s) {
		var node config.StaticNode
		addr := item
		if at := strings.LastIndex(item, "@"); at >= 0 {
			node.ID = item[:at]
			addr = item[at+1:]
		}
		addr, node.Network, _ = strings.Cut(addr, "/")
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("静态节点 %q: %w", item, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("静态节点 %q: 端口无效", item)
		}
		node.IP = host
		node.Port = port
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// connect 连接 -robot 指定的机器人
func connect(ctx context.Context, c *raisin.Client) error {
	if *robotID == "" {
		return errors.New("需要 -robot 参数")
	}
	fmt.Printf("正在连接 %s ...\n", *robotID)
	if err := c.Connect(ctx, *robotID, *timeout, nil); err != nil {
		return fmt.Errorf("连接 %s 失败: %w", *robotID, err)
	}
	cn, err := c.Connection()
	if err != nil {
		return err
	}
	fmt.Printf("已连接 %s (%s, %s)\n", cn.ID(), cn.Address(), cn.NetworkType().DisplayName())
	return nil
}

func printHelp() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "raisin - 机器人监控与控制客户端")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "用法: raisin [参数] <命令> [命令参数]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "命令:")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "参数:")
	flag.PrintDefaults()
}
