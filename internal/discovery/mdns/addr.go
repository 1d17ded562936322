package mdns

import (
	"net"
	"sort"
	"strings"
)

// virtualInterfacePrefixes 虚拟网卡前缀（VPN、容器、虚拟机），未指定接口时跳过
var virtualInterfacePrefixes = []string{
	"utun", "ipsec", "awdl", "llw", "bridge",
	"docker", "br-", "veth", "virbr", "vboxnet", "vmnet",
	"tun", "tap", "dummy", "tailscale", "wg",
}

func isVirtualInterface(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range virtualInterfacePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// scoreIP 对候选地址评分，0 表示不可用
//
// IPv4 优先；私网 192.168 > 10 > 172.16/12；链路本地最低。
// 显式指定接口时允许回环地址。
func scoreIP(ip net.IP, allowLoopback bool) int {
	if ip == nil || ip.IsUnspecified() {
		return 0
	}
	base := 100
	if ip4 := ip.To4(); ip4 != nil {
		base = 1000
		switch {
		case ip4[0] == 192 && ip4[1] == 168:
			return base + 300
		case ip4[0] == 10:
			return base + 200
		case ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31:
			return base + 100
		}
	}
	switch {
	case ip.IsLoopback():
		if allowLoopback {
			return base + 1
		}
		return 0
	case ip.IsPrivate():
		return base + 50
	case ip.IsLinkLocalUnicast():
		return base + 10
	}
	return base
}

// localIPs 返回可用于宣告的本机地址，按评分降序
//
// iface 为 nil 时遍历所有已启用的非虚拟接口。
func localIPs(iface *net.Interface, disableIPv6 bool) ([]net.IP, error) {
	var ifaces []net.Interface
	if iface != nil {
		ifaces = []net.Interface{*iface}
	} else {
		all, err := net.Interfaces()
		if err != nil {
			return nil, err
		}
		for _, ifi := range all {
			if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagLoopback != 0 || isVirtualInterface(ifi.Name) {
				continue
			}
			ifaces = append(ifaces, ifi)
		}
	}

	type scored struct {
		ip    net.IP
		score int
	}
	var candidates []scored
	for _, ifi := range ifaces {
		addrs, err := ifi.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if disableIPv6 && ipNet.IP.To4() == nil {
				continue
			}
			if s := scoreIP(ipNet.IP, iface != nil); s > 0 {
				candidates = append(candidates, scored{ip: ipNet.IP, score: s})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	ips := make([]net.IP, len(candidates))
	for i, c := range candidates {
		ips[i] = c.ip
	}
	return ips, nil
}
