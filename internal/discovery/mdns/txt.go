package mdns

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dep2p/go-raisin/pkg/types"
)

// maxTXTLen 单条 TXT 记录的长度上限（RFC 1035）
const maxTXTLen = 255

// EncodeTXT 把节点广播编码为 TXT 记录
func EncodeTXT(adv types.NodeAdvertisement) []string {
	txt := []string{
		"id=" + adv.ID,
		"port=" + strconv.Itoa(adv.Port),
		"net=" + adv.NetworkType.String(),
	}
	txt = appendCatalog(txt, "pub=", adv.Publishers)
	return appendCatalog(txt, "srv=", adv.Services)
}

func appendCatalog(txt []string, prefix string, catalog map[string]types.TypeDescriptor) []string {
	for _, e := range types.SortedCatalog(catalog) {
		rec := prefix + e.Name + ":" + e.DataType
		// 超长的条目直接丢弃，避免 mdns 报错
		if len(rec) > maxTXTLen {
			continue
		}
		txt = append(txt, rec)
	}
	return txt
}

// DecodeTXT 解析 TXT 记录
//
// 返回的广播不含 IP；hasPort 表示 TXT 中是否带有 port 字段。
// port 字段无法解析或 net 字段未知时，端口置为 -1 使其不可见。
func DecodeTXT(fields []string) (adv types.NodeAdvertisement, hasPort bool) {
	adv.Publishers = make(map[string]types.TypeDescriptor)
	adv.Services = make(map[string]types.TypeDescriptor)

	for _, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		switch key {
		case "id":
			adv.ID = value
		case "port":
			hasPort = true
			p, err := strconv.Atoi(value)
			if err != nil {
				p = -1
			}
			adv.Port = p
		case "net":
			nt, err := types.ParseNetworkType(value)
			if err != nil {
				hasPort = true
				adv.Port = -1
				continue
			}
			adv.NetworkType = nt
		case "pub":
			if name, dataType, ok := strings.Cut(value, ":"); ok && name != "" {
				adv.Publishers[name] = types.TypeDescriptor{DataType: dataType}
			}
		case "srv":
			if name, dataType, ok := strings.Cut(value, ":"); ok && name != "" {
				adv.Services[name] = types.TypeDescriptor{DataType: dataType}
			}
		}
	}
	return adv, hasPort
}

// instanceName 由节点 ID 生成 DNS 实例名（单个 label 最长 63 字节）
func instanceName(id string) string {
	var b strings.Builder
	b.WriteString("raisin-")
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	name := b.String()
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}

// sortedKeys 仅用于日志
func sortedKeys(m map[string]types.TypeDescriptor) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
