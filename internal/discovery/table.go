package discovery

import (
	"sort"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dep2p/go-raisin/pkg/types"
)

// Table 带过期时间的节点广播表
//
// 底层是 expirable.LRU（容量上限 + TTL 淘汰）；快照时再按 LastSeen
// 过滤一次，保证即使淘汰协程尚未运行也不会返回过期记录。
type Table struct {
	lru        *expirable.LRU[string, types.NodeAdvertisement]
	clock      clock.Clock
	staleAfter time.Duration
}

// NewTable 创建节点表
func NewTable(size int, staleAfter time.Duration, clk clock.Clock) *Table {
	if clk == nil {
		clk = clock.New()
	}
	return &Table{
		lru:        expirable.NewLRU[string, types.NodeAdvertisement](size, nil, staleAfter),
		clock:      clk,
		staleAfter: staleAfter,
	}
}

// Upsert 写入广播，替换同 ID 的旧记录并重置过期时间
//
// 返回该 ID 之前是否已在表中（且未过期）。
func (t *Table) Upsert(adv types.NodeAdvertisement) bool {
	if adv.ID == "" {
		return false
	}
	_, existed := t.get(adv.ID)
	adv = adv.Clone()
	adv.LastSeen = t.clock.Now()
	t.lru.Add(adv.ID, adv)
	return existed
}

// Snapshot 返回所有可见且未过期的记录，按 ID 排序
func (t *Table) Snapshot() []types.NodeAdvertisement {
	values := t.lru.Values()
	out := make([]types.NodeAdvertisement, 0, len(values))
	for _, adv := range values {
		if !adv.Visible() || t.expired(adv) {
			continue
		}
		out = append(out, adv.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup 按 ID 查找可见节点，找不到时再按 IP 或 ip:port 匹配
func (t *Table) Lookup(robotID string) (types.NodeAdvertisement, bool) {
	if adv, ok := t.get(robotID); ok && adv.Visible() {
		return adv.Clone(), true
	}
	for _, adv := range t.Snapshot() {
		if adv.Matches(robotID) {
			return adv, true
		}
	}
	return types.NodeAdvertisement{}, false
}

// Len 返回表中记录数（含不可见记录）
func (t *Table) Len() int {
	return t.lru.Len()
}

// Purge 清空表
func (t *Table) Purge() {
	t.lru.Purge()
}

func (t *Table) get(id string) (types.NodeAdvertisement, bool) {
	adv, ok := t.lru.Peek(id)
	if !ok || t.expired(adv) {
		return types.NodeAdvertisement{}, false
	}
	return adv, true
}

func (t *Table) expired(adv types.NodeAdvertisement) bool {
	return t.clock.Since(adv.LastSeen) > t.staleAfter
}
