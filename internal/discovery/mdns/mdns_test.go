package mdns

import (
	"net"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/internal/discovery"
	"github.com/dep2p/go-raisin/pkg/types"
)

// TestTXT 测试 TXT 记录编解码
func TestTXT(t *testing.T) {
	adv := types.NodeAdvertisement{
		ID:          "r1",
		Port:        7000,
		NetworkType: types.NetworkWebSocket,
		Publishers:  map[string]types.TypeDescriptor{types.TopicRobotState: {DataType: types.DataTypeRobotState}},
		Services: map[string]types.TypeDescriptor{
			types.ServiceStandUp:        {DataType: types.DataTypeTrigger},
			types.ServiceReleaseControl: {DataType: types.DataTypeString},
		},
	}
	txt := EncodeTXT(adv)
	assert.Equal(t, "id=r1", txt[0])
	assert.Contains(t, txt, "srv=release_control:"+types.DataTypeString)

	got, hasPort := DecodeTXT(txt)
	assert.True(t, hasPort)
	assert.Equal(t, adv, got)

	t.Log("✅ TXT 编解码测试通过")
}

func TestDecodeTXT_Invalid(t *testing.T) {
	adv, hasPort := DecodeTXT([]string{"id=r1", "port=abc"})
	assert.True(t, hasPort)
	assert.Equal(t, -1, adv.Port)
	assert.False(t, adv.Visible())

	adv, _ = DecodeTXT([]string{"id=r1", "port=7000", "net=quic"})
	assert.False(t, adv.Visible())

	adv, hasPort = DecodeTXT([]string{"garbage", "id=r2", "pub=nocolon"})
	assert.False(t, hasPort)
	assert.Equal(t, "r2", adv.ID)
	assert.Empty(t, adv.Publishers)
}

func TestEncodeTXT_DropsOversizedEntries(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	txt := EncodeTXT(types.NodeAdvertisement{
		ID:       "r1",
		Services: map[string]types.TypeDescriptor{string(long): {DataType: "t"}, "ok": {DataType: "t"}},
	})
	for _, rec := range txt {
		assert.LessOrEqual(t, len(rec), maxTXTLen)
	}
	assert.Contains(t, txt, "srv=ok:t")
}

// TestDecodeEntry 测试查询结果转换
func TestDecodeEntry(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:       "raisin-r1._raisin._tcp.local.",
		AddrV4:     net.ParseIP("10.0.0.5"),
		Port:       7000,
		InfoFields: []string{"id=r1", "net=tcp"},
	}
	adv, ok := decodeEntry(entry)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.5", adv.IP)
	assert.Equal(t, 7000, adv.Port, "TXT 无 port 时使用 SRV 端口")

	entry.InfoFields = []string{"id=self", "port=-1"}
	adv, ok = decodeEntry(entry)
	require.True(t, ok)
	assert.False(t, adv.Visible())

	entry.InfoFields = []string{"port=7000"}
	_, ok = decodeEntry(entry)
	assert.False(t, ok)

	_, ok = decodeEntry(&mdns.ServiceEntry{InfoFields: []string{"id=r1"}})
	assert.False(t, ok, "没有地址的条目应被丢弃")

	_, ok = decodeEntry(nil)
	assert.False(t, ok)
}

func TestInstanceName(t *testing.T) {
	assert.Equal(t, "raisin-r1", instanceName("r1"))
	assert.Equal(t, "raisin-10-0-0-5-7000", instanceName("10.0.0.5:7000"))
	long := instanceName(string(make([]byte, 100)))
	assert.Len(t, long, 63)
}

func TestScoreIP(t *testing.T) {
	assert.Greater(t, scoreIP(net.ParseIP("192.168.1.2"), false), scoreIP(net.ParseIP("10.0.0.2"), false))
	assert.Greater(t, scoreIP(net.ParseIP("10.0.0.2"), false), scoreIP(net.ParseIP("fd00::1"), false))
	assert.Zero(t, scoreIP(net.ParseIP("127.0.0.1"), false))
	assert.NotZero(t, scoreIP(net.ParseIP("127.0.0.1"), true))
	assert.Zero(t, scoreIP(net.ParseIP("0.0.0.0"), false))
	assert.True(t, isVirtualInterface("docker0"))
	assert.False(t, isVirtualInterface("eth0"))
}

func TestProvideSources(t *testing.T) {
	cfg := config.NewConfig()
	clk := clock.NewMock()
	sources := ProvideSources(SourceParams{Config: cfg, Local: discovery.LocalNode{Name: "monitor", ID: "c1"}, Clock: clk})
	require.Len(t, sources, 1)
	assert.Equal(t, "mdns", sources[0].Name())

	src, ok := sources[0].(*Source)
	require.True(t, ok)
	assert.Same(t, clk, src.clock, "浏览节拍使用注入的时钟")
	assert.Equal(t, -1, src.self.Port)

	cfg.Discovery.EnableMDNS = false
	assert.Empty(t, ProvideSources(SourceParams{Config: cfg, Local: discovery.LocalNode{ID: "c1"}}))
}

func TestNew_DefaultClock(t *testing.T) {
	src := New(Config{ServiceTag: "_raisin._tcp"}, types.NodeAdvertisement{ID: "c1", Port: -1})
	assert.NotNil(t, src.clock)
}
