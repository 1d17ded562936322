package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dep2p/go-raisin/pkg/types"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	// 验证默认配置有效
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5*time.Second, cfg.Discovery.StaleAfter.Duration())
	assert.Equal(t, 50*time.Millisecond, cfg.Connection.PollInterval.Duration())
	assert.Equal(t, 4<<20, cfg.Transport.MaxFrameSize)
	assert.Equal(t, "/raisin", cfg.Transport.WebSocketPath)
	assert.True(t, cfg.Discovery.EnableMDNS)

	t.Log("✅ NewConfig 测试通过")
}

// TestDiscoveryConfig 测试发现配置
func TestDiscoveryConfig(t *testing.T) {
	t.Run("StaleNotAboveInterval", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig()
		cfg.StaleAfter = cfg.BrowseInterval
		assert.Error(t, cfg.Validate())
	})

	t.Run("BrowseTimeoutTooLong", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig()
		cfg.BrowseTimeout = cfg.BrowseInterval * 2
		assert.Error(t, cfg.Validate())
	})

	t.Run("StaticNodeInvalidPort", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig()
		cfg.StaticNodes = []StaticNode{{IP: "10.0.0.5", Port: 0}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("StaticNodeInvalidNetwork", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig()
		cfg.StaticNodes = []StaticNode{{IP: "10.0.0.5", Port: 7000, Network: "udp"}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("MDNSDisabledWithoutTag", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig()
		cfg.EnableMDNS = false
		cfg.ServiceTag = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Log("✅ DiscoveryConfig 测试通过")
}

func TestStaticNode_Advertisement(t *testing.T) {
	adv, err := StaticNode{IP: "10.0.0.5", Port: 7000}.Advertisement()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:7000", adv.ID)
	assert.Equal(t, types.NetworkTCP, adv.NetworkType)

	adv, err = StaticNode{ID: "r1", IP: "10.0.0.5", Port: 7000, Network: "websocket"}.Advertisement()
	require.NoError(t, err)
	assert.Equal(t, "r1", adv.ID)
	assert.Equal(t, types.NetworkWebSocket, adv.NetworkType)
}

func TestTransportAndConnectionConfig(t *testing.T) {
	tc := DefaultTransportConfig()
	tc.WebSocketPath = "raisin"
	assert.Error(t, tc.Validate())

	tc = DefaultTransportConfig()
	tc.MaxFrameSize = 0
	assert.Error(t, tc.Validate())

	cc := DefaultConnectionConfig()
	cc.PollInterval = cc.HandshakeTimeout + 1
	assert.Error(t, cc.Validate())

	sc := DefaultServiceConfig()
	sc.CallTimeout = 0
	assert.Error(t, sc.Validate())
}

// TestDuration_JSON 测试 Duration JSON 解析
func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1500ms"`), &d))
	assert.Equal(t, 1500*time.Millisecond, d.Duration())

	require.NoError(t, json.Unmarshal([]byte(`2000000000`), &d))
	assert.Equal(t, 2*time.Second, d.Duration())

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))

	out, err := json.Marshal(Duration(3 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"3s"`, string(out))
}

// TestDuration_YAML 测试 Duration YAML 解析
func TestDuration_YAML(t *testing.T) {
	var v struct {
		A Duration `yaml:"a"`
		B Duration `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 250ms\nb: 1000\n"), &v))
	assert.Equal(t, 250*time.Millisecond, v.A.Duration())
	assert.Equal(t, time.Duration(1000), v.B.Duration())

	assert.Error(t, yaml.Unmarshal([]byte("a: [1, 2]\n"), &v))
	assert.Error(t, yaml.Unmarshal([]byte("a: later\n"), &v))
}

// TestLoad 测试按扩展名加载
func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "raisin.yaml")
		data := []byte(`
discovery:
  interfaces: [eth0, wlan0]
  stale_after: 8s
  static_nodes:
    - id: r1
      ip: 10.0.0.5
      port: 7000
service:
  call_timeout: 2s
`)
		require.NoError(t, os.WriteFile(path, data, 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"eth0", "wlan0"}, cfg.Discovery.Interfaces)
		assert.Equal(t, 8*time.Second, cfg.Discovery.StaleAfter.Duration())
		assert.Equal(t, 2*time.Second, cfg.Service.CallTimeout.Duration())
		require.Len(t, cfg.Discovery.StaticNodes, 1)
		assert.Equal(t, 7000, cfg.Discovery.StaticNodes[0].Port)
		// 未出现的字段保持默认值
		assert.Equal(t, "/raisin", cfg.Transport.WebSocketPath)
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "raisin.json")
		data := []byte(`{"connection": {"handshake_timeout": "3s", "poll_interval": "10ms"}}`)
		require.NoError(t, os.WriteFile(path, data, 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 3*time.Second, cfg.Connection.HandshakeTimeout.Duration())
		assert.Equal(t, 10*time.Millisecond, cfg.Connection.PollInterval.Duration())
	})

	t.Run("Invalid", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"service": {"call_timeout": "0s"}}`), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("UnknownExtension", func(t *testing.T) {
		path := filepath.Join(dir, "raisin.toml")
		require.NoError(t, os.WriteFile(path, []byte(""), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Log("✅ Load 测试通过")
}

func TestValidateAndFix(t *testing.T) {
	cfg, err := ValidateAndFix(nil)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	cfg = NewConfig()
	cfg.Discovery.StaleAfter = 0
	cfg.Service.CallTimeout = -1
	fixed, err := ValidateAndFix(cfg)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, fixed.Discovery.StaleAfter.Duration())
	assert.Equal(t, 5*time.Second, fixed.Service.CallTimeout.Duration())

	assert.Error(t, ValidateAll(nil))
}

func TestConfig_Clone(t *testing.T) {
	cfg := NewConfig()
	cfg.Discovery.Interfaces = []string{"eth0"}
	c := cfg.Clone()
	c.Discovery.Interfaces[0] = "wlan0"
	assert.Equal(t, "eth0", cfg.Discovery.Interfaces[0])
}
