package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetrics_Record 测试指标记录
func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New("raisin", reg)
	require.NoError(t, err)

	m.FrameReceived("publish")
	m.FrameReceived("publish")
	m.FrameSent("request")
	m.CallStarted()
	m.CallStarted()
	m.CallFinished("stand_up", OutcomeSuccess, 10*time.Millisecond)
	m.ConnectionOpened()
	m.Advertisement("mdns")
	m.VisibleNodes(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesReceived.WithLabelValues("publish")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesSent.WithLabelValues("request")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pendingCalls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("stand_up", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connections))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.discoveredNodes))

	t.Log("✅ 指标记录测试通过")
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New("raisin", reg)
	require.NoError(t, err)

	_, err = New("raisin", reg)
	assert.Error(t, err)

	m.Unregister()
	_, err = New("raisin", reg)
	assert.NoError(t, err)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.FrameReceived("publish")
		m.CallStarted()
		m.CallFinished("x", OutcomeTimeout, time.Second)
		m.ConnectAttempt("ok")
		m.ConnectionClosed()
		m.CallbackPanic()
		m.DecodeError()
		m.Unregister()
	})
}
