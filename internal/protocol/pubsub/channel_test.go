package pubsub

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-raisin/internal/core/metrics"
)

func TestChannel_DeliversInOrder(t *testing.T) {
	ch := NewChannel(nil, nil)

	var got []uint64
	ch.Subscribe("robot_state", func(f Frame) { got = append(got, f.Sequence) })

	for seq := uint64(1); seq <= 5; seq++ {
		assert.Equal(t, 1, ch.Dispatch("robot_state", seq, []byte{byte(seq)}))
	}
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, got)

	t.Log("✅ 按到达顺序分发测试通过")
}

func TestChannel_DropsDuplicates(t *testing.T) {
	ch := NewChannel(nil, nil)

	var got []uint64
	ch.Subscribe("t", func(f Frame) { got = append(got, f.Sequence) })

	ch.Dispatch("t", 1, nil)
	ch.Dispatch("t", 2, nil)
	assert.Zero(t, ch.Dispatch("t", 2, nil))
	assert.Zero(t, ch.Dispatch("t", 1, nil))
	ch.Dispatch("t", 3, nil)

	assert.Equal(t, []uint64{1, 2, 3}, got)
}

func TestChannel_MultipleSubscribers(t *testing.T) {
	ch := NewChannel(nil, nil)

	var a, b int
	ch.Subscribe("t", func(Frame) { a++ })
	unsub := ch.Subscribe("t", func(Frame) { b++ })
	ch.Subscribe("other", func(Frame) { t.Fatal("不应收到其他话题的帧") })

	ch.Dispatch("t", 1, nil)
	unsub()
	unsub()
	ch.Dispatch("t", 2, nil)

	assert.Equal(t, 2, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 1, ch.Subscribers("t"))
}

func TestChannel_UnsubscribeDuringDispatch(t *testing.T) {
	ch := NewChannel(nil, nil)

	var second int
	var unsubSecond func()
	ch.Subscribe("t", func(Frame) { unsubSecond() })
	unsubSecond = ch.Subscribe("t", func(Frame) { second++ })

	ch.Dispatch("t", 1, nil)
	ch.Dispatch("t", 2, nil)

	assert.Zero(t, second, "取消后不再收到帧")
}

func TestChannel_Latest(t *testing.T) {
	mock := clock.NewMock()
	ch := NewChannel(mock, nil)

	_, ok := ch.Latest("t")
	assert.False(t, ok)

	mock.Add(time.Second)
	ch.Dispatch("t", 7, []byte("x"))

	f, ok := ch.Latest("t")
	require.True(t, ok)
	assert.Equal(t, uint64(7), f.Sequence)
	assert.Equal(t, []byte("x"), f.Payload)
	assert.True(t, f.ReceivedAt.Equal(mock.Now()))
}

func TestChannel_RecoversPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New("test", reg)
	require.NoError(t, err)

	ch := NewChannel(nil, m)
	var after int
	ch.Subscribe("t", func(Frame) { panic("boom") })
	ch.Subscribe("t", func(Frame) { after++ })

	assert.NotPanics(t, func() { ch.Dispatch("t", 1, nil) })
	assert.Equal(t, 1, after)
	expected := `
# HELP test_pubsub_callback_panics_total Subscriber callbacks that panicked.
# TYPE test_pubsub_callback_panics_total counter
test_pubsub_callback_panics_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_pubsub_callback_panics_total"))

	t.Log("✅ 回调 panic 恢复测试通过")
}

func TestChannel_Close(t *testing.T) {
	ch := NewChannel(nil, nil)

	var n int
	ch.Subscribe("t", func(Frame) { n++ })
	ch.Close()
	ch.Close()

	assert.Zero(t, ch.Dispatch("t", 1, nil))
	assert.Zero(t, n)

	unsub := ch.Subscribe("t", func(Frame) { n++ })
	unsub()
	assert.Zero(t, ch.Subscribers("t"))
}

func TestChannel_ConcurrentSubscribe(t *testing.T) {
	ch := NewChannel(nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsub := ch.Subscribe("t", func(Frame) {})
			unsub()
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for seq := uint64(1); seq <= 200; seq++ {
			ch.Dispatch("t", seq, nil)
		}
	}()

	wg.Wait()
	<-done
	assert.Zero(t, ch.Subscribers("t"))
}
