package pubsub

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-raisin/internal/core/metrics"
	"github.com/dep2p/go-raisin/pkg/lib/log"
)

var logger = log.Logger("protocol/pubsub")

// Frame 一帧话题数据
type Frame struct {
	Topic      string
	Sequence   uint64
	Payload    []byte
	ReceivedAt time.Time
}

// Callback 订阅回调
type Callback func(Frame)

type subscriber struct {
	id     uint64
	fn     Callback
	active atomic.Bool
}

type topicState struct {
	subs    []*subscriber
	latest  Frame
	hasLast bool
}

// Channel 单个连接的订阅分发器
type Channel struct {
	clock   clock.Clock
	metrics *metrics.Metrics

	mu     sync.Mutex
	topics map[string]*topicState
	nextID uint64
	closed bool
}

// NewChannel 创建分发器，clk 为 nil 时使用系统时钟
func NewChannel(clk clock.Clock, m *metrics.Metrics) *Channel {
	if clk == nil {
		clk = clock.New()
	}
	return &Channel{
		clock:   clk,
		metrics: m,
		topics:  make(map[string]*topicState),
	}
}

func (c *Channel) topic(name string) *topicState {
	ts, ok := c.topics[name]
	if !ok {
		ts = &topicState{}
		c.topics[name] = ts
	}
	return ts
}

// Subscribe 为 topic 注册回调
//
// 返回的取消函数可重复调用；关闭后的 Channel 返回空操作。
func (c *Channel) Subscribe(topic string, fn Callback) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}

	c.nextID++
	sub := &subscriber{id: c.nextID, fn: fn}
	sub.active.Store(true)
	ts := c.topic(topic)
	ts.subs = append(ts.subs, sub)

	logger.Debug("新增订阅", "topic", topic, "subscribers", len(ts.subs))

	return func() { c.remove(topic, sub) }
}

func (c *Channel) remove(topic string, sub *subscriber) {
	if !sub.active.Swap(false) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ts, ok := c.topics[topic]
	if !ok {
		return
	}
	// 复制而不是原地修改，正在分发的快照不受影响
	subs := make([]*subscriber, 0, len(ts.subs))
	for _, s := range ts.subs {
		if s.id != sub.id {
			subs = append(subs, s)
		}
	}
	ts.subs = subs
}

// Dispatch 分发一帧，返回被调用的回调数量
//
// 必须在连接的读 goroutine 上调用；序号不大于上一帧的重复帧被丢弃。
func (c *Channel) Dispatch(topic string, sequence uint64, payload []byte) int {
	frame := Frame{
		Topic:      topic,
		Sequence:   sequence,
		Payload:    payload,
		ReceivedAt: c.clock.Now(),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	ts := c.topic(topic)
	if ts.hasLast && sequence != 0 && sequence <= ts.latest.Sequence {
		c.mu.Unlock()
		logger.Debug("丢弃重复帧", "topic", topic, "seq", sequence, "last", ts.latest.Sequence)
		return 0
	}
	ts.latest = frame
	ts.hasLast = true
	subs := ts.subs
	c.mu.Unlock()

	delivered := 0
	for _, sub := range subs {
		if !sub.active.Load() {
			continue
		}
		c.invoke(sub, frame)
		delivered++
	}
	return delivered
}

func (c *Channel) invoke(sub *subscriber, frame Frame) {
	defer func() {
		if r := recover(); r != nil {
			c.metrics.CallbackPanic()
			logger.Error("订阅回调 panic", "topic", frame.Topic, "seq", frame.Sequence, "panic", r)
		}
	}()
	sub.fn(frame)
}

// Latest 返回 topic 的最近一帧
func (c *Channel) Latest(topic string) (Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts, ok := c.topics[topic]
	if !ok || !ts.hasLast {
		return Frame{}, false
	}
	return ts.latest, true
}

// Subscribers 返回 topic 当前的订阅者数量
func (c *Channel) Subscribers(topic string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts, ok := c.topics[topic]; ok {
		return len(ts.subs)
	}
	return 0
}

// Close 停止分发并清空订阅，可重复调用
//
// 正在执行的回调会运行完毕，之后不再触发新的回调。
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, ts := range c.topics {
		for _, sub := range ts.subs {
			sub.active.Store(false)
		}
		ts.subs = nil
	}
}
