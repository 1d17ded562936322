package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-raisin/config"
)

// 服务调用结果标签
const (
	OutcomeSuccess      = "success"
	OutcomeRejected     = "rejected"
	OutcomeTimeout      = "timeout"
	OutcomeDisconnected = "disconnected"
	OutcomeCancelled    = "cancelled"
)

// Metrics 运行时指标集合
type Metrics struct {
	registry prometheus.Registerer

	framesReceived  *prometheus.CounterVec
	framesSent      *prometheus.CounterVec
	decodeErrors    prometheus.Counter
	calls           *prometheus.CounterVec
	callDuration    *prometheus.HistogramVec
	pendingCalls    prometheus.Gauge
	connections     prometheus.Gauge
	connectAttempts *prometheus.CounterVec
	discoveryEvents *prometheus.CounterVec
	discoveredNodes prometheus.Gauge
	callbackPanics  prometheus.Counter
}

// New 创建指标并注册到 reg
//
// reg 为 nil 时使用新的私有 Registry。
func New(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		framesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "conn", Name: "frames_received_total",
			Help: "Frames received from robot nodes by message kind.",
		}, []string{"kind"}),
		framesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "conn", Name: "frames_sent_total",
			Help: "Frames sent to robot nodes by message kind.",
		}, []string{"kind"}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "conn", Name: "decode_errors_total",
			Help: "Frames that could not be decoded.",
		}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "service", Name: "calls_total",
			Help: "Service calls by service and outcome.",
		}, []string{"service", "outcome"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "service", Name: "call_duration_seconds",
			Help:    "Service call latency.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"service"}),
		pendingCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "service", Name: "pending_calls",
			Help: "Service calls waiting for a response.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "conn", Name: "active",
			Help: "Connected robot nodes.",
		}),
		connectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "conn", Name: "connect_attempts_total",
			Help: "Connect attempts by result.",
		}, []string{"result"}),
		discoveryEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "discovery", Name: "advertisements_total",
			Help: "Advertisements received by source.",
		}, []string{"source"}),
		discoveredNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "discovery", Name: "visible_nodes",
			Help: "Nodes in the last discovery snapshot.",
		}),
		callbackPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pubsub", Name: "callback_panics_total",
			Help: "Subscriber callbacks that panicked.",
		}),
	}

	var err error
	for _, c := range m.collectors() {
		err = multierr.Append(err, reg.Register(c))
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.framesReceived, m.framesSent, m.decodeErrors,
		m.calls, m.callDuration, m.pendingCalls,
		m.connections, m.connectAttempts,
		m.discoveryEvents, m.discoveredNodes,
		m.callbackPanics,
	}
}

// Unregister 从 Registry 中移除所有指标
func (m *Metrics) Unregister() {
	if m == nil {
		return
	}
	for _, c := range m.collectors() {
		m.registry.Unregister(c)
	}
}

// ============================================================================
//                              记录方法（nil 安全）
// ============================================================================

// FrameReceived 记录收到的帧
func (m *Metrics) FrameReceived(kind string) {
	if m == nil {
		return
	}
	m.framesReceived.WithLabelValues(kind).Inc()
}

// FrameSent 记录发出的帧
func (m *Metrics) FrameSent(kind string) {
	if m == nil {
		return
	}
	m.framesSent.WithLabelValues(kind).Inc()
}

// DecodeError 记录解码失败
func (m *Metrics) DecodeError() {
	if m == nil {
		return
	}
	m.decodeErrors.Inc()
}

// CallStarted 记录一次服务调用开始
func (m *Metrics) CallStarted() {
	if m == nil {
		return
	}
	m.pendingCalls.Inc()
}

// CallFinished 记录一次服务调用结束
func (m *Metrics) CallFinished(service, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pendingCalls.Dec()
	m.calls.WithLabelValues(service, outcome).Inc()
	m.callDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

// ConnectAttempt 记录连接尝试结果
func (m *Metrics) ConnectAttempt(result string) {
	if m == nil {
		return
	}
	m.connectAttempts.WithLabelValues(result).Inc()
}

// ConnectionOpened 连接数 +1
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

// ConnectionClosed 连接数 -1
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

// Advertisement 记录一次发现事件
func (m *Metrics) Advertisement(source string) {
	if m == nil {
		return
	}
	m.discoveryEvents.WithLabelValues(source).Inc()
}

// VisibleNodes 记录当前可见节点数
func (m *Metrics) VisibleNodes(n int) {
	if m == nil {
		return
	}
	m.discoveredNodes.Set(float64(n))
}

// CallbackPanic 记录回调 panic
func (m *Metrics) CallbackPanic() {
	if m == nil {
		return
	}
	m.callbackPanics.Inc()
}

// ============================================================================
//                              Fx 模块
// ============================================================================

// Params Metrics 依赖参数
type Params struct {
	fx.In

	Config   *config.Config
	Registry prometheus.Registerer `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(NewFromParams),
	)
}

// NewFromParams 从参数创建 Metrics，并在停止时注销
func NewFromParams(lc fx.Lifecycle, p Params) (*Metrics, error) {
	m, err := New(p.Config.Metrics.Namespace, p.Registry)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(m.Unregister))
	return m, nil
}
