package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-raisin/internal/core/metrics"
	"github.com/dep2p/go-raisin/internal/core/wire"
	"github.com/dep2p/go-raisin/pkg/lib/log"
	"github.com/dep2p/go-raisin/pkg/types"
)

var logger = log.Logger("protocol/service")

// SendFunc 把请求写到连接上
type SendFunc func(req *wire.Request) error

// pendingCall 挂起表中的一项
type pendingCall struct {
	service string
	slot    chan types.ServiceResult
}

// Invoker 单个连接的服务调用器
type Invoker struct {
	send           SendFunc
	defaultTimeout time.Duration
	clock          clock.Clock
	metrics        *metrics.Metrics

	mu      sync.Mutex
	pending map[string]*pendingCall
	closed  bool
	reason  string
}

// NewInvoker 创建调用器
//
// defaultTimeout 用于 Call 未指定超时的情况；clk 为 nil 时使用系统时钟。
func NewInvoker(send SendFunc, defaultTimeout time.Duration, clk clock.Clock, m *metrics.Metrics) *Invoker {
	if clk == nil {
		clk = clock.New()
	}
	return &Invoker{
		send:           send,
		defaultTimeout: defaultTimeout,
		clock:          clk,
		metrics:        m,
		pending:        make(map[string]*pendingCall),
	}
}

// Call 调用远端服务并阻塞等待结果
//
// timeout <= 0 时使用默认超时。结果永不为 error：本地失败合成为
// {false, "timeout"}、{false, "cancelled"} 或 {false, "disconnected"}，
// 远端拒绝原样透传。
func (inv *Invoker) Call(ctx context.Context, service string, payload []byte, timeout time.Duration) types.ServiceResult {
	if timeout <= 0 {
		timeout = inv.defaultTimeout
	}
	if service == "" {
		return types.Failure(ErrEmptyService.Error())
	}

	start := inv.clock.Now()
	timer := inv.clock.Timer(timeout)
	defer timer.Stop()

	id := uuid.NewString()
	call := &pendingCall{service: service, slot: make(chan types.ServiceResult, 1)}

	inv.mu.Lock()
	if inv.closed {
		inv.mu.Unlock()
		return types.Failure(types.MessageDisconnected)
	}
	inv.pending[id] = call
	inv.mu.Unlock()
	inv.metrics.CallStarted()

	logger.Debug("发起服务调用", "service", service, "correlation", log.TruncateID(id, 8))

	if err := inv.send(&wire.Request{CorrelationID: id, Service: service, Payload: payload}); err != nil {
		logger.Debug("发送服务请求失败", "service", service, "err", err)
		// 与 FailAll 竞争时以槽位中已有的结果为准
		if inv.take(id) {
			return inv.finish(service, start, types.Failure(types.MessageDisconnected))
		}
		return inv.finish(service, start, <-call.slot)
	}

	select {
	case res := <-call.slot:
		return inv.finish(service, start, res)
	case <-ctx.Done():
		if inv.take(id) {
			return inv.finish(service, start, types.Failure(types.MessageCancelled))
		}
	case <-timer.C:
		if inv.take(id) {
			logger.Debug("服务调用超时", "service", service, "timeout", timeout)
			return inv.finish(service, start, types.Failure(types.MessageTimeout))
		}
	}
	// 槽位已被 Complete/FailAll 认领，结果即将写入
	return inv.finish(service, start, <-call.slot)
}

// take 从挂起表中移除 id，返回是否由调用方自己认领
func (inv *Invoker) take(id string) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if _, ok := inv.pending[id]; !ok {
		return false
	}
	delete(inv.pending, id)
	return true
}

func (inv *Invoker) finish(service string, start time.Time, res types.ServiceResult) types.ServiceResult {
	inv.metrics.CallFinished(service, outcomeOf(res), inv.clock.Since(start))
	return res
}

func outcomeOf(res types.ServiceResult) string {
	if res.Success {
		return metrics.OutcomeSuccess
	}
	switch res.Message {
	case types.MessageTimeout:
		return metrics.OutcomeTimeout
	case types.MessageDisconnected:
		return metrics.OutcomeDisconnected
	case types.MessageCancelled:
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeRejected
	}
}

// Complete 投递一条应答，返回是否匹配到挂起的调用
func (inv *Invoker) Complete(resp *wire.Response) bool {
	inv.mu.Lock()
	call, ok := inv.pending[resp.CorrelationID]
	if ok {
		delete(inv.pending, resp.CorrelationID)
	}
	inv.mu.Unlock()

	if !ok {
		logger.Debug("丢弃未知或迟到的应答", "correlation", log.TruncateID(resp.CorrelationID, 8))
		return false
	}
	call.slot <- resp.Result()
	return true
}

// FailAll 以 message 结束所有挂起的调用并拒绝新的调用，返回结束的数量
//
// 可重复调用。
func (inv *Invoker) FailAll(message string) int {
	inv.mu.Lock()
	pending := inv.pending
	inv.pending = make(map[string]*pendingCall)
	if !inv.closed {
		inv.closed = true
		inv.reason = message
	}
	inv.mu.Unlock()

	for _, call := range pending {
		call.slot <- types.Failure(message)
	}
	if len(pending) > 0 {
		logger.Debug("已结束挂起的服务调用", "count", len(pending), "reason", message)
	}
	return len(pending)
}

// Pending 返回挂起的调用数量
func (inv *Invoker) Pending() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.pending)
}

// Err 调用器关闭后返回关闭原因
func (inv *Invoker) Err() error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if !inv.closed {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvokerClosed, inv.reason)
}
