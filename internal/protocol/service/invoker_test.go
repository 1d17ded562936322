package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-raisin/internal/core/wire"
	"github.com/dep2p/go-raisin/pkg/types"
)

// recorder 记录发出的请求
type recorder struct {
	mu   sync.Mutex
	reqs []*wire.Request
	err  error
}

func (r *recorder) send(req *wire.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.reqs = append(r.reqs, req)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reqs)
}

func TestInvoker_CallSuccess(t *testing.T) {
	var inv *Invoker
	inv = NewInvoker(func(req *wire.Request) error {
		go inv.Complete(&wire.Response{CorrelationID: req.CorrelationID, Success: true, Message: "standing"})
		return nil
	}, time.Second, nil, nil)

	res := inv.Call(context.Background(), types.ServiceStandUp, nil, 0)
	assert.Equal(t, types.ServiceResult{Success: true, Message: "standing"}, res)
	assert.Zero(t, inv.Pending())

	t.Log("✅ 服务调用成功测试通过")
}

func TestInvoker_RemoteRejection(t *testing.T) {
	var inv *Invoker
	inv = NewInvoker(func(req *wire.Request) error {
		go inv.Complete(&wire.Response{CorrelationID: req.CorrelationID, Success: false, Message: "no control"})
		return nil
	}, time.Second, nil, nil)

	res := inv.Call(context.Background(), types.ServiceStandUp, nil, 0)
	assert.Equal(t, types.Failure("no control"), res)
}

// TestInvoker_ConcurrentCorrelation 并发调用各自收到自己的应答
func TestInvoker_ConcurrentCorrelation(t *testing.T) {
	var inv *Invoker
	var mu sync.Mutex
	var backlog []*wire.Request
	inv = NewInvoker(func(req *wire.Request) error {
		mu.Lock()
		backlog = append(backlog, req)
		mu.Unlock()
		return nil
	}, 5*time.Second, nil, nil)

	const n = 16
	results := make([]types.ServiceResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = inv.Call(context.Background(), "echo", []byte(fmt.Sprint(i)), 0)
		}(i)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(backlog) == n
	}, 2*time.Second, 5*time.Millisecond)

	// 逆序应答
	mu.Lock()
	for i := len(backlog) - 1; i >= 0; i-- {
		req := backlog[i]
		require.True(t, inv.Complete(&wire.Response{CorrelationID: req.CorrelationID, Success: true, Message: string(req.Payload)}))
	}
	mu.Unlock()
	wg.Wait()

	for i, res := range results {
		assert.Equal(t, types.ServiceResult{Success: true, Message: fmt.Sprint(i)}, res)
	}
	t.Log("✅ 并发关联测试通过")
}

// TestInvoker_FailAll 断开时所有挂起调用立即失败
func TestInvoker_FailAll(t *testing.T) {
	rec := &recorder{}
	inv := NewInvoker(rec.send, time.Minute, nil, nil)

	const n = 8
	results := make(chan types.ServiceResult, n)
	for i := 0; i < n; i++ {
		go func() { results <- inv.Call(context.Background(), types.ServiceManualControl, nil, 0) }()
	}
	require.Eventually(t, func() bool { return inv.Pending() == n }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, n, inv.FailAll(types.MessageDisconnected))
	for i := 0; i < n; i++ {
		select {
		case res := <-results:
			assert.Equal(t, types.Failure(types.MessageDisconnected), res)
		case <-time.After(time.Second):
			t.Fatal("调用未在断开后返回")
		}
	}

	assert.Zero(t, inv.FailAll(types.MessageDisconnected))
	assert.ErrorIs(t, inv.Err(), ErrInvokerClosed)

	res := inv.Call(context.Background(), types.ServiceStandUp, nil, 0)
	assert.Equal(t, types.Failure(types.MessageDisconnected), res)
	assert.Equal(t, n, rec.count(), "关闭后不再发送请求")

	t.Log("✅ FailAll 测试通过")
}

func TestInvoker_Timeout(t *testing.T) {
	mock := clock.NewMock()
	rec := &recorder{}
	inv := NewInvoker(rec.send, time.Second, mock, nil)

	done := make(chan types.ServiceResult, 1)
	go func() { done <- inv.Call(context.Background(), types.ServiceSitDown, nil, 0) }()

	require.Eventually(t, func() bool { return inv.Pending() == 1 }, 2*time.Second, 5*time.Millisecond)
	mock.Add(999 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("超时前不应返回")
	default:
	}

	mock.Add(time.Millisecond)
	select {
	case res := <-done:
		assert.Equal(t, types.Failure(types.MessageTimeout), res)
	case <-time.After(2 * time.Second):
		t.Fatal("超时后未返回")
	}
	assert.Zero(t, inv.Pending())

	// 迟到的应答被丢弃
	assert.False(t, inv.Complete(&wire.Response{CorrelationID: rec.reqs[0].CorrelationID, Success: true}))

	t.Log("✅ 超时测试通过")
}

func TestInvoker_ContextCancel(t *testing.T) {
	inv := NewInvoker((&recorder{}).send, time.Minute, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan types.ServiceResult, 1)
	go func() { done <- inv.Call(ctx, types.ServiceStandUp, nil, 0) }()

	require.Eventually(t, func() bool { return inv.Pending() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case res := <-done:
		assert.Equal(t, types.Failure(types.MessageCancelled), res)
	case <-time.After(time.Second):
		t.Fatal("取消后未返回")
	}
	assert.Zero(t, inv.Pending())
}

func TestInvoker_SendError(t *testing.T) {
	rec := &recorder{err: errors.New("broken pipe")}
	inv := NewInvoker(rec.send, time.Second, nil, nil)

	res := inv.Call(context.Background(), types.ServiceStandUp, nil, 0)
	assert.Equal(t, types.Failure(types.MessageDisconnected), res)
	assert.Zero(t, inv.Pending())
}

func TestInvoker_EmptyService(t *testing.T) {
	rec := &recorder{}
	inv := NewInvoker(rec.send, time.Second, nil, nil)

	res := inv.Call(context.Background(), "", nil, 0)
	assert.False(t, res.Success)
	assert.Zero(t, rec.count())
}

func TestInvoker_UniqueCorrelationIDs(t *testing.T) {
	rec := &recorder{}
	inv := NewInvoker(rec.send, time.Minute, nil, nil)

	for i := 0; i < 10; i++ {
		go inv.Call(context.Background(), "s", nil, 0)
	}
	require.Eventually(t, func() bool { return rec.count() == 10 }, 2*time.Second, 5*time.Millisecond)

	seen := make(map[string]struct{})
	rec.mu.Lock()
	for _, req := range rec.reqs {
		seen[req.CorrelationID] = struct{}{}
	}
	rec.mu.Unlock()
	assert.Len(t, seen, 10)

	inv.FailAll(types.MessageDisconnected)
}
