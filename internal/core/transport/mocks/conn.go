// Package mocks 提供传输层接口的 gomock 模拟实现
package mocks

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/types"
)

var (
	_ interfaces.Conn   = (*MockConn)(nil)
	_ interfaces.Dialer = (*MockDialer)(nil)
)

// ============================================================================
//                              MockConn
// ============================================================================

// MockConn interfaces.Conn 的模拟实现
type MockConn struct {
	ctrl     *gomock.Controller
	recorder *MockConnMockRecorder
}

// MockConnMockRecorder MockConn 的期望记录器
type MockConnMockRecorder struct {
	mock *MockConn
}

// NewMockConn 创建 MockConn
func NewMockConn(ctrl *gomock.Controller) *MockConn {
	mock := &MockConn{ctrl: ctrl}
	mock.recorder = &MockConnMockRecorder{mock}
	return mock
}

// EXPECT 返回期望记录器
func (m *MockConn) EXPECT() *MockConnMockRecorder {
	return m.recorder
}

// ReadFrame mocks base method.
func (m *MockConn) ReadFrame() ([]byte, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadFrame")
	ret0, _ := ret[0].([]byte)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ReadFrame indicates an expected call of ReadFrame.
func (mr *MockConnMockRecorder) ReadFrame() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadFrame", reflect.TypeOf((*MockConn)(nil).ReadFrame))
}

// WriteFrame mocks base method.
func (m *MockConn) WriteFrame(frame []byte) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteFrame", frame)
	ret0, _ := ret[0].(error)
	return ret0
}

// WriteFrame indicates an expected call of WriteFrame.
func (mr *MockConnMockRecorder) WriteFrame(frame any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteFrame", reflect.TypeOf((*MockConn)(nil).WriteFrame), frame)
}

// Close mocks base method.
func (m *MockConn) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockConnMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockConn)(nil).Close))
}

// RemoteAddr mocks base method.
func (m *MockConn) RemoteAddr() string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RemoteAddr")
	ret0, _ := ret[0].(string)
	return ret0
}

// RemoteAddr indicates an expected call of RemoteAddr.
func (mr *MockConnMockRecorder) RemoteAddr() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RemoteAddr", reflect.TypeOf((*MockConn)(nil).RemoteAddr))
}

// NetworkType mocks base method.
func (m *MockConn) NetworkType() types.NetworkType {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NetworkType")
	ret0, _ := ret[0].(types.NetworkType)
	return ret0
}

// NetworkType indicates an expected call of NetworkType.
func (mr *MockConnMockRecorder) NetworkType() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NetworkType", reflect.TypeOf((*MockConn)(nil).NetworkType))
}

// ============================================================================
//                              MockDialer
// ============================================================================

// MockDialer interfaces.Dialer 的模拟实现
type MockDialer struct {
	ctrl     *gomock.Controller
	recorder *MockDialerMockRecorder
}

// MockDialerMockRecorder MockDialer 的期望记录器
type MockDialerMockRecorder struct {
	mock *MockDialer
}

// NewMockDialer 创建 MockDialer
func NewMockDialer(ctrl *gomock.Controller) *MockDialer {
	mock := &MockDialer{ctrl: ctrl}
	mock.recorder = &MockDialerMockRecorder{mock}
	return mock
}

// EXPECT 返回期望记录器
func (m *MockDialer) EXPECT() *MockDialerMockRecorder {
	return m.recorder
}

// Dial mocks base method.
func (m *MockDialer) Dial(ctx context.Context, ip string, port int) (interfaces.Conn, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Dial", ctx, ip, port)
	ret0, _ := ret[0].(interfaces.Conn)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Dial indicates an expected call of Dial.
func (mr *MockDialerMockRecorder) Dial(ctx, ip, port any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Dial", reflect.TypeOf((*MockDialer)(nil).Dial), ctx, ip, port)
}

// NetworkType mocks base method.
func (m *MockDialer) NetworkType() types.NetworkType {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NetworkType")
	ret0, _ := ret[0].(types.NetworkType)
	return ret0
}

// NetworkType indicates an expected call of NetworkType.
func (mr *MockDialerMockRecorder) NetworkType() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NetworkType", reflect.TypeOf((*MockDialer)(nil).NetworkType))
}
