package sim

import (
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-raisin/internal/core/wire"
	"github.com/dep2p/go-raisin/pkg/interfaces"
	"github.com/dep2p/go-raisin/pkg/types"
)

// session 一个客户端连接
type session struct {
	robot *Robot
	conn  interfaces.Conn

	ready     atomic.Bool
	client    string
	closeOnce sync.Once
	handlers  sync.WaitGroup
}

func newSession(r *Robot, c interfaces.Conn) *session {
	return &session{robot: r, conn: c}
}

func (s *session) serve() {
	defer s.robot.wg.Done()
	defer s.robot.removeSession(s)
	defer s.handlers.Wait()
	defer func() { _ = s.conn.Close() }()

	for {
		frame, err := s.conn.ReadFrame()
		if err != nil {
			logger.Debug("会话结束", "remote", s.conn.RemoteAddr(), "client", s.client, "err", err)
			return
		}
		msg, err := wire.Decode(frame)
		if err != nil {
			logger.Debug("丢弃无法解码的帧", "remote", s.conn.RemoteAddr(), "err", err)
			continue
		}

		switch m := msg.(type) {
		case *wire.Hello:
			s.client = m.ClientName
			ack := &wire.HelloAck{
				NodeID:     s.robot.cfg.ID,
				Publishers: s.robot.Publishers(),
				Services:   s.robot.Services(),
			}
			if err := s.conn.WriteFrame(wire.Encode(ack)); err != nil {
				return
			}
			s.robot.greet(s)
			logger.Info("客户端已握手", "client", m.ClientName, "clientID", m.ClientID, "remote", s.conn.RemoteAddr())
		case *wire.Request:
			if !s.ready.Load() {
				continue
			}
			s.handlers.Add(1)
			go s.handle(m)
		case *wire.Bye:
			logger.Info("客户端断开", "client", s.client, "reason", m.Reason)
			return
		}
	}
}

func (s *session) handle(req *wire.Request) {
	defer s.handlers.Done()

	r := s.robot
	r.mu.Lock()
	delay := r.delays[req.Service]
	hang := r.hangs[req.Service]
	r.mu.Unlock()

	if hang {
		logger.Debug("服务挂起，不应答", "service", req.Service)
		return
	}
	if delay > 0 {
		select {
		case <-r.clock.After(delay):
		case <-r.ctx.Done():
			return
		}
	}

	r.pubMu.Lock()
	defer r.pubMu.Unlock()
	res := r.invoke(req.Service, req.Payload)
	resp := &wire.Response{CorrelationID: req.CorrelationID, Success: res.Success, Message: res.Message}
	if err := s.conn.WriteFrame(wire.Encode(resp)); err != nil {
		logger.Debug("发送应答失败", "service", req.Service, "err", err)
	}
}

// close 尽力发送 Bye 后关闭
func (s *session) close(reason string) {
	s.closeOnce.Do(func() {
		if s.ready.Load() {
			_ = s.conn.WriteFrame(wire.Encode(&wire.Bye{Reason: reason}))
		}
		_ = s.conn.Close()
	})
}

// ============================================================================
//                              服务
// ============================================================================

// invoke 执行服务并返回结果
func (r *Robot) invoke(service string, payload []byte) types.ServiceResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg, ok := r.faults[service]; ok {
		return types.Failure(msg)
	}

	st := &r.dyn.state
	switch service {
	case types.ServiceManualControl:
		st.JoySource = types.JoySourceManual
		return types.ServiceResult{Success: true, Message: "control granted to " + types.ControlSourceGUI}

	case types.ServiceAutonomousControl:
		st.JoySource = types.JoySourceAutonomous
		return types.ServiceResult{Success: true, Message: "control granted to " + types.ControlSourceAutonomy}

	case types.ServiceReleaseControl:
		source, err := wire.DecodeString(payload)
		if err != nil {
			return types.Failure("malformed request")
		}
		var held int32
		switch source {
		case types.ControlSourceGUI:
			held = types.JoySourceManual
		case types.ControlSourceAutonomy:
			held = types.JoySourceAutonomous
		default:
			return types.Failure("unknown control source: " + source)
		}
		if st.JoySource != held {
			return types.ServiceResult{Success: true, Message: source + " does not hold control"}
		}
		st.JoySource = types.JoySourceNone
		return types.ServiceResult{Success: true, Message: source + " released"}

	case types.ServiceStandUp:
		if r.cfg.RequireControl && st.JoySource == types.JoySourceNone {
			return types.Failure("control not acquired")
		}
		if st.LocomotionState == types.LocomotionStanding || st.LocomotionState == types.LocomotionStandingUp {
			return types.ServiceResult{Success: true, Message: "already standing"}
		}
		r.dyn.begin(types.LocomotionStandingUp, types.LocomotionStanding, r.cfg.TransitionTime)
		return types.ServiceResult{Success: true, Message: "standing up"}

	case types.ServiceSitDown:
		if r.cfg.RequireControl && st.JoySource == types.JoySourceNone {
			return types.Failure("control not acquired")
		}
		if st.LocomotionState == types.LocomotionSitting || st.LocomotionState == types.LocomotionSittingDown {
			return types.ServiceResult{Success: true, Message: "already sitting"}
		}
		r.dyn.begin(types.LocomotionSittingDown, types.LocomotionSitting, r.cfg.TransitionTime)
		return types.ServiceResult{Success: true, Message: "sitting down"}
	}

	return types.Failure("unknown service: " + service)
}

