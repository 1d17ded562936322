package types

import (
	"fmt"
	"time"
)

// ActuatorState 单个执行器状态
type ActuatorState struct {
	Name        string
	Status      int32
	Temperature float64
	Position    float64
	Velocity    float64
	Effort      float64
}

// StatusName 返回状态码名称
func (a ActuatorState) StatusName() string {
	return ActuatorStatusName(a.Status)
}

// IsError 是否处于错误状态
func (a ActuatorState) IsError() bool {
	return IsActuatorStatusError(a.Status)
}

// ExtendedRobotState 机器人扩展状态帧
//
// Sequence 与 ReceivedAt 由运行时在收到帧时填写。
type ExtendedRobotState struct {
	Voltage         float64
	Current         float64
	MinVoltage      float64
	MaxVoltage      float64
	BodyTemperature float64
	LocomotionState int32
	JoySource       int32
	Actuators       []ActuatorState

	Sequence   uint64
	ReceivedAt time.Time
}

// Clone 返回深拷贝
func (s *ExtendedRobotState) Clone() ExtendedRobotState {
	out := *s
	out.Actuators = append([]ActuatorState(nil), s.Actuators...)
	return out
}

// HasActuatorError 是否有执行器处于错误状态
func (s *ExtendedRobotState) HasActuatorError() bool {
	for _, a := range s.Actuators {
		if a.IsError() {
			return true
		}
	}
	return false
}

// ActuatorsWithErrors 返回错误执行器的描述，格式 "name: STATUS (code)"
func (s *ExtendedRobotState) ActuatorsWithErrors() []string {
	var out []string
	for _, a := range s.Actuators {
		if a.IsError() {
			out = append(out, fmt.Sprintf("%s: %s (%d)", a.Name, a.StatusName(), a.Status))
		}
	}
	return out
}

// AllActuatorsOperational 所有执行器都处于 OPERATION_ENABLED
func (s *ExtendedRobotState) AllActuatorsOperational() bool {
	if len(s.Actuators) == 0 {
		return false
	}
	for _, a := range s.Actuators {
		if a.Status != ActuatorOperationEnabled {
			return false
		}
	}
	return true
}

// IsOperational 机器人是否处于可运动状态
//
// 站立或行走中，且没有执行器错误。
func (s *ExtendedRobotState) IsOperational() bool {
	if s.HasActuatorError() {
		return false
	}
	return s.LocomotionState == LocomotionStanding || s.LocomotionState == LocomotionWalking
}

// LocomotionStateName 返回运动状态名称
func (s *ExtendedRobotState) LocomotionStateName() string {
	return LocomotionStateName(s.LocomotionState)
}

// JoySourceName 返回当前控制源名称
func (s *ExtendedRobotState) JoySourceName() string {
	return JoySourceName(s.JoySource)
}

// BatteryPercentage 按电压区间线性估算电量百分比，结果限制在 [0, 100]
func (s *ExtendedRobotState) BatteryPercentage() float64 {
	span := s.MaxVoltage - s.MinVoltage
	if span <= 0 {
		return 0
	}
	p := (s.Voltage - s.MinVoltage) / span * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
