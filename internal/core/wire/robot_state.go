package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-raisin/pkg/types"
)

// EncodeRobotState 编码 robot_state 话题负载
//
// Sequence 与 ReceivedAt 不上线，由接收方填写。
func EncodeRobotState(s *types.ExtendedRobotState) []byte {
	var b []byte
	b = appendDouble(b, 1, s.Voltage)
	b = appendDouble(b, 2, s.Current)
	b = appendDouble(b, 3, s.MinVoltage)
	b = appendDouble(b, 4, s.MaxVoltage)
	b = appendDouble(b, 5, s.BodyTemperature)
	b = appendInt32(b, 6, s.LocomotionState)
	b = appendInt32(b, 7, s.JoySource)
	for i := range s.Actuators {
		a := &s.Actuators[i]
		var e []byte
		e = appendString(e, 1, a.Name)
		e = appendInt32(e, 2, a.Status)
		e = appendDouble(e, 3, a.Temperature)
		e = appendDouble(e, 4, a.Position)
		e = appendDouble(e, 5, a.Velocity)
		e = appendDouble(e, 6, a.Effort)
		b = protowire.AppendTag(b, 8, protowire.BytesType)
		b = protowire.AppendBytes(b, e)
	}
	return b
}

// DecodeRobotState 解码 robot_state 话题负载
func DecodeRobotState(b []byte) (types.ExtendedRobotState, error) {
	var s types.ExtendedRobotState
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readDouble(typ, b, &s.Voltage)
		case 2:
			return readDouble(typ, b, &s.Current)
		case 3:
			return readDouble(typ, b, &s.MinVoltage)
		case 4:
			return readDouble(typ, b, &s.MaxVoltage)
		case 5:
			return readDouble(typ, b, &s.BodyTemperature)
		case 6:
			return readInt32(typ, b, &s.LocomotionState)
		case 7:
			return readInt32(typ, b, &s.JoySource)
		case 8:
			return readActuator(typ, b, &s.Actuators)
		}
		return 0
	})
	return s, err
}

func readActuator(typ protowire.Type, b []byte, dst *[]types.ActuatorState) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	var a types.ActuatorState
	err := walk(v, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return readString(typ, b, &a.Name)
		case 2:
			return readInt32(typ, b, &a.Status)
		case 3:
			return readDouble(typ, b, &a.Temperature)
		case 4:
			return readDouble(typ, b, &a.Position)
		case 5:
			return readDouble(typ, b, &a.Velocity)
		case 6:
			return readDouble(typ, b, &a.Effort)
		}
		return 0
	})
	if err != nil {
		return -1
	}
	*dst = append(*dst, a)
	return n
}

// EncodeString 编码单个字符串负载（release_control 的控制源名称）
func EncodeString(v string) []byte {
	return appendString(nil, 1, v)
}

// DecodeString 解码单个字符串负载
func DecodeString(b []byte) (string, error) {
	var v string
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 {
			return readString(typ, b, &v)
		}
		return 0
	})
	return v, err
}
