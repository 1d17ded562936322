package raisin

import "github.com/dep2p/go-raisin/pkg/types"

// ControlMode 本地镜像的控制模式
//
//	Unset ──SetManualControl──▶ Manual
//	Unset ──SetAutonomousControl──▶ Autonomous
//	Manual/Autonomous ──ReleaseControl(持有者)──▶ Unset
//
// 镜像只在远端确认成功后改变；收到的状态帧中的 joy_source 具有最终效力。
type ControlMode int32

const (
	// ControlUnset 未持有控制权
	ControlUnset ControlMode = iota
	// ControlManual 手动控制（joy/gui）
	ControlManual
	// ControlAutonomous 自主控制（vel_cmd/autonomy）
	ControlAutonomous
	// ControlReleased 仅作为转移目标出现，镜像会立即回到 Unset
	ControlReleased
)

// String 返回控制模式名称
func (m ControlMode) String() string {
	switch m {
	case ControlUnset:
		return "UNSET"
	case ControlManual:
		return "MANUAL"
	case ControlAutonomous:
		return "AUTONOMOUS"
	case ControlReleased:
		return "RELEASED"
	default:
		return "UNKNOWN"
	}
}

// Source 返回持有控制权的控制源名称，未持有时为空
func (m ControlMode) Source() string {
	switch m {
	case ControlManual:
		return types.ControlSourceGUI
	case ControlAutonomous:
		return types.ControlSourceAutonomy
	default:
		return ""
	}
}

// modeFromJoy 由状态帧中的 joy_source 推导控制模式
func modeFromJoy(joy int32) ControlMode {
	switch joy {
	case types.JoySourceManual:
		return ControlManual
	case types.JoySourceAutonomous:
		return ControlAutonomous
	default:
		return ControlUnset
	}
}

// afterRelease 计算成功释放 source 之后的模式
func afterRelease(current ControlMode, source string) ControlMode {
	if current.Source() == source {
		return ControlUnset
	}
	return current
}
