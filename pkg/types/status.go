package types

import "fmt"

// ============================================================================
//                              执行器状态码
// ============================================================================

// 已知的执行器状态码
const (
	ActuatorNotReady         int32 = 0
	ActuatorFault            int32 = 8
	ActuatorReadyToSwitchOn  int32 = 33
	ActuatorSwitchedOn       int32 = 35
	ActuatorOperationEnabled int32 = 39
	ActuatorError            int32 = 99
)

type statusInfo struct {
	name    string
	isError bool
}

// actuatorStatusTable 状态码查找表，新增状态码只需在此添加
var actuatorStatusTable = map[int32]statusInfo{
	ActuatorNotReady:         {"NOT_READY", true},
	ActuatorFault:            {"FAULT", true},
	ActuatorReadyToSwitchOn:  {"READY", false},
	ActuatorSwitchedOn:       {"SWITCHED_ON", false},
	ActuatorOperationEnabled: {"OPERATIONAL", false},
	ActuatorError:            {"ERROR", true},
}

// ActuatorStatusName 返回状态码名称，未知状态码返回 UNKNOWN(n)
func ActuatorStatusName(code int32) string {
	if info, ok := actuatorStatusTable[code]; ok {
		return info.name
	}
	return fmt.Sprintf("UNKNOWN(%d)", code)
}

// IsActuatorStatusError 状态码是否表示错误
//
// 未知状态码不视为错误。
func IsActuatorStatusError(code int32) bool {
	return actuatorStatusTable[code].isError
}

// ============================================================================
//                              运动状态
// ============================================================================

// 运动状态
const (
	LocomotionNone        int32 = 0
	LocomotionSitting     int32 = 1
	LocomotionStandingUp  int32 = 2
	LocomotionStanding    int32 = 3
	LocomotionWalking     int32 = 4
	LocomotionSittingDown int32 = 5
	LocomotionError       int32 = 6
)

var locomotionNames = map[int32]string{
	LocomotionNone:        "NONE",
	LocomotionSitting:     "SITTING",
	LocomotionStandingUp:  "STANDING_UP",
	LocomotionStanding:    "STANDING",
	LocomotionWalking:     "WALKING",
	LocomotionSittingDown: "SITTING_DOWN",
	LocomotionError:       "ERROR",
}

// LocomotionStateName 返回运动状态名称
func LocomotionStateName(state int32) string {
	if name, ok := locomotionNames[state]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", state)
}

// ============================================================================
//                              控制源
// ============================================================================

// 控制源名称（releaseControl 的参数）
const (
	ControlSourceGUI      = "joy/gui"
	ControlSourceAutonomy = "vel_cmd/autonomy"
)

// 状态帧中的 joy_source 取值
const (
	JoySourceNone       int32 = 0
	JoySourceManual     int32 = 1
	JoySourceAutonomous int32 = 2
)

var joySourceNames = map[int32]string{
	JoySourceNone:       "NONE",
	JoySourceManual:     "MANUAL (" + ControlSourceGUI + ")",
	JoySourceAutonomous: "AUTONOMOUS (" + ControlSourceAutonomy + ")",
}

// JoySourceName 返回控制源名称
func JoySourceName(source int32) string {
	if name, ok := joySourceNames[source]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", source)
}

// ControlSourceForJoy 返回 joy_source 对应的控制源名称，无控制源时返回空
func ControlSourceForJoy(source int32) string {
	switch source {
	case JoySourceManual:
		return ControlSourceGUI
	case JoySourceAutonomous:
		return ControlSourceAutonomy
	default:
		return ""
	}
}
