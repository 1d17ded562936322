package types

// 话题名称
const (
	// TopicRobotState 机器人扩展状态流
	TopicRobotState = "robot_state"
)

// 服务名称
const (
	ServiceManualControl     = "manual_control"
	ServiceAutonomousControl = "autonomous_control"
	ServiceReleaseControl    = "release_control"
	ServiceStandUp           = "stand_up"
	ServiceSitDown           = "sit_down"
)

// 消息类型名称（出现在目录中）
const (
	DataTypeRobotState = "raisin_interfaces/msg/ExtendedRobotState"
	DataTypeTrigger    = "std_srvs/srv/Trigger"
	DataTypeString     = "raisin_interfaces/srv/String"
)

// 本地合成失败结果使用的消息
const (
	MessageTimeout      = "timeout"
	MessageDisconnected = "disconnected"
	MessageCancelled    = "cancelled"
)

// ServiceResult 服务调用结果
//
// Success=false 时 Message 可能来自远端（原样透传），
// 也可能是本地合成的 timeout / disconnected / cancelled。
type ServiceResult struct {
	Success bool
	Message string
}

// Failure 构造本地失败结果
func Failure(message string) ServiceResult {
	return ServiceResult{Success: false, Message: message}
}

// String 返回 "OK: msg" 或 "FAIL: msg"
func (r ServiceResult) String() string {
	if r.Success {
		return "OK: " + r.Message
	}
	return "FAIL: " + r.Message
}
