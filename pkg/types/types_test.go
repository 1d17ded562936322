package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestActuatorStatus 测试状态码查找表
func TestActuatorStatus(t *testing.T) {
	tests := []struct {
		code    int32
		name    string
		isError bool
	}{
		{39, "OPERATIONAL", false},
		{33, "READY", false},
		{35, "SWITCHED_ON", false},
		{0, "NOT_READY", true},
		{8, "FAULT", true},
		{99, "ERROR", true},
		{42, "UNKNOWN(42)", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, ActuatorStatusName(tt.code), "code %d", tt.code)
		assert.Equal(t, tt.isError, IsActuatorStatusError(tt.code), "code %d", tt.code)
	}
	t.Log("✅ 状态码查找表测试通过")
}

func TestExtendedRobotState_ActuatorQueries(t *testing.T) {
	s := &ExtendedRobotState{
		Actuators: []ActuatorState{
			{Name: "LF_HAA", Status: ActuatorOperationEnabled},
			{Name: "LF_HFE", Status: ActuatorOperationEnabled},
		},
	}
	assert.False(t, s.HasActuatorError())
	assert.True(t, s.AllActuatorsOperational())
	assert.Empty(t, s.ActuatorsWithErrors())

	s.Actuators[1].Status = ActuatorReadyToSwitchOn
	assert.False(t, s.HasActuatorError())
	assert.False(t, s.AllActuatorsOperational())

	s.Actuators[0].Status = ActuatorFault
	require.True(t, s.HasActuatorError())
	assert.Equal(t, []string{"LF_HAA: FAULT (8)"}, s.ActuatorsWithErrors())

	empty := &ExtendedRobotState{}
	assert.False(t, empty.AllActuatorsOperational())
}

func TestExtendedRobotState_IsOperational(t *testing.T) {
	s := &ExtendedRobotState{LocomotionState: LocomotionStanding}
	assert.True(t, s.IsOperational())

	s.LocomotionState = LocomotionSitting
	assert.False(t, s.IsOperational())

	s.LocomotionState = LocomotionWalking
	s.Actuators = []ActuatorState{{Name: "RH_KFE", Status: ActuatorError}}
	assert.False(t, s.IsOperational())
}

func TestExtendedRobotState_Names(t *testing.T) {
	s := &ExtendedRobotState{LocomotionState: LocomotionStandingUp, JoySource: JoySourceManual}
	assert.Equal(t, "STANDING_UP", s.LocomotionStateName())
	assert.Equal(t, "MANUAL (joy/gui)", s.JoySourceName())
	assert.Equal(t, "UNKNOWN(17)", LocomotionStateName(17))
	assert.Equal(t, "UNKNOWN(9)", JoySourceName(9))
	assert.Equal(t, ControlSourceAutonomy, ControlSourceForJoy(JoySourceAutonomous))
	assert.Equal(t, "", ControlSourceForJoy(JoySourceNone))
}

func TestExtendedRobotState_BatteryPercentage(t *testing.T) {
	s := &ExtendedRobotState{Voltage: 48, MinVoltage: 40, MaxVoltage: 56}
	assert.InDelta(t, 50.0, s.BatteryPercentage(), 1e-9)

	s.Voltage = 60
	assert.Equal(t, 100.0, s.BatteryPercentage())

	s.Voltage = 30
	assert.Equal(t, 0.0, s.BatteryPercentage())

	bad := &ExtendedRobotState{Voltage: 1, MinVoltage: 5, MaxVoltage: 5}
	assert.Equal(t, 0.0, bad.BatteryPercentage())
}

func TestExtendedRobotState_Clone(t *testing.T) {
	s := &ExtendedRobotState{Actuators: []ActuatorState{{Name: "a"}}}
	c := s.Clone()
	c.Actuators[0].Name = "b"
	assert.Equal(t, "a", s.Actuators[0].Name)
}

func TestNodeAdvertisement(t *testing.T) {
	adv := NodeAdvertisement{ID: "r1", IP: "10.0.0.5", Port: 7000}
	assert.True(t, adv.Visible())
	assert.Equal(t, "10.0.0.5:7000", adv.Address())
	assert.True(t, adv.Matches("r1"))
	assert.True(t, adv.Matches("10.0.0.5"))
	assert.True(t, adv.Matches("10.0.0.5:7000"))
	assert.False(t, adv.Matches("10.0.0.6"))
	assert.False(t, adv.Matches(""))

	self := NodeAdvertisement{ID: "me", Port: -1}
	assert.False(t, self.Visible())
}

func TestNodeAdvertisement_CloneIsDeep(t *testing.T) {
	adv := NodeAdvertisement{
		ID:         "r1",
		Publishers: map[string]TypeDescriptor{"state": {DataType: "x"}},
	}
	c := adv.Clone()
	c.Publishers["other"] = TypeDescriptor{}
	assert.Len(t, adv.Publishers, 1)
}

func TestParseNetworkType(t *testing.T) {
	nt, err := ParseNetworkType("WS")
	require.NoError(t, err)
	assert.Equal(t, NetworkWebSocket, nt)

	nt, err = ParseNetworkType("")
	require.NoError(t, err)
	assert.Equal(t, NetworkTCP, nt)
	assert.Equal(t, "tcp", nt.String())
	assert.Equal(t, "TCP", nt.DisplayName())

	_, err = ParseNetworkType("quic")
	assert.Error(t, err)
}

func TestSortedCatalog(t *testing.T) {
	entries := SortedCatalog(map[string]TypeDescriptor{
		"stand_up": {DataType: DataTypeTrigger},
		"sit_down": {DataType: DataTypeTrigger},
	})
	require.Len(t, entries, 2)
	assert.Equal(t, "sit_down", entries[0].Name)
	assert.Equal(t, "stand_up", entries[1].Name)
}

func TestServiceResult_String(t *testing.T) {
	assert.Equal(t, "OK: done", ServiceResult{Success: true, Message: "done"}.String())
	assert.Equal(t, "FAIL: timeout", Failure(MessageTimeout).String())
}

func TestNewClientID(t *testing.T) {
	a, b := NewClientID(), NewClientID()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
	assert.LessOrEqual(t, len(a), 22)
	assert.Len(t, ShortID(a), 8)
	assert.Equal(t, "r1", ShortID("r1"))
}
