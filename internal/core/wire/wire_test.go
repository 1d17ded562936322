package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-raisin/pkg/types"
)

// TestEncodeDecode 测试各种消息经过信封后保持不变
func TestEncodeDecode(t *testing.T) {
	msgs := []Message{
		&Hello{ClientName: "monitor", ClientID: "c-1"},
		&HelloAck{
			NodeID:     "r1",
			Publishers: map[string]types.TypeDescriptor{types.TopicRobotState: {DataType: types.DataTypeRobotState}},
			Services: map[string]types.TypeDescriptor{
				types.ServiceStandUp: {DataType: types.DataTypeTrigger},
				types.ServiceSitDown: {DataType: types.DataTypeTrigger},
			},
		},
		&Publish{Topic: types.TopicRobotState, Sequence: 42, Payload: []byte{1, 2, 3}},
		&Request{CorrelationID: "id-1", Service: types.ServiceReleaseControl, Payload: EncodeString(types.ControlSourceGUI)},
		&Response{CorrelationID: "id-1", Success: true, Message: "released"},
		&Bye{Reason: "shutdown"},
	}
	for _, m := range msgs {
		got, err := Decode(Encode(m))
		require.NoError(t, err, m.Kind().String())
		assert.Equal(t, m, got)
	}
	t.Log("✅ 消息编解码测试通过")
}

func TestDecode_EmptyCatalog(t *testing.T) {
	got, err := Decode(Encode(&HelloAck{NodeID: "r1"}))
	require.NoError(t, err)
	ack := got.(*HelloAck)
	assert.Empty(t, ack.Publishers)
	assert.NotNil(t, ack.Services)
}

func TestDecode_SkipsUnknownFields(t *testing.T) {
	body := (&Bye{Reason: "x"}).appendBody(nil)
	body = protowire.AppendTag(body, 15, protowire.VarintType)
	body = protowire.AppendVarint(body, 99)
	body = protowire.AppendTag(body, 16, protowire.BytesType)
	body = protowire.AppendString(body, "future")

	var frame []byte
	frame = protowire.AppendTag(frame, envKind, protowire.VarintType)
	frame = protowire.AppendVarint(frame, uint64(KindBye))
	frame = protowire.AppendTag(frame, envBody, protowire.BytesType)
	frame = protowire.AppendBytes(frame, body)
	frame = protowire.AppendTag(frame, 9, protowire.Fixed32Type)
	frame = protowire.AppendFixed32(frame, 7)

	got, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, &Bye{Reason: "x"}, got)
}

func TestDecode_Errors(t *testing.T) {
	frame := Encode(&Request{CorrelationID: "abc", Service: "stand_up"})

	_, err := Decode(frame[:len(frame)-2])
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decode(nil)
	assert.ErrorIs(t, err, ErrUnknownKind)

	var unknown []byte
	unknown = protowire.AppendTag(unknown, envKind, protowire.VarintType)
	unknown = protowire.AppendVarint(unknown, 77)
	_, err = Decode(unknown)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Decode([]byte{0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrMalformed)
}

// TestRobotState 测试状态负载编解码
func TestRobotState(t *testing.T) {
	in := types.ExtendedRobotState{
		Voltage:         47.5,
		Current:         -3.25,
		MinVoltage:      40,
		MaxVoltage:      54.6,
		BodyTemperature: 36.6,
		LocomotionState: types.LocomotionWalking,
		JoySource:       types.JoySourceAutonomous,
		Actuators: []types.ActuatorState{
			{Name: "LF_HAA", Status: types.ActuatorOperationEnabled, Temperature: 40.1, Position: -0.5, Velocity: 1.25, Effort: 3},
			{Name: "LF_HFE", Status: types.ActuatorFault},
		},
	}
	out, err := DecodeRobotState(EncodeRobotState(&in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	neg := types.ExtendedRobotState{LocomotionState: -1}
	out, err = DecodeRobotState(EncodeRobotState(&neg))
	require.NoError(t, err)
	assert.Equal(t, int32(-1), out.LocomotionState)

	_, err = DecodeRobotState([]byte{0x42, 0x10, 0x01})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestString(t *testing.T) {
	v, err := DecodeString(EncodeString(types.ControlSourceAutonomy))
	require.NoError(t, err)
	assert.Equal(t, types.ControlSourceAutonomy, v)

	v, err = DecodeString(nil)
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "hello_ack", KindHelloAck.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
