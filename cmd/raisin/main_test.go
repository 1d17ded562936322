package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-raisin/config"
	"github.com/dep2p/go-raisin/pkg/types"
)

func TestParseStaticNodes(t *testing.T) {
	nodes, err := parseStaticNodes("r1@10.0.0.5:7000, 10.0.0.6:7001/websocket ,[::1]:9000")
	require.NoError(t, err)
	assert.Equal(t, []config.StaticNode{
		{ID: "r1", IP: "10.0.0.5", Port: 7000},
		{IP: "10.0.0.6", Port: 7001, Network: "websocket"},
		{IP: "::1", Port: 9000},
	}, nodes)

	for _, bad := range []string{"10.0.0.5", "r1@10.0.0.5:x", "10.0.0.5:70000", "r1@"} {
		_, err := parseStaticNodes(bad)
		assert.Error(t, err, bad)
	}
	t.Log("✅ 静态节点解析测试通过")
}

func TestFindCommand(t *testing.T) {
	for _, name := range []string{"discover", "state", "battery", "actuators", "control"} {
		_, ok := findCommand(name)
		assert.True(t, ok, name)
	}
	_, ok := findCommand("walk")
	assert.False(t, ok)
}

func TestControlAction_Unknown(t *testing.T) {
	_, err := controlAction(nil, "jump")
	assert.Error(t, err)
}

func TestPrintActuators(t *testing.T) {
	defer func(w io.Writer) { stdout = w }(stdout)
	buf := &bytes.Buffer{}
	stdout = buf

	s := &types.ExtendedRobotState{Actuators: []types.ActuatorState{
		{Name: "LF_HAA", Status: types.ActuatorOperationEnabled},
		{Name: "RF_HAA", Status: types.ActuatorFault},
	}}
	printActuators(s)

	out := buf.String()
	assert.Contains(t, out, "LF_HAA")
	assert.Contains(t, out, "OPERATIONAL")
	assert.Contains(t, out, "FAULT")
	assert.NotContains(t, out, "所有执行器处于")
}
