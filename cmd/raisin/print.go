package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	raisin "github.com/dep2p/go-raisin"
	"github.com/dep2p/go-raisin/pkg/types"
)

var stdout io.Writer = os.Stdout

func printNodes(nodes []types.NodeAdvertisement) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	fmt.Fprintf(stdout, "\n发现 %d 个节点 (%s)\n", len(nodes), time.Now().Format("15:04:05"))
	if len(nodes) == 0 {
		return
	}
	fmt.Fprintf(stdout, "  %-24s %-22s %-10s %s\n", "ID", "ADDRESS", "NETWORK", "CATALOG")
	for _, n := range nodes {
		fmt.Fprintf(stdout, "  %-24s %-22s %-10s %d pub / %d srv\n",
			n.ID, n.Address(), n.NetworkType.DisplayName(), len(n.Publishers), len(n.Services))
	}
}

func printState(s *types.ExtendedRobotState, mode raisin.ControlMode) {
	fmt.Fprintf(stdout, "[#%d] %s | 控制 %s (%s) | 电池 %.1f%% %.2fV %.2fA | 机身 %.1f°C",
		s.Sequence,
		s.LocomotionStateName(),
		s.JoySourceName(),
		mode,
		s.BatteryPercentage(), s.Voltage, s.Current,
		s.BodyTemperature)
	if errs := s.ActuatorsWithErrors(); len(errs) > 0 {
		fmt.Fprintf(stdout, " | 执行器错误: %s", strings.Join(errs, ", "))
	}
	fmt.Fprintln(stdout)
}

func printBattery(s *types.ExtendedRobotState) {
	fmt.Fprintf(stdout, "电量:   %.1f%%\n", s.BatteryPercentage())
	fmt.Fprintf(stdout, "电压:   %.2f V (%.2f - %.2f)\n", s.Voltage, s.MinVoltage, s.MaxVoltage)
	fmt.Fprintf(stdout, "电流:   %.2f A\n", s.Current)
	fmt.Fprintf(stdout, "温度:   %.1f °C\n", s.BodyTemperature)
}

func printActuators(s *types.ExtendedRobotState) {
	fmt.Fprintf(stdout, "%-12s %-14s %8s %9s %9s %8s\n", "NAME", "STATUS", "TEMP", "POS", "VEL", "EFFORT")
	for _, a := range s.Actuators {
		marker := ""
		if a.IsError() {
			marker = " !"
		}
		fmt.Fprintf(stdout, "%-12s %-14s %8.1f %9.3f %9.3f %8.2f%s\n",
			a.Name, a.StatusName(), a.Temperature, a.Position, a.Velocity, a.Effort, marker)
	}
	if s.AllActuatorsOperational() {
		fmt.Fprintln(stdout, "所有执行器处于 OPERATIONAL")
	}
}
