package sim

import (
	"math"
	"time"

	"github.com/dep2p/go-raisin/pkg/types"
)

var actuatorNames = []string{
	"LF_HAA", "LF_HFE", "LF_KFE",
	"RF_HAA", "RF_HFE", "RF_KFE",
	"LH_HAA", "LH_HFE", "LH_KFE",
	"RH_HAA", "RH_HFE", "RH_KFE",
}

// initialState 坐姿、满电、全部执行器使能
func initialState() types.ExtendedRobotState {
	s := types.ExtendedRobotState{
		Voltage:         54.0,
		Current:         1.2,
		MinVoltage:      42.0,
		MaxVoltage:      54.6,
		BodyTemperature: 32.5,
		LocomotionState: types.LocomotionSitting,
		JoySource:       types.JoySourceNone,
	}
	for _, name := range actuatorNames {
		s.Actuators = append(s.Actuators, types.ActuatorState{
			Name:        name,
			Status:      types.ActuatorOperationEnabled,
			Temperature: 30,
		})
	}
	return s
}

// dynamics 推进模拟状态
type dynamics struct {
	state types.ExtendedRobotState

	// 进行中的动作
	target    int32
	remaining time.Duration

	elapsed time.Duration
}

func newDynamics() *dynamics {
	return &dynamics{state: initialState()}
}

// begin 开始一个站立/坐下动作
func (d *dynamics) begin(transitional, target int32, duration time.Duration) {
	if duration <= 0 {
		d.state.LocomotionState = target
		d.target = 0
		d.remaining = 0
		return
	}
	d.state.LocomotionState = transitional
	d.target = target
	d.remaining = duration
}

// step 推进 dt
func (d *dynamics) step(dt time.Duration) {
	d.elapsed += dt

	if d.target != 0 {
		d.remaining -= dt
		if d.remaining <= 0 {
			d.state.LocomotionState = d.target
			d.target = 0
		}
	}

	load := 1.2
	switch d.state.LocomotionState {
	case types.LocomotionStanding, types.LocomotionWalking:
		load = 6.5
	case types.LocomotionStandingUp, types.LocomotionSittingDown:
		load = 9.0
	}
	d.state.Current = load

	// 放电：按电流线性下降，不低于最低电压
	d.state.Voltage -= load * dt.Seconds() * 1e-3
	if d.state.Voltage < d.state.MinVoltage {
		d.state.Voltage = d.state.MinVoltage
	}

	t := d.elapsed.Seconds()
	for i := range d.state.Actuators {
		a := &d.state.Actuators[i]
		phase := float64(i) * math.Pi / 6
		if a.Status == types.ActuatorOperationEnabled {
			a.Position = 0.1 * math.Sin(t+phase)
			a.Velocity = 0.1 * math.Cos(t+phase)
			a.Effort = load * 0.5 * math.Sin(2*t+phase)
		} else {
			a.Velocity = 0
			a.Effort = 0
		}
		a.Temperature = 30 + load*0.8 + 0.2*math.Sin(t/10+phase)
	}
	d.state.BodyTemperature = 32.5 + load*0.3
}
