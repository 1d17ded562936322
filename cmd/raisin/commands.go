package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	raisin "github.com/dep2p/go-raisin"
	"github.com/dep2p/go-raisin/pkg/types"
)

// ============================================================================
//                              discover
// ============================================================================

func runDiscover(ctx context.Context, c *raisin.Client, _ []string) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		nodes := c.GetAllConnections()
		printNodes(nodes)
		if *once {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// ============================================================================
//                              state / battery / actuators
// ============================================================================

func runState(ctx context.Context, c *raisin.Client, _ []string) error {
	if err := connect(ctx, c); err != nil {
		return err
	}

	frames := make(chan types.ExtendedRobotState, 1)
	unsubscribe := c.SubscribeRobotState(func(s *types.ExtendedRobotState) {
		select {
		case frames <- *s:
		default:
		}
	})
	defer unsubscribe()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-frames:
			if time.Since(last) < time.Second {
				continue
			}
			last = time.Now()
			printState(&s, c.ControlMode())
			if *once {
				return nil
			}
		}
	}
}

func runBattery(ctx context.Context, c *raisin.Client, _ []string) error {
	s, err := firstState(ctx, c)
	if err != nil {
		return err
	}
	printBattery(&s)
	return nil
}

func runActuators(ctx context.Context, c *raisin.Client, _ []string) error {
	s, err := firstState(ctx, c)
	if err != nil {
		return err
	}
	printActuators(&s)
	return nil
}

// firstState 连接并等待第一帧状态
func firstState(ctx context.Context, c *raisin.Client) (types.ExtendedRobotState, error) {
	if err := connect(ctx, c); err != nil {
		return types.ExtendedRobotState{}, err
	}

	got := make(chan types.ExtendedRobotState, 1)
	unsubscribe := c.SubscribeRobotState(func(s *types.ExtendedRobotState) {
		select {
		case got <- *s:
		default:
		}
	})
	defer unsubscribe()

	timer := time.NewTimer(*timeout)
	defer timer.Stop()
	select {
	case s := <-got:
		return s, nil
	case <-timer.C:
		return types.ExtendedRobotState{}, errors.New("等待状态帧超时")
	case <-ctx.Done():
		return types.ExtendedRobotState{}, ctx.Err()
	}
}

// ============================================================================
//                              control
// ============================================================================

func runControl(ctx context.Context, c *raisin.Client, args []string) error {
	if len(args) != 1 {
		return errors.New("用法: raisin -robot <id> control <manual|auto|release-gui|release-auto|stand|sit>")
	}
	action, err := controlAction(c, args[0])
	if err != nil {
		return err
	}
	if err := connect(ctx, c); err != nil {
		return err
	}

	res := action(ctx)
	fmt.Printf("%s → %s\n", args[0], res)
	fmt.Printf("控制模式: %s\n", c.ControlMode())
	if !res.Success {
		return fmt.Errorf("%s 被拒绝: %s", args[0], res.Message)
	}
	return nil
}

// controlAction 把动作名映射到客户端方法
func controlAction(c *raisin.Client, name string) (func(context.Context) types.ServiceResult, error) {
	switch name {
	case "manual":
		return c.SetManualControl, nil
	case "auto":
		return c.SetAutonomousControl, nil
	case "release-gui":
		return func(ctx context.Context) types.ServiceResult {
			return c.ReleaseControl(ctx, types.ControlSourceGUI)
		}, nil
	case "release-auto":
		return func(ctx context.Context) types.ServiceResult {
			return c.ReleaseControl(ctx, types.ControlSourceAutonomy)
		}, nil
	case "stand":
		return c.StandUp, nil
	case "sit":
		return c.SitDown, nil
	default:
		return nil, fmt.Errorf("未知控制动作 %q", name)
	}
}
