package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wufe/yeelight"
)

var errUsage = errors.New("usage")

type flowPreset struct {
	tuples []yeelight.FlowTuple
	repeat int
	action yeelight.FlowEndAction
}

var flowPresets = map[string]flowPreset{
	"police": {
		tuples: []yeelight.FlowTuple{
			yeelight.FlowColor(0xFF0000, 100, 300*time.Millisecond),
			yeelight.FlowColor(0x0000FF, 100, 300*time.Millisecond),
		},
		repeat: 10,
		action: yeelight.FlowRecover,
	},
	"pulse": {
		tuples: []yeelight.FlowTuple{
			yeelight.FlowColor(0xFFFFFF, 100, time.Second),
			yeelight.FlowColor(0xFFFFFF, 1, time.Second),
		},
		repeat: 5,
		action: yeelight.FlowRecover,
	},
	"sunrise": {
		tuples: []yeelight.FlowTuple{
			yeelight.FlowColor(0xFF4D00, 1, 50*time.Millisecond),
			yeelight.FlowColor(0xFFA500, 30, 5*time.Minute),
			yeelight.FlowWhiteTemperature(5000, 100, 10*time.Minute),
		},
		repeat: 1,
		action: yeelight.FlowStay,
	},
	"sleep": {
		tuples: []yeelight.FlowTuple{
			yeelight.FlowWhiteTemperature(2700, 30, 50*time.Millisecond),
			yeelight.FlowWhiteTemperature(1700, 1, 15*time.Minute),
		},
		repeat: 1,
		action: yeelight.FlowOff,
	},
}

func flowPresetNames() string {
	names := make([]string, 0, len(flowPresets))
	for name := range flowPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

func lookupFlowPreset(name string) (flowPreset, error) {
	preset, ok := flowPresets[name]
	if !ok {
		return flowPreset{}, fmt.Errorf("%w: unknown flow preset %q, expected %s", errUsage, name, flowPresetNames())
	}
	return preset, nil
}

// buildCommand maps a CLI verb and its arguments to a command.
func buildCommand(verb string, args []string, opts []yeelight.TransitionOption) (yeelight.Command, error) {
	switch verb {
	case "power":
		if err := wantArgs(verb, args, 1, "on|off"); err != nil {
			return yeelight.Command{}, err
		}
		switch args[0] {
		case "on":
			return yeelight.SetPower(true, opts...), nil
		case "off":
			return yeelight.SetPower(false, opts...), nil
		}
		return yeelight.Command{}, fmt.Errorf("%w: power on|off", errUsage)
	case "toggle":
		return yeelight.Toggle(), nil
	case "default":
		return yeelight.SetDefault(), nil
	case "stop-flow":
		return yeelight.StopColorFlow(), nil
	case "cron-get":
		return yeelight.CronGet(), nil
	case "cron-del":
		return yeelight.CronDel(), nil
	case "bright":
		v, err := intArgs(verb, args, "<1-100>")
		if err != nil {
			return yeelight.Command{}, err
		}
		return yeelight.SetBrightness(v[0], opts...), nil
	case "ct":
		v, err := intArgs(verb, args, "<1700-6500>")
		if err != nil {
			return yeelight.Command{}, err
		}
		return yeelight.SetWhiteTemperature(v[0], opts...), nil
	case "rgb":
		if err := wantArgs(verb, args, 1, "<rrggbb>"); err != nil {
			return yeelight.Command{}, err
		}
		rgb, err := parseHexColor(args[0])
		if err != nil {
			return yeelight.Command{}, err
		}
		return yeelight.SetColorRGB(rgb, opts...), nil
	case "hsv":
		v, err := intArgs(verb, args, "<hue> <sat>")
		if err != nil {
			return yeelight.Command{}, err
		}
		return yeelight.SetColorHSV(v[0], v[1], opts...), nil
	case "flow":
		if err := wantArgs(verb, args, 1, flowPresetNames()); err != nil {
			return yeelight.Command{}, err
		}
		preset, err := lookupFlowPreset(args[0])
		if err != nil {
			return yeelight.Command{}, err
		}
		return yeelight.StartColorFlow(preset.tuples, preset.repeat, preset.action), nil
	case "sleep":
		v, err := intArgs(verb, args, "<minutes>")
		if err != nil {
			return yeelight.Command{}, err
		}
		return yeelight.CronAdd(yeelight.CronPowerOff{Duration: time.Duration(v[0]) * time.Minute}), nil
	case "scene":
		if len(args) == 0 {
			return yeelight.Command{}, fmt.Errorf("%w: scene color|hsv|ct|flow|auto-off <args>", errUsage)
		}
		scene, err := buildScene(args[0], args[1:])
		if err != nil {
			return yeelight.Command{}, err
		}
		return yeelight.SetScene(scene), nil
	}
	return yeelight.Command{}, fmt.Errorf("%w: unknown verb %q", errUsage, verb)
}

func buildScene(kind string, args []string) (yeelight.Scene, error) {
	switch kind {
	case "color":
		if err := wantArgs("scene color", args, 2, "<rrggbb> <bright>"); err != nil {
			return nil, err
		}
		rgb, err := parseHexColor(args[0])
		if err != nil {
			return nil, err
		}
		bright, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("%w: scene color: brightness %q is not a number", errUsage, args[1])
		}
		return yeelight.SceneColorRGB{Color: rgb, Brightness: bright}, nil
	case "hsv":
		v, err := intArgs("scene hsv", args, "<hue> <sat> <bright>")
		if err != nil {
			return nil, err
		}
		return yeelight.SceneColorHSV{Hue: v[0], Sat: v[1], Brightness: v[2]}, nil
	case "ct":
		v, err := intArgs("scene ct", args, "<kelvin> <bright>")
		if err != nil {
			return nil, err
		}
		return yeelight.SceneColorTemperature{Kelvin: v[0], Brightness: v[1]}, nil
	case "auto-off":
		v, err := intArgs("scene auto-off", args, "<bright> <minutes>")
		if err != nil {
			return nil, err
		}
		return yeelight.SceneAutoDelayOff{Brightness: v[0], Duration: time.Duration(v[1]) * time.Minute}, nil
	case "flow":
		if err := wantArgs("scene flow", args, 1, flowPresetNames()); err != nil {
			return nil, err
		}
		preset, err := lookupFlowPreset(args[0])
		if err != nil {
			return nil, err
		}
		return yeelight.SceneColorFlow{Tuples: preset.tuples, Repeat: preset.repeat, Action: preset.action}, nil
	}
	return nil, fmt.Errorf("%w: unknown scene %q", errUsage, kind)
}

func wantArgs(verb string, args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s %s", errUsage, verb, usage)
	}
	return nil
}

// intArgs parses every argument as an integer; the expected count is the
// number of words in usage.
func intArgs(verb string, args []string, usage string) ([]int, error) {
	if err := wantArgs(verb, args, len(strings.Fields(usage)), usage); err != nil {
		return nil, err
	}
	values := make([]int, len(args))
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not a number", errUsage, verb, arg)
		}
		values[i] = v
	}
	return values, nil
}

func parseHexColor(s string) (int, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "#"), "0x")
	if len(s) != 6 {
		return 0, fmt.Errorf("%w: color %q must be 6 hex digits", errUsage, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: color %q is not hex", errUsage, s)
	}
	return int(v), nil
}
