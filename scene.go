package yeelight

import "time"

// Scene is a state preset applied with a single set_scene call. The set of
// scenes is closed: SceneColorRGB, SceneColorHSV, SceneColorTemperature,
// SceneColorFlow and SceneAutoDelayOff.
type Scene interface {
	SceneName() string
	sceneParams() []Param
}

var (
	_ Scene = SceneColorRGB{}
	_ Scene = SceneColorHSV{}
	_ Scene = SceneColorTemperature{}
	_ Scene = SceneColorFlow{}
	_ Scene = SceneAutoDelayOff{}
)

// SceneColorRGB turns the bulb on with the given color and brightness.
type SceneColorRGB struct {
	Color      int
	Brightness int
}

func (SceneColorRGB) SceneName() string { return "color" }

func (s SceneColorRGB) sceneParams() []Param {
	return []Param{
		Int(clamp(s.Color, minRGB, maxRGB)),
		Int(clamp(s.Brightness, minBrightness, maxBrightness)),
	}
}

// SceneColorHSV turns the bulb on with the given hue, saturation and
// brightness.
type SceneColorHSV struct {
	Hue        int
	Sat        int
	Brightness int
}

func (SceneColorHSV) SceneName() string { return "hsv" }

func (s SceneColorHSV) sceneParams() []Param {
	return []Param{
		Int(clamp(s.Hue, minHue, maxHue)),
		Int(clamp(s.Sat, minSat, maxSat)),
		Int(clamp(s.Brightness, minBrightness, maxBrightness)),
	}
}

// SceneColorTemperature turns the bulb on in white mode.
type SceneColorTemperature struct {
	Kelvin     int
	Brightness int
}

func (SceneColorTemperature) SceneName() string { return "ct" }

func (s SceneColorTemperature) sceneParams() []Param {
	return []Param{
		Int(clamp(s.Kelvin, minColorTemperature, maxColorTemperature)),
		Int(clamp(s.Brightness, minBrightness, maxBrightness)),
	}
}

// SceneColorFlow turns the bulb on and starts a color flow. A zero Repeat is
// treated as 1.
type SceneColorFlow struct {
	Tuples []FlowTuple
	Repeat int
	Action FlowEndAction
}

func (SceneColorFlow) SceneName() string { return "cf" }

func (s SceneColorFlow) sceneParams() []Param {
	return colorFlowParams(s.Tuples, s.Repeat, s.Action)
}

// SceneAutoDelayOff turns the bulb on at Brightness and switches it off once
// Duration has elapsed. Duration is rounded down to whole minutes, with a
// floor of one minute.
type SceneAutoDelayOff struct {
	Brightness int
	Duration   time.Duration
}

func (SceneAutoDelayOff) SceneName() string { return "auto_delay_off" }

func (s SceneAutoDelayOff) sceneParams() []Param {
	return []Param{
		Int(clamp(s.Brightness, minBrightness, maxBrightness)),
		Int(wholeMinutes(s.Duration)),
	}
}

func wholeMinutes(d time.Duration) int {
	return int(max(d, time.Minute) / time.Minute)
}
