package yeelight

import "time"

// Out of range values are clamped to the nearest bound, never rejected.
const (
	minBrightness       = 1
	maxBrightness       = 100
	minColorTemperature = 1700
	maxColorTemperature = 6500
	minRGB              = 0x000000
	maxRGB              = 0xFFFFFF
	minHue              = 0
	maxHue              = 359
	minSat              = 0
	maxSat              = 100
)

// DefaultTransitionDuration is used by smooth transitions unless
// WithDuration says otherwise.
const DefaultTransitionDuration = 500 * time.Millisecond

// Effect selects how a bulb moves to a new state.
type Effect string

const (
	EffectSudden Effect = "sudden"
	EffectSmooth Effect = "smooth"
)

type transition struct {
	effect   Effect
	duration time.Duration
}

type TransitionOption func(*transition)

func WithEffect(effect Effect) TransitionOption {
	return func(t *transition) {
		t.effect = effect
	}
}

func WithDuration(d time.Duration) TransitionOption {
	return func(t *transition) {
		t.duration = d
	}
}

// Sudden is shorthand for WithEffect(EffectSudden).
func Sudden() TransitionOption {
	return WithEffect(EffectSudden)
}

func transitionParams(opts []TransitionOption) []Param {
	t := &transition{
		effect:   EffectSmooth,
		duration: DefaultTransitionDuration,
	}
	for _, opt := range opts {
		opt(t)
	}
	return []Param{
		Text(string(t.effect)),
		Int(int(max(t.duration, 0).Milliseconds())),
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// GetProperties asks for the current value of the named properties
// (power, bright, ct, rgb, hue, sat, color_mode, flowing, name, ...).
func GetProperties(names ...string) Command {
	params := make([]Param, 0, len(names))
	for _, name := range names {
		params = append(params, Text(name))
	}
	return Command{method: MethodGetProp, params: params}
}

// SetDefault saves the current state as the power-on default.
func SetDefault() Command {
	return Command{method: MethodSetDefault}
}

func SetPower(on bool, opts ...TransitionOption) Command {
	state := "off"
	if on {
		state = "on"
	}
	return Command{
		method: MethodSetPower,
		params: append([]Param{Text(state)}, transitionParams(opts)...),
	}
}

func Toggle() Command {
	return Command{method: MethodToggle}
}

// SetBrightness sets the brightness in percent, clamped to 1-100.
func SetBrightness(brightness int, opts ...TransitionOption) Command {
	return Command{
		method: MethodSetBright,
		params: append([]Param{Int(clamp(brightness, minBrightness, maxBrightness))}, transitionParams(opts)...),
	}
}

// StartColorFlow plays tuples repeat times (at least once) and then applies
// action.
func StartColorFlow(tuples []FlowTuple, repeat int, action FlowEndAction) Command {
	return Command{
		method: MethodStartColorFlow,
		params: colorFlowParams(tuples, repeat, action),
	}
}

// StartColorFlowRaw sends a pre-built flow expression. A count of 0 makes
// the bulb loop forever.
func StartColorFlowRaw(count int, action FlowEndAction, expression string) Command {
	return Command{
		method: MethodStartColorFlow,
		params: []Param{Int(max(count, 0)), Int(int(action)), Text(expression)},
	}
}

func StopColorFlow() Command {
	return Command{method: MethodStopColorFlow}
}

func SetScene(scene Scene) Command {
	return Command{
		method: MethodSetScene,
		params: append([]Param{Text(scene.SceneName())}, scene.sceneParams()...),
	}
}

func CronAdd(cron Cron) Command {
	return Command{
		method: MethodCronAdd,
		params: []Param{Int(cron.CronType()), Int(wholeMinutes(cron.CronDuration()))},
	}
}

func CronGet() Command {
	return Command{method: MethodCronGet}
}

func CronDel() Command {
	return Command{method: MethodCronDel}
}

// SetWhiteTemperature sets the color temperature in kelvin, clamped to
// 1700-6500.
func SetWhiteTemperature(kelvin int, opts ...TransitionOption) Command {
	return Command{
		method: MethodSetColorTemp,
		params: append([]Param{Int(clamp(kelvin, minColorTemperature, maxColorTemperature))}, transitionParams(opts)...),
	}
}

// SetColorRGB sets a packed 0xRRGGBB color, clamped to 0x000000-0xFFFFFF.
func SetColorRGB(rgb int, opts ...TransitionOption) Command {
	return Command{
		method: MethodSetRGB,
		params: append([]Param{Int(clamp(rgb, minRGB, maxRGB))}, transitionParams(opts)...),
	}
}

// SetColorHSV sets hue (0-359) and saturation (0-100). Each is clamped on its
// own.
func SetColorHSV(hue, sat int, opts ...TransitionOption) Command {
	return Command{
		method: MethodSetHSV,
		params: append([]Param{
			Int(clamp(hue, minHue, maxHue)),
			Int(clamp(sat, minSat, maxSat)),
		}, transitionParams(opts)...),
	}
}

// PackRGB packs 8-bit channels into the 0xRRGGBB integer used on the wire.
func PackRGB(r, g, b uint8) int {
	return int(r)<<16 | int(g)<<8 | int(b)
}
