package yeelight

import (
	"strconv"
	"strings"
	"time"
)

// FlowEndAction is what a bulb does once a color flow has finished.
type FlowEndAction int

const (
	// FlowRecover restores the state from before the flow started.
	FlowRecover FlowEndAction = 0
	// FlowStay keeps the state reached by the last step.
	FlowStay FlowEndAction = 1
	// FlowOff turns the bulb off.
	FlowOff FlowEndAction = 2
)

type flowMode int

const (
	flowModeColor       flowMode = 1
	flowModeTemperature flowMode = 2
	flowModeSleep       flowMode = 7
)

const (
	minFlowStep = 50 * time.Millisecond

	// FlowBrightnessUnchanged leaves the brightness as it is for a flow step.
	FlowBrightnessUnchanged = -1
)

// FlowTuple is one step of a color flow.
type FlowTuple struct {
	duration   time.Duration
	mode       flowMode
	value      int
	brightness int
}

// FlowColor changes the color to rgb (0x000000-0xFFFFFF) over d.
func FlowColor(rgb, brightness int, d time.Duration) FlowTuple {
	return FlowTuple{
		duration:   max(d, minFlowStep),
		mode:       flowModeColor,
		value:      clamp(rgb, minRGB, maxRGB),
		brightness: clamp(brightness, FlowBrightnessUnchanged, maxBrightness),
	}
}

// FlowWhiteTemperature changes the color temperature to kelvin (1700-6500)
// over d.
func FlowWhiteTemperature(kelvin, brightness int, d time.Duration) FlowTuple {
	return FlowTuple{
		duration:   max(d, minFlowStep),
		mode:       flowModeTemperature,
		value:      clamp(kelvin, minColorTemperature, maxColorTemperature),
		brightness: clamp(brightness, FlowBrightnessUnchanged, maxBrightness),
	}
}

// FlowSleep holds the current state for d.
func FlowSleep(d time.Duration) FlowTuple {
	return FlowTuple{
		duration: max(d, minFlowStep),
		mode:     flowModeSleep,
	}
}

func (t FlowTuple) Duration() time.Duration {
	return t.duration
}

func (t FlowTuple) Value() int {
	return t.value
}

func (t FlowTuple) Brightness() int {
	return t.brightness
}

// String renders the tuple as "duration,mode,value,brightness".
func (t FlowTuple) String() string {
	var b strings.Builder
	t.appendTo(&b)
	return b.String()
}

func (t FlowTuple) appendTo(b *strings.Builder) {
	b.WriteString(strconv.FormatInt(t.duration.Milliseconds(), 10))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(int(t.mode)))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(t.value))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(t.brightness))
}

// FlowExpression joins tuples into the single string field expected by
// start_cf.
func FlowExpression(tuples []FlowTuple) string {
	var b strings.Builder
	for i, t := range tuples {
		if i > 0 {
			b.WriteByte(',')
		}
		t.appendTo(&b)
	}
	return b.String()
}

func colorFlowParams(tuples []FlowTuple, repeat int, action FlowEndAction) []Param {
	repeat = max(repeat, 1)
	return []Param{
		Int(repeat * len(tuples)),
		Int(int(action)),
		Text(FlowExpression(tuples)),
	}
}
