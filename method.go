package yeelight

import "fmt"

var _ fmt.Stringer = (*Method)(nil)

// Method is the name of an operation understood by a bulb.
type Method string

func (m Method) String() string {
	return string(m)
}

const (
	MethodGetProp        Method = "get_prop"
	MethodSetDefault     Method = "set_default"
	MethodSetPower       Method = "set_power"
	MethodToggle         Method = "toggle"
	MethodSetBright      Method = "set_bright"
	MethodStartColorFlow Method = "start_cf"
	MethodStopColorFlow  Method = "stop_cf"
	MethodSetScene       Method = "set_scene"
	MethodCronAdd        Method = "cron_add"
	MethodCronGet        Method = "cron_get"
	MethodCronDel        Method = "cron_del"
	MethodSetColorTemp   Method = "set_ct_abx"
	MethodSetRGB         Method = "set_rgb"
	MethodSetHSV         Method = "set_hsv"
)
