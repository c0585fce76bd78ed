package main

import (
	"maps"
	"strconv"
	"sync"
	"time"

	"github.com/wufe/yeelight"
)

const providerYeelight = "yeelight"

type deviceStatus struct {
	Provider    string      `json:"provider"`
	Address     string      `json:"address"`
	On          int         `json:"on"` // -1=unknown, 0=off, 1=on
	Brightness  int         `json:"brightness"`
	Temperature int         `json:"temperature"`
	Color       deviceColor `json:"color"`
	LastReply   string      `json:"last_reply,omitempty"`
	LastError   string      `json:"last_error,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type deviceColor struct {
	Red   int `json:"r"`
	Green int `json:"g"`
	Blue  int `json:"b"`
}

func getDefaultDeviceStatus() deviceStatus {
	return deviceStatus{
		Provider:    providerYeelight,
		Brightness:  -1,
		Temperature: -1,
		On:          -1,
		Color: deviceColor{
			Red:   -1,
			Green: -1,
			Blue:  -1,
		},
	}
}

type status struct {
	mtx      struct{ sync.RWMutex }
	statuses map[string]deviceStatus
	changed  func()
}

func newStatus() *status {
	return &status{
		statuses: make(map[string]deviceStatus),
	}
}

// OnChange registers f to be called after every update.
func (s *status) OnChange(f func()) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.changed = f
}

func (s *status) Register(device yeelight.Device) {
	s.update(device.ID, func(ds *deviceStatus) {
		ds.Address = device.Address()
	})
}

// Observe records the outcome of an exchange. Acknowledged commands update
// the last-known state of the bulb.
func (s *status) Observe(exchange yeelight.Exchange) {
	s.update(exchange.Device.ID, func(ds *deviceStatus) {
		ds.Address = exchange.Device.Address()
		ds.UpdatedAt = time.Now()

		if exchange.Err != nil {
			ds.LastError = exchange.Err.Error()
			return
		}
		if !exchange.Received {
			ds.LastError = "no reply"
			return
		}

		ds.LastReply = exchange.Reply
		ds.LastError = ""

		reply, err := yeelight.ParseReply(exchange.Reply)
		if err != nil {
			ds.LastError = err.Error()
			return
		}
		if reply.Err() != nil {
			ds.LastError = reply.Err().Error()
			return
		}
		if reply.OK() {
			applyCommand(ds, exchange.Command)
		}
	})
}

func applyCommand(ds *deviceStatus, cmd yeelight.Command) {
	params := cmd.Params()
	if cmd.Method() == yeelight.MethodToggle {
		if ds.On >= 0 {
			ds.On = 1 - ds.On
		}
		return
	}
	if len(params) == 0 {
		return
	}
	switch cmd.Method() {
	case yeelight.MethodSetPower:
		if params[0].TextValue() == "on" {
			ds.On = 1
		} else {
			ds.On = 0
		}
	case yeelight.MethodSetBright:
		ds.Brightness = params[0].IntValue()
	case yeelight.MethodSetColorTemp:
		ds.Temperature = params[0].IntValue()
	case yeelight.MethodSetRGB:
		rgb := params[0].IntValue()
		ds.Color = deviceColor{
			Red:   (rgb >> 16) & 0xFF,
			Green: (rgb >> 8) & 0xFF,
			Blue:  rgb & 0xFF,
		}
	}
}

// SetProperties applies get_prop values to the bulb's status.
func (s *status) SetProperties(device string, properties map[string]string) {
	s.update(device, func(ds *deviceStatus) {
		ds.UpdatedAt = time.Now()
		if power, ok := properties["power"]; ok {
			if power == "on" {
				ds.On = 1
			} else {
				ds.On = 0
			}
		}
		if v, ok := atoi(properties["bright"]); ok {
			ds.Brightness = v
		}
		if v, ok := atoi(properties["ct"]); ok {
			ds.Temperature = v
		}
		if rgb, ok := atoi(properties["rgb"]); ok {
			ds.Color = deviceColor{
				Red:   (rgb >> 16) & 0xFF,
				Green: (rgb >> 8) & 0xFF,
				Blue:  rgb & 0xFF,
			}
		}
	})
}

func (s *status) update(device string, f func(*deviceStatus)) {
	s.mtx.Lock()
	ds, ok := s.statuses[device]
	if !ok {
		ds = getDefaultDeviceStatus()
	}
	f(&ds)
	s.statuses[device] = ds
	changed := s.changed
	s.mtx.Unlock()

	if changed != nil {
		changed()
	}
}

func (s *status) GetAll() map[string]deviceStatus {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	copied := make(map[string]deviceStatus)
	maps.Copy(copied, s.statuses)
	return copied
}

func atoi(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	return v, err == nil
}
