package yeelight

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// DeviceError is an error reported by the bulb in answer to a command.
type DeviceError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error %d: %s", e.Code, e.Message)
}

// Notification is pushed by a bulb when its state changes.
type Notification struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

// Reply is a decoded reply line. Exactly one of Result, Error or
// Notification is set.
type Reply struct {
	ID           int           `json:"id"`
	Result       []any         `json:"result,omitempty"`
	Error        *DeviceError  `json:"error,omitempty"`
	Notification *Notification `json:"-"`
}

// OK reports whether the bulb acknowledged the command with "ok".
func (r Reply) OK() bool {
	return len(r.Result) == 1 && r.Result[0] == "ok"
}

// Err returns the device error as an error value, or nil.
func (r Reply) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// Strings returns the result values rendered as strings, the way get_prop
// answers.
func (r Reply) Strings() []string {
	values := make([]string, 0, len(r.Result))
	for _, v := range r.Result {
		switch v := v.(type) {
		case string:
			values = append(values, v)
		case float64:
			values = append(values, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			values = append(values, fmt.Sprint(v))
		}
	}
	return values
}

// ParseReply decodes a reply line returned by Send.
func ParseReply(line string) (Reply, error) {
	var raw struct {
		ID     *int            `json:"id"`
		Result []any           `json:"result"`
		Error  *DeviceError    `json:"error"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Reply{}, fmt.Errorf("error decoding reply: %w", err)
	}

	if raw.ID == nil {
		if raw.Method == "" {
			return Reply{}, errors.New("reply has neither id nor method")
		}
		n := &Notification{Method: raw.Method}
		if len(raw.Params) > 0 {
			if err := json.Unmarshal(raw.Params, &n.Params); err != nil {
				return Reply{}, fmt.Errorf("error decoding notification params: %w", err)
			}
		}
		return Reply{Notification: n}, nil
	}

	return Reply{
		ID:     *raw.ID,
		Result: raw.Result,
		Error:  raw.Error,
	}, nil
}
