package yeelight

import (
	"encoding/json"
	"strconv"
)

// RequestID is the id carried by every command. Only one request is ever in
// flight on a connection, so replies never need to be told apart.
const RequestID = 1

const lineTerminator = "\r\n"

type paramKind uint8

const (
	paramInt paramKind = iota
	paramText
)

// Param is a single command parameter: either an integer or a string.
type Param struct {
	kind paramKind
	num  int
	text string
}

// Int returns an integer parameter.
func Int(v int) Param {
	return Param{kind: paramInt, num: v}
}

// Text returns a string parameter.
func Text(s string) Param {
	return Param{kind: paramText, text: s}
}

// IsInt reports whether p holds an integer.
func (p Param) IsInt() bool {
	return p.kind == paramInt
}

// IntValue returns the integer held by p, or 0 for a string parameter.
func (p Param) IntValue() int {
	return p.num
}

// TextValue returns the string held by p, or "" for an integer parameter.
func (p Param) TextValue() string {
	return p.text
}

func (p Param) String() string {
	if p.kind == paramInt {
		return strconv.Itoa(p.num)
	}
	return strconv.Quote(p.text)
}

func (p Param) MarshalJSON() ([]byte, error) {
	if p.kind == paramInt {
		return []byte(strconv.Itoa(p.num)), nil
	}
	return json.Marshal(p.text)
}

// Command is a single protocol request. The zero value is not useful; build
// commands with the encoder functions or NewCommand.
type Command struct {
	method Method
	params []Param
}

// NewCommand returns a command for method with params in the given order.
func NewCommand(method Method, params ...Param) Command {
	copied := make([]Param, len(params))
	copy(copied, params)
	return Command{method: method, params: copied}
}

func (c Command) ID() int {
	return RequestID
}

func (c Command) Method() Method {
	return c.method
}

// Params returns a copy of the command parameters.
func (c Command) Params() []Param {
	copied := make([]Param, len(c.params))
	copy(copied, c.params)
	return copied
}

type wireCommand struct {
	ID     int     `json:"id"`
	Method Method  `json:"method"`
	Params []Param `json:"params"`
}

// Render returns the canonical JSON form of the command, without the line
// terminator.
func (c Command) Render() string {
	params := c.params
	if params == nil {
		params = []Param{}
	}
	return string(mustMarshal(wireCommand{
		ID:     RequestID,
		Method: c.method,
		Params: params,
	}))
}

// Wire returns the bytes written to the socket for this command.
func (c Command) Wire() []byte {
	return []byte(c.Render() + lineTerminator)
}

func (c Command) String() string {
	return c.Render()
}

func mustMarshal(obj any) []byte {
	jsonBytes, err := json.Marshal(obj)
	if err != nil {
		panic(err)
	}
	return jsonBytes
}
