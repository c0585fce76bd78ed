package yeelight

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"
)

// ErrMalformedRecord is matched by every error returned from ParseDevice.
var ErrMalformedRecord = errors.New("malformed discovery record")

// MissingKeyError reports a required key absent from a discovery record.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("discovery record is missing key %q", e.Key)
}

func (e *MissingKeyError) Unwrap() error {
	return ErrMalformedRecord
}

// Device describes a bulb as it announced itself during discovery. A Device
// is a snapshot: re-run discovery or query the bulb for fresher values.
type Device struct {
	ID              string
	IP              string
	Port            int
	Model           string
	FirmwareVersion int
	Support         []string
	Power           bool
	Bright          int
	ColorMode       int
	CT              int
	RGB             int
	Hue             int
	Sat             int
	Name            string
}

// DeviceAt returns a Device that only knows its address, for bulbs configured
// by hand.
func DeviceAt(address string) (Device, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return Device{}, fmt.Errorf("error parsing device address %q: %w", address, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return Device{}, fmt.Errorf("error parsing device port %q: %w", port, err)
	}
	return Device{ID: address, IP: host, Port: p}, nil
}

// Address returns the host:port to dial.
func (d Device) Address() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

// Supports reports whether the bulb listed m among its supported methods.
func (d Device) Supports(m Method) bool {
	return slices.Contains(d.Support, string(m))
}

// ParseDevice builds a Device from the "key: value" lines of a discovery
// reply.
func ParseDevice(record string) (Device, error) {
	info := make(map[string]string)
	for _, line := range strings.Split(record, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		info[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	p := recordParser{info: info}

	ip, port := p.location()
	d := Device{
		ID:              p.text("id"),
		IP:              ip,
		Port:            port,
		Model:           p.text("model"),
		FirmwareVersion: p.number("fw_ver"),
		Power:           p.text("power") == "on",
		Bright:          p.number("bright"),
		ColorMode:       p.number("color_mode"),
		CT:              p.number("ct"),
		RGB:             p.number("rgb"),
		Hue:             p.number("hue"),
		Sat:             p.number("sat"),
		Name:            p.text("name"),
		Support:         strings.Fields(info["support"]),
	}
	if p.err != nil {
		return Device{}, p.err
	}
	if d.Support == nil {
		d.Support = []string{}
	}
	return d, nil
}

// recordParser keeps the first error met while reading keys.
type recordParser struct {
	info map[string]string
	err  error
}

func (p *recordParser) text(key string) string {
	value, ok := p.info[key]
	if !ok && p.err == nil {
		p.err = &MissingKeyError{Key: key}
	}
	return value
}

func (p *recordParser) number(key string) int {
	value := p.text(key)
	if p.err != nil {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		p.err = fmt.Errorf("%w: key %q: %w", ErrMalformedRecord, key, err)
		return 0
	}
	return n
}

func (p *recordParser) location() (string, int) {
	value := p.text("Location")
	if p.err != nil {
		return "", 0
	}
	_, hostPort, found := strings.Cut(value, "//")
	if !found {
		p.err = fmt.Errorf("%w: location %q has no scheme", ErrMalformedRecord, value)
		return "", 0
	}
	ip, rawPort, found := strings.Cut(hostPort, ":")
	if !found {
		p.err = fmt.Errorf("%w: location %q has no port", ErrMalformedRecord, value)
		return "", 0
	}
	port, err := strconv.Atoi(strings.TrimSuffix(rawPort, "/"))
	if err != nil {
		p.err = fmt.Errorf("%w: location port %q: %w", ErrMalformedRecord, rawPort, err)
		return "", 0
	}
	return ip, port
}
