package yeelight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	multicastAddress = "239.255.255.250"
	discoveryPort    = 1982

	DefaultDiscoveryWait = 3 * time.Second
)

type discoveryOptions struct {
	address string
	wait    time.Duration
}

type DiscoveryOption func(*discoveryOptions)

// WithDiscoveryAddress sends the search request to address instead of the
// multicast group.
func WithDiscoveryAddress(address string) DiscoveryOption {
	return func(opts *discoveryOptions) {
		opts.address = address
	}
}

// WithDiscoveryWait sets how long to collect replies for.
func WithDiscoveryWait(d time.Duration) DiscoveryOption {
	return func(opts *discoveryOptions) {
		opts.wait = d
	}
}

func searchRequest(address string) []byte {
	return []byte("M-SEARCH * HTTP/1.1\r\n" +
		"HOST: " + address + "\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"ST: wifi_bulb\r\n")
}

// Discover multicasts a search request and collects the bulbs that answer
// until the wait elapses or ctx is done. Replies that cannot be parsed are
// logged and skipped; a bulb answering twice is reported once.
func Discover(ctx context.Context, opts ...DiscoveryOption) ([]Device, error) {
	options := &discoveryOptions{
		address: fmt.Sprintf("%s:%d", multicastAddress, discoveryPort),
		wait:    DefaultDiscoveryWait,
	}
	for _, opt := range opts {
		opt(options)
	}

	addr, err := net.ResolveUDPAddr("udp4", options.address)
	if err != nil {
		return nil, fmt.Errorf("error resolving UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("error opening UDP socket: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(options.wait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := conn.WriteTo(searchRequest(options.address), addr); err != nil {
		return nil, fmt.Errorf("error sending search request: %w", err)
	}

	var devices []Device
	seen := make(map[string]struct{})
	buffer := make([]byte, 2048)
	for {
		n, from, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				break
			}
			return devices, fmt.Errorf("error reading search reply: %w", err)
		}

		device, err := ParseDevice(string(buffer[:n]))
		if err != nil {
			log.Err(err).Msgf("Ignoring discovery reply from %s", from)
			continue
		}
		if _, dup := seen[device.ID]; dup {
			continue
		}
		seen[device.ID] = struct{}{}

		log.Debug().Str("device", device.ID).Msgf("Found %s bulb at %s", device.Model, device.Address())
		devices = append(devices, device)
	}

	if err := ctx.Err(); err != nil {
		return devices, err
	}
	return devices, nil
}
