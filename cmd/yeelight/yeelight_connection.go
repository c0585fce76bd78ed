package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wufe/yeelight"
)

type BulbCommandSender interface {
	SendMsg(ctx context.Context, bulb string, cmd yeelight.Command) error
}

type YeelightConnection struct {
	transport *yeelight.Transport
	bulbs     map[string]yeelight.Device
}

var _ BulbCommandSender = (*YeelightConnection)(nil)

func NewYeelightConnection(transport *yeelight.Transport, devices []yeelight.Device) *YeelightConnection {
	bulbs := make(map[string]yeelight.Device, len(devices))
	for _, device := range devices {
		bulbs[device.ID] = device
	}
	return &YeelightConnection{
		transport: transport,
		bulbs:     bulbs,
	}
}

// SendMsg sends cmd to the bulb registered under the given name. A bulb that
// does not answer is not an error.
func (c *YeelightConnection) SendMsg(ctx context.Context, bulb string, cmd yeelight.Command) error {
	device, ok := c.bulbs[bulb]
	if !ok {
		return fmt.Errorf("bulb not found: %s", bulb)
	}

	line, received, err := c.transport.Send(ctx, device, cmd)
	if err != nil {
		return fmt.Errorf("error sending %s to %s: %w", cmd.Method(), bulb, err)
	}
	if !received {
		log.Debug().Msgf("No reply from %s to %s", bulb, cmd.Method())
		return nil
	}
	return replyError(line)
}

// SendCommand sends cmd to every given device at once and logs each outcome.
// It returns the number of devices that failed.
func (c *YeelightConnection) SendCommand(ctx context.Context, devices []yeelight.Device, cmd yeelight.Command) int {
	failed := 0
	for _, outcome := range c.transport.Broadcast(ctx, devices, cmd) {
		name := outcome.Device.ID
		switch {
		case outcome.Err != nil:
			failed++
			log.Err(outcome.Err).Msgf("%s: %s failed", name, cmd.Method())
		case !outcome.Received:
			log.Info().Msgf("%s: no reply", name)
		default:
			if err := replyError(outcome.Reply); err != nil {
				failed++
				log.Err(err).Msgf("%s: %s rejected", name, cmd.Method())
				continue
			}
			log.Info().Msgf("%s: %s", name, outcome.Reply)
		}
	}
	return failed
}

func replyError(line string) error {
	reply, err := yeelight.ParseReply(line)
	if err != nil {
		return fmt.Errorf("error decoding reply %q: %w", line, err)
	}
	return reply.Err()
}
