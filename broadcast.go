package yeelight

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of sending a command to one device in a broadcast.
type Outcome struct {
	Device   Device
	Reply    string
	Received bool
	Err      error
}

// Broadcast sends cmd to every device in parallel and returns one Outcome per
// device, in the order of devices. A failing or silent device does not hold
// back the others.
func (t *Transport) Broadcast(ctx context.Context, devices []Device, cmd Command) []Outcome {
	outcomes := make([]Outcome, len(devices))

	var g errgroup.Group
	g.SetLimit(t.parallelism)
	for i, device := range devices {
		g.Go(func() error {
			reply, ok, err := t.Send(ctx, device, cmd)
			outcomes[i] = Outcome{
				Device:   device,
				Reply:    reply,
				Received: ok,
				Err:      err,
			}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}
