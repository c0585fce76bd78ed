package yeelight

import "context"

// Bulb binds a Device to the Transport used to reach it. Every method sends
// one command and returns the raw reply line, with ok false when the bulb
// stayed silent.
type Bulb struct {
	Device    Device
	transport *Transport
}

func NewBulb(device Device, transport *Transport) *Bulb {
	return &Bulb{Device: device, transport: transport}
}

func (b *Bulb) Do(ctx context.Context, cmd Command) (string, bool, error) {
	return b.transport.Send(ctx, b.Device, cmd)
}

func (b *Bulb) GetProperties(ctx context.Context, names ...string) (string, bool, error) {
	return b.Do(ctx, GetProperties(names...))
}

func (b *Bulb) SetDefault(ctx context.Context) (string, bool, error) {
	return b.Do(ctx, SetDefault())
}

func (b *Bulb) SetPower(ctx context.Context, on bool, opts ...TransitionOption) (string, bool, error) {
	return b.Do(ctx, SetPower(on, opts...))
}

func (b *Bulb) Toggle(ctx context.Context) (string, bool, error) {
	return b.Do(ctx, Toggle())
}

func (b *Bulb) SetBrightness(ctx context.Context, brightness int, opts ...TransitionOption) (string, bool, error) {
	return b.Do(ctx, SetBrightness(brightness, opts...))
}

func (b *Bulb) StartColorFlow(ctx context.Context, tuples []FlowTuple, repeat int, action FlowEndAction) (string, bool, error) {
	return b.Do(ctx, StartColorFlow(tuples, repeat, action))
}

func (b *Bulb) StopColorFlow(ctx context.Context) (string, bool, error) {
	return b.Do(ctx, StopColorFlow())
}

func (b *Bulb) SetScene(ctx context.Context, scene Scene) (string, bool, error) {
	return b.Do(ctx, SetScene(scene))
}

func (b *Bulb) CronAdd(ctx context.Context, cron Cron) (string, bool, error) {
	return b.Do(ctx, CronAdd(cron))
}

func (b *Bulb) CronGet(ctx context.Context) (string, bool, error) {
	return b.Do(ctx, CronGet())
}

func (b *Bulb) CronDel(ctx context.Context) (string, bool, error) {
	return b.Do(ctx, CronDel())
}

func (b *Bulb) SetWhiteTemperature(ctx context.Context, kelvin int, opts ...TransitionOption) (string, bool, error) {
	return b.Do(ctx, SetWhiteTemperature(kelvin, opts...))
}

func (b *Bulb) SetColorRGB(ctx context.Context, rgb int, opts ...TransitionOption) (string, bool, error) {
	return b.Do(ctx, SetColorRGB(rgb, opts...))
}

func (b *Bulb) SetColorHSV(ctx context.Context, hue, sat int, opts ...TransitionOption) (string, bool, error) {
	return b.Do(ctx, SetColorHSV(hue, sat, opts...))
}
