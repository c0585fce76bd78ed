package main

// HueGroupState is the part of a Hue group's state mirrored to the bulbs.
type HueGroupState struct {
	On    bool
	Bri   int
	X     float64
	Y     float64
	HasXY bool
}
