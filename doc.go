// Package yeelight talks to Yeelight smart bulbs over their LAN control
// protocol.
//
// Commands are built by the encoder functions (SetPower, SetBrightness,
// StartColorFlow, ...) and sent with a Transport, which opens a fresh TCP
// connection per command and waits a bounded amount of time for a single
// reply line.
//
// https://www.yeelight.com/download/Yeelight_Inter-Operation_Spec.pdf
package yeelight
