package main

import "math"

const hueMaxBrightness = 254

// xyToRGB converts a CIE xy chromaticity to 8-bit sRGB at full luminance.
// Brightness is synced separately, so the result is normalized to its
// brightest channel.
func xyToRGB(x, y float64) (uint8, uint8, uint8) {
	if y <= 0 {
		return 255, 255, 255
	}

	z := 1 - x - y
	Y := 1.0
	X := (Y / y) * x
	Z := (Y / y) * z

	r := X*1.656492 - Y*0.354851 - Z*0.255038
	g := -X*0.707196 + Y*1.655397 + Z*0.036152
	b := X*0.051713 - Y*0.121364 + Z*1.011530

	if m := math.Max(r, math.Max(g, b)); m > 1 {
		r, g, b = r/m, g/m, b/m
	}

	return gammaChannel(r), gammaChannel(g), gammaChannel(b)
}

func gammaChannel(v float64) uint8 {
	v = math.Max(v, 0)
	if v <= 0.0031308 {
		v = 12.92 * v
	} else {
		v = (1.0+0.055)*math.Pow(v, (1.0/2.4)) - 0.055
	}
	return uint8(math.Round(math.Min(v, 1) * 255))
}

// scaleBrightness maps a Hue brightness (0-254) into brightnessRange, which
// defaults to [1, 100].
func scaleBrightness(bri int, brightnessRange []int) int {
	lo, hi := 1, 100
	if len(brightnessRange) == 2 {
		lo, hi = brightnessRange[0], brightnessRange[1]
	}
	bri = min(max(bri, 0), hueMaxBrightness)
	return lo + int(math.Round(float64(bri)*float64(hi-lo)/hueMaxBrightness))
}
