package executor

import "math"

// Color is an RGB triple with 8-bit channels. Immutable value type.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
)

// Gray returns the shade of gray with the given intensity.
func Gray(value uint8) Color {
	return Color{R: value, G: value, B: value}
}

// Mix interpolates linearly between this color and another one. The ratio
// is not clamped: values outside [0, 1] extrapolate past the endpoints,
// which is how the overshooting easing curves produce their effect. Each
// resulting channel is clamped to the representable range.
func (c Color) Mix(other Color, ratio float64) Color {
	return Color{
		R: mixChannel(c.R, other.R, ratio),
		G: mixChannel(c.G, other.G, ratio),
		B: mixChannel(c.B, other.B, ratio),
	}
}

func mixChannel(from, to uint8, ratio float64) uint8 {
	value := math.Round(float64(from) + (float64(to)-float64(from))*ratio)
	if value < 0 {
		return 0
	}
	if value > 255 {
		return 255
	}
	return uint8(value)
}
