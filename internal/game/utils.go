package game

import (
	"image/color"
	"math"
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// withAlpha scales c's alpha by a in [0, 1].
func withAlpha(c color.Color, a float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * clamp01(a)))
	return n
}

// lighten mixes c toward white by t in [0, 1].
func lighten(c color.NRGBA, t float64) color.NRGBA {
	t = clamp01(t)
	mix := func(v uint8) uint8 { return uint8(math.Round(float64(v) + (255-float64(v))*t)) }
	return color.NRGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}

// textWidth approximates the debug font advance.
func textWidth(s string) int {
	return len([]rune(s)) * 6
}
