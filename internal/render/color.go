package render

import (
	"image/color"
	"math"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette caches parsed theme colors by hex string.
type Palette struct {
	mu    sync.Mutex
	cache map[string]colorful.Color
}

func NewPalette() *Palette {
	return &Palette{cache: map[string]colorful.Color{}}
}

// Color returns hex with opacity applied as alpha. Unparseable hex falls back
// to white.
func (p *Palette) Color(hex string, opacity float64) color.NRGBA {
	p.mu.Lock()
	c, ok := p.cache[hex]
	if !ok {
		parsed, err := colorful.Hex(hex)
		if err != nil {
			parsed = colorful.Color{R: 1, G: 1, B: 1}
		}
		c = parsed
		p.cache[hex] = c
	}
	p.mu.Unlock()

	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp01(opacity) * 255))}
}

// HSV returns an opaque color for hue in degrees, wrapping outside [0, 360).
func HSV(h, s, v float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsv(h, clamp01(s), clamp01(v)).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
