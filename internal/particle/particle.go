// Package particle simulates the cosmetic particle field drawn behind the
// page. A Simulator generates a Set sized to the canvas; Advance moves it one
// frame with sharp wrap-around at the edges.
package particle

import (
	"math"
	"math/rand"

	"github.com/iburimskiy/nexus/internal/config"
)

// Particle is a point drawn as a filled circle. Speeds are in px/frame.
type Particle struct {
	X, Y           float64
	Size           float64
	SpeedX, SpeedY float64
	Opacity        float64
	Color          string
}

// Set is a batch of particles. Sets are passed by value between goroutines,
// use Clone before handing one off.
type Set []Particle

// Clone returns a copy that shares no memory with s.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	copy(out, s)
	return out
}

// Params controls generation.
type Params struct {
	Density    float64
	Min, Max   int
	MaxSpeed   float64
	MinSize    float64
	MaxSize    float64
	MinOpacity float64
	MaxOpacity float64
	Palette    []string
}

// DefaultParams mirrors the built-in configuration.
func DefaultParams() Params {
	return ParamsFromConfig(config.DefaultConfig().Particles)
}

func ParamsFromConfig(c config.ParticleConfig) Params {
	return Params{
		Density:    c.Density,
		Min:        c.Min,
		Max:        c.Max,
		MaxSpeed:   c.MaxSpeed,
		MinSize:    c.MinSize,
		MaxSize:    c.MaxSize,
		MinOpacity: c.MinOpacity,
		MaxOpacity: c.MaxOpacity,
		Palette:    append([]string(nil), c.Palette...),
	}
}

// Count returns clamp(Min, Max, floor(w*h/Density)). Negative dimensions
// count as zero.
func (p Params) Count(w, h float64) int {
	w = math.Max(w, 0)
	h = math.Max(h, 0)
	n := p.Min
	if p.Density > 0 {
		n = int(math.Min(w*h/p.Density, float64(p.Max)))
	}
	if n < p.Min {
		n = p.Min
	}
	if n > p.Max {
		n = p.Max
	}
	return n
}

// Count uses the default params.
func Count(w, h float64) int {
	return DefaultParams().Count(w, h)
}

// Simulator generates particle sets. It is not safe for concurrent use; the
// Worker owns one exclusively.
type Simulator struct {
	params Params
	rng    *rand.Rand
}

// NewSimulator returns a simulator drawing from rng. A nil rng is seeded
// from seed 1 so runs stay reproducible in tests.
func NewSimulator(params Params, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Simulator{params: params, rng: rng}
}

func (s *Simulator) Params() Params { return s.params }

// Initialize builds a fresh set for a w x h canvas.
func (s *Simulator) Initialize(w, h float64) Set {
	w = math.Max(w, 0)
	h = math.Max(h, 0)
	n := s.params.Count(w, h)
	out := make(Set, n)
	for i := range out {
		out[i] = Particle{
			X:       s.rng.Float64() * w,
			Y:       s.rng.Float64() * h,
			Size:    s.between(s.params.MinSize, s.params.MaxSize),
			SpeedX:  s.between(-s.params.MaxSpeed, s.params.MaxSpeed),
			SpeedY:  s.between(-s.params.MaxSpeed, s.params.MaxSpeed),
			Opacity: s.between(s.params.MinOpacity, s.params.MaxOpacity),
			Color:   s.color(),
		}
	}
	return out
}

// Resize regenerates the whole set. Existing particles are discarded rather
// than resampled.
func (s *Simulator) Resize(w, h float64) Set {
	return s.Initialize(w, h)
}

func (s *Simulator) between(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *Simulator) color() string {
	if len(s.params.Palette) == 0 {
		return "#FFFFFF"
	}
	return s.params.Palette[s.rng.Intn(len(s.params.Palette))]
}

// Advance moves every particle by its speed and returns the new set; the
// input is not modified. A coordinate below 0 jumps to the far edge (the
// largest value below it), one at or past the far edge jumps to 0, so results
// stay within [0, w) x [0, h).
func Advance(set Set, w, h float64) Set {
	out := make(Set, len(set))
	for i, p := range set {
		p.X = wrap(p.X+p.SpeedX, w)
		p.Y = wrap(p.Y+p.SpeedY, h)
		out[i] = p
	}
	return out
}

func wrap(v, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	switch {
	case v < 0:
		return math.Nextafter(limit, 0)
	case v >= limit:
		return 0
	}
	return v
}
