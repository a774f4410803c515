package feedback

import (
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
)

// PulseTap records the last N samples of every streamer it wraps into a ring
// buffer so the UI can draw a glow from recently played pulses.
type PulseTap struct {
	mu        sync.RWMutex
	buffer    [][2]float64
	nextIndex int
	lastWrite time.Time
	now       func() time.Time
}

func NewPulseTap(ringSize int) *PulseTap {
	if ringSize <= 0 {
		ringSize = 1
	}
	return &PulseTap{
		buffer: make([][2]float64, ringSize),
		now:    time.Now,
	}
}

// Wrap returns a streamer that plays src and records what it produced.
func (t *PulseTap) Wrap(src beep.Streamer) beep.Streamer {
	return &tapped{src: src, tap: t}
}

type tapped struct {
	src beep.Streamer
	tap *PulseTap
}

func (s *tapped) Stream(samples [][2]float64) (int, bool) {
	n, ok := s.src.Stream(samples)
	if n > 0 {
		s.tap.record(samples[:n])
	}
	return n, ok
}

func (s *tapped) Err() error { return s.src.Err() }

func (t *PulseTap) record(samples [][2]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, smp := range samples {
		t.buffer[t.nextIndex] = smp
		t.nextIndex++
		if t.nextIndex >= len(t.buffer) {
			t.nextIndex = 0
		}
	}
	t.lastWrite = t.now()
}

// snapshot returns up to the last n samples, oldest first.
func (t *PulseTap) snapshot(n int) [][2]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n > len(t.buffer) {
		n = len(t.buffer)
	}
	out := make([][2]float64, n)
	idx := t.nextIndex - n
	if idx < 0 {
		idx += len(t.buffer)
	}
	for i := range out {
		out[i] = t.buffer[idx]
		idx++
		if idx >= len(t.buffer) {
			idx = 0
		}
	}
	return out
}

// Glow returns the RMS of recent samples, faded linearly to 0 over fade
// since the last write. Result is in [0, 1].
func (t *PulseTap) Glow(fade time.Duration) float64 {
	t.mu.RLock()
	last := t.lastWrite
	t.mu.RUnlock()
	if last.IsZero() || fade <= 0 {
		return 0
	}
	age := t.now().Sub(last)
	if age >= fade {
		return 0
	}

	samples := t.snapshot(len(t.buffer))
	var sum float64
	for _, s := range samples {
		mono := (s[0] + s[1]) * 0.5
		sum += mono * mono
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	return math.Min(rms, 1) * (1 - float64(age)/float64(fade))
}
