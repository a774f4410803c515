package feedback

import (
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"go.uber.org/zap"
)

const (
	toneSampleRate = beep.SampleRate(44100)
	toneFrequency  = 220.0
	toneVolume     = 0.35
)

// ToneHaptic plays vibration patterns as short low sine bursts on the
// speaker. Desktops have no vibration motor.
type ToneHaptic struct {
	sr   beep.SampleRate
	tap  *PulseTap
	play func(beep.Streamer)
	log  *zap.Logger
}

// NewToneHaptic initialises the speaker. If audio is unavailable the
// returned ToneHaptic does nothing.
func NewToneHaptic(tap *PulseTap, logger *zap.Logger) *ToneHaptic {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &ToneHaptic{sr: toneSampleRate, tap: tap, log: logger.Named("haptic")}
	if err := speaker.Init(h.sr, h.sr.N(time.Second/20)); err != nil {
		h.log.Info("audio unavailable, haptics disabled", zap.Error(err))
		return h
	}
	h.play = func(s beep.Streamer) { speaker.Play(s) }
	return h
}

// newToneHapticWithPlayer skips speaker setup.
func newToneHapticWithPlayer(tap *PulseTap, play func(beep.Streamer)) *ToneHaptic {
	return &ToneHaptic{sr: toneSampleRate, tap: tap, play: play, log: zap.NewNop()}
}

func (h *ToneHaptic) Enabled() bool { return h.play != nil }

func (h *ToneHaptic) Vibrate(pattern ...time.Duration) {
	if h.play == nil || len(pattern) == 0 {
		return
	}
	s := h.Pattern(pattern...)
	if h.tap != nil {
		s = h.tap.Wrap(s)
	}
	h.play(s)
}

// Pattern builds the streamer for an on/off pattern.
func (h *ToneHaptic) Pattern(pattern ...time.Duration) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(pattern))
	for i, d := range pattern {
		n := h.sr.N(d)
		if n <= 0 {
			continue
		}
		if i%2 == 0 {
			parts = append(parts, beep.Take(n, sine(h.sr, toneFrequency, toneVolume)))
		} else {
			parts = append(parts, beep.Silence(n))
		}
	}
	return beep.Seq(parts...)
}

func sine(sr beep.SampleRate, freq, volume float64) beep.Streamer {
	step := freq / float64(sr)
	var phase float64
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := volume * math.Sin(2*math.Pi*phase)
			samples[i][0], samples[i][1] = v, v
			phase += step
			if phase >= 1 {
				phase--
			}
		}
		return len(samples), true
	})
}
