package render

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/nexus/internal/particle"
)

type circle struct {
	x, y, r float64
	c       color.Color
}

type fakeSurface struct {
	clears  int
	circles []circle
	gone    bool
	failOn  error
}

func (s *fakeSurface) Size() (int, int) { return 100, 100 }

func (s *fakeSurface) Clear() error {
	if s.gone {
		return ErrSurfaceGone
	}
	s.clears++
	s.circles = s.circles[:0]
	return nil
}

func (s *fakeSurface) FillCircle(x, y, r float64, c color.Color) error {
	if s.failOn != nil {
		return s.failOn
	}
	s.circles = append(s.circles, circle{x, y, r, c})
	return nil
}

type staticSource particle.Set

func (s staticSource) Particles() particle.Set { return particle.Set(s) }

// countingScheduler records registrations without ever running them.
type countingScheduler struct {
	requests, cancels int
}

func (s *countingScheduler) RequestFrame(func()) FrameID {
	s.requests++
	return FrameID(s.requests)
}

func (s *countingScheduler) CancelFrame(FrameID) { s.cancels++ }

func TestLoop_ReducedMotionSchedulesNothing(t *testing.T) {
	sched := &countingScheduler{}
	surf := &fakeSurface{}
	l := NewLoop(sched, surf, staticSource{{X: 1}}, Options{ReducedMotion: true})

	l.Start()
	l.Stop()

	assert.Zero(t, sched.requests)
	assert.Zero(t, surf.clears)
	assert.False(t, l.Running())
}

func TestLoop_ReducedMotionWithFrameQueue(t *testing.T) {
	q := NewFrameQueue()
	l := NewLoop(q, &fakeSurface{}, staticSource{}, Options{ReducedMotion: true})
	l.Start()
	assert.Zero(t, q.Pending())
	assert.Zero(t, q.Flush())
}

func TestLoop_PaintsEveryParticle(t *testing.T) {
	q := NewFrameQueue()
	surf := &fakeSurface{}
	src := staticSource{
		{X: 10, Y: 20, Size: 1.5, Opacity: 0.5, Color: "#00F5FF"},
		{X: 30, Y: 40, Size: 2, Opacity: 1, Color: "#FF00F5"},
	}
	l := NewLoop(q, surf, src, Options{})
	l.Start()
	require.Equal(t, 1, q.Pending())

	require.Equal(t, 1, q.Flush())
	assert.Equal(t, 1, surf.clears)
	require.Len(t, surf.circles, 2)
	assert.Equal(t, circle{10, 20, 1.5, color.NRGBA{R: 0, G: 245, B: 255, A: 128}}, surf.circles[0])
	assert.Equal(t, circle{30, 40, 2, color.NRGBA{R: 255, G: 0, B: 245, A: 255}}, surf.circles[1])
	assert.Equal(t, uint64(1), l.Frames())

	// next frame was requested from inside the callback
	assert.Equal(t, 1, q.Pending())
	q.Flush()
	q.Flush()
	assert.Equal(t, 3, surf.clears)
	assert.Equal(t, uint64(3), l.Frames())
}

func TestLoop_StopCancelsPendingFrame(t *testing.T) {
	q := NewFrameQueue()
	surf := &fakeSurface{}
	l := NewLoop(q, surf, staticSource{}, Options{})
	l.Start()
	q.Flush()

	l.Stop()
	l.Stop()
	assert.Zero(t, q.Pending())
	assert.Zero(t, q.Flush())
	assert.Equal(t, 1, surf.clears)
}

func TestLoop_StartTwiceSchedulesOnce(t *testing.T) {
	sched := &countingScheduler{}
	l := NewLoop(sched, &fakeSurface{}, staticSource{}, Options{})
	l.Start()
	l.Start()
	assert.Equal(t, 1, sched.requests)
	l.Stop()
	assert.Equal(t, 1, sched.cancels)
}

func TestLoop_SurfaceGoneStopsSilently(t *testing.T) {
	q := NewFrameQueue()
	surf := &fakeSurface{}
	l := NewLoop(q, surf, staticSource{{X: 1, Size: 1}}, Options{})
	l.Start()
	q.Flush()

	surf.gone = true
	assert.NotPanics(t, func() { q.Flush() })
	assert.False(t, l.Running())
	assert.Zero(t, q.Pending())
	assert.Equal(t, uint64(1), l.Frames())
}

func TestLoop_DrawErrorDropsFrameButContinues(t *testing.T) {
	q := NewFrameQueue()
	surf := &fakeSurface{failOn: errors.New("boom")}
	l := NewLoop(q, surf, staticSource{{X: 1, Size: 1}}, Options{})
	l.Start()
	q.Flush()

	assert.True(t, l.Running())
	assert.Zero(t, l.Frames())
	assert.Equal(t, 1, q.Pending())
}

func TestLoop_NilSurfaceNeverStarts(t *testing.T) {
	sched := &countingScheduler{}
	l := NewLoop(sched, nil, staticSource{}, Options{})
	l.Start()
	assert.Zero(t, sched.requests)
	assert.False(t, l.Running())
}

func TestLoop_NilSourcePaintsEmptyCanvas(t *testing.T) {
	q := NewFrameQueue()
	surf := &fakeSurface{}
	l := NewLoop(q, surf, nil, Options{})
	l.Start()
	q.Flush()
	assert.Equal(t, 1, surf.clears)
	assert.Empty(t, surf.circles)
}
