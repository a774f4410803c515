// Package render paints the particle field onto a drawing surface once per
// display frame. It only knows the Scheduler, Surface and Source ports; the
// window and terminal hosts provide concrete implementations.
package render

import (
	"errors"
	"image/color"
	"sync"

	"go.uber.org/zap"

	"github.com/iburimskiy/nexus/internal/particle"
)

// ErrSurfaceGone is returned by a Surface whose backing store was torn down.
var ErrSurfaceGone = errors.New("render: surface gone")

// FrameID identifies a scheduled frame callback. Zero is never issued.
type FrameID uint64

// Scheduler runs a callback before the next repaint.
type Scheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// Surface is a 2D drawing target in canvas pixels.
type Surface interface {
	Size() (w, h int)
	Clear() error
	FillCircle(x, y, r float64, c color.Color) error
}

// Source yields the most recent particle snapshot.
type Source interface {
	Particles() particle.Set
}

type Options struct {
	// ReducedMotion is read once in Start.
	ReducedMotion bool
	Logger        *zap.Logger
}

// Loop is the per-frame paint cycle.
type Loop struct {
	sched   Scheduler
	surface Surface
	source  Source
	opts    Options
	log     *zap.Logger
	colors  *Palette

	mu      sync.Mutex
	pending FrameID
	running bool
	frames  uint64
}

func NewLoop(sched Scheduler, surface Surface, source Source, opts Options) *Loop {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		sched:   sched,
		surface: surface,
		source:  source,
		opts:    opts,
		log:     log.Named("render"),
		colors:  NewPalette(),
	}
}

// Start schedules the first frame. With reduced motion on nothing is ever
// scheduled and the surface stays empty.
func (l *Loop) Start() {
	if l.opts.ReducedMotion {
		l.log.Info("reduced motion preferred, particle field disabled")
		return
	}
	if l.sched == nil || l.surface == nil {
		l.log.Info("no drawing surface, particle field disabled")
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true
	l.pending = l.sched.RequestFrame(l.frame)
}

// Stop cancels the pending frame. Safe to call repeatedly.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.halt()
}

func (l *Loop) halt() {
	if !l.running {
		return
	}
	l.running = false
	if l.pending != 0 {
		l.sched.CancelFrame(l.pending)
		l.pending = 0
	}
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Frames reports how many frames were painted.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

func (l *Loop) frame() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.pending = 0

	if err := l.paint(); err != nil {
		if errors.Is(err, ErrSurfaceGone) {
			l.log.Debug("surface gone, stopping")
			l.halt()
			return
		}
		l.log.Debug("frame dropped", zap.Error(err))
	} else {
		l.frames++
	}
	l.pending = l.sched.RequestFrame(l.frame)
}

func (l *Loop) paint() error {
	if err := l.surface.Clear(); err != nil {
		return err
	}
	if l.source == nil {
		return nil
	}
	for _, p := range l.source.Particles() {
		if err := l.surface.FillCircle(p.X, p.Y, p.Size, l.colors.Color(p.Color, p.Opacity)); err != nil {
			return err
		}
	}
	return nil
}
