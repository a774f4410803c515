// Package app wires the page together for a host: particle worker and
// render loop, visibility trackers, the section shell and feedback ports.
// Hosts call Resize when the viewport changes and Tick once per display
// frame, then draw from the exported state.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/nexus/internal/config"
	"github.com/iburimskiy/nexus/internal/feedback"
	"github.com/iburimskiy/nexus/internal/particle"
	"github.com/iburimskiy/nexus/internal/render"
	"github.com/iburimskiy/nexus/internal/section"
	"github.com/iburimskiy/nexus/internal/visibility"
)

// Section ids with dedicated observers.
const TimelineID = "timeline"

type Deps struct {
	Logger   *zap.Logger
	Haptic   feedback.Haptic
	Notifier feedback.Notifier // in addition to the in-app toasts
	Page     *section.Page     // nil loads the embedded page
	Rand     *rand.Rand        // nil seeds from config
	FPS      int
}

type App struct {
	cfg *config.Config
	log *zap.Logger

	Page    *section.Page
	Shell   *section.Shell
	Worker  *particle.Worker
	Mailbox *particle.Mailbox
	Frames  *render.FrameQueue
	Loop    *render.Loop

	// Lookahead drives lazy section mounting, Timeline reveals milestones
	// once, Active picks the section used for prev/next navigation.
	Lookahead *visibility.Tracker
	Timeline  *visibility.Tracker
	Active    *visibility.Tracker

	Menu   *feedback.Menu
	Toasts *feedback.Toasts
	Haptic feedback.Haptic

	mu               sync.Mutex
	lookahead        visibility.Map
	canvasW, canvasH float64
	unsubscribe      func()
	closeOnce        sync.Once
}

// New builds the page runtime drawing particles onto surface.
func New(cfg *config.Config, surface render.Surface, deps Deps) (*App, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	page := deps.Page
	if page == nil {
		p, err := section.DefaultPage()
		if err != nil {
			return nil, fmt.Errorf("load page content: %w", err)
		}
		page = p
	}
	rng := deps.Rand
	if rng == nil {
		seed := cfg.Particles.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	haptic := deps.Haptic
	if haptic == nil || !cfg.Feedback.Haptic {
		haptic = feedback.NopHaptic{}
	}

	a := &App{
		cfg:       cfg,
		log:       log,
		Page:      page,
		Frames:    render.NewFrameQueue(),
		Toasts:    feedback.NewToasts(time.Duration(cfg.Feedback.ToastTTLMs) * time.Millisecond),
		Haptic:    haptic,
		lookahead: visibility.Map{},
		canvasW:   float64(cfg.Window.Width),
		canvasH:   float64(cfg.Window.Height),
	}

	notifier := feedback.Notifier(a.Toasts)
	if deps.Notifier != nil {
		notifier = feedback.Multi{a.Toasts, deps.Notifier}
	}
	a.Menu = feedback.NewMenu(feedback.DefaultActions, haptic, notifier)

	sim := particle.NewSimulator(particle.ParamsFromConfig(cfg.Particles), rng)
	a.Worker = particle.NewWorker(sim, log)
	a.Mailbox = particle.NewMailbox(a.Worker.Snapshots())
	a.Loop = render.NewLoop(a.Frames, surface, a.Mailbox, render.Options{
		ReducedMotion: cfg.ReducedMotion,
		Logger:        log,
	})

	a.Shell = section.NewShell(page.Sections, float64(cfg.Window.Width), float64(cfg.Window.Height), section.ShellOptions{
		FPS:       deps.FPS,
		Frequency: config.ScrollFrequency,
		Damping:   config.ScrollDamping,
		Logger:    log,
	})

	obs := cfg.Observers
	a.Lookahead = visibility.New(visibility.Options{Name: "lookahead", Threshold: obs.Lookahead, RootMargin: obs.RootMargin, Logger: log})
	a.Timeline = visibility.New(visibility.Options{Name: "timeline", Threshold: obs.Timeline, Once: true, Logger: log})
	a.Active = visibility.New(visibility.Options{Name: "active", Threshold: obs.Active, Logger: log})
	for _, id := range a.Shell.IDs() {
		a.Lookahead.Observe(id, a.Shell.BoundsFunc(id))
		a.Active.Observe(id, a.Shell.BoundsFunc(id))
	}
	if _, ok := page.Section(TimelineID); ok {
		a.Timeline.Observe(TimelineID, a.Shell.BoundsFunc(TimelineID))
	}
	a.unsubscribe = a.Lookahead.Subscribe(func(m visibility.Map) {
		a.mu.Lock()
		a.lookahead = m
		a.mu.Unlock()
	})

	a.Loop.Start()
	return a, nil
}

// RunWorker runs the particle worker until ctx ends or Close is called. With
// reduced motion on it returns at once.
func (a *App) RunWorker(ctx context.Context) error {
	if a.cfg.ReducedMotion {
		return nil
	}
	return a.Worker.Run(ctx)
}

// Resize updates the viewport (page units) and the canvas size the
// particles live in.
func (a *App) Resize(viewW, viewH, canvasW, canvasH float64) {
	a.Shell.Resize(viewW, viewH)
	a.mu.Lock()
	a.canvasW, a.canvasH = canvasW, canvasH
	a.mu.Unlock()
}

// Tick advances one display frame.
func (a *App) Tick() {
	if !a.cfg.ReducedMotion {
		a.mu.Lock()
		req := particle.Request{Width: a.canvasW, Height: a.canvasH}
		a.mu.Unlock()
		a.Worker.Post(req)
		a.Mailbox.Poll()
	}
	a.Frames.Flush()

	a.Shell.Step()
	vp := a.Shell.Viewport()
	a.Lookahead.Update(vp)
	a.Timeline.Update(vp)
	a.Active.Update(vp)
}

// Visibility is the lookahead map used for mounting decisions.
func (a *App) Visibility() visibility.Map {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lookahead.Clone()
}

// Rendered lists the sections that mount full content this frame.
func (a *App) Rendered() []string {
	return a.Shell.Rendered(a.Visibility())
}

func (a *App) ShouldRender(id string) bool {
	return a.Shell.ShouldRender(id, a.Visibility())
}

// TimelineRevealed is true once the timeline has been seen.
func (a *App) TimelineRevealed() bool {
	return a.Timeline.Visible(TimelineID)
}

// CurrentSection is the section most in view.
func (a *App) CurrentSection() (string, bool) {
	return a.Shell.Active(a.Active.Snapshot())
}

// Transition smoothly scrolls to id, the in-page transition control.
func (a *App) Transition(id string) error {
	if err := a.Shell.ScrollTo(id); err != nil {
		return err
	}
	feedback.Press(a.Haptic, feedback.Medium)
	return nil
}

// NextSection scrolls to the section after the current one; false at the end.
func (a *App) NextSection() bool {
	id, ok := a.Shell.Next(a.Active.Snapshot())
	if !ok {
		return false
	}
	return a.Transition(id) == nil
}

func (a *App) PrevSection() bool {
	id, ok := a.Shell.Prev(a.Active.Snapshot())
	if !ok {
		return false
	}
	return a.Transition(id) == nil
}

func (a *App) ScrollBy(dy float64) {
	a.Shell.ScrollBy(dy)
}

// Close stops the render loop, releases the worker and detaches every
// observer. Safe to call more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.Loop.Stop()
		a.Frames.Close()
		a.Worker.Close()
		a.unsubscribe()
		a.Lookahead.Close()
		a.Timeline.Close()
		a.Active.Close()
		a.log.Debug("page torn down", zap.Uint64("frames", a.Loop.Frames()))
	})
}
