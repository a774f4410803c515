package app

import (
	"context"
	"image/color"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/iburimskiy/nexus/internal/config"
	"github.com/iburimskiy/nexus/internal/render"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memSurface struct {
	mu      sync.Mutex
	circles int
	clears  int
}

func (s *memSurface) Size() (int, int) { return 1000, 800 }

func (s *memSurface) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	s.circles = 0
	return nil
}

func (s *memSurface) FillCircle(_, _, _ float64, _ color.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.circles++
	return nil
}

func (s *memSurface) painted() (clears, circles int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears, s.circles
}

type countingHaptic struct{ n int }

func (h *countingHaptic) Vibrate(...time.Duration) { h.n++ }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Window.Width, cfg.Window.Height = 1000, 800
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, surface render.Surface, deps Deps) *App {
	t.Helper()
	deps.Rand = rand.New(rand.NewSource(1))
	a, err := New(cfg, surface, deps)
	require.NoError(t, err)
	a.Resize(1000, 800, 1000, 800)
	return a
}

func TestApp_PaintsWorkerSnapshots(t *testing.T) {
	surf := &memSurface{}
	a := newTestApp(t, testConfig(), surf, Deps{})

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.RunWorker(ctx) })

	require.Eventually(t, func() bool {
		a.Tick()
		_, circles := surf.painted()
		return circles == 53
	}, 2*time.Second, time.Millisecond)
	assert.Greater(t, a.Loop.Frames(), uint64(0))

	a.Close()
	cancel()
	require.NoError(t, g.Wait())
}

func TestApp_ReducedMotionSchedulesNoFrames(t *testing.T) {
	cfg := testConfig()
	cfg.ReducedMotion = true
	surf := &memSurface{}
	a := newTestApp(t, cfg, surf, Deps{})
	defer a.Close()

	require.NoError(t, a.RunWorker(context.Background()))
	assert.Zero(t, a.Frames.Pending())
	for i := 0; i < 10; i++ {
		a.Tick()
	}
	clears, circles := surf.painted()
	assert.Zero(t, clears)
	assert.Zero(t, circles)
	assert.Zero(t, a.Loop.Frames())
}

func TestApp_LookaheadMounting(t *testing.T) {
	a := newTestApp(t, testConfig(), &memSurface{}, Deps{})
	defer a.Close()

	a.Tick()
	assert.Equal(t, []string{"hero", "constellation"}, a.Rendered())
	assert.False(t, a.ShouldRender("cosmos"))

	a.ScrollBy(800)
	a.Tick()
	assert.Equal(t, []string{"hero", "constellation", "cosmos"}, a.Rendered())
}

func TestApp_TimelineRevealsOnce(t *testing.T) {
	a := newTestApp(t, testConfig(), &memSurface{}, Deps{})
	defer a.Close()

	a.Tick()
	assert.False(t, a.TimelineRevealed())

	top, ok := a.Shell.Bounds(TimelineID)
	require.True(t, ok)
	a.ScrollBy(top.Y)
	a.Tick()
	assert.True(t, a.TimelineRevealed())

	a.ScrollBy(-top.Y)
	a.Tick()
	assert.True(t, a.TimelineRevealed())
}

func TestApp_NextPrevNavigation(t *testing.T) {
	h := &countingHaptic{}
	a := newTestApp(t, testConfig(), &memSurface{}, Deps{Haptic: h})
	defer a.Close()

	assert.False(t, a.PrevSection(), "nothing observed yet")
	a.Tick()
	id, ok := a.CurrentSection()
	require.True(t, ok)
	assert.Equal(t, "hero", id)

	require.True(t, a.NextSection())
	assert.Equal(t, 1, h.n)
	for i := 0; i < 600 && a.Shell.Scrolling(); i++ {
		a.Tick()
	}
	a.Tick()
	id, _ = a.CurrentSection()
	assert.Equal(t, "constellation", id)

	require.True(t, a.PrevSection())
	for i := 0; i < 600 && a.Shell.Scrolling(); i++ {
		a.Tick()
	}
	assert.Equal(t, 0.0, a.Shell.Scroll())
}

func TestApp_TransitionUnknown(t *testing.T) {
	a := newTestApp(t, testConfig(), &memSurface{}, Deps{})
	defer a.Close()
	assert.Error(t, a.Transition("footer"))
}

func TestApp_HapticDisabledByConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Feedback.Haptic = false
	h := &countingHaptic{}
	a := newTestApp(t, cfg, &memSurface{}, Deps{Haptic: h})
	defer a.Close()

	a.Menu.Toggle()
	a.Menu.Trigger(0)
	assert.Zero(t, h.n)
	require.Len(t, a.Toasts.Active(), 1)
}

func TestApp_CloseReleasesEverything(t *testing.T) {
	a := newTestApp(t, testConfig(), &memSurface{}, Deps{})

	done := make(chan error, 1)
	go func() { done <- a.RunWorker(context.Background()) }()
	a.Tick()

	a.Close()
	a.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker still running after Close")
	}
	assert.False(t, a.Loop.Running())
	assert.Zero(t, a.Frames.Pending())
	assert.False(t, a.Lookahead.Observed("hero"))
	assert.False(t, a.Active.Observed("hero"))
	assert.Nil(t, a.Timeline.Update(a.Shell.Viewport()))
}
