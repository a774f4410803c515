package terminal

import (
	"context"
	"image/color"
	"math/rand"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iburimskiy/nexus/internal/app"
	"github.com/iburimskiy/nexus/internal/config"
	"github.com/iburimskiy/nexus/internal/render"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(cols, rows)
	return s
}

func newHost(t *testing.T, s tcell.Screen, cfg *config.Config) *Host {
	t.Helper()
	h, err := New(cfg, s, app.Deps{Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	return h
}

func rowText(s tcell.SimulationScreen, row int) string {
	cols, _ := s.Size()
	out := make([]rune, 0, cols)
	for x := 0; x < cols; x++ {
		r, _, _, _ := s.GetContent(x, row)
		out = append(out, r)
	}
	return string(out)
}

func TestCellSurface_FillAndRelease(t *testing.T) {
	s := NewCellSurface(10, 5)
	w, h := s.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 80, h)

	require.NoError(t, s.FillCircle(17, 33, 0.5, color.White))
	require.NoError(t, s.FillCircle(1, 1, 1.5, color.White))
	require.NoError(t, s.FillCircle(79, 79, 2.5, color.White))
	require.NoError(t, s.FillCircle(500, 1, 1, color.White), "off-grid is ignored")
	assert.Equal(t, '·', s.At(2, 2))
	assert.Equal(t, '•', s.At(0, 0))
	assert.Equal(t, '●', s.At(9, 4))

	require.NoError(t, s.Clear())
	assert.Zero(t, s.At(2, 2))

	s.Release()
	assert.ErrorIs(t, s.Clear(), render.ErrSurfaceGone)
	assert.ErrorIs(t, s.FillCircle(1, 1, 1, color.White), render.ErrSurfaceGone)
}

func TestBlend(t *testing.T) {
	assert.Equal(t, tcell.NewRGBColor(255, 255, 255), blend(color.NRGBA{255, 255, 255, 255}, Background))
	assert.Equal(t, tcell.NewRGBColor(0x0B, 0x0E, 0x1A), blend(color.NRGBA{255, 255, 255, 0}, Background))
}

func TestHost_DrawsNavAndHero(t *testing.T) {
	s := newScreen(t, 100, 40)
	h := newHost(t, s, config.DefaultConfig())
	defer h.Close()

	h.Frame()
	nav := rowText(s, 0)
	assert.Contains(t, nav, "NEXUS")
	assert.Contains(t, nav, "hero")

	hero, ok := h.App().Page.Section("hero")
	require.True(t, ok)
	assert.Contains(t, rowText(s, 2), hero.Title)
	assert.Equal(t, []string{"hero", "constellation"}, h.App().Rendered())
}

func TestHost_MenuKeys(t *testing.T) {
	s := newScreen(t, 100, 40)
	h := newHost(t, s, config.DefaultConfig())
	defer h.Close()

	h.handleKey(tcell.KeyRune, '2')
	assert.Empty(t, h.App().Toasts.Active(), "closed menu ignores action keys")

	h.handleKey(tcell.KeyRune, 'm')
	assert.True(t, h.App().Menu.Open())
	h.Frame()
	_, rows := s.Size()
	assert.Contains(t, rowText(s, rows-5), "1 Speed")

	h.handleKey(tcell.KeyRune, '2')
	assert.False(t, h.App().Menu.Open())
	toasts := h.App().Toasts.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Explore", toasts[0].Title)

	h.Frame()
	assert.Contains(t, rowText(s, 2), "Action Explore executed successfully!")
}

func TestHost_NavigationKeys(t *testing.T) {
	s := newScreen(t, 100, 40)
	h := newHost(t, s, config.DefaultConfig())
	defer h.Close()

	h.Frame()
	h.handleKey(tcell.KeyPgDn, 0)
	require.True(t, h.App().Shell.Scrolling())
	for i := 0; i < 600 && h.App().Shell.Scrolling(); i++ {
		h.Frame()
	}
	h.Frame()
	id, _ := h.App().CurrentSection()
	assert.Equal(t, "constellation", id)

	before := h.App().Shell.Scroll()
	h.handleKey(tcell.KeyRune, 'j')
	assert.Equal(t, before+config.WheelStep, h.App().Shell.Scroll())
	h.handleKey(tcell.KeyUp, 0)
	assert.Equal(t, before, h.App().Shell.Scroll())

	h.handleKey(tcell.KeyRune, 'q')
	assert.True(t, h.quit)
}

func TestHost_ResizeFollowsScreen(t *testing.T) {
	s := newScreen(t, 80, 24)
	h := newHost(t, s, config.DefaultConfig())
	defer h.Close()

	s.SetSize(120, 30)
	h.handle(tcell.NewEventResize(120, 30))
	w, ht := h.surface.Size()
	assert.Equal(t, 120*CellWidth, w)
	assert.Equal(t, 30*CellHeight, ht)
	assert.Equal(t, float64(30*CellHeight), h.App().Shell.Viewport().H)
}

func TestHost_RunPaintsParticlesUntilCancelled(t *testing.T) {
	s := newScreen(t, 100, 40)
	h := newHost(t, s, config.DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	workerDone := make(chan error, 1)
	go func() { workerDone <- h.RunWorker(ctx) }()
	runDone := make(chan error, 1)
	go func() { runDone <- h.Run(ctx) }()

	require.Eventually(t, func() bool {
		return h.App().Loop.Frames() > 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-runDone)
	require.NoError(t, <-workerDone)
	assert.False(t, h.App().Loop.Running())
}

func TestHost_ReducedMotionPaintsNoParticles(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ReducedMotion = true
	s := newScreen(t, 60, 20)
	h := newHost(t, s, cfg)
	defer h.Close()

	for i := 0; i < 5; i++ {
		h.Frame()
	}
	assert.Zero(t, h.App().Loop.Frames())
	for row := 0; row < 20; row++ {
		for col := 0; col < 60; col++ {
			assert.Zero(t, h.surface.At(col, row))
		}
	}
}
