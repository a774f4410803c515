// Package game is the desktop window host, built on ebiten.
package game

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/iburimskiy/nexus/internal/app"
	"github.com/iburimskiy/nexus/internal/config"
	"github.com/iburimskiy/nexus/internal/feedback"
)

// Wormhole button, the in-page transition control.
const (
	buttonWidth  = 160
	buttonHeight = 40
	buttonMargin = 24

	// Floating menu toggle in the bottom right corner.
	fabSize = 44

	glowFade = 300 * time.Millisecond
)

type command int

const (
	cmdNone command = iota
	cmdQuit
	cmdScrollDown
	cmdScrollUp
	cmdNext
	cmdPrev
	cmdMenu
	cmdAction1
	cmdAction2
	cmdAction3
	cmdTransition
)

var keyCommands = []struct {
	key ebiten.Key
	cmd command
}{
	{ebiten.KeyEscape, cmdQuit},
	{ebiten.KeyQ, cmdQuit},
	{ebiten.KeyArrowDown, cmdScrollDown},
	{ebiten.KeyArrowUp, cmdScrollUp},
	{ebiten.KeyJ, cmdNext},
	{ebiten.KeyPageDown, cmdNext},
	{ebiten.KeyK, cmdPrev},
	{ebiten.KeyPageUp, cmdPrev},
	{ebiten.KeyM, cmdMenu},
	{ebiten.KeyDigit1, cmdAction1},
	{ebiten.KeyDigit2, cmdAction2},
	{ebiten.KeyDigit3, cmdAction3},
	{ebiten.KeyEnter, cmdTransition},
}

// Game implements ebiten.Game over an app.App.
type Game struct {
	app     *app.App
	surface *ImageSurface
	tap     *feedback.PulseTap
	log     *zap.Logger

	width, height int
	time          float64

	buttonHovered bool
	buttonPressed bool
	quit          atomic.Bool
}

// New builds the window host. tap may be nil when no audible haptic is
// attached.
func New(cfg *config.Config, deps app.Deps, tap *feedback.PulseTap) (*Game, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.FPS <= 0 {
		deps.FPS = ebiten.DefaultTPS
	}
	w, h := cfg.Window.Width, cfg.Window.Height
	surface := NewImageSurface(w, h, 1)
	a, err := app.New(cfg, surface, deps)
	if err != nil {
		return nil, fmt.Errorf("window host: %w", err)
	}
	return &Game{
		app:     a,
		surface: surface,
		tap:     tap,
		log:     deps.Logger.Named("window"),
		width:   w,
		height:  h,
	}, nil
}

func (g *Game) App() *app.App { return g.app }

// RunWorker runs the particle worker; pair it with Run in an errgroup.
func (g *Game) RunWorker(ctx context.Context) error {
	return g.app.RunWorker(ctx)
}

// Run opens the window and blocks until it closes or ctx ends. The page is
// torn down on return.
func (g *Game) Run(ctx context.Context, title string) error {
	defer g.Close()
	stop := context.AfterFunc(ctx, func() { g.quit.Store(true) })
	defer stop()

	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	g.log.Info("window host started", zap.Int("width", g.width), zap.Int("height", g.height))
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}

// Close tears the page down and frees the canvas.
func (g *Game) Close() {
	g.app.Close()
	g.surface.Release()
}

func (g *Game) Update() error {
	for _, cmd := range g.commands() {
		g.apply(cmd)
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.app.ScrollBy(-dy * config.WheelStep)
	}
	g.updateButtons()
	if g.quit.Load() {
		return ebiten.Termination
	}

	g.time += 1.0 / float64(ebiten.TPS())
	g.app.Tick()
	return nil
}

func (g *Game) commands() []command {
	var out []command
	for _, kc := range keyCommands {
		if inpututil.IsKeyJustPressed(kc.key) {
			out = append(out, kc.cmd)
		}
	}
	// Held arrows keep scrolling.
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) && !inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		out = append(out, cmdScrollDown)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) && !inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		out = append(out, cmdScrollUp)
	}
	return out
}

func (g *Game) apply(cmd command) {
	switch cmd {
	case cmdQuit:
		g.quit.Store(true)
	case cmdScrollDown:
		g.app.ScrollBy(config.WheelStep)
	case cmdScrollUp:
		g.app.ScrollBy(-config.WheelStep)
	case cmdNext:
		g.app.NextSection()
	case cmdPrev:
		g.app.PrevSection()
	case cmdMenu:
		g.app.Menu.Toggle()
	case cmdAction1, cmdAction2, cmdAction3:
		if g.app.Menu.Open() {
			g.app.Menu.Trigger(int(cmd - cmdAction1))
		}
	case cmdTransition:
		g.transition()
	}
}

// transition follows the current section's wormhole button.
func (g *Game) transition() {
	next, ok := g.nextTarget()
	if !ok {
		return
	}
	if err := g.app.Transition(next); err != nil {
		g.log.Debug("transition failed", zap.Error(err))
	}
}

func (g *Game) nextTarget() (string, bool) {
	id, ok := g.app.CurrentSection()
	if !ok {
		return "", false
	}
	sec, ok := g.app.Page.Section(id)
	if !ok || sec.Next == "" {
		return "", false
	}
	return sec.Next, true
}

func (g *Game) updateButtons() {
	mx, my := ebiten.CursorPosition()
	bx, by := g.buttonOrigin()
	g.buttonHovered = inside(mx, my, bx, by, buttonWidth, buttonHeight)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if g.buttonHovered {
			g.buttonPressed = true
		}
		fx, fy := g.fabOrigin()
		if inside(mx, my, fx, fy, fabSize, fabSize) {
			g.apply(cmdMenu)
		}
		if g.app.Menu.Open() {
			for i := range g.app.Menu.Actions() {
				x, y := g.menuItemOrigin(i)
				if inside(mx, my, x, y, menuItemWidth, menuItemHeight) {
					g.apply(cmdAction1 + command(i))
				}
			}
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if g.buttonPressed && g.buttonHovered {
			g.apply(cmdTransition)
		}
		g.buttonPressed = false
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawBackground(screen)
	g.surface.DrawTo(screen)
	g.drawSections(screen)
	g.drawNav(screen)
	g.drawButton(screen)
	g.drawMenu(screen)
	g.drawToasts(screen)
}

// Layout follows the window; the canvas keeps viewport * device scale
// pixels.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := 1.0
	if m := ebiten.Monitor(); m != nil {
		scale = m.DeviceScaleFactor()
	}
	g.resize(outsideWidth, outsideHeight, scale)
	return outsideWidth, outsideHeight
}

func (g *Game) resize(w, h int, scale float64) {
	if w == g.width && h == g.height && scale == g.surface.Scale() {
		return
	}
	g.width, g.height = w, h
	g.surface.Resize(w, h, scale)
	g.app.Resize(float64(w), float64(h), float64(w), float64(h))
}

func (g *Game) buttonOrigin() (int, int) {
	return (g.width - buttonWidth) / 2, g.height - buttonHeight - buttonMargin
}

func (g *Game) fabOrigin() (int, int) {
	return g.width - fabSize - buttonMargin, g.height - fabSize - buttonMargin
}

func inside(px, py, x, y, w, h int) bool {
	return px >= x && px <= x+w && py >= y && py <= y+h
}
