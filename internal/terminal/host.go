// Package terminal renders the page in a terminal with tcell. The particle
// field is painted into a cell grid behind the section text.
package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/iburimskiy/nexus/internal/app"
	"github.com/iburimskiy/nexus/internal/config"
	"github.com/iburimskiy/nexus/internal/render"
	"github.com/iburimskiy/nexus/internal/section"
	"github.com/iburimskiy/nexus/internal/visibility"
)

var (
	bgColor      = toTcell(Background)
	styleBase    = tcell.StyleDefault.Background(bgColor).Foreground(tcell.NewRGBColor(200, 205, 215))
	styleTitle   = styleBase.Foreground(tcell.NewRGBColor(0x00, 0xF5, 0xFF)).Bold(true)
	styleAccent  = styleBase.Foreground(tcell.NewRGBColor(0xFF, 0x00, 0xF5))
	styleMuted   = styleBase.Foreground(tcell.NewRGBColor(110, 115, 130))
	styleActive  = styleBase.Foreground(tcell.ColorBlack).Background(tcell.NewRGBColor(0x00, 0xF5, 0xFF))
	styleToast   = styleBase.Background(tcell.NewRGBColor(20, 25, 45)).Foreground(tcell.ColorWhite)
	styleControl = styleBase.Foreground(tcell.NewRGBColor(0x0A, 0x74, 0xE6))
)

// Host drives an app.App from a tcell screen.
type Host struct {
	screen  tcell.Screen
	surface *CellSurface
	app     *app.App
	log     *zap.Logger
	fps     int
	quit    bool
}

// New builds a host on an initialised screen. The host owns the screen from
// here on and finalises it when Run returns.
func New(cfg *config.Config, screen tcell.Screen, deps app.Deps) (*Host, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.FPS <= 0 {
		deps.FPS = config.TerminalFPS
	}
	cols, rows := screen.Size()
	surface := NewCellSurface(cols, rows)
	a, err := app.New(cfg, surface, deps)
	if err != nil {
		return nil, fmt.Errorf("terminal host: %w", err)
	}
	h := &Host{
		screen:  screen,
		surface: surface,
		app:     a,
		log:     deps.Logger.Named("terminal"),
		fps:     deps.FPS,
	}
	h.resize(cols, rows)
	return h, nil
}

func (h *Host) App() *app.App { return h.app }

// RunWorker runs the particle worker; pair it with Run in an errgroup.
func (h *Host) RunWorker(ctx context.Context) error {
	return h.app.RunWorker(ctx)
}

// Run processes input and paints frames until the user quits or ctx ends.
// On return the page is torn down and the screen finalised.
func (h *Host) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	polled := make(chan struct{})
	go func() {
		defer close(polled)
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	defer func() {
		close(done)
		h.Close()
		h.screen.Fini()
		<-polled
	}()

	ticker := time.NewTicker(time.Second / time.Duration(h.fps))
	defer ticker.Stop()

	h.log.Info("terminal host started", zap.Int("fps", h.fps))
	for !h.quit {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			h.handle(ev)
		case <-ticker.C:
			h.Frame()
		}
	}
	return nil
}

// Close tears the page down and releases the surface.
func (h *Host) Close() {
	h.app.Close()
	h.surface.Release()
}

func (h *Host) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		h.resize(ev.Size())
		h.screen.Sync()
	case *tcell.EventKey:
		h.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventMouse:
		switch {
		case ev.Buttons()&tcell.WheelUp != 0:
			h.app.ScrollBy(-config.WheelStep)
		case ev.Buttons()&tcell.WheelDown != 0:
			h.app.ScrollBy(config.WheelStep)
		}
	}
}

func (h *Host) handleKey(key tcell.Key, r rune) {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		h.quit = true
	case tcell.KeyDown:
		h.app.ScrollBy(config.WheelStep)
	case tcell.KeyUp:
		h.app.ScrollBy(-config.WheelStep)
	case tcell.KeyPgDn:
		h.app.NextSection()
	case tcell.KeyPgUp:
		h.app.PrevSection()
	case tcell.KeyEnter:
		h.transition()
	case tcell.KeyRune:
		switch r {
		case 'q':
			h.quit = true
		case 'j':
			h.app.ScrollBy(config.WheelStep)
		case 'k':
			h.app.ScrollBy(-config.WheelStep)
		case 'n', 'J':
			h.app.NextSection()
		case 'p', 'K':
			h.app.PrevSection()
		case 'm':
			h.app.Menu.Toggle()
		case '1', '2', '3':
			if h.app.Menu.Open() {
				h.app.Menu.Trigger(int(r - '1'))
			}
		}
	}
}

// transition follows the current section's wormhole control.
func (h *Host) transition() {
	id, ok := h.app.CurrentSection()
	if !ok {
		return
	}
	sec, ok := h.app.Page.Section(id)
	if !ok || sec.Next == "" {
		return
	}
	if err := h.app.Transition(sec.Next); err != nil {
		h.log.Debug("transition failed", zap.Error(err))
	}
}

func (h *Host) resize(cols, rows int) {
	h.surface.Resize(cols, rows)
	w, ht := float64(cols*CellWidth), float64(rows*CellHeight)
	h.app.Resize(w, ht, w, ht)
}

// Frame ticks the page and paints it.
func (h *Host) Frame() {
	h.app.Tick()
	h.draw()
	h.screen.Show()
}

func (h *Host) draw() {
	h.screen.Fill(' ', styleBase)
	h.surface.Blit(h.screen, bgColor)

	cols, rows := h.screen.Size()
	vp := h.app.Shell.Viewport()
	for _, sec := range h.app.Shell.Sections() {
		b, ok := h.app.Shell.Bounds(sec.ID)
		if !ok || b.Intersect(vp).Area() == 0 {
			continue
		}
		top := int((b.Y - vp.Y) / CellHeight)
		if h.app.ShouldRender(sec.ID) {
			h.drawSection(sec, b, top, cols, vp.Y)
		} else {
			drawCentered(h.screen, top+rows/2, cols, styleMuted, "· · ·")
		}
	}
	h.drawNav(cols)
	h.drawMenu(cols, rows)
	h.drawToasts(cols, rows)
}

func (h *Host) drawSection(sec section.Section, b visibility.Rect, top, cols int, scroll float64) {
	height := int(b.H / CellHeight)
	drawCentered(h.screen, top+2, cols, styleTitle, sec.Title)
	drawCentered(h.screen, top+3, cols, styleMuted, sec.Subtitle)

	switch sec.Kind {
	case "constellation":
		h.drawConstellation(sec, top, cols, height)
	case "parallax":
		h.drawParallax(top, cols, height, scroll)
		for i, it := range sec.Items {
			drawCentered(h.screen, top+6+i*3, cols, styleAccent, it.Title)
			drawCentered(h.screen, top+7+i*3, cols, styleBase, it.Text)
		}
	case "timeline":
		if !h.app.TimelineRevealed() {
			break
		}
		for i, it := range sec.Items {
			drawText(h.screen, cols/2-20, top+6+i*3, styleAccent, it.Tag)
			drawText(h.screen, cols/2-14, top+6+i*3, styleTitle, it.Title)
			drawText(h.screen, cols/2-14, top+7+i*3, styleBase, it.Text)
		}
	default:
		for i, it := range sec.Items {
			drawCentered(h.screen, top+6+i*2, cols, styleAccent, it.Title)
			if it.Text != "" {
				drawCentered(h.screen, top+7+i*2, cols, styleBase, it.Text)
			}
		}
	}
	if sec.Next != "" {
		drawCentered(h.screen, top+height-2, cols, styleControl, "[ enter ] "+sec.Next+" v")
	}
}

func (h *Host) drawConstellation(sec section.Section, top, cols, height int) {
	pos := func(it section.Item) (int, int) {
		return int(it.X / 100 * float64(cols)), top + int(it.Y/100*float64(height))
	}
	nodes := make(map[string]section.Item, len(sec.Items))
	for _, it := range sec.Items {
		nodes[it.ID] = it
	}
	for _, it := range sec.Items {
		x0, y0 := pos(it)
		for _, link := range it.Links {
			other, ok := nodes[link]
			if !ok || other.ID < it.ID {
				continue
			}
			x1, y1 := pos(other)
			drawLine(h.screen, x0, y0, x1, y1, styleMuted)
		}
	}
	for _, it := range sec.Items {
		x, y := pos(it)
		drawText(h.screen, x, y, styleBase.Foreground(hexColor(it.Color)), "◆ "+it.Title)
	}
}

func (h *Host) drawParallax(top, cols, height int, scroll float64) {
	for _, o := range h.app.Page.Parallax {
		x, y := o.Position(0, float64(cols), float64(height), scroll/CellHeight)
		glyph := o.Glyph
		if glyph == "" {
			glyph = "*"
		}
		drawText(h.screen, int(x), top+int(y)%max(height, 1), styleBase.Foreground(hexColor(o.Color)), glyph)
	}
}

func (h *Host) drawNav(cols int) {
	active, _ := h.app.CurrentSection()
	x := 2
	drawText(h.screen, x, 0, styleTitle, "NEXUS")
	x += 8
	for _, id := range h.app.Shell.IDs() {
		st := styleMuted
		if id == active {
			st = styleActive
		}
		label := " " + id + " "
		if x+len(label) >= cols {
			break
		}
		drawText(h.screen, x, 0, st, label)
		x += len(label) + 1
	}
}

func (h *Host) drawMenu(cols, rows int) {
	menu := h.app.Menu
	drawText(h.screen, cols-5, rows-1, styleActive, " + ")
	if !menu.Open() {
		return
	}
	for i, name := range menu.Actions() {
		label := fmt.Sprintf(" %d %s ", i+1, name)
		drawText(h.screen, cols-len(label)-2, rows-2-len(menu.Actions())+i, styleToast, label)
	}
}

func (h *Host) drawToasts(cols, rows int) {
	for i, t := range h.app.Toasts.Active() {
		msg := " " + t.Title + ": " + t.Body + " "
		drawText(h.screen, max(cols-len(msg)-2, 0), 2+i, styleToast, msg)
	}
}

func drawText(s tcell.Screen, x, y int, st tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, st)
		x++
	}
}

func drawCentered(s tcell.Screen, y, cols int, st tcell.Style, text string) {
	n := len([]rune(text))
	drawText(s, max((cols-n)/2, 0), y, st, text)
}

// drawLine plots a dotted segment with a DDA walk.
func drawLine(s tcell.Screen, x0, y0, x1, y1 int, st tcell.Style) {
	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		return
	}
	for i := 1; i < steps; i += 2 {
		x := x0 + dx*i/steps
		y := y0 + dy*i/steps
		s.SetContent(x, y, '·', nil, st)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func hexColor(hex string) tcell.Color {
	return toTcell(palette.Color(hex, 1))
}

var palette = render.NewPalette()
