package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/nexus/internal/render"
	"github.com/iburimskiy/nexus/internal/section"
	"github.com/iburimskiy/nexus/internal/visibility"
)

const (
	navHeight      = 28
	menuItemWidth  = 140
	menuItemHeight = 30
	toastWidth     = 320
	toastHeight    = 44
)

var (
	palette = render.NewPalette()

	colorPanel   = color.NRGBA{R: 20, G: 25, B: 45, A: 200}
	colorBorder  = color.NRGBA{R: 60, G: 70, B: 110, A: 255}
	colorCyan    = color.NRGBA{R: 0x00, G: 0xF5, B: 0xFF, A: 255}
	colorMagenta = color.NRGBA{R: 0xFF, G: 0x00, B: 0xF5, A: 255}
	colorBlue    = color.NRGBA{R: 0x0A, G: 0x74, B: 0xE6, A: 255}
)

// drawBackground paints a slowly drifting vertical gradient.
func (g *Game) drawBackground(screen *ebiten.Image) {
	const band = 4
	for y := 0; y < g.height; y += band {
		ratio := float64(y) / float64(max(g.height, 1))
		hue := 230 + 25*math.Sin(g.time*0.3+ratio*math.Pi)
		v := 0.06 + 0.05*ratio + 0.02*math.Sin(g.time*0.5+ratio*math.Pi)
		vector.DrawFilledRect(screen, 0, float32(y), float32(g.width), band, render.HSV(hue, 0.7, v), false)
	}
}

func (g *Game) drawSections(screen *ebiten.Image) {
	vp := g.app.Shell.Viewport()
	for _, sec := range g.app.Shell.Sections() {
		b, ok := g.app.Shell.Bounds(sec.ID)
		if !ok || b.Intersect(vp).Area() == 0 {
			continue
		}
		top := b.Y - vp.Y
		if !g.app.ShouldRender(sec.ID) {
			// Unmounted sections keep their box so layout does not jump.
			ebitenutil.DebugPrintAt(screen, "...", g.width/2-9, int(top+b.H/2))
			continue
		}
		g.drawSection(screen, sec, b, top, vp.Y)
	}
}

func (g *Game) drawSection(screen *ebiten.Image, sec section.Section, b visibility.Rect, top, scroll float64) {
	w := float64(g.width)
	centered(screen, sec.Title, g.width, int(top)+navHeight+24)
	centered(screen, sec.Subtitle, g.width, int(top)+navHeight+42)

	switch sec.Kind {
	case "constellation":
		g.drawConstellation(screen, sec, top, w, b.H)
	case "parallax":
		g.drawParallax(screen, top, w, b.H, scroll)
		for i, it := range sec.Items {
			y := int(top + b.H*0.3 + float64(i)*70)
			centered(screen, it.Title, g.width, y)
			centered(screen, it.Text, g.width, y+16)
		}
	case "timeline":
		g.drawTimeline(screen, sec, top, w, b.H)
	case "cards":
		g.drawCards(screen, sec, top, w, b.H)
	default:
		for i, it := range sec.Items {
			centered(screen, it.Title, g.width, int(top+b.H*0.4)+i*24)
		}
	}
}

func (g *Game) drawConstellation(screen *ebiten.Image, sec section.Section, top, w, h float64) {
	pos := func(it section.Item) (float32, float32) {
		return float32(it.X / 100 * w), float32(top + it.Y/100*h)
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
			vector.StrokeLine(screen, x0, y0, x1, y1, 1, withAlpha(colorCyan, 0.3), true)
		}
	}
	for i, it := range sec.Items {
		x, y := pos(it)
		pulse := 1 + 0.15*math.Sin(g.time*2+float64(i))
		c := palette.Color(it.Color, 1)
		vector.DrawFilledCircle(screen, x, y, float32(it.Size*pulse*1.8), withAlpha(c, 0.15), true)
		vector.DrawFilledCircle(screen, x, y, float32(it.Size*0.6), c, true)
		ebitenutil.DebugPrintAt(screen, it.Title, int(x)-textWidth(it.Title)/2, int(y)+int(it.Size)+4)
	}
}

func (g *Game) drawParallax(screen *ebiten.Image, top, w, h, scroll float64) {
	for _, o := range g.app.Page.Parallax {
		x, y := o.Position(top, w, h, scroll)
		c := palette.Color(o.Color, o.Opacity)
		vector.DrawFilledCircle(screen, float32(x), float32(y), float32(o.Size/2), c, true)
	}
}

func (g *Game) drawTimeline(screen *ebiten.Image, sec section.Section, top, w, h float64) {
	axis := float32(w / 2)
	y0 := float32(top + h*0.2)
	y1 := float32(top + h*0.9)
	vector.StrokeLine(screen, axis, y0, axis, y1, 2, withAlpha(colorBlue, 0.6), true)
	if !g.app.TimelineRevealed() {
		return
	}
	step := (h * 0.7) / float64(max(len(sec.Items), 1))
	for i, it := range sec.Items {
		y := top + h*0.2 + step*(float64(i)+0.5)
		c := palette.Color(it.Color, 1)
		vector.DrawFilledCircle(screen, axis, float32(y), 6, c, true)
		x := int(axis) + 24
		if i%2 == 1 {
			x = int(axis) - 24 - textWidth(it.Text)
		}
		ebitenutil.DebugPrintAt(screen, it.Tag+"  "+it.Title, x, int(y)-10)
		ebitenutil.DebugPrintAt(screen, it.Text, x, int(y)+6)
	}
}

func (g *Game) drawCards(screen *ebiten.Image, sec section.Section, top, w, h float64) {
	n := len(sec.Items)
	if n == 0 {
		return
	}
	const gap = 24
	cw := math.Min(260, (w-gap*float64(n+1))/float64(n))
	ch := 160.0
	x := (w - (cw*float64(n) + gap*float64(n-1))) / 2
	y := top + h*0.35
	for i, it := range sec.Items {
		cx := x + float64(i)*(cw+gap)
		c := palette.Color(it.Color, 1)
		vector.DrawFilledRect(screen, float32(cx), float32(y), float32(cw), float32(ch), colorPanel, false)
		vector.StrokeRect(screen, float32(cx), float32(y), float32(cw), float32(ch), 2, c, false)
		ebitenutil.DebugPrintAt(screen, it.Title, int(cx)+12, int(y)+16)
		ebitenutil.DebugPrintAt(screen, it.Text, int(cx)+12, int(y)+40)
	}
}

func (g *Game) drawNav(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, 0, float32(g.width), navHeight, colorPanel, false)
	ebitenutil.DebugPrintAt(screen, "NEXUS", 12, 6)

	active, _ := g.app.CurrentSection()
	x := 80
	for _, id := range g.app.Shell.IDs() {
		tw := textWidth(id)
		if id == active {
			vector.DrawFilledRect(screen, float32(x-4), 4, float32(tw+8), navHeight-8, withAlpha(colorCyan, 0.35), false)
		}
		ebitenutil.DebugPrintAt(screen, id, x, 6)
		x += tw + 20
	}
}

// drawButton is the wormhole control. It glows with recent haptic energy.
func (g *Game) drawButton(screen *ebiten.Image) {
	next, ok := g.nextTarget()
	if !ok {
		return
	}
	bx, by := g.buttonOrigin()

	var bg color.NRGBA
	switch {
	case g.buttonPressed:
		bg = color.NRGBA{R: 60, G: 80, B: 120, A: 255}
	case g.buttonHovered:
		bg = color.NRGBA{R: 80, G: 100, B: 140, A: 255}
	default:
		bg = color.NRGBA{R: 100, G: 120, B: 160, A: 255}
	}
	glow := 0.0
	if g.tap != nil {
		glow = g.tap.Glow(glowFade)
	}
	if glow > 0 {
		pad := float32(6 * glow)
		vector.DrawFilledRect(screen, float32(bx)-pad, float32(by)-pad,
			buttonWidth+2*pad, buttonHeight+2*pad, withAlpha(colorMagenta, 0.5*glow), false)
	}
	vector.DrawFilledRect(screen, float32(bx), float32(by), buttonWidth, buttonHeight, bg, false)
	vector.StrokeRect(screen, float32(bx), float32(by), buttonWidth, buttonHeight, 2, lighten(colorBlue, 0.5+0.5*glow), false)

	label := "Enter: " + next
	ebitenutil.DebugPrintAt(screen, label, bx+(buttonWidth-textWidth(label))/2, by+(buttonHeight-16)/2)
}

func (g *Game) menuItemOrigin(i int) (int, int) {
	fx, fy := g.fabOrigin()
	n := len(g.app.Menu.Actions())
	return fx + fabSize - menuItemWidth, fy - (n-i)*(menuItemHeight+6)
}

func (g *Game) drawMenu(screen *ebiten.Image) {
	fx, fy := g.fabOrigin()
	r := float32(fabSize) / 2
	vector.DrawFilledCircle(screen, float32(fx)+r, float32(fy)+r, r, colorMagenta, true)
	ebitenutil.DebugPrintAt(screen, "+", fx+int(r)-3, fy+int(r)-8)
	if !g.app.Menu.Open() {
		return
	}
	for i, name := range g.app.Menu.Actions() {
		x, y := g.menuItemOrigin(i)
		vector.DrawFilledRect(screen, float32(x), float32(y), menuItemWidth, menuItemHeight, colorPanel, false)
		vector.StrokeRect(screen, float32(x), float32(y), menuItemWidth, menuItemHeight, 1, colorBorder, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d  %s", i+1, name), x+10, y+7)
	}
}

func (g *Game) drawToasts(screen *ebiten.Image) {
	for i, t := range g.app.Toasts.Active() {
		x := g.width - toastWidth - buttonMargin
		y := navHeight + 12 + i*(toastHeight+8)
		vector.DrawFilledRect(screen, float32(x), float32(y), toastWidth, toastHeight, colorPanel, false)
		vector.StrokeRect(screen, float32(x), float32(y), toastWidth, toastHeight, 1, colorCyan, false)
		ebitenutil.DebugPrintAt(screen, t.Title, x+10, y+6)
		ebitenutil.DebugPrintAt(screen, t.Body, x+10, y+22)
	}
}

func centered(screen *ebiten.Image, s string, width, y int) {
	ebitenutil.DebugPrintAt(screen, s, (width-textWidth(s))/2, y)
}
