package terminal

import (
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/nexus/internal/render"
)

// One terminal cell covers this many canvas pixels.
const (
	CellWidth  = 8
	CellHeight = 16
)

// Background is the page color particles are blended onto.
var Background = color.NRGBA{R: 0x0B, G: 0x0E, B: 0x1A, A: 0xFF}

type cell struct {
	glyph rune
	color tcell.Color
	set   bool
}

// CellSurface is a render.Surface backed by a grid of terminal cells. The
// render loop paints into the grid; the host copies it to the screen.
type CellSurface struct {
	mu         sync.Mutex
	cols, rows int
	cells      []cell
	gone       bool
}

func NewCellSurface(cols, rows int) *CellSurface {
	s := &CellSurface{}
	s.Resize(cols, rows)
	return s
}

func (s *CellSurface) Resize(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols, s.rows = max(cols, 0), max(rows, 0)
	s.cells = make([]cell, s.cols*s.rows)
}

// Size is in canvas pixels.
func (s *CellSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols * CellWidth, s.rows * CellHeight
}

func (s *CellSurface) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone {
		return render.ErrSurfaceGone
	}
	clear(s.cells)
	return nil
}

func (s *CellSurface) FillCircle(x, y, r float64, c color.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone {
		return render.ErrSurfaceGone
	}
	col, row := int(x/CellWidth), int(y/CellHeight)
	if x < 0 || y < 0 || col >= s.cols || row >= s.rows {
		return nil
	}
	s.cells[row*s.cols+col] = cell{glyph: glyphFor(r), color: blend(c, Background), set: true}
	return nil
}

// Release marks the surface gone; the render loop stops on its next frame.
func (s *CellSurface) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gone = true
	s.cells = nil
	s.cols, s.rows = 0, 0
}

// Blit copies painted cells onto screen using bg as the cell background.
func (s *CellSurface) Blit(screen tcell.Screen, bg tcell.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cells {
		if !c.set {
			continue
		}
		screen.SetContent(i%s.cols, i/s.cols, c.glyph, nil,
			tcell.StyleDefault.Foreground(c.color).Background(bg))
	}
}

// At returns the glyph painted at a cell, 0 when empty.
func (s *CellSurface) At(col, row int) rune {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return 0
	}
	return s.cells[row*s.cols+col].glyph
}

func glyphFor(r float64) rune {
	switch {
	case r < 1:
		return '·'
	case r < 2:
		return '•'
	default:
		return '●'
	}
}

// blend composites c over an opaque bg.
func blend(c color.Color, bg color.NRGBA) tcell.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	a := int32(n.A)
	mix := func(fg, b uint8) int32 {
		return (int32(fg)*a + int32(b)*(255-a)) / 255
	}
	return tcell.NewRGBColor(mix(n.R, bg.R), mix(n.G, bg.G), mix(n.B, bg.B))
}

func toTcell(c color.Color) tcell.Color {
	return blend(c, Background)
}
