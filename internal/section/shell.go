// Package section composes the page: an ordered run of sections stacked
// vertically, lookahead mounting driven by visibility, and smooth scrolling
// between sections.
package section

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/charmbracelet/harmonica"
	"go.uber.org/zap"

	"github.com/iburimskiy/nexus/internal/visibility"
)

var ErrUnknownSection = errors.New("section: unknown section")

// settle thresholds for the scroll spring, in px and px/frame
const (
	settleDistance = 0.5
	settleVelocity = 0.5
)

type ShellOptions struct {
	FPS       int
	Frequency float64
	Damping   float64
	Logger    *zap.Logger
}

// Shell lays sections out top to bottom and owns the page scroll offset.
type Shell struct {
	mu       sync.Mutex
	sections []Section
	index    map[string]int
	tops     []float64
	heights  []float64
	width    float64
	viewH    float64

	spring    harmonica.Spring
	scroll    float64
	velocity  float64
	target    float64
	animating bool

	log *zap.Logger
}

func NewShell(sections []Section, width, viewportHeight float64, opts ShellOptions) *Shell {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Frequency <= 0 {
		opts.Frequency = 6
	}
	if opts.Damping <= 0 {
		opts.Damping = 1
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Shell{
		sections: append([]Section(nil), sections...),
		index:    make(map[string]int, len(sections)),
		spring:   harmonica.NewSpring(harmonica.FPS(opts.FPS), opts.Frequency, opts.Damping),
		log:      log.Named("shell"),
	}
	for i, sec := range s.sections {
		s.index[sec.ID] = i
	}
	s.layout(width, viewportHeight)
	return s
}

// Resize recomputes layout for a new viewport and keeps the scroll in range.
func (s *Shell) Resize(width, viewportHeight float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout(width, viewportHeight)
	s.scroll = s.clamp(s.scroll)
	s.target = s.clamp(s.target)
}

func (s *Shell) layout(width, viewH float64) {
	s.width = math.Max(width, 0)
	s.viewH = math.Max(viewH, 0)
	s.tops = make([]float64, len(s.sections))
	s.heights = make([]float64, len(s.sections))
	y := 0.0
	for i, sec := range s.sections {
		h := sec.Height
		if h <= 0 {
			h = 1
		}
		s.tops[i] = y
		s.heights[i] = h * s.viewH
		y += s.heights[i]
	}
}

func (s *Shell) Sections() []Section {
	return s.sections
}

// IDs returns section ids in page order.
func (s *Shell) IDs() []string {
	out := make([]string, len(s.sections))
	for i, sec := range s.sections {
		out[i] = sec.ID
	}
	return out
}

func (s *Shell) TotalHeight() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total()
}

func (s *Shell) total() float64 {
	if len(s.tops) == 0 {
		return 0
	}
	last := len(s.tops) - 1
	return s.tops[last] + s.heights[last]
}

// Bounds reports the page rectangle of a section. It has the
// visibility.BoundsFunc shape once bound to an id with BoundsFunc.
func (s *Shell) Bounds(id string) (visibility.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok || s.heights[i] <= 0 {
		return visibility.Rect{}, false
	}
	return visibility.Rect{X: 0, Y: s.tops[i], W: s.width, H: s.heights[i]}, true
}

func (s *Shell) BoundsFunc(id string) visibility.BoundsFunc {
	return func() (visibility.Rect, bool) { return s.Bounds(id) }
}

// Viewport is the visible page rectangle at the current scroll offset.
func (s *Shell) Viewport() visibility.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return visibility.Rect{X: 0, Y: s.scroll, W: s.width, H: s.viewH}
}

// ShouldRender decides whether section i mounts its full content: the first
// section always does, any other one when it or its predecessor is visible.
func ShouldRender(i int, ids []string, vis visibility.Map) bool {
	if i < 0 || i >= len(ids) {
		return false
	}
	if i == 0 {
		return true
	}
	return vis[ids[i]] || vis[ids[i-1]]
}

// ShouldRender is the package func over this shell's order.
func (s *Shell) ShouldRender(id string, vis visibility.Map) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	return ShouldRender(i, s.IDs(), vis)
}

// Rendered lists the ids that mount full content, in page order.
func (s *Shell) Rendered(vis visibility.Map) []string {
	ids := s.IDs()
	out := make([]string, 0, len(ids))
	for i, id := range ids {
		if ShouldRender(i, ids, vis) {
			out = append(out, id)
		}
	}
	return out
}

// Active is the first visible section in page order.
func (s *Shell) Active(vis visibility.Map) (string, bool) {
	for _, sec := range s.sections {
		if vis[sec.ID] {
			return sec.ID, true
		}
	}
	return "", false
}

// Next returns the section after the active one.
func (s *Shell) Next(vis visibility.Map) (string, bool) {
	return s.neighbour(vis, 1)
}

// Prev returns the section before the active one.
func (s *Shell) Prev(vis visibility.Map) (string, bool) {
	return s.neighbour(vis, -1)
}

func (s *Shell) neighbour(vis visibility.Map, step int) (string, bool) {
	id, ok := s.Active(vis)
	if !ok {
		return "", false
	}
	j := s.index[id] + step
	if j < 0 || j >= len(s.sections) {
		return "", false
	}
	return s.sections[j].ID, true
}

// ScrollTo starts a smooth scroll that brings the top of id to the top of
// the viewport, clamped to the scrollable range.
func (s *Shell) ScrollTo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, id)
	}
	s.target = s.clamp(s.tops[i])
	s.animating = s.target != s.scroll
	s.log.Debug("scroll to section",
		zap.String("section", id),
		zap.Float64("from", s.scroll),
		zap.Float64("to", s.target))
	return nil
}

// ScrollBy moves the page immediately and cancels any running animation.
func (s *Shell) ScrollBy(dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll = s.clamp(s.scroll + dy)
	s.target = s.scroll
	s.velocity = 0
	s.animating = false
}

// Step advances the scroll animation one frame and reports whether the
// offset moved.
func (s *Shell) Step() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.animating {
		return false
	}
	prev := s.scroll
	s.scroll, s.velocity = s.spring.Update(s.scroll, s.velocity, s.target)
	if math.Abs(s.scroll-s.target) < settleDistance && math.Abs(s.velocity) < settleVelocity {
		s.scroll, s.velocity, s.animating = s.target, 0, false
	}
	s.scroll = s.clamp(s.scroll)
	return s.scroll != prev
}

func (s *Shell) Scrolling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animating
}

func (s *Shell) Scroll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scroll
}

func (s *Shell) clamp(y float64) float64 {
	hi := math.Max(s.total()-s.viewH, 0)
	return math.Min(math.Max(y, 0), hi)
}
