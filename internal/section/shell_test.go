package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/nexus/internal/visibility"
)

func abc() []Section {
	return []Section{
		{ID: "A", Height: 1},
		{ID: "B", Height: 1},
		{ID: "C", Height: 1},
	}
}

func TestShouldRender_Lookahead(t *testing.T) {
	ids := []string{"A", "B", "C"}
	vis := visibility.Map{"B": true}

	assert.True(t, ShouldRender(0, ids, vis), "first section always renders")
	assert.True(t, ShouldRender(1, ids, vis))
	assert.True(t, ShouldRender(2, ids, vis), "predecessor B is visible")

	// C being visible never drags A in; A renders only because it is first.
	vis = visibility.Map{"C": true}
	assert.False(t, ShouldRender(1, ids, vis))
	assert.True(t, ShouldRender(2, ids, vis))

	assert.False(t, ShouldRender(3, ids, vis))
	assert.False(t, ShouldRender(-1, ids, vis))
}

func TestShouldRender_NothingVisible(t *testing.T) {
	s := NewShell(abc(), 1000, 800, ShellOptions{})
	assert.Equal(t, []string{"A"}, s.Rendered(nil))
	assert.False(t, s.ShouldRender("unknown", nil))
}

func TestShell_RenderedInOrder(t *testing.T) {
	s := NewShell(abc(), 1000, 800, ShellOptions{})
	assert.Equal(t, []string{"A", "B", "C"}, s.Rendered(visibility.Map{"B": true}))
	assert.Equal(t, []string{"A", "B"}, s.Rendered(visibility.Map{"A": true}))
}

func TestShell_Layout(t *testing.T) {
	secs := abc()
	secs[1].Height = 1.5
	s := NewShell(secs, 1000, 800, ShellOptions{})

	r, ok := s.Bounds("B")
	require.True(t, ok)
	assert.Equal(t, visibility.Rect{X: 0, Y: 800, W: 1000, H: 1200}, r)
	r, _ = s.Bounds("C")
	assert.Equal(t, 2000.0, r.Y)
	assert.Equal(t, 2800.0, s.TotalHeight())

	_, ok = s.Bounds("nope")
	assert.False(t, ok)

	s.Resize(500, 400)
	r, _ = s.Bounds("C")
	assert.Equal(t, visibility.Rect{X: 0, Y: 1000, W: 500, H: 400}, r)
}

func TestShell_ZeroViewportSectionsNotLaidOut(t *testing.T) {
	s := NewShell(abc(), 0, 0, ShellOptions{})
	_, ok := s.BoundsFunc("A")()
	assert.False(t, ok)
}

func TestShell_ActiveNextPrev(t *testing.T) {
	s := NewShell(abc(), 1000, 800, ShellOptions{})
	vis := visibility.Map{"B": true, "C": true}

	id, ok := s.Active(vis)
	require.True(t, ok)
	assert.Equal(t, "B", id)

	next, ok := s.Next(vis)
	require.True(t, ok)
	assert.Equal(t, "C", next)
	prev, ok := s.Prev(vis)
	require.True(t, ok)
	assert.Equal(t, "A", prev)

	_, ok = s.Prev(visibility.Map{"A": true})
	assert.False(t, ok)
	_, ok = s.Next(visibility.Map{"C": true})
	assert.False(t, ok)
	_, ok = s.Next(nil)
	assert.False(t, ok)
}

func TestShell_ScrollToConverges(t *testing.T) {
	s := NewShell(abc(), 1000, 800, ShellOptions{})
	require.NoError(t, s.ScrollTo("B"))
	assert.True(t, s.Scrolling())

	moved := false
	for i := 0; i < 600 && s.Scrolling(); i++ {
		if s.Step() {
			moved = true
		}
		assert.GreaterOrEqual(t, s.Scroll(), 0.0)
		assert.LessOrEqual(t, s.Scroll(), 1600.0)
	}
	assert.True(t, moved)
	assert.False(t, s.Scrolling())
	assert.Equal(t, 800.0, s.Scroll())
	assert.Equal(t, visibility.Rect{X: 0, Y: 800, W: 1000, H: 800}, s.Viewport())
}

func TestShell_ScrollToClampsToEnd(t *testing.T) {
	secs := abc()
	secs[2].Height = 0.5
	s := NewShell(secs, 1000, 800, ShellOptions{})
	require.NoError(t, s.ScrollTo("C"))
	for i := 0; i < 600 && s.Scrolling(); i++ {
		s.Step()
	}
	assert.Equal(t, 1200.0, s.Scroll(), "last section cannot scroll past the page end")
}

func TestShell_ScrollToUnknown(t *testing.T) {
	s := NewShell(abc(), 1000, 800, ShellOptions{})
	assert.ErrorIs(t, s.ScrollTo("Z"), ErrUnknownSection)
	assert.False(t, s.Scrolling())
}

func TestShell_ScrollToCurrentIsNoop(t *testing.T) {
	s := NewShell(abc(), 1000, 800, ShellOptions{})
	require.NoError(t, s.ScrollTo("A"))
	assert.False(t, s.Scrolling())
	assert.False(t, s.Step())
}

func TestShell_ScrollByCancelsAnimation(t *testing.T) {
	s := NewShell(abc(), 1000, 800, ShellOptions{})
	require.NoError(t, s.ScrollTo("C"))
	s.Step()
	s.ScrollBy(-10000)
	assert.False(t, s.Scrolling())
	assert.Equal(t, 0.0, s.Scroll())

	s.ScrollBy(99999)
	assert.Equal(t, 1600.0, s.Scroll())
}

func TestShell_DrivesTracker(t *testing.T) {
	s := NewShell(abc(), 1000, 800, ShellOptions{})
	tr := visibility.New(visibility.Options{Threshold: 0.1})
	for _, id := range s.IDs() {
		tr.Observe(id, s.BoundsFunc(id))
	}

	tr.Update(s.Viewport())
	assert.Equal(t, []string{"A", "B"}, s.Rendered(tr.Snapshot()))

	s.ScrollBy(800)
	tr.Update(s.Viewport())
	assert.Equal(t, []string{"A", "B", "C"}, s.Rendered(tr.Snapshot()))
	assert.False(t, tr.Visible("A"))
}

func TestParallax(t *testing.T) {
	o := ParallaxObject{X: 50, Y: 10, Speed: 0.1}
	assert.InDelta(t, 30.0, o.Offset(300), 1e-9)
	x, y := o.Position(1000, 800, 600, 300)
	assert.Equal(t, 400.0, x)
	assert.InDelta(t, 1090.0, y, 1e-9)
}
