package visibility

import (
	"sync"

	"go.uber.org/zap"
)

// BoundsFunc reports a section's rectangle in page coordinates. ok is false
// while the section is not laid out yet; such a section stays pending and is
// never reported until it has bounds.
type BoundsFunc func() (r Rect, ok bool)

type Options struct {
	// Threshold is the fraction of the section's area that must be inside the
	// viewport. 0 means any overlap.
	Threshold float64
	// RootMargin grows the viewport on every side before intersecting.
	RootMargin float64
	// Once stops observing a section the first time it becomes visible. Its
	// map entry stays true.
	Once bool

	Name   string
	Logger *zap.Logger
}

type entry struct {
	bounds   BoundsFunc
	observed bool
	visible  bool
	ratio    float64
}

// Tracker turns viewport updates into visibility events and keeps the
// resulting Map. Subscribers get a copy of the map once per changed batch.
type Tracker struct {
	opts Options
	log  *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
	order   []string
	state   Map
	subs    map[int]func(Map)
	nextSub int
	closed  bool
}

func New(opts Options) *Tracker {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Name != "" {
		log = log.With(zap.String("observer", opts.Name))
	}
	return &Tracker{
		opts:    opts,
		log:     log.Named("visibility"),
		entries: map[string]*entry{},
		state:   Map{},
		subs:    map[int]func(Map){},
	}
}

// Observe starts tracking id. Observing an id again replaces its bounds.
func (t *Tracker) Observe(id string, bounds BoundsFunc) {
	if bounds == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if e, ok := t.entries[id]; ok {
		e.bounds = bounds
		return
	}
	t.entries[id] = &entry{bounds: bounds}
	t.order = append(t.order, id)
}

// Unobserve stops tracking id and drops it from the map.
func (t *Tracker) Unobserve(id string) {
	t.mu.Lock()
	_, tracked := t.entries[id]
	_, inMap := t.state[id]
	t.forget(id)
	var notify []func(Map)
	var snap Map
	if inMap {
		next := t.state.Clone()
		delete(next, id)
		t.state = next
		notify, snap = t.subscribers(), t.state.Clone()
	}
	t.mu.Unlock()

	if tracked || inMap {
		t.log.Debug("unobserved", zap.String("section", id))
	}
	for _, fn := range notify {
		fn(snap)
	}
}

func (t *Tracker) forget(id string) {
	delete(t.entries, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
}

// Update intersects every laid out section with viewport and returns the
// batch of events it applied. A section's first observation always produces
// an event; after that only changes do.
func (t *Tracker) Update(viewport Rect) []Event {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	root := viewport.Grow(t.opts.RootMargin)

	var events []Event
	var done []string
	for _, id := range t.order {
		e := t.entries[id]
		r, ok := e.bounds()
		if !ok {
			continue
		}
		ratio := 0.0
		if a := r.Area(); a > 0 {
			ratio = r.Intersect(root).Area() / a
		}
		vis := ratio > 0 && ratio >= t.opts.Threshold
		if !e.observed || vis != e.visible {
			events = append(events, Event{ID: id, Visible: vis, Ratio: ratio})
		}
		e.observed, e.visible, e.ratio = true, vis, ratio
		if vis && t.opts.Once {
			done = append(done, id)
		}
	}
	for _, id := range done {
		t.forget(id)
	}
	if len(events) == 0 {
		t.mu.Unlock()
		return nil
	}
	t.state = Reduce(t.state, events...)
	notify, snap := t.subscribers(), t.state.Clone()
	t.mu.Unlock()

	for _, ev := range events {
		t.log.Debug("intersection changed",
			zap.String("section", ev.ID),
			zap.Bool("visible", ev.Visible),
			zap.Float64("ratio", ev.Ratio))
	}
	for _, fn := range notify {
		fn(snap)
	}
	return events
}

func (t *Tracker) subscribers() []func(Map) {
	out := make([]func(Map), 0, len(t.subs))
	for i := 0; i < t.nextSub; i++ {
		if fn, ok := t.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

// Subscribe registers fn for every changed batch. The returned func removes it.
func (t *Tracker) Subscribe(fn func(Map)) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || fn == nil {
		return func() {}
	}
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}

// Snapshot returns a copy of the current map.
func (t *Tracker) Snapshot() Map {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

func (t *Tracker) Visible(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state[id]
}

// Ratio returns the last computed intersection ratio of an observed section.
func (t *Tracker) Ratio(id string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok || !e.observed {
		return 0, false
	}
	return e.ratio, true
}

// Observed reports whether id is still being watched.
func (t *Tracker) Observed(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[id]
	return ok
}

// Close detaches every observation and subscriber. The last map stays
// readable through Snapshot.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.entries = map[string]*entry{}
	t.order = nil
	t.subs = map[int]func(Map){}
}
