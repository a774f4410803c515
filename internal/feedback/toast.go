package feedback

import (
	"sync"
	"time"
)

type Toast struct {
	Title   string
	Body    string
	Expires time.Time
}

// Toasts is the in-app notification stack drawn by the hosts.
type Toasts struct {
	mu    sync.Mutex
	ttl   time.Duration
	max   int
	now   func() time.Time
	items []Toast
}

func NewToasts(ttl time.Duration) *Toasts {
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	return &Toasts{ttl: ttl, max: 3, now: time.Now}
}

// Notify pushes a toast; the oldest one is dropped past the stack limit.
func (t *Toasts) Notify(title, body string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, Toast{Title: title, Body: body, Expires: t.now().Add(t.ttl)})
	if len(t.items) > t.max {
		t.items = append([]Toast(nil), t.items[len(t.items)-t.max:]...)
	}
}

// Active prunes expired toasts and returns the rest, oldest first.
func (t *Toasts) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	kept := t.items[:0]
	for _, it := range t.items {
		if now.Before(it.Expires) {
			kept = append(kept, it)
		}
	}
	t.items = kept
	return append([]Toast(nil), kept...)
}
