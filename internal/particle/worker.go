package particle

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Request asks the worker for the next frame of a canvas of the given size.
type Request struct {
	Width, Height float64
}

// Snapshot is a full copy of the field after one worker step.
type Snapshot struct {
	Width, Height float64
	Seq           uint64
	Particles     Set
}

// Worker runs the simulation on its own goroutine. The UI side posts
// Requests and reads Snapshots; both channels hold a single message and a
// newer message replaces an unread one, so neither side ever blocks on the
// other.
type Worker struct {
	sim *Simulator
	log *zap.Logger

	inbox  chan Request
	outbox chan Snapshot
	done   chan struct{}
	once   sync.Once

	// owned by Run
	set           Set
	width, height float64
	sized         bool
	seq           uint64
}

func NewWorker(sim *Simulator, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		sim:    sim,
		log:    logger.Named("particle-worker"),
		inbox:  make(chan Request, 1),
		outbox: make(chan Snapshot, 1),
		done:   make(chan struct{}),
	}
}

// Post queues a request, replacing any request the worker has not picked up
// yet. Posting after Close is a no-op.
func (w *Worker) Post(r Request) {
	for {
		select {
		case <-w.done:
			return
		case w.inbox <- r:
			return
		default:
		}
		select {
		case <-w.inbox:
		default:
		}
	}
}

// Snapshots is closed when Run returns.
func (w *Worker) Snapshots() <-chan Snapshot {
	return w.outbox
}

// Run processes requests until ctx is cancelled or Close is called. It must
// be called at most once.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.outbox)
	w.log.Debug("worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("worker cancelled")
			return nil
		case <-w.done:
			w.log.Debug("worker closed")
			return nil
		case r := <-w.inbox:
			w.publish(w.step(r))
		}
	}
}

// Close stops Run. It is safe to call more than once.
func (w *Worker) Close() {
	w.once.Do(func() { close(w.done) })
}

func (w *Worker) step(r Request) Snapshot {
	if !w.sized || r.Width != w.width || r.Height != w.height {
		w.set = w.sim.Resize(r.Width, r.Height)
		w.width, w.height, w.sized = r.Width, r.Height, true
		w.log.Debug("field regenerated",
			zap.Float64("width", r.Width),
			zap.Float64("height", r.Height),
			zap.Int("count", len(w.set)))
	} else {
		w.set = Advance(w.set, w.width, w.height)
	}
	w.seq++
	return Snapshot{
		Width:     w.width,
		Height:    w.height,
		Seq:       w.seq,
		Particles: w.set.Clone(),
	}
}

func (w *Worker) publish(s Snapshot) {
	for {
		select {
		case w.outbox <- s:
			return
		default:
		}
		select {
		case <-w.outbox:
		default:
		}
	}
}

// Mailbox keeps the most recent snapshot read from a worker for the render
// side. Poll drains whatever arrived since the last call.
type Mailbox struct {
	mu     sync.Mutex
	ch     <-chan Snapshot
	latest Snapshot
}

func NewMailbox(ch <-chan Snapshot) *Mailbox {
	return &Mailbox{ch: ch}
}

// Poll returns the latest snapshot and whether a new one arrived.
func (m *Mailbox) Poll() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fresh := false
	for {
		select {
		case s, ok := <-m.ch:
			if !ok {
				m.ch = nil
				return m.latest, fresh
			}
			m.latest = s
			fresh = true
		default:
			return m.latest, fresh
		}
	}
}

// Particles returns the particles of the latest snapshot.
func (m *Mailbox) Particles() Set {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest.Particles
}
