package render

import "sync"

// FrameQueue is a Scheduler drained by the host once per display tick.
// Callbacks requested while a flush is running land in the next flush.
type FrameQueue struct {
	mu      sync.Mutex
	next    FrameID
	pending map[FrameID]func()
	order   []FrameID
	closed  bool
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{pending: map[FrameID]func(){}}
}

func (q *FrameQueue) RequestFrame(fn func()) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || fn == nil {
		return 0
	}
	q.next++
	q.pending[q.next] = fn
	q.order = append(q.order, q.next)
	return q.next
}

func (q *FrameQueue) CancelFrame(id FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, id)
}

// Flush runs every callback queued before the call and returns how many ran.
func (q *FrameQueue) Flush() int {
	q.mu.Lock()
	order := q.order
	q.order = nil
	fns := make([]func(), 0, len(order))
	for _, id := range order {
		if fn, ok := q.pending[id]; ok {
			fns = append(fns, fn)
			delete(q.pending, id)
		}
	}
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Pending reports queued callbacks.
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close drops everything queued and refuses new requests.
func (q *FrameQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.pending = map[FrameID]func(){}
	q.order = nil
}
