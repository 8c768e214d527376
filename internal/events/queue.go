package events

// Queue is the update channel between the drafting process and the monitor:
// many producers, one consumer, first-in-first-out. The consumer side is
// non-blocking so the monitoring loop can back off instead of parking on an
// empty queue.
type Queue struct {
	ch chan Event
}

const defaultCapacity = 1024

// NewQueue creates a bounded queue. capacity <= 0 uses the default.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{ch: make(chan Event, capacity)}
}

// Enqueue adds an event, blocking while the queue is full. Accepted events
// are never lost.
func (q *Queue) Enqueue(e Event) {
	q.ch <- e
}

// TryEnqueue adds an event without blocking. Returns false when the queue is
// full.
func (q *Queue) TryEnqueue(e Event) bool {
	select {
	case q.ch <- e:
		return true
	default:
		return false
	}
}

// TryDequeue removes the oldest event without blocking. Returns false when
// the queue is empty.
func (q *Queue) TryDequeue() (Event, bool) {
	select {
	case e := <-q.ch:
		return e, true
	default:
		return Event{}, false
	}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.ch)
}
