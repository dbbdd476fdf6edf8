package engine

import "sync"

// eventQueue decouples producer workers from the consumer: pushes never
// block, so a slow consumer can not stall a semaphore-gated worker. A relay
// goroutine drains the queue into the output channel in push order.
type eventQueue struct {
	mu     sync.Mutex
	items  []Event
	closed bool
	notify chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{notify: make(chan struct{}, 1)}
}

func (q *eventQueue) push(ev Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.wake()
}

// close marks the queue finished; the relay exits after draining.
func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *eventQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// relay drains the queue into out until the queue is closed and empty, then
// closes out.
func (q *eventQueue) relay(out chan<- Event) {
	defer close(out)
	for {
		q.mu.Lock()
		batch := q.items
		q.items = nil
		closed := q.closed
		q.mu.Unlock()

		for _, ev := range batch {
			out <- ev
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.notify
	}
}
