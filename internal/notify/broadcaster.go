// Package notify implements the process-wide cart change broadcast: a
// payload-less signal fired after every successful cart mutation, fanned out
// to any number of subscribers.
package notify

import "sync"

// subscriber channels are buffered by one slot. The signal carries no data,
// so a subscriber that has not drained its buffer simply coalesces pending
// signals into one — it will re-read the cart either way.
const subscriberBuffer = 1

// Broadcaster fans a change signal out to all current subscribers. Notify
// never blocks; delivery to slow subscribers is best-effort, matching the
// cart store's availability-first policy.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

// New creates an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan struct{})}
}

// Notify signals all current subscribers without blocking.
func (b *Broadcaster) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its signal channel plus a
// cancel function. Cancel is idempotent and must be called to release the
// subscription.
func (b *Broadcaster) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan struct{}, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
		})
	}
	return ch, cancel
}
