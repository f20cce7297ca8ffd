// Package bus fans events out to registered listeners without ever blocking
// the publisher. Each listener gets its own unbounded queue drained by a
// dedicated goroutine, so a slow consumer delays only itself and events
// reach it strictly in publish order.
package bus

import (
	"sync"

	"github.com/1broseidon/dragsense/internal/event"
)

// Handle identifies a registered listener. Handles are monotonically
// increasing and never reused within a Bus lifetime.
type Handle uint64

// Listener receives events on the bus's delivery goroutine for this handle.
// It must not call back into the Bus.
type Listener func(event.Event)

type subscriber struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []event.Event
	closed bool
}

func newSubscriber() *subscriber {
	s := &subscriber{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *subscriber) push(ev event.Event) {
	s.mu.Lock()
	if !s.closed {
		s.queue = append(s.queue, ev)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

// drain delivers queued events to fn until close. The queue is swapped out
// under the lock and delivered outside it.
func (s *subscriber) drain(fn Listener) {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		batch := s.queue
		s.queue = nil
		closed := s.closed
		s.mu.Unlock()

		for _, ev := range batch {
			fn(ev)
		}
		if closed {
			return
		}
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Signal()
	s.mu.Unlock()
}

// Bus is a publish/subscribe fan-out. The zero value is not usable; call New.
type Bus struct {
	mu     sync.Mutex
	next   Handle
	subs   map[Handle]*subscriber
	wg     sync.WaitGroup
	closed bool
}

// New returns an empty Bus ready for listeners.
func New() *Bus {
	return &Bus{next: 1, subs: make(map[Handle]*subscriber)}
}

// Register adds a listener and starts its delivery goroutine. Events
// published before registration are not replayed.
func (b *Bus) Register(fn Listener) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0
	}
	h := b.next
	b.next++
	sub := newSubscriber()
	b.subs[h] = sub
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		sub.drain(fn)
	}()
	return h
}

// Unregister removes a listener. Events already queued for it are still
// delivered. Unknown handles return false.
func (b *Bus) Unregister(h Handle) bool {
	b.mu.Lock()
	sub, ok := b.subs[h]
	if ok {
		delete(b.subs, h)
	}
	b.mu.Unlock()
	if ok {
		sub.close()
	}
	return ok
}

// Publish enqueues ev for every current listener. It never blocks.
func (b *Bus) Publish(ev event.Event) {
	b.mu.Lock()
	subs := make([]*subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()
	for _, s := range subs {
		s.push(ev)
	}
}

// Close stops all delivery goroutines after their queues drain and waits
// for them to exit. Publish and Register after Close are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[Handle]*subscriber)
	b.mu.Unlock()

	for _, s := range subs {
		s.close()
	}
	b.wg.Wait()
}
