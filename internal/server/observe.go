package server

import (
	"sync"

	"WaveDefence/internal/game"
)

const observerBuffer = 64

// Observers fans journal events out to /observe clients. Slow clients
// lose events rather than stall the hub.
type Observers struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan game.Event
	closed bool
}

func NewObservers() *Observers {
	return &Observers{subs: make(map[int]chan game.Event)}
}

var _ game.Journal = (*Observers)(nil)

func (o *Observers) Record(e game.Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, ch := range o.subs {
		select {
		case ch <- e:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of events and a function that releases it.
func (o *Observers) Subscribe() (<-chan game.Event, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ch := make(chan game.Event, observerBuffer)
	if o.closed {
		close(ch)
		return ch, func() {}
	}
	id := o.next
	o.next++
	o.subs[id] = ch
	return ch, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if c, ok := o.subs[id]; ok {
			delete(o.subs, id)
			close(c)
		}
	}
}

func (o *Observers) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

func (o *Observers) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	for id, ch := range o.subs {
		delete(o.subs, id)
		close(ch)
	}
}
