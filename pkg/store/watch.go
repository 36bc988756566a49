package store

import (
	"context"
	"sync"
	"time"
)

// Watcher is the change-notification surface a store exposes to
// observers. Each subscriber gets a signal channel; the returned cancel
// function detaches it. Signals are coalesced, never blocking a writer.
type Watcher interface {
	Watch() (<-chan struct{}, func())
}

// broadcaster fans out write notifications to live subscribers.
type broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]chan struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan struct{})}
}

func (b *broadcaster) Watch() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan struct{}, 1)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *broadcaster) notify() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Poller adapts a backend without push notification to the Watcher
// interface by signalling on a fixed interval. The polling goroutine is
// tied to ctx and stops with it; the ticker never outlives a subscriber.
type Poller struct {
	interval time.Duration
	bc       *broadcaster
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewPoller starts the interval loop immediately. A zero interval
// defaults to 30 seconds.
func NewPoller(ctx context.Context, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Poller{
		interval: interval,
		bc:       newBroadcaster(),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go p.loop(ctx)
	return p
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.bc.notify()
		}
	}
}

// Watch subscribes to interval ticks.
func (p *Poller) Watch() (<-chan struct{}, func()) {
	return p.bc.Watch()
}

// Stop ends the polling loop and waits for it to exit.
func (p *Poller) Stop() {
	p.cancel()
	<-p.done
}
