// Package live implements the reactive query layer: collections publish a
// changed signal on every mutation, and subscribers re-run their query
// function on any signal from collections they registered against. Coarse
// invalidation (re-run on any write to a watched collection, not just
// relevant ones) is the accepted design given the tiny per-process data
// volumes involved.
package live

import (
	"context"
	"sync"
)

// Collection names one logical collection of the store for change signaling.
type Collection string

const (
	Notes        Collection = "notes"
	Media        Collection = "media"
	Tags         Collection = "tags"
	Transactions Collection = "transactions"
	Categories   Collection = "categories"
	Accounts     Collection = "accounts"
	Countdowns   Collection = "countdowns"
)

// Bus fans mutation signals out to live-query subscriptions.
type Bus struct {
	mu     sync.Mutex
	subs   map[uint64]*listener
	nextID uint64
}

type listener struct {
	cols map[Collection]struct{}
	// dirty coalesces pending signals: a subscriber that is already marked
	// dirty needs no second mark.
	dirty chan struct{}
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*listener)}
}

// Publish marks every subscription registered against any of the given
// collections dirty. It never blocks.
func (b *Bus) Publish(cols ...Collection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.subs {
		for _, c := range cols {
			if _, ok := l.cols[c]; !ok {
				continue
			}
			select {
			case l.dirty <- struct{}{}:
			default:
			}
			break
		}
	}
}

func (b *Bus) register(cols []Collection) (uint64, *listener) {
	l := &listener{cols: make(map[Collection]struct{}, len(cols)), dirty: make(chan struct{}, 1)}
	for _, c := range cols {
		l.cols[c] = struct{}{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[id] = l
	return id, l
}

func (b *Bus) unregister(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Result is one delivery of a live query: the query's value or the error its
// evaluation returned.
type Result[T any] struct {
	Value T
	Err   error
}

// Subscription is a cancelable live query. Results are read from Results();
// Close stops further deliveries.
type Subscription[T any] struct {
	bus       *Bus
	id        uint64
	results   chan Result[T]
	done      chan struct{}
	closeOnce sync.Once
}

// Results returns the delivery channel. The initial result is available
// immediately after Subscribe returns; a fresh result arrives after every
// mutation of a registered collection. The channel closes after Close.
func (s *Subscription[T]) Results() <-chan Result[T] {
	return s.results
}

// Close cancels the subscription. No result is delivered after Close
// returns; an in-flight re-evaluation is discarded rather than delivered.
func (s *Subscription[T]) Close() {
	s.closeOnce.Do(func() {
		s.bus.unregister(s.id)
		close(s.done)
	})
}

// Subscribe registers query against the given collections and returns a
// subscription whose initial result is already computed and buffered.
// Deliveries to a single subscriber are causally ordered: an older result is
// dropped, never delivered after a newer one.
func Subscribe[T any](bus *Bus, query func(context.Context) (T, error), cols ...Collection) *Subscription[T] {
	id, l := bus.register(cols)
	s := &Subscription[T]{
		bus:     bus,
		id:      id,
		results: make(chan Result[T], 1),
		done:    make(chan struct{}),
	}

	v, err := query(context.Background())
	s.results <- Result[T]{Value: v, Err: err}

	go s.loop(l, query)
	return s
}

func (s *Subscription[T]) loop(l *listener, query func(context.Context) (T, error)) {
	defer close(s.results)
	for {
		select {
		case <-s.done:
			return
		case <-l.dirty:
		}

		v, err := query(context.Background())
		if !s.deliver(Result[T]{Value: v, Err: err}) {
			return
		}
	}
}

// deliver hands a result to the subscriber, replacing an undelivered stale
// one so the consumer always observes the latest state. Returns false when
// the subscription closed mid-delivery.
func (s *Subscription[T]) deliver(r Result[T]) bool {
	for {
		select {
		case <-s.done:
			return false
		case s.results <- r:
			return true
		default:
		}
		// Buffer full: drop the stale undelivered result and retry.
		select {
		case <-s.results:
		default:
		}
	}
}
