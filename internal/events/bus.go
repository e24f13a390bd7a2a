// Package events implements the in-process broadcast bus that carries
// extension events from the ingestion endpoint to its consumers.
//
// Every subscriber owns a bounded backlog. Publish never blocks: when a
// subscriber's backlog is full its oldest undelivered event is discarded to
// make room, and the subscriber's drop counter is incremented. Each
// subscriber sees events in publish order, starting with the first event
// published after it subscribed.
package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrClosed is returned once the bus or the subscription is closed and nothing is left to receive.
	ErrClosed = errors.New("events: closed")
	// ErrAlreadySubscribed is returned when a consumer name already holds an active subscription.
	ErrAlreadySubscribed = errors.New("events: consumer already subscribed")
)

// Bus fans out published values to all attached subscriptions.
type Bus[T any] struct {
	name    string
	backlog int

	mu     sync.RWMutex
	subs   map[string]*Subscription[T]
	closed bool
}

// NewBus creates a bus whose subscribers each buffer up to backlog undelivered values.
func NewBus[T any](name string, backlog int) *Bus[T] {
	if backlog < 1 {
		backlog = 1
	}
	return &Bus[T]{name: name, backlog: backlog, subs: make(map[string]*Subscription[T])}
}

// Name returns the bus name used in metrics and logs.
func (b *Bus[T]) Name() string { return b.name }

// Publish delivers evt to every current subscriber without blocking and
// returns how many subscribers it reached. With no subscribers it is a no-op.
func (b *Bus[T]) Publish(evt T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0
	}
	for _, s := range b.subs {
		s.offer(evt)
	}
	publishedTotal.WithLabelValues(b.name).Inc()
	return len(b.subs)
}

// Subscribe attaches a new subscription for consumer.
func (b *Bus[T]) Subscribe(consumer string) (*Subscription[T], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	if _, ok := b.subs[consumer]; ok {
		return nil, ErrAlreadySubscribed
	}
	s := &Subscription[T]{
		bus:      b,
		consumer: consumer,
		buf:      make([]T, b.backlog),
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	b.subs[consumer] = s
	subscribersGauge.WithLabelValues(b.name).Set(float64(len(b.subs)))
	return s, nil
}

// Subscribers returns the number of attached subscriptions.
func (b *Bus[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close detaches every subscription and rejects further subscribers.
// Subscribers can still drain what is already in their backlog.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for name, s := range b.subs {
		s.shut()
		delete(b.subs, name)
	}
	subscribersGauge.WithLabelValues(b.name).Set(0)
}

func (b *Bus[T]) detach(s *Subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.subs[s.consumer]; ok && cur == s {
		delete(b.subs, s.consumer)
		subscribersGauge.WithLabelValues(b.name).Set(float64(len(b.subs)))
	}
}

// Subscription is one consumer's receive handle and backlog.
type Subscription[T any] struct {
	bus      *Bus[T]
	consumer string

	mu   sync.Mutex
	buf  []T // ring; len(buf) is the backlog bound
	head int
	size int

	ready    chan struct{} // signalled after each offer
	done     chan struct{} // closed by shut
	shutOnce sync.Once
	dropped  atomic.Uint64
}

// Consumer returns the name the subscription was registered under.
func (s *Subscription[T]) Consumer() string { return s.consumer }

func (s *Subscription[T]) offer(evt T) {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return
	default:
	}
	c := len(s.buf)
	if s.size == c {
		// Drop the oldest undelivered value.
		var zero T
		s.buf[s.head] = zero
		s.head = (s.head + 1) % c
		s.size--
		s.dropped.Add(1)
		droppedTotal.WithLabelValues(s.bus.name, s.consumer).Inc()
	}
	s.buf[(s.head+s.size)%c] = evt
	s.size++
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) pop() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.size == 0 {
		return zero, false
	}
	v := s.buf[s.head]
	s.buf[s.head] = zero
	s.head = (s.head + 1) % len(s.buf)
	s.size--
	return v, true
}

// TryRecv returns the next value if one is buffered.
func (s *Subscription[T]) TryRecv() (T, bool) {
	return s.pop()
}

// Recv blocks until a value is available, ctx is done, or the subscription
// is closed with nothing left to deliver.
func (s *Subscription[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	for {
		if v, ok := s.pop(); ok {
			return v, nil
		}
		select {
		case <-s.ready:
		case <-s.done:
			if v, ok := s.pop(); ok {
				return v, nil
			}
			return zero, ErrClosed
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Pending returns the number of buffered, undelivered values.
func (s *Subscription[T]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Dropped returns how many values were discarded because the backlog was full.
func (s *Subscription[T]) Dropped() uint64 { return s.dropped.Load() }

// Close detaches the subscription. The consumer name becomes available again.
func (s *Subscription[T]) Close() {
	s.bus.detach(s)
	s.shut()
}

func (s *Subscription[T]) shut() {
	s.shutOnce.Do(func() { close(s.done) })
}
