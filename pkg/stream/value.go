package stream

import (
	"sync"
	"sync/atomic"
)

type remover interface {
	remove(sub *Subscription)
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	// mu serializes deliveries to this observer.
	mu sync.Mutex

	fn     func(any)
	owner  remover
	active atomic.Bool

	// lastSeq is the sequence number of the last delivered value.
	lastSeq uint64
}

// Active reports whether the subscription still receives values.
func (s *Subscription) Active() bool {
	if s == nil {
		return false
	}
	return s.active.Load()
}

// Unsubscribe removes the subscription from its stream.
// Safe to call multiple times.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.owner.remove(s)
}

// deliver hands v to the observer unless it is stale or the
// subscription has been removed.
func (s *Subscription) deliver(seq uint64, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active.Load() || seq <= s.lastSeq {
		return
	}
	s.lastSeq = seq
	s.fn(v)
}

// Value is a hot, replaying single-value stream.
type Value[T any] struct {
	mu sync.Mutex

	current T
	seq     uint64
	subs    []*Subscription
	closed  bool
}

// NewValue creates a stream holding initial as its current value.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		seq:     1,
	}
}

// Current returns the most recently published value.
func (v *Value[T]) Current() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Len returns the number of active subscriptions.
func (v *Value[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// Subscribe registers fn and synchronously delivers the current value to it
// before returning. On a closed stream fn still receives the current value
// but the returned subscription is inactive.
func (v *Value[T]) Subscribe(fn func(T)) *Subscription {
	sub := &Subscription{
		fn:    func(x any) { fn(x.(T)) },
		owner: v,
	}
	// Hold the delivery lock until the replay has been handed over, so a
	// concurrent Publish cannot overtake it.
	sub.mu.Lock()

	v.mu.Lock()
	if !v.closed {
		sub.active.Store(true)
		v.subs = append(v.subs, sub)
	}
	seq, current := v.seq, v.current
	v.mu.Unlock()

	sub.lastSeq = seq
	sub.fn(current)
	sub.mu.Unlock()

	return sub
}

// Unsubscribe removes sub. Removing an unknown or already removed
// subscription is a no-op.
func (v *Value[T]) Unsubscribe(sub *Subscription) {
	if sub == nil || sub.owner != remover(v) {
		return
	}
	v.remove(sub)
}

func (v *Value[T]) remove(sub *Subscription) {
	// Deliveries from an earlier Publish snapshot check this flag.
	sub.active.Store(false)

	v.mu.Lock()
	defer v.mu.Unlock()

	for i, s := range v.subs {
		if s == sub {
			v.subs = append(v.subs[:i:i], v.subs[i+1:]...)
			return
		}
	}
}

// Publish stores value as current and notifies every observer registered at
// the time of the call, in registration order. Observers must not call
// Publish on the same stream from inside their callback.
func (v *Value[T]) Publish(value T) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.current = value
	v.seq++
	seq := v.seq
	subs := make([]*Subscription, len(v.subs))
	copy(subs, v.subs)
	v.mu.Unlock()

	for _, s := range subs {
		s.deliver(seq, value)
	}
}

// Close deactivates every subscription and turns later Publish calls into
// no-ops. A delivery already running when Close is called may complete.
// Safe to call multiple times, including from inside an observer.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.closed = true
	for _, s := range v.subs {
		s.active.Store(false)
	}
	v.subs = nil
}

// Closed reports whether Close has been called.
func (v *Value[T]) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
