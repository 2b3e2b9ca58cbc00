// Package observable provides a mutex-guarded value that notifies
// subscribers with a copy of every new state.
package observable

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Value holds a T and fans out every change to its subscribers.
//
// Subscribers run in subscription order, after the lock is released, so a
// subscriber may call back into Get or Set. Snapshots are delivered in the
// order their updates committed: one caller at a time drains the queue of
// pending snapshots, and updates made meanwhile (from other goroutines or
// from a subscriber) are delivered by that caller before it returns.
type Value[T any] struct {
	mu       sync.Mutex
	value    T
	clone    func(T) T
	subs     []subscriber[T]
	pending  []T
	draining bool
}

type subscriber[T any] struct {
	id string
	fn func(T)
}

// New returns a Value seeded with initial. clone copies a T so that callers
// never share backing arrays with the stored value; nil means T is copied by
// assignment.
func New[T any](initial T, clone func(T) T) *Value[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Value[T]{value: clone(initial), clone: clone}
}

// Get returns a copy of the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.clone(v.value)
}

// Set replaces the value and notifies subscribers.
func (v *Value[T]) Set(next T) {
	v.Update(func(T) T { return next })
}

// Update applies fn to the current value under the lock, stores the result
// and notifies subscribers with a copy of it. fn must not call back into v.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	v.value = v.clone(fn(v.value))
	snapshot := v.clone(v.value)
	v.pending = append(v.pending, v.clone(v.value))
	if v.draining {
		v.mu.Unlock()
		return snapshot
	}
	v.draining = true
	v.mu.Unlock()

	v.drain()
	return snapshot
}

// drain delivers pending snapshots until the queue is empty.
func (v *Value[T]) drain() {
	defer func() {
		if r := recover(); r != nil {
			v.mu.Lock()
			v.pending = nil
			v.draining = false
			v.mu.Unlock()
			panic(r)
		}
	}()

	for {
		v.mu.Lock()
		if len(v.pending) == 0 {
			v.draining = false
			v.mu.Unlock()
			return
		}
		next := v.pending[0]
		v.pending = v.pending[1:]
		subs := slices.Clone(v.subs)
		v.mu.Unlock()

		for _, s := range subs {
			s.fn(v.clone(next))
		}
	}
}

// Subscribe registers fn, invokes it immediately with the current value and
// returns a function that removes the subscription.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	id := uuid.NewString()

	v.mu.Lock()
	v.subs = append(v.subs, subscriber[T]{id: id, fn: fn})
	current := v.clone(v.value)
	v.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			for i, s := range v.subs {
				if s.id == id {
					v.subs = append(v.subs[:i:i], v.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Len returns the number of active subscribers.
func (v *Value[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}
