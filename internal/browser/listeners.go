package browser

import (
	"sync"

	"github.com/google/uuid"
)

// listeners is a registry of callbacks keyed by subscription id.
type listeners[T any] struct {
	mu    sync.Mutex
	order []string
	fns   map[string]func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	id := uuid.NewString()

	l.mu.Lock()
	if l.fns == nil {
		l.fns = make(map[string]func(T))
	}
	l.fns[id] = fn
	l.order = append(l.order, id)
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, ok := l.fns[id]; !ok {
			return
		}
		delete(l.fns, id)
		for i, o := range l.order {
			if o == id {
				l.order = append(l.order[:i:i], l.order[i+1:]...)
				break
			}
		}
	}
}

// emit calls every listener outside the lock, in registration order.
func (l *listeners[T]) emit(v T) {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.order))
	for _, id := range l.order {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (l *listeners[T]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}
