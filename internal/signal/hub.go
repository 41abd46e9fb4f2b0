// Package signal fans a value out to subscribers. Engines embed a Hub and
// emit their persistable snapshot after every committed change.
package signal

import "sync"

// Hub is a list of listeners for values of type T. The zero value is ready to use.
type Hub[T any] struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]func(T)
	order     []uint64
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (h *Hub[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	h.mu.Lock()
	if h.listeners == nil {
		h.listeners = map[uint64]func(T){}
	}
	h.nextID++
	id := h.nextID
	h.listeners[id] = fn
	h.order = append(h.order, id)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub[T]) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.listeners, id)
	for i, existing := range h.order {
		if existing == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Emit calls every listener in subscription order. Listeners may subscribe or
// unsubscribe while being called; such changes apply from the next Emit.
func (h *Hub[T]) Emit(value T) {
	h.mu.Lock()
	fns := make([]func(T), 0, len(h.order))
	for _, id := range h.order {
		fns = append(fns, h.listeners[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// Len reports the number of listeners.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}
