package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events are delivered in emission
// order at the event stage's next SwapBuffers and DispatchAll: the same
// frame for stages that run before it, the next frame for the rest.
type Bus struct {
	mu       sync.Mutex // protects back and handlers
	front    []any
	back     []any
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make([]any, 0, 64),
		back:     make([]any, 0, 64),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

// Emit queues an event for the next dispatch.
func Emit[T any](b *Bus, event T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.back = append(b.back, event)
}

// Subscribe registers a handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers makes the events emitted since the last swap dispatchable
// and starts a fresh back buffer.
func (b *Bus) SwapBuffers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.front, b.back = b.back, b.front[:0]
}

// Pending returns the number of events waiting for the next swap.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.back)
}

// DispatchAll delivers the front buffer to subscribed handlers. Handlers may
// emit; those events wait for the next swap.
func (b *Bus) DispatchAll() {
	for _, ev := range b.front {
		b.mu.Lock()
		hs := b.handlers[reflect.TypeOf(ev)]
		b.mu.Unlock()
		for _, h := range hs {
			h(ev)
		}
	}
}
