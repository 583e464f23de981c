// Package eventbus fans typed events out to registered handlers on a
// single dedicated dispatch worker that drains a bounded queue, so
// dispatch never blocks the transport's read goroutine and a panicking
// handler never aborts delivery to its siblings.
package eventbus

import (
	"reflect"
	"sync"

	"codeberg.org/algopatterns/gameinteractive/internal/logger"
)

// queueCapacity bounds the inbound event queue the dispatch worker drains.
const queueCapacity = 256

// Bus is a multi-producer/multi-consumer event dispatcher. Zero value is
// not usable; construct with New.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]func(any)

	queue chan any
	done  chan struct{}
	wg    sync.WaitGroup
}

// New starts a Bus with its dispatch worker running.
func New() *Bus {
	b := &Bus{
		handlers: make(map[reflect.Type][]func(any)),
		queue:    make(chan any, queueCapacity),
		done:     make(chan struct{}),
	}
	b.wg.Add(1)
	go b.run()
	return b
}

// run is the dedicated dispatch worker: it never runs on the transport's
// network goroutine, so a slow or misbehaving handler stalls reads only
// once the bounded queue has filled up.
// Events of the same type are handled in the order Publish was called.
func (b *Bus) run() {
	defer b.wg.Done()
	for {
		select {
		case event := <-b.queue:
			b.dispatch(event)
		case <-b.done:
			// drain what's already queued before exiting
			for {
				select {
				case event := <-b.queue:
					b.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) dispatch(event any) {
	t := reflect.TypeOf(event)

	b.mu.RLock()
	handlers := append([]func(any){}, b.handlers[t]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.invoke(h, event)
	}
}

// invoke calls a handler, recovering any panic so it never aborts
// dispatch to sibling handlers.
func (b *Bus) invoke(handler func(any), event any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event handler panicked", "event_type", reflect.TypeOf(event), "recovered", r)
		}
	}()
	handler(event)
}

// Publish enqueues event for asynchronous dispatch and returns once it is
// queued. When the bounded queue is full it blocks until the dispatch
// worker frees a slot or the bus is closed, so handlers that fall more
// than queueCapacity events behind stall the publisher. There is no
// ordering guarantee across unrelated events.
func (b *Bus) Publish(event any) {
	select {
	case <-b.done:
		return
	default:
	}

	select {
	case b.queue <- event:
	case <-b.done:
	}
}

// Subscribe registers handler for every event of type T, the generic
// analogue of registering by concrete event class or a base class — T is
// the concrete event struct type.
func Subscribe[T any](b *Bus, handler func(T)) {
	var zero T
	t := reflect.TypeOf(zero)

	wrapped := func(event any) {
		if typed, ok := event.(T); ok {
			handler(typed)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], wrapped)
}

// Close stops the dispatch worker after draining whatever is already
// queued. Further Publish calls are dropped.
func (b *Bus) Close() {
	close(b.done)
	b.wg.Wait()
}
