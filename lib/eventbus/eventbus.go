// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventbus is a small synchronous publish/subscribe bus that
// lets the source notify the engine of identity changes without either
// package importing the other.
package eventbus

import "sync"

// Event is anything published on a Bus. Subscribers switch on the
// concrete type.
type Event interface {
	event()
}

// SourceUpdated is published after the source's identifier or custom
// properties change. Snapshot is the new serialized source.
type SourceUpdated struct {
	Snapshot []byte
}

func (SourceUpdated) event() {}

// Bus delivers events to subscribers in subscription order. The zero
// value is ready to use.
type Bus struct {
	mu          sync.Mutex
	next        uint64
	subscribers []subscriber
}

type subscriber struct {
	id      uint64
	handler func(Event)
}

// Subscribe registers handler and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (b *Bus) Subscribe(handler func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	id := b.next
	b.subscribers = append(b.subscribers, subscriber{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subscribers {
			if s.id == id {
				b.subscribers = append(b.subscribers[:i:i], b.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Publish calls every subscriber with event on the calling goroutine.
// Handlers must not block; the engine's handler only enqueues work.
// Handlers may subscribe or unsubscribe during delivery; the change
// applies to the next Publish.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	handlers := make([]func(Event), len(b.subscribers))
	for i, s := range b.subscribers {
		handlers[i] = s.handler
	}
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}
