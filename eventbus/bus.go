// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.
//
// The randcast-node library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package eventbus is a typed topic -> subscribers registry, modeled
// on event.TypeMux (consensus/istanbul/backend/backend.go holds one
// per chain). Publish
// dispatches to every subscriber of an event's topic, in registration
// order, awaiting each in turn; a subscriber that returns an error is
// logged and otherwise ignored — failures never propagate to the
// publisher, and delivery is at-most-once with no replay.
package eventbus

import (
	"sync"

	"github.com/arpa-network/randcast-node/log"
)

var logger = log.NewModuleLogger(log.EventBus)

// Subscriber handles one Event. Implementations must be fast: anything
// resembling real work (signing, chain calls) belongs in a dynamic
// scheduler task spawned from inside Handle, not performed inline.
type Subscriber interface {
	Handle(event Event) error
}

// SubscriberFunc adapts a plain function to Subscriber.
type SubscriberFunc func(event Event) error

func (f SubscriberFunc) Handle(event Event) error { return f(event) }

// Bus is the process-wide (or per-chain) pub/sub registry. The zero
// value is not usable; construct with New.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Topic][]Subscriber
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{subscribers: make(map[Topic][]Subscriber)}
}

// Subscribe registers subscriber for topic. Subscribers are notified in
// the order they were registered.
func (b *Bus) Subscribe(topic Topic, subscriber Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], subscriber)
}

// Publish dispatches event to every subscriber registered for its
// topic, synchronously and in registration order. Subscriber errors are
// logged and swallowed.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subscribers[event.Topic()]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.Handle(event); err != nil {
			logger.Error("subscriber failed handling event",
				"topic", event.Topic(), "chainId", event.ChainID(), "err", err)
		}
	}
}

// PublishAsync dispatches event without blocking the caller. Listeners
// use this when they must not stall their own polling/subscription loop
// waiting for subscriber completion. Each call runs the subscriber list
// serially within its own goroutine, so no delivery order is guaranteed
// between separate PublishAsync calls, even on the same topic.
func (b *Bus) PublishAsync(event Event) {
	go b.Publish(event)
}
