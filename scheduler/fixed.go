// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.
//
// The randcast-node library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package scheduler holds two distinct scheduling primitives: Fixed,
// for stable named long-lived actors, and Dynamic (dynamic.go), for
// fire-and-forget per-event workers with optional shutdown
// supervision. They are kept as separate types rather than one
// parameterized scheduler, since their lifecycle and failure handling
// genuinely differ.
package scheduler

import (
	"context"
	"sync"

	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/log"
	"github.com/arpa-network/randcast-node/metrics"
)

var logger = log.NewModuleLogger(log.Scheduler)

// Task is the unit a Fixed scheduler runs: a function taking a
// cancelable context, returning when it observes cancellation (or
// fails permanently).
type Task func(ctx context.Context)

type fixedHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Fixed holds one handle per TaskKey. add fails with a TaskAlreadyExisted
// *errs.Error if the key is already present; abort cancels and removes
// it. Implementers must snapshot the caller's diagnostic logger Fields
// and re-install them inside the spawned goroutine — Add does this via
// fields.
type Fixed struct {
	mu    sync.Mutex
	tasks map[TaskKey]*fixedHandle
}

func NewFixed() *Fixed {
	return &Fixed{tasks: make(map[TaskKey]*fixedHandle)}
}

// Add registers and starts task under key. The supplied fields (if any)
// are the diagnostic context to carry into the task's goroutine.
func (f *Fixed) Add(key TaskKey, task Task, fields log.Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.tasks[key]; exists {
		return errs.New(errs.TaskAlreadyExisted, "scheduler.Fixed.Add", nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	handle := &fixedHandle{cancel: cancel, done: make(chan struct{})}
	f.tasks[key] = handle
	metrics.FixedTasksRunning.Set(float64(len(f.tasks)))

	taskLogger := logger.WithFields(fields)

	go func() {
		defer close(handle.done)
		taskLogger.Info("fixed task started", "key", key.String())
		task(ctx)
		taskLogger.Info("fixed task stopped", "key", key.String())
	}()
	return nil
}

// Abort cancels and removes the task registered under key, blocking
// until its goroutine has observed cancellation and returned.
func (f *Fixed) Abort(key TaskKey) error {
	f.mu.Lock()
	handle, ok := f.tasks[key]
	if ok {
		delete(f.tasks, key)
		metrics.FixedTasksRunning.Set(float64(len(f.tasks)))
	}
	f.mu.Unlock()

	if !ok {
		return errs.New(errs.TaskNotFound, "scheduler.Fixed.Abort", nil)
	}
	handle.cancel()
	<-handle.done
	return nil
}

// Keys returns the currently registered task keys, used by the
// management RPC's ListFixedTasks and the health endpoint.
func (f *Fixed) Keys() []TaskKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]TaskKey, 0, len(f.tasks))
	for k := range f.tasks {
		keys = append(keys, k)
	}
	return keys
}

// Len reports how many fixed tasks are currently running — the health
// endpoint is healthy iff Len() > 0.
func (f *Fixed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

// Join blocks until every currently registered task has returned. It
// does not prevent new tasks from being added concurrently; callers
// doing an orderly shutdown should stop adding tasks first.
func (f *Fixed) Join() {
	f.mu.Lock()
	handles := make([]*fixedHandle, 0, len(f.tasks))
	for _, h := range f.tasks {
		handles = append(handles, h)
	}
	f.mu.Unlock()

	for _, h := range handles {
		<-h.done
	}
}
