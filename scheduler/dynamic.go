// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

package scheduler

import (
	"sync"
	"time"

	"github.com/hashicorp/go-uuid"

	"github.com/arpa-network/randcast-node/log"
	"github.com/arpa-network/randcast-node/metrics"
)

// DefaultShutdownCheckFrequency is the fixed interval used for dynamic
// worker shutdown checks absent any other configuration.
const DefaultShutdownCheckFrequency = 2000 * time.Millisecond

// ShutdownPredicate is polled by a Dynamic monitor goroutine; when it
// returns true, the worker it is paired with is aborted. This is the
// mechanism by which a superseded DKG run (a newer (index, epoch) task
// arriving) is guaranteed not to race the run that replaces it.
type ShutdownPredicate func() bool

// DynamicTask is a fire-and-forget unit of work. It receives a done
// channel that the monitor closes (well, a Stop signal) — in practice
// DynamicTask observes cancellation via ctx the same way Fixed tasks do,
// but Dynamic additionally supervises it externally via a predicate
// rather than relying on the task to check ctx itself, since signing
// workers are typically a handful of sequential RPC calls, not a loop.
type DynamicTask func(stop <-chan struct{})

// Dynamic spawns workers with no stable handle: add is pure
// fire-and-forget, add_with_shutdown_signal additionally races a
// predicate-polling monitor against the worker and aborts the worker
// (closing its stop channel) the first time the predicate reports true.
// The monitor itself terminates as soon as the worker completes
// normally, so it never outlives its worker.
type Dynamic struct {
	wg sync.WaitGroup
}

func NewDynamic() *Dynamic {
	return &Dynamic{}
}

// Add spawns task with no supervision.
func (d *Dynamic) Add(task DynamicTask, fields log.Fields) {
	d.wg.Add(1)
	traceID, _ := uuid.GenerateUUID()
	taskLogger := logger.WithFields(mergeFields(fields, log.Fields{"trace": traceID}))
	metrics.DynamicTasksRunning.Inc()
	go func() {
		defer d.wg.Done()
		defer metrics.DynamicTasksRunning.Dec()
		defer func() {
			if r := recover(); r != nil {
				taskLogger.Error("dynamic task panicked", "recover", r)
			}
		}()
		stop := make(chan struct{})
		task(stop)
	}()
}

// AddWithShutdownSignal spawns task plus a monitor that polls predicate
// every checkFrequency and aborts task (via its stop channel) the
// first time predicate() is true. The monitor exits as soon as either
// the worker finishes or the predicate fires — whichever is first.
func (d *Dynamic) AddWithShutdownSignal(task DynamicTask, predicate ShutdownPredicate, checkFrequency time.Duration, fields log.Fields) {
	d.wg.Add(1)
	traceID, _ := uuid.GenerateUUID()
	taskLogger := logger.WithFields(mergeFields(fields, log.Fields{"trace": traceID}))

	stop := make(chan struct{})
	workerDone := make(chan struct{})

	metrics.DynamicTasksRunning.Inc()
	go func() {
		defer d.wg.Done()
		defer metrics.DynamicTasksRunning.Dec()
		defer close(workerDone)
		defer func() {
			if r := recover(); r != nil {
				taskLogger.Error("dynamic task panicked", "recover", r)
			}
		}()
		task(stop)
	}()

	go func() {
		ticker := time.NewTicker(checkFrequency)
		defer ticker.Stop()
		for {
			select {
			case <-workerDone:
				return
			case <-ticker.C:
				if predicate() {
					taskLogger.Info("shutdown predicate fired, aborting dynamic worker")
					select {
					case <-stop:
						// already closed by a previous tick racing us
					default:
						close(stop)
					}
					return
				}
			}
		}
	}()
}

// Wait blocks until every worker spawned so far has returned. Intended
// for tests and graceful shutdown, not the hot path.
func (d *Dynamic) Wait() {
	d.wg.Wait()
}

func mergeFields(a, b log.Fields) log.Fields {
	out := make(log.Fields, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
