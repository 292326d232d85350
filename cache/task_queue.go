package cache

import (
	"sync"

	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/types"
)

// TaskQueueCache holds every Task this chain's listeners have seen,
// keyed by RequestID, unbounded for the lifetime of the process: tasks
// are never evicted by the cache itself, only transitioned in place,
// so a late-arriving duplicate observation can never silently reappear
// as pending.
type TaskQueueCache struct {
	mu    sync.RWMutex
	tasks map[types.RequestID]types.Task
}

func NewTaskQueueCache() *TaskQueueCache {
	return &TaskQueueCache{tasks: make(map[types.RequestID]types.Task)}
}

// Contains reports whether id is already tracked, the check
// NewRandomnessTask's listener uses to avoid inserting duplicates.
func (c *TaskQueueCache) Contains(id types.RequestID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tasks[id]
	return ok
}

// Insert adds task if its RequestID is not already present, returning
// errs.TaskAlreadyExisted otherwise.
func (c *TaskQueueCache) Insert(task types.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tasks[task.RequestID]; exists {
		return errs.New(errs.TaskAlreadyExisted, "cache.TaskQueueCache.Insert", nil)
	}
	c.tasks[task.RequestID] = task
	return nil
}

// Get returns a copy of the task tracked under id.
func (c *TaskQueueCache) Get(id types.RequestID) (types.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tasks[id]
	return t, ok
}

// Claim transitions the task under id from Pending to Claimed,
// reporting false if it was already claimed. Returns TaskNotFound if id
// is unknown.
func (c *TaskQueueCache) Claim(id types.RequestID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[id]
	if !ok {
		return false, errs.New(errs.TaskNotFound, "cache.TaskQueueCache.Claim", nil)
	}
	claimed := t.Claim()
	c.tasks[id] = t
	return claimed, nil
}

// Pending returns every task still in TaskPending state, the set
// ReadyToHandleRandomnessTask's listener polls over.
func (c *TaskQueueCache) Pending() []types.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.Task, 0)
	for _, t := range c.tasks {
		if t.State == types.TaskPending {
			out = append(out, t)
		}
	}
	return out
}

// Len reports how many tasks are tracked, for metrics/health.
func (c *TaskQueueCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}
