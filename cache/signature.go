package cache

import (
	"sync"

	"github.com/VictoriaMetrics/fastcache"

	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/types"
)

// defaultMessageCacheBytes sizes the fastcache message-lookup mirror;
// fastcache rounds this up internally to its own bucket granularity.
const defaultMessageCacheBytes = 16 * 1024 * 1024

// SignatureCache is the PartialSignatureCache (aka ResultCache):
// per-request-id aggregation state. The structured parts
// (state, threshold, committed-times, the partials map) live behind
// mu, since they mutate together and under the committer server's hot
// path. The task message bytes are mirrored into a fastcache.Cache
// keyed by the raw request id — committer server's verification path
// (reject with InvalidTaskMessage if a peer's message doesn't match)
// reads it without taking mu, since message bytes are immutable for
// the lifetime of an entry once inserted.
type SignatureCache struct {
	mu      sync.RWMutex
	entries map[types.RequestID]*types.PartialSignatureCacheEntry
	msgs    *fastcache.Cache
}

func NewSignatureCache() *SignatureCache {
	return &SignatureCache{
		entries: make(map[types.RequestID]*types.PartialSignatureCacheEntry),
		msgs:    fastcache.New(defaultMessageCacheBytes),
	}
}

// Insert creates a new NotCommitted entry for task's request id,
// failing with TaskAlreadyExisted if one is already tracked.
func (c *SignatureCache) Insert(groupIndex, threshold int, task types.Task, message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[task.RequestID]; exists {
		return errs.New(errs.TaskAlreadyExisted, "cache.SignatureCache.Insert", nil)
	}
	c.entries[task.RequestID] = &types.PartialSignatureCacheEntry{
		GroupIndex: groupIndex,
		Task:       task,
		Message:    message,
		Threshold:  threshold,
		Partials:   make(map[types.Address][]byte),
		State:      types.SignatureNotCommitted,
	}
	c.msgs.Set(task.RequestID.Bytes(), message)
	return nil
}

// Message returns the cached message bytes for id without touching the
// structured entry lock.
func (c *SignatureCache) Message(id types.RequestID) ([]byte, bool) {
	buf, ok := c.msgs.HasGet(nil, id.Bytes())
	return buf, ok
}

// AddPartial records addr's partial signature for id, rejecting with
// InvalidTaskMessage if message does not match the entry's cached
// message, and with TaskNotFound if id is unknown. A partial offered against a
// terminal entry is silently ignored (invariant: no further partials
// accepted once Committed/CommittedByOthers).
func (c *SignatureCache) AddPartial(id types.RequestID, addr types.Address, message, partial []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return errs.New(errs.TaskNotFound, "cache.SignatureCache.AddPartial", nil)
	}
	if string(message) != string(entry.Message) {
		return errs.New(errs.InvalidTaskMessage, "cache.SignatureCache.AddPartial", nil)
	}
	if entry.State.Terminal() {
		return nil
	}
	entry.Partials[addr] = partial
	return nil
}

// Get returns a copy of the entry tracked under id.
func (c *SignatureCache) Get(id types.RequestID) (types.PartialSignatureCacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[id]
	if !ok {
		return types.PartialSignatureCacheEntry{}, false
	}
	return *entry, true
}

// SetState transitions the entry under id to state, returning
// TaskNotFound if id is unknown.
func (c *SignatureCache) SetState(id types.RequestID, state types.SignatureCacheState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[id]
	if !ok {
		return errs.New(errs.TaskNotFound, "cache.SignatureCache.SetState", nil)
	}
	entry.State = state
	return nil
}

// IncrementCommittedTimes bumps the commit-attempt counter for id.
func (c *SignatureCache) IncrementCommittedTimes(id types.RequestID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[id]
	if !ok {
		return errs.New(errs.TaskNotFound, "cache.SignatureCache.IncrementCommittedTimes", nil)
	}
	entry.CommittedTimes++
	return nil
}

// ReadyToCommit returns every entry currently eligible for aggregation
// (at least Threshold partials, still NotCommitted), the set the
// RandomnessSignatureAggregation listener drains each poll.
func (c *SignatureCache) ReadyToCommit() []types.PartialSignatureCacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.PartialSignatureCacheEntry, 0)
	for _, entry := range c.entries {
		if entry.ReadyToCommit() {
			out = append(out, *entry)
		}
	}
	return out
}

// Len reports how many entries are tracked, for metrics/health.
func (c *SignatureCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
