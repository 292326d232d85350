package cache

import (
	"sync"

	"gopkg.in/fatih/set.v0"

	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/types"
)

// GroupCache holds every GroupState this node has ever been assigned
// to, keyed by group index. Reads (IsCommitter, committer lookups,
// subscriber polling) vastly outnumber writes (DKG phase transitions,
// post-processing), so it is a single RWMutex over a plain, unbounded
// map: group count is small and bounded by how many groups the network
// actually forms, not by request volume.
//
// IsCommitter is on the hot path of every inbound partial-signature
// submission, so each group's Committers slice is mirrored into a
// set.Set alongside it: membership becomes a hash lookup instead of a
// scan over a slice that, for a large committee, is checked once per
// submission per peer.
type GroupCache struct {
	mu            sync.RWMutex
	groups        map[int]types.GroupState
	committerSets map[int]*set.Set
}

func NewGroupCache() *GroupCache {
	return &GroupCache{
		groups:        make(map[int]types.GroupState),
		committerSets: make(map[int]*set.Set),
	}
}

func committerSet(committers []types.Address) *set.Set {
	s := set.New()
	for _, a := range committers {
		s.Add(a)
	}
	return s
}

// Get returns a copy of the GroupState at index, or ok=false if unknown.
func (c *GroupCache) Get(index int) (types.GroupState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.groups[index]
	return g, ok
}

// Set installs or replaces the GroupState at its own Index.
func (c *GroupCache) Set(g types.GroupState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups[g.Index] = g
	c.committerSets[g.Index] = committerSet(g.Committers)
}

// AdvanceDKGStatus transitions the group at index from its current
// DKGStatus to next iff types.DKGStatus.CanAdvanceTo allows it,
// reporting whether the transition took effect. PreGroupingSubscriber
// relies on this to make the None->InPhase transition atomic and
// idempotent across duplicate NewDKGTask deliveries.
func (c *GroupCache) AdvanceDKGStatus(index int, next types.DKGStatus) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.groups[index]
	if !ok {
		return false, errs.New(errs.GroupNotReady, "cache.GroupCache.AdvanceDKGStatus", nil)
	}
	if !g.DKGStatus.CanAdvanceTo(next) {
		return false, nil
	}
	g.DKGStatus = next
	c.groups[index] = g
	return true, nil
}

// Epoch reports the current epoch recorded for index, used by DKG
// shutdown predicates to detect supersession: the worker
// started for (index, epoch) aborts once this no longer matches.
func (c *GroupCache) Epoch(index int) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.groups[index]
	if !ok {
		return 0, false
	}
	return g.Epoch, true
}

// ApplyDKGOutput persists a completed DKG run's output into the group
// at index and transitions its status InPhase->CommitSuccess.
func (c *GroupCache) ApplyDKGOutput(index int, out types.DKGOutput) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.groups[index]
	if !ok {
		return errs.New(errs.GroupNotReady, "cache.GroupCache.ApplyDKGOutput", nil)
	}
	g.GroupPublicKey = out.GroupPublicKey
	g.Share = out.Share
	if !g.DKGStatus.CanAdvanceTo(types.DKGStatusCommitSuccess) {
		return errs.New(errs.DKGGroupingTwisted, "cache.GroupCache.ApplyDKGOutput", nil)
	}
	g.DKGStatus = types.DKGStatusCommitSuccess
	c.groups[index] = g
	return nil
}

// IsCommitter reports whether addr is a committer for the group at
// index.
func (c *GroupCache) IsCommitter(index int, addr types.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.committerSets[index]
	if !ok {
		return false
	}
	return s.Has(addr)
}
