package cache

import (
	"sync"
	"time"

	"github.com/arpa-network/randcast-node/types"
)

// BlockCache holds one chain's current BlockInfo. Updated exclusively
// by that chain's BlockSubscriber; this cache does not require height
// monotonicity, since a fork/reorg can briefly
// move the observed head backwards.
type BlockCache struct {
	mu   sync.RWMutex
	info types.BlockInfo
}

func NewBlockCache() *BlockCache {
	return &BlockCache{}
}

// Advance records a newly observed height.
func (c *BlockCache) Advance(height uint64, observedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.info = c.info.Advance(height, observedAt)
}

// Get returns the current BlockInfo.
func (c *BlockCache) Get() types.BlockInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info
}
