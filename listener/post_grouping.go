package listener

import (
	"context"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

// PostGrouping polls each interval: once a group has sat in InPhase,
// CommitSuccess, or WaitForPostProcess for longer than
// DKGTimeoutBlocks (counted against its DKGStartHeight), it publishes
// DKGPostProcess to force the epoch closed — every epoch
// eventually leaves its in-progress states, success or timeout.
type PostGrouping struct {
	ChainID          uint64
	GroupIndex       int
	DKGTimeoutBlocks uint64
	Groups           *cache.GroupCache
	Blocks           *cache.BlockCache
	Bus              *eventbus.Bus
}

func (p *PostGrouping) Attempt(ctx context.Context) error {
	g, ok := p.Groups.Get(p.GroupIndex)
	if !ok {
		return nil
	}
	switch g.DKGStatus {
	case types.DKGStatusInPhase, types.DKGStatusCommitSuccess, types.DKGStatusWaitForPostProcess:
	default:
		return nil
	}

	current := p.Blocks.Get().Height
	if current <= g.DKGStartHeight+p.DKGTimeoutBlocks {
		return nil
	}

	publish(p.Bus, eventbus.NewDKGPostProcessEvent(p.ChainID, p.GroupIndex, g.Epoch))
	return nil
}
