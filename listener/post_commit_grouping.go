package listener

import (
	"context"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

// PostCommitGrouping polls each interval: once this node's DKG status
// for a group is locally CommitSuccess and the controller confirms the
// group's on-chain Ready flag, it publishes DKGSuccess.
type PostCommitGrouping struct {
	ChainID    uint64
	GroupIndex int
	Controller contract.Controller
	Groups     *cache.GroupCache
	Bus        *eventbus.Bus
}

func (p *PostCommitGrouping) Attempt(ctx context.Context) error {
	g, ok := p.Groups.Get(p.GroupIndex)
	if !ok || g.DKGStatus != types.DKGStatusCommitSuccess {
		return nil
	}

	onChain, err := p.Controller.GetGroup(ctx, p.GroupIndex)
	if err != nil {
		return err
	}
	if !onChain.Ready {
		return nil
	}

	publish(p.Bus, eventbus.NewDKGSuccessEvent(p.ChainID, p.GroupIndex, g.Epoch))
	return nil
}
