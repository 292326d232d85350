package subscriber

import (
	"context"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

// PostGrouping handles DKGPostProcess: it closes the epoch out
// (InPhase/CommitSuccess/WaitForPostProcess -> None), submits the
// post_process_dkg transaction for every group it knows (it does not
// check whether the group has a coordinator address assigned), and
// then — main chain only — requests one
// relay_group transaction per configured relayed chain, exactly one
// post_process_dkg followed by one relay_group per relayed chain, in
// that order.
type PostGrouping struct {
	Groups            *cache.GroupCache
	Controller        contract.Controller
	ControllerRelayer contract.ControllerRelayer
	RelayedChainIDs   []uint64
}

func (p *PostGrouping) Handle(event eventbus.Event) error {
	e, ok := event.(eventbus.DKGPostProcessEvent)
	if !ok {
		return nil
	}

	if _, ok := p.Groups.Get(e.GroupIndex); !ok {
		return nil
	}

	if _, err := p.Groups.AdvanceDKGStatus(e.GroupIndex, types.DKGStatusNone); err != nil {
		return err
	}

	ctx := context.Background()
	if err := p.Controller.PostProcessDKG(ctx, e.GroupIndex, e.Epoch); err != nil {
		logger.Error("failed to submit post_process_dkg", "groupIndex", e.GroupIndex, "epoch", e.Epoch, "err", err)
		return err
	}

	if p.ControllerRelayer == nil || len(p.RelayedChainIDs) == 0 {
		return nil
	}

	for _, relayedChainID := range p.RelayedChainIDs {
		if err := p.ControllerRelayer.RelayGroup(ctx, relayedChainID, e.GroupIndex); err != nil {
			logger.Error("failed to submit relay_group", "relayedChainId", relayedChainID, "groupIndex", e.GroupIndex, "err", err)
		}
	}

	return nil
}
