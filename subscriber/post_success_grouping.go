package subscriber

import (
	"context"
	"strconv"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/metrics"
	"github.com/arpa-network/randcast-node/types"
)

// PostSuccessGrouping handles DKGSuccess: it transitions
// CommitSuccess->WaitForPostProcess, cross-checks the on-chain group
// public key against this node's local DKG output, confirms the node
// itself is still a member, reconciles the member table against the
// on-chain record (warning rather than aborting on a mismatch, since a
// single stale local entry should not block a group the chain itself
// considers ready), and finally records committers and marks the
// group ready.
type PostSuccessGrouping struct {
	SelfAddr   types.Address
	Groups     *cache.GroupCache
	Controller contract.Controller
}

func (p *PostSuccessGrouping) Handle(event eventbus.Event) error {
	e, ok := event.(eventbus.DKGSuccessEvent)
	if !ok {
		return nil
	}

	advanced, err := p.Groups.AdvanceDKGStatus(e.GroupIndex, types.DKGStatusWaitForPostProcess)
	if err != nil {
		return err
	}
	if !advanced {
		return nil
	}

	local, ok := p.Groups.Get(e.GroupIndex)
	if !ok {
		return errs.New(errs.GroupNotReady, "subscriber.PostSuccessGrouping.Handle", nil)
	}

	onChain, err := p.Controller.GetGroup(context.Background(), e.GroupIndex)
	if err != nil {
		return err
	}

	if string(onChain.GroupPublicKey) != string(local.GroupPublicKey) {
		return errs.New(errs.DKGGroupingTwisted, "subscriber.PostSuccessGrouping.Handle", nil)
	}
	if _, stillMember := onChain.Members[p.SelfAddr]; !stillMember {
		return errs.New(errs.MemberNotExisted, "subscriber.PostSuccessGrouping.Handle", nil)
	}

	for addr, onChainMember := range onChain.Members {
		localMember, ok := local.Members[addr]
		if !ok || localMember.PartialPublicKey == nil && onChainMember.PartialPublicKey != nil {
			logger.Warn("member table mismatch against on-chain record, proceeding anyway",
				"groupIndex", e.GroupIndex, "epoch", e.Epoch, "member", addr)
		}
	}

	local.Members = onChain.Members
	local.Committers = onChain.Committers
	local.Ready = true
	p.Groups.Set(local)

	metrics.DKGEpoch.WithLabelValues(strconv.FormatUint(e.ChainID(), 10), strconv.Itoa(e.GroupIndex)).Set(float64(e.Epoch))

	return nil
}
