package subscriber

import (
	"context"
	"strconv"

	"github.com/arpa-network/randcast-node/bls"
	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/chain"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/metrics"
	"github.com/arpa-network/randcast-node/types"
)

// GroupRelayTaskHandler handles NewGroupRelayTask exactly like
// ReadyToHandleRandomnessTask handles a randomness batch — partial-sign
// over the task's signing message, cache locally iff a committer,
// forward to the other committers — except it fires once per task
// immediately, since group relay tasks carry no exclusive window to
// wait out.
type GroupRelayTaskHandler struct {
	ChainID    uint64
	SelfAddr   types.Address
	Groups     *cache.GroupCache
	Signatures *cache.SignatureCache
	Committer  CommitterClient
	Retry      chain.Retry
}

func (g *GroupRelayTaskHandler) Handle(event eventbus.Event) error {
	e, ok := event.(eventbus.NewGroupRelayTaskEvent)
	if !ok {
		return nil
	}
	task := e.Task

	gr, ok := g.Groups.Get(task.GroupIndex)
	if !ok || !gr.Ready {
		return nil
	}
	me, ok := gr.Members[g.SelfAddr]
	if !ok {
		return nil
	}

	message := task.SigningMessage()
	partial, err := bls.PartialSign(me.Index, gr.Share, message)
	if err != nil {
		logger.Error("failed to produce group relay partial signature", "requestId", task.RequestID, "err", err)
		return err
	}

	if gr.IsCommitter(g.SelfAddr) {
		_ = g.Signatures.Insert(task.GroupIndex, gr.Threshold, task, message)
		if err := g.Signatures.AddPartial(task.RequestID, g.SelfAddr, message, partial); err != nil {
			logger.Error("failed to record own group relay partial", "requestId", task.RequestID, "err", err)
		}
		metrics.PartialSignaturesProduced.WithLabelValues(strconv.FormatUint(g.ChainID, 10), strconv.Itoa(task.GroupIndex)).Inc()
	}

	for addr, member := range gr.Members {
		if addr == g.SelfAddr || !gr.IsCommitter(addr) || member.RPCEndpoint == "" {
			continue
		}
		endpoint, partialCopy := member.RPCEndpoint, append([]byte(nil), partial...)
		err := g.Retry.Do(context.Background(), func(ctx context.Context) error {
			return g.Committer.CommitPartialSignature(ctx, endpoint, g.ChainID, task.Type, task.RequestID, message, partialCopy)
		})
		if err != nil {
			logger.Error("failed to forward group relay partial to committer", "requestId", task.RequestID, "committer", addr, "err", err)
		}
	}
	return nil
}

// GroupRelayConfirmationSignatureAggregation handles
// ReadyToFulfillGroupRelayTask exactly like
// RandomnessSignatureAggregation, but invokes the controller-relayer's
// RelayGroupConfirmation instead of the adapter's FulfillRandomness.
type GroupRelayConfirmationSignatureAggregation struct {
	Groups            *cache.GroupCache
	Signatures        *cache.SignatureCache
	ControllerRelayer contract.ControllerRelayer
}

func (g *GroupRelayConfirmationSignatureAggregation) Handle(event eventbus.Event) error {
	e, ok := event.(eventbus.ReadyToFulfillGroupRelayTaskEvent)
	if !ok {
		return nil
	}
	for _, entry := range e.Entries {
		g.fulfill(e.ChainID(), entry)
	}
	return nil
}

func (g *GroupRelayConfirmationSignatureAggregation) fulfill(chainID uint64, entry types.PartialSignatureCacheEntry) {
	gr, ok := g.Groups.Get(entry.GroupIndex)
	if !ok || !gr.Ready {
		return
	}

	if err := g.Signatures.SetState(entry.Task.RequestID, types.SignatureCommitting); err != nil {
		logger.Error("failed to mark group relay entry committing", "requestId", entry.Task.RequestID, "err", err)
		return
	}

	participants := make([]types.Address, 0, len(entry.Partials))
	partials := make([][]byte, 0, len(entry.Partials))
	for addr, p := range entry.Partials {
		participants = append(participants, addr)
		partials = append(partials, p)
	}

	signature, err := bls.Aggregate(gr.GroupPublicKey, entry.Message, entry.Threshold, gr.Size, partials)
	if err != nil {
		logger.Error("failed to aggregate group relay partials", "requestId", entry.Task.RequestID, "err", err)
		_ = g.Signatures.SetState(entry.Task.RequestID, types.SignatureFaulty)
		return
	}

	ctx := context.Background()
	chainIDLabel := strconv.FormatUint(chainID, 10)
	if err := g.ControllerRelayer.RelayGroupConfirmation(ctx, entry.Task, signature, participants); err != nil {
		logger.Error("failed to submit relay_group_confirmation", "requestId", entry.Task.RequestID, "err", err)
		_ = g.Signatures.IncrementCommittedTimes(entry.Task.RequestID)
		_ = g.Signatures.SetState(entry.Task.RequestID, types.SignatureNotCommitted)
		metrics.TasksFulfillmentFailed.WithLabelValues(chainIDLabel, entry.Task.Type.String()).Inc()
		return
	}

	_ = g.Signatures.IncrementCommittedTimes(entry.Task.RequestID)
	_ = g.Signatures.SetState(entry.Task.RequestID, types.SignatureCommitted)
	metrics.TasksFulfilled.WithLabelValues(chainIDLabel, entry.Task.Type.String()).Inc()
}
