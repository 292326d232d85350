package subscriber

import (
	"context"
	"strconv"

	"github.com/arpa-network/randcast-node/bls"
	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/metrics"
	"github.com/arpa-network/randcast-node/types"
)

// RandomnessSignatureAggregation handles ReadyToFulfillRandomnessTask:
// for every drained entry, it aggregates the collected partials into a
// full group signature, re-verifies the task is still pending on-chain
// (a faster group member may have already fulfilled it), and submits
// the adapter's fulfill_randomness transaction with the signature and
// the set of participating addresses (used on-chain to apportion
// rewards).
type RandomnessSignatureAggregation struct {
	Groups     *cache.GroupCache
	Signatures *cache.SignatureCache
	Adapter    contract.Adapter
}

func (r *RandomnessSignatureAggregation) Handle(event eventbus.Event) error {
	e, ok := event.(eventbus.ReadyToFulfillRandomnessTaskEvent)
	if !ok {
		return nil
	}
	for _, entry := range e.Entries {
		r.fulfill(e.ChainID(), entry)
	}
	return nil
}

func (r *RandomnessSignatureAggregation) fulfill(chainID uint64, entry types.PartialSignatureCacheEntry) {
	g, ok := r.Groups.Get(entry.GroupIndex)
	if !ok || !g.Ready {
		return
	}

	if err := r.Signatures.SetState(entry.Task.RequestID, types.SignatureCommitting); err != nil {
		logger.Error("failed to mark entry committing", "requestId", entry.Task.RequestID, "err", err)
		return
	}

	participants := make([]types.Address, 0, len(entry.Partials))
	partials := make([][]byte, 0, len(entry.Partials))
	for addr, p := range entry.Partials {
		participants = append(participants, addr)
		partials = append(partials, p)
	}

	signature, err := bls.Aggregate(g.GroupPublicKey, entry.Message, entry.Threshold, g.Size, partials)
	if err != nil {
		logger.Error("failed to aggregate partial signatures", "requestId", entry.Task.RequestID, "err", err)
		_ = r.Signatures.SetState(entry.Task.RequestID, types.SignatureFaulty)
		return
	}

	ctx := context.Background()
	pending, err := r.Adapter.IsTaskPending(ctx, entry.Task.RequestID)
	if err != nil {
		logger.Error("failed to re-check task pending state", "requestId", entry.Task.RequestID, "err", err)
		return
	}
	if !pending {
		_ = r.Signatures.SetState(entry.Task.RequestID, types.SignatureCommittedByOthers)
		return
	}

	chainIDLabel := strconv.FormatUint(chainID, 10)
	if err := r.Adapter.FulfillRandomness(ctx, entry.Task, signature, participants); err != nil {
		logger.Error("failed to submit fulfill_randomness", "requestId", entry.Task.RequestID, "err", err)
		_ = r.Signatures.IncrementCommittedTimes(entry.Task.RequestID)
		_ = r.Signatures.SetState(entry.Task.RequestID, types.SignatureNotCommitted)
		metrics.TasksFulfillmentFailed.WithLabelValues(chainIDLabel, entry.Task.Type.String()).Inc()
		return
	}

	_ = r.Signatures.IncrementCommittedTimes(entry.Task.RequestID)
	_ = r.Signatures.SetState(entry.Task.RequestID, types.SignatureCommitted)
	metrics.TasksFulfilled.WithLabelValues(chainIDLabel, entry.Task.Type.String()).Inc()
}
