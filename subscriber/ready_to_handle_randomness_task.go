package subscriber

import (
	"context"
	"strconv"

	"github.com/arpa-network/randcast-node/bls"
	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/chain"
	"github.com/arpa-network/randcast-node/dal"
	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/metrics"
	"github.com/arpa-network/randcast-node/types"
)

// ReadyToHandleRandomnessTask handles ReadyToHandleRandomnessTask: for
// every task in the batch, it claims the task exactly once (in the
// in-memory queue cache, then durably via Store) before producing this
// node's partial signature over the task's signing message, caching the
// partial locally iff this node is itself a committer, and forwarding
// it to every other committer over CommitterClient, each send
// independently retried under an exponential-backoff policy. A task
// that fails to claim (already claimed by an earlier delivery of the
// same batch) is skipped entirely: the listener re-polls the same
// still-pending tasks every interval, so without this the node would
// re-sign and re-broadcast a partial for the same request forever.
type ReadyToHandleRandomnessTask struct {
	ChainID    uint64
	GroupIndex int
	SelfAddr   types.Address
	Groups     *cache.GroupCache
	Signatures *cache.SignatureCache
	Tasks      *cache.TaskQueueCache
	Store      dal.TaskStore
	Committer  CommitterClient
	Retry      chain.Retry
}

func (r *ReadyToHandleRandomnessTask) Handle(event eventbus.Event) error {
	e, ok := event.(eventbus.ReadyToHandleRandomnessTaskEvent)
	if !ok {
		return nil
	}
	for _, task := range e.Tasks {
		r.handleOne(task)
	}
	return nil
}

func (r *ReadyToHandleRandomnessTask) handleOne(task types.Task) {
	claimed, err := r.Tasks.Claim(task.RequestID)
	if err != nil && !errs.Is(err, errs.TaskNotFound) {
		logger.Error("failed to claim task", "requestId", task.RequestID, "err", err)
	}
	if !claimed {
		return
	}
	if r.Store != nil {
		if err := r.Store.MarkClaimed(context.Background(), r.ChainID, task.RequestID); err != nil {
			logger.Error("failed to persist task claim", "requestId", task.RequestID, "err", err)
		}
	}

	g, ok := r.Groups.Get(r.GroupIndex)
	if !ok || !g.Ready {
		return
	}
	me, ok := g.Members[r.SelfAddr]
	if !ok {
		return
	}

	message := task.SigningMessage()
	partial, err := bls.PartialSign(me.Index, g.Share, message)
	if err != nil {
		logger.Error("failed to produce partial signature", "requestId", task.RequestID, "err", err)
		return
	}

	if g.IsCommitter(r.SelfAddr) {
		if err := r.Signatures.Insert(r.GroupIndex, g.Threshold, task, message); err != nil && !sameMessageAlreadyCached(r.Signatures, task, message) {
			logger.Error("failed to insert signature cache entry", "requestId", task.RequestID, "err", err)
		}
		if err := r.Signatures.AddPartial(task.RequestID, r.SelfAddr, message, partial); err != nil {
			logger.Error("failed to record own partial signature", "requestId", task.RequestID, "err", err)
		}
		metrics.PartialSignaturesProduced.WithLabelValues(strconv.FormatUint(r.ChainID, 10), strconv.Itoa(r.GroupIndex)).Inc()
	}

	for addr, member := range g.Members {
		if addr == r.SelfAddr || !g.IsCommitter(addr) || member.RPCEndpoint == "" {
			continue
		}
		endpoint, partialCopy, id := member.RPCEndpoint, append([]byte(nil), partial...), task.RequestID
		err := r.Retry.Do(context.Background(), func(ctx context.Context) error {
			return r.Committer.CommitPartialSignature(ctx, endpoint, r.ChainID, task.Type, id, message, partialCopy)
		})
		if err != nil {
			logger.Error("failed to forward partial signature to committer", "requestId", task.RequestID, "committer", addr, "err", err)
		}
	}
}

func sameMessageAlreadyCached(c *cache.SignatureCache, task types.Task, message []byte) bool {
	cached, ok := c.Message(task.RequestID)
	return ok && string(cached) == string(message)
}
