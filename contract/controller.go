package contract

import (
	"context"

	"github.com/arpa-network/randcast-node/types"
)

// Controller is the on-chain group/DKG authority: node registration and
// activation, DKG task assignment, commit/post-process, and group/node
// lookups.
type Controller interface {
	// NodeRegister submits this node's one-time registration
	// transaction (public key, RPC endpoint).
	NodeRegister(ctx context.Context, identity types.NodeIdentity) error

	// NodeActivate re-activates a previously registered, since-inactive
	// node.
	NodeActivate(ctx context.Context, addr types.Address) error

	// CommitDKG submits this node's completed DKG output for
	// (groupIndex, epoch): group public key, partial public key, and
	// the set of members it found disqualified.
	CommitDKG(ctx context.Context, groupIndex, epoch int, out types.DKGOutput) error

	// PostProcessDKG finalizes a group's DKG epoch on-chain once enough
	// members have committed.
	PostProcessDKG(ctx context.Context, groupIndex, epoch int) error

	// GetGroup returns the current on-chain GroupState for groupIndex.
	GetGroup(ctx context.Context, groupIndex int) (types.GroupState, error)

	// GetNode returns the registered NodeIdentity for addr.
	GetNode(ctx context.Context, addr types.Address) (types.NodeIdentity, error)

	// SubscribeDKGTask streams newly assigned DKGTasks for this node
	// until ctx is canceled.
	SubscribeDKGTask(ctx context.Context) (<-chan types.DKGTask, error)

	// SubscribeNewBlock streams new block heights until ctx is
	// canceled.
	SubscribeNewBlock(ctx context.Context) (<-chan uint64, error)
}
