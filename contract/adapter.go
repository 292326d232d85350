package contract

import (
	"context"
	"math/big"

	"github.com/arpa-network/randcast-node/types"
)

// Adapter is the per-chain randomness-request surface: request
// intake, fulfillment submission, and subscription lookups. One
// Adapter exists per chain (main and each
// relayed chain each have their own deployment).
type Adapter interface {
	// RequestRandomness submits a new randomness request on behalf of a
	// subscription (used only by test tooling / local simulation; in
	// production requests originate from external contracts the
	// adapter listens to).
	RequestRandomness(ctx context.Context, subscriptionID uint64, seed [32]byte, callbackGasLimit uint64, maxGasPrice *big.Int) (types.RequestID, error)

	// FulfillRandomness submits the aggregated signature for task,
	// along with the addresses that contributed partials (used
	// on-chain to apportion rewards).
	FulfillRandomness(ctx context.Context, task types.Task, signature []byte, participants []types.Address) error

	// GetSubscription returns the current balance/owner metadata for
	// subscriptionID. Only the fields the node needs to reason about
	// gas affordability are exposed.
	GetSubscription(ctx context.Context, subscriptionID uint64) (Subscription, error)

	// SubscribeNewRandomnessTask streams newly observed requests until
	// ctx is canceled.
	SubscribeNewRandomnessTask(ctx context.Context) (<-chan types.Task, error)

	// IsTaskPending re-checks a task's on-chain fulfillment state, the
	// view ReadyToHandleRandomnessTask's listener consults before
	// publishing — a task already fulfilled by a faster group member
	// must not be re-signed.
	IsTaskPending(ctx context.Context, id types.RequestID) (bool, error)
}

// Subscription is the subset of on-chain subscription state the node
// consults before fulfilling a request.
type Subscription struct {
	ID      uint64
	Owner   types.Address
	Balance *big.Int
}
