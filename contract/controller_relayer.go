package contract

import (
	"context"

	"github.com/arpa-network/randcast-node/types"
)

// ControllerRelayer is the main-chain-only surface that propagates
// group formations and their signed relay confirmations to relayed
// chains.
type ControllerRelayer interface {
	// RelayGroup requests propagation of groupIndex's current
	// membership to relayedChainID, emitted once per relayed chain
	// when the main chain's DKGPostProcess subscriber runs (Scenario
	// F: one post_process_dkg tx on main, one relay_group tx per
	// relayed chain).
	RelayGroup(ctx context.Context, relayedChainID uint64, groupIndex int) error

	// RelayGroupConfirmation submits the aggregated signature over a
	// GroupRelay task's (relayedChainID, groupIndex, groupEpoch,
	// groupPublicKey) message, the relay analogue of Adapter's
	// FulfillRandomness.
	RelayGroupConfirmation(ctx context.Context, task types.Task, signature []byte, participants []types.Address) error
}
