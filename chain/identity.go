package chain

import "github.com/arpa-network/randcast-node/types"

// Identity is the per-chain configuration this node tracks as
// ChainIdentity: which chain this is, whether it is the main chain or
// a relayed one, this node's signing address on it, and the RPC
// endpoint its provider dials. One Identity exists per chain the node
// participates in (one main chain, zero or more relayed chains).
type Identity struct {
	ChainID  uint64
	Main     bool
	Signer   types.Address
	Endpoint string

	// Retry descriptors, one per call family, assembled from the
	// [time_limits] configuration table at startup.
	ContractTransactionRetry  Retry
	ContractViewRetry         Retry
	CommitPartialSignatureRetry Retry
	ListenerRetry             Retry
}

// IsRelayed is the complement of Main, kept as a method rather than a
// second bool field so call sites read "chain.IsRelayed()" instead of
// "!chain.Main".
func (id Identity) IsRelayed() bool { return !id.Main }
