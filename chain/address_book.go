package chain

import "github.com/arpa-network/randcast-node/types"

// AddressBook is the closed set of per-chain contract addresses this
// node's configuration table names. ControllerRelayer is
// populated only on the main chain; ControllerOracle only on relayed
// chains, mirroring the config's main-only/relayed-only split.
type AddressBook struct {
	Controller         types.Address
	Adapter            types.Address
	ControllerRelayer  types.Address // main chain only
	ControllerOracle   types.Address // relayed chains only
	ARPA               types.Address
	Staking            types.Address
	NodeRegistry       types.Address
}
