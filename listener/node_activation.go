package listener

import (
	"context"

	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

// NodeActivation polls each interval, main chain only: once this node
// is registered but not yet active, it publishes NodeActivation.
type NodeActivation struct {
	ChainID      uint64
	SelfAddr     types.Address
	NodeRegistry contract.NodeRegistry
	Bus          *eventbus.Bus
}

func (n *NodeActivation) Attempt(ctx context.Context) error {
	registered, err := n.NodeRegistry.IsRegistered(ctx, n.SelfAddr)
	if err != nil {
		return err
	}
	if !registered {
		return nil
	}

	active, err := n.NodeRegistry.IsActive(ctx, n.SelfAddr)
	if err != nil {
		return err
	}
	if active {
		return nil
	}

	publish(n.Bus, eventbus.NewNodeActivationEvent(n.ChainID))
	return nil
}
