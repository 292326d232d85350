package subscriber

import (
	"context"

	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

// NodeActivation handles NodeActivation: it submits the activate
// transaction and logs the outcome. Every failure is logged with the
// same message and the error the controller returned; an on-chain
// revert and a transport error are not told apart.
type NodeActivation struct {
	SelfAddr   types.Address
	Controller contract.Controller
}

func (n *NodeActivation) Handle(event eventbus.Event) error {
	if _, ok := event.(eventbus.NodeActivationEvent); !ok {
		return nil
	}

	if err := n.Controller.NodeActivate(context.Background(), n.SelfAddr); err != nil {
		logger.Error("node activation failed", "address", n.SelfAddr, "err", err)
		return err
	}

	logger.Info("node activation submitted", "address", n.SelfAddr)
	return nil
}
