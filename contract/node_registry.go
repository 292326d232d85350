package contract

import (
	"context"

	"github.com/arpa-network/randcast-node/types"
)

// NodeRegistry is the main-chain-only lookup the NodeActivation
// listener consults to decide whether this node is registered but not
// yet active.
type NodeRegistry interface {
	// IsRegistered reports whether addr has a registration entry at
	// all.
	IsRegistered(ctx context.Context, addr types.Address) (bool, error)

	// IsActive reports whether addr's registration is currently active.
	IsActive(ctx context.Context, addr types.Address) (bool, error)
}
