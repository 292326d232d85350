package listener

import (
	"context"

	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/eventbus"
)

// Block subscribes to the chain's new-block stream and publishes
// NewBlock for every head seen; a stream disconnect surfaces as an
// Attempt error, which the common Loop logs before resubscribing after
// its interval. No interruption handler (such as a provider health
// check) is installed for this listener.
type Block struct {
	ChainID    uint64
	Controller contract.Controller
	Bus        *eventbus.Bus
}

// attempt subscribes once and drains the stream until it closes or ctx
// is canceled, publishing every height it sees.
func (b *Block) attempt(ctx context.Context) error {
	heights, err := b.Controller.SubscribeNewBlock(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case height, ok := <-heights:
			if !ok {
				return errs.New(errs.ProviderError, "listener.Block.attempt", nil)
			}
			publish(b.Bus, eventbus.NewNewBlockEvent(b.ChainID, height))
		}
	}
}

// Attempt exposes the unexported method as the Loop-compatible
// function value.
func (b *Block) Attempt(ctx context.Context) error { return b.attempt(ctx) }
