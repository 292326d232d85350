package subscriber

import (
	"strconv"
	"time"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/metrics"
)

// Block handles NewBlock by advancing the per-chain block cache.
type Block struct {
	Blocks *cache.BlockCache
}

func (b *Block) Handle(event eventbus.Event) error {
	e, ok := event.(eventbus.NewBlockEvent)
	if !ok {
		return nil
	}
	b.Blocks.Advance(e.Height, time.Now())
	metrics.BlockHeight.WithLabelValues(strconv.FormatUint(e.ChainID(), 10)).Set(float64(e.Height))
	return nil
}
