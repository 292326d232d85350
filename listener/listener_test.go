package listener

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/chain"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

func TestLoopRetriesOnFailureThenSleeps(t *testing.T) {
	var attempts int32
	var interrupts int32

	loop := Loop{
		Name:     "test",
		Interval: 5 * time.Millisecond,
		Retry:    chain.Retry{Base: time.Millisecond, Factor: 1.0, MaxAttempts: 1},
		Attempt: func(ctx context.Context) error {
			n := atomic.AddInt32(&attempts, 1)
			if n == 1 {
				return errors.New("first attempt fails")
			}
			return nil
		},
		Interrupt: func(ctx context.Context) error {
			atomic.AddInt32(&interrupts, 1)
			return nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	loop.Run(ctx)

	assert.GreaterOrEqual(t, atomic.LoadInt32(&attempts), int32(2))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&interrupts), int32(1))
}

func TestPostGroupingFiresOnlyAfterTimeout(t *testing.T) {
	groups := cache.NewGroupCache()
	blocks := cache.NewBlockCache()
	bus := eventbus.New()

	groups.Set(types.GroupState{Index: 1, Epoch: 1, DKGStatus: types.DKGStatusInPhase, DKGStartHeight: 100})
	blocks.Advance(105, time.Now())

	var published int32
	bus.Subscribe(eventbus.DKGPostProcess, eventbus.SubscriberFunc(func(event eventbus.Event) error {
		atomic.AddInt32(&published, 1)
		return nil
	}))

	pg := &PostGrouping{GroupIndex: 1, DKGTimeoutBlocks: 10, Groups: groups, Blocks: blocks, Bus: bus}
	require_noerr(t, pg.Attempt(context.Background()))
	assert.EqualValues(t, 0, published)

	blocks.Advance(111, time.Now())
	require_noerr(t, pg.Attempt(context.Background()))
	assert.EqualValues(t, 1, published)
}

func require_noerr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
