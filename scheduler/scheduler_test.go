package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedAddRejectsDuplicateKey(t *testing.T) {
	f := NewFixed()
	key := TaskKey{ChainID: 1, Kind: Listener, Variant: "Block"}

	require.NoError(t, f.Add(key, func(ctx context.Context) { <-ctx.Done() }, nil))
	err := f.Add(key, func(ctx context.Context) { <-ctx.Done() }, nil)
	assert.Error(t, err)

	require.NoError(t, f.Abort(key))
	assert.Equal(t, 0, f.Len())
}

func TestFixedAbortUnknownKey(t *testing.T) {
	f := NewFixed()
	err := f.Abort(TaskKey{ChainID: 1, Kind: Listener, Variant: "Block"})
	assert.Error(t, err)
}

func TestDynamicAddRunsWorker(t *testing.T) {
	d := NewDynamic()
	var ran int32
	d.Add(func(stop <-chan struct{}) {
		atomic.StoreInt32(&ran, 1)
	}, nil)
	d.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(&ran))
}

func TestDynamicShutdownPredicateAbortsWorker(t *testing.T) {
	d := NewDynamic()
	var fired int32
	var aborted int32

	d.AddWithShutdownSignal(func(stop <-chan struct{}) {
		<-stop
		atomic.StoreInt32(&aborted, 1)
	}, func() bool {
		return atomic.LoadInt32(&fired) == 1
	}, 10*time.Millisecond, nil)

	time.Sleep(20 * time.Millisecond)
	atomic.StoreInt32(&fired, 1)

	d.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(&aborted))
}

func TestDynamicMonitorExitsWhenWorkerFinishesFirst(t *testing.T) {
	d := NewDynamic()
	d.AddWithShutdownSignal(func(stop <-chan struct{}) {
		// finishes immediately, well before the predicate would ever fire
	}, func() bool { return false }, 5*time.Millisecond, nil)
	d.Wait()
}
