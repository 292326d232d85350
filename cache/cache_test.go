package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/types"
)

func TestNodeCacheSetGet(t *testing.T) {
	c := NewNodeCache()
	_, ok := c.Get()
	assert.False(t, ok)

	addr := types.BytesToAddress([]byte{1, 2, 3})
	c.Set(types.NodeIdentity{Address: addr})
	got, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, addr, got.Address)
}

func TestGroupCacheDKGStatusTransitionIsIdempotent(t *testing.T) {
	c := NewGroupCache()
	c.Set(types.GroupState{Index: 5, Epoch: 1, Size: 3, Threshold: 2})

	advanced, err := c.AdvanceDKGStatus(5, types.DKGStatusInPhase)
	require.NoError(t, err)
	assert.True(t, advanced)

	// duplicate NewDKGTask delivery for the same (index, epoch): second
	// attempt to advance None->InPhase must be a no-op, not an error.
	advanced, err = c.AdvanceDKGStatus(5, types.DKGStatusInPhase)
	require.NoError(t, err)
	assert.False(t, advanced)
}

func TestGroupCacheEpochSupersession(t *testing.T) {
	c := NewGroupCache()
	c.Set(types.GroupState{Index: 5, Epoch: 1})

	epoch, ok := c.Epoch(5)
	require.True(t, ok)
	assert.Equal(t, 1, epoch)

	c.Set(types.GroupState{Index: 5, Epoch: 2})
	epoch, ok = c.Epoch(5)
	require.True(t, ok)
	assert.Equal(t, 2, epoch)
}

func TestBlockCacheAdvance(t *testing.T) {
	c := NewBlockCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Advance(100, now)
	c.Advance(101, now.Add(3*time.Second))

	info := c.Get()
	assert.EqualValues(t, 101, info.Height)
	assert.Equal(t, 3*time.Second, info.AverageBlock)
}

func TestTaskQueueCacheInsertAndClaimOnce(t *testing.T) {
	c := NewTaskQueueCache()
	task := types.Task{RequestID: types.NewRequestID([]byte("req-1"))}

	require.NoError(t, c.Insert(task))
	err := c.Insert(task)
	assert.True(t, errs.Is(err, errs.TaskAlreadyExisted))

	claimed, err := c.Claim(task.RequestID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = c.Claim(task.RequestID)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestSignatureCacheRejectsForeignMessage(t *testing.T) {
	c := NewSignatureCache()
	task := types.Task{RequestID: types.NewRequestID([]byte{0xAA})}
	require.NoError(t, c.Insert(3, 2, task, []byte("m1")))

	addr := types.BytesToAddress([]byte{9})
	err := c.AddPartial(task.RequestID, addr, []byte("m2"), []byte("partial"))
	assert.True(t, errs.Is(err, errs.InvalidTaskMessage))

	entry, ok := c.Get(task.RequestID)
	require.True(t, ok)
	assert.Empty(t, entry.Partials)
}

func TestSignatureCacheReadyToCommit(t *testing.T) {
	c := NewSignatureCache()
	task := types.Task{RequestID: types.NewRequestID([]byte{0xBB})}
	require.NoError(t, c.Insert(3, 2, task, []byte("m1")))

	a1 := types.BytesToAddress([]byte{1})
	a2 := types.BytesToAddress([]byte{2})

	require.NoError(t, c.AddPartial(task.RequestID, a1, []byte("m1"), []byte("p1")))
	assert.Empty(t, c.ReadyToCommit())

	require.NoError(t, c.AddPartial(task.RequestID, a2, []byte("m1"), []byte("p2")))
	ready := c.ReadyToCommit()
	require.Len(t, ready, 1)
	assert.Equal(t, task.RequestID, ready[0].Task.RequestID)
}
