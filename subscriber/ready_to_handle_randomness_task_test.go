package subscriber

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/chain"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

type fakeCommitterClient struct {
	calls int
}

func (f *fakeCommitterClient) CommitPartialSignature(context.Context, string, uint64, types.TaskType, types.RequestID, []byte, []byte) error {
	f.calls++
	return nil
}

type fakeTaskStore struct {
	claimed []types.RequestID
}

func (f *fakeTaskStore) SaveTask(context.Context, uint64, types.Task) error { return nil }
func (f *fakeTaskStore) MarkClaimed(_ context.Context, _ uint64, id types.RequestID) error {
	f.claimed = append(f.claimed, id)
	return nil
}
func (f *fakeTaskStore) Tasks(context.Context, uint64) ([]types.Task, error) { return nil, nil }

func TestReadyToHandleRandomnessTaskClaimsEachTaskExactlyOnce(t *testing.T) {
	shares, groupPublicKey := genShares(t, 1, 1)
	scalarBytes, err := shares[0].V.MarshalBinary()
	require.NoError(t, err)

	self := addr(1)
	groups := cache.NewGroupCache()
	groups.Set(types.GroupState{
		Index:          0,
		Size:           1,
		Threshold:      1,
		Ready:          true,
		GroupPublicKey: groupPublicKey,
		Share:          scalarBytes,
		Members:        map[types.Address]types.Member{self: {Index: shares[0].I, Address: self}},
		Committers:     []types.Address{self},
	})

	tasks := cache.NewTaskQueueCache()
	task := types.Task{RequestID: types.NewRequestID([]byte("req-1")), GroupIndex: 0}
	require.NoError(t, tasks.Insert(task))

	store := &fakeTaskStore{}
	committer := &fakeCommitterClient{}
	sub := &ReadyToHandleRandomnessTask{
		ChainID:    1,
		GroupIndex: 0,
		SelfAddr:   self,
		Groups:     groups,
		Signatures: cache.NewSignatureCache(),
		Tasks:      tasks,
		Store:      store,
		Committer:  committer,
		Retry:      chain.Retry{MaxAttempts: 0},
	}

	event := eventbus.NewReadyToHandleRandomnessTaskEvent(1, []types.Task{task})
	require.NoError(t, sub.Handle(event))
	require.NoError(t, sub.Handle(event))

	got, ok := tasks.Get(task.RequestID)
	require.True(t, ok)
	assert.Equal(t, types.TaskClaimed, got.State)
	assert.Equal(t, []types.RequestID{task.RequestID}, store.claimed, "second delivery must not re-claim")

	_, ok = sub.Signatures.Get(task.RequestID)
	assert.True(t, ok, "the winning claim must still produce and cache a partial")

	entry, ok := sub.Signatures.Get(task.RequestID)
	require.True(t, ok)
	assert.Len(t, entry.Partials, 1, "re-delivery must not double-insert the same partial")
}

func TestReadyToHandleRandomnessTaskSkipsUnknownTask(t *testing.T) {
	groups := cache.NewGroupCache()
	tasks := cache.NewTaskQueueCache()
	store := &fakeTaskStore{}

	sub := &ReadyToHandleRandomnessTask{
		ChainID:    1,
		GroupIndex: 0,
		SelfAddr:   addr(1),
		Groups:     groups,
		Signatures: cache.NewSignatureCache(),
		Tasks:      tasks,
		Store:      store,
		Committer:  &fakeCommitterClient{},
		Retry:      chain.Retry{MaxAttempts: 0},
	}

	task := types.Task{RequestID: types.NewRequestID([]byte("req-unknown")), GroupIndex: 0}
	event := eventbus.NewReadyToHandleRandomnessTaskEvent(1, []types.Task{task})

	require.NoError(t, sub.Handle(event))
	assert.Empty(t, store.claimed)
	_, ok := sub.Signatures.Get(task.RequestID)
	assert.False(t, ok)
}
