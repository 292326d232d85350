package dal

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arpa-network/randcast-node/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTask(id string) types.Task {
	requester, _ := types.HexToAddress("0x0000000000000000000000000000000000000001")
	return types.Task{
		RequestID:      types.NewRequestID([]byte(id)),
		SubscriptionID: 42,
		GroupIndex:     1,
		Type:           types.TaskRandomness,
		Requester:      requester,
		Seed:           [32]byte{1, 2, 3},
		MaxGasPrice:    big.NewInt(100),
		State:          types.TaskPending,
	}
}

func TestSaveAndListTasksRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task := sampleTask("req-1")
	require.NoError(t, store.SaveTask(ctx, 1, task))

	tasks, err := store.Tasks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.RequestID, tasks[0].RequestID)
	assert.Equal(t, task.SubscriptionID, tasks[0].SubscriptionID)
	assert.Equal(t, 0, task.MaxGasPrice.Cmp(tasks[0].MaxGasPrice))
	assert.Equal(t, types.TaskPending, tasks[0].State)
}

func TestTasksScopedByChainID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTask(ctx, 1, sampleTask("req-1")))
	require.NoError(t, store.SaveTask(ctx, 2, sampleTask("req-1")))

	tasksChain1, err := store.Tasks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasksChain1, 1)

	tasksChain2, err := store.Tasks(ctx, 2)
	require.NoError(t, err)
	require.Len(t, tasksChain2, 1)
}

func TestMarkClaimedUpdatesState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task := sampleTask("req-1")
	require.NoError(t, store.SaveTask(ctx, 1, task))
	require.NoError(t, store.MarkClaimed(ctx, 1, task.RequestID))

	tasks, err := store.Tasks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, types.TaskClaimed, tasks[0].State)
}

func TestSaveTaskUpsertsExistingRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task := sampleTask("req-1")
	require.NoError(t, store.SaveTask(ctx, 1, task))

	task.State = types.TaskClaimed
	require.NoError(t, store.SaveTask(ctx, 1, task))

	tasks, err := store.Tasks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1, "re-saving the same (chainID, requestID) must update, not duplicate")
	assert.Equal(t, types.TaskClaimed, tasks[0].State)
}
