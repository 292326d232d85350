package subscriber

import (
	"context"
	"math/big"
	"testing"

	"github.com/drand/kyber/share"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arpa-network/randcast-node/bls"
	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

func addr(b byte) types.Address {
	var a types.Address
	a[len(a)-1] = b
	return a
}

func TestPreGroupingTransitionsOnceAndPublishesRunDKG(t *testing.T) {
	groups := cache.NewGroupCache()
	bus := eventbus.New()

	var published int
	bus.Subscribe(eventbus.RunDKG, eventbus.SubscriberFunc(func(event eventbus.Event) error {
		published++
		return nil
	}))

	pg := &PreGrouping{ChainID: 1, Groups: groups, Bus: bus}
	task := types.DKGTask{GroupIndex: 2, Epoch: 1, Size: 1, Threshold: 1, Members: []types.Address{addr(1)}}

	require.NoError(t, pg.Handle(eventbus.NewNewDKGTaskEvent(1, task, 0)))
	require.NoError(t, pg.Handle(eventbus.NewNewDKGTaskEvent(1, task, 0)))

	assert.Equal(t, 1, published, "duplicate NewDKGTask must not re-publish RunDKG")

	g, ok := groups.Get(2)
	require.True(t, ok)
	assert.Equal(t, types.DKGStatusInPhase, g.DKGStatus)
}

type fakeController struct {
	postProcessCalls int
}

func (f *fakeController) NodeRegister(context.Context, types.NodeIdentity) error { return nil }
func (f *fakeController) NodeActivate(context.Context, types.Address) error      { return nil }
func (f *fakeController) CommitDKG(context.Context, int, int, types.DKGOutput) error {
	return nil
}
func (f *fakeController) PostProcessDKG(context.Context, int, int) error {
	f.postProcessCalls++
	return nil
}
func (f *fakeController) GetGroup(context.Context, int) (types.GroupState, error) {
	return types.GroupState{}, nil
}
func (f *fakeController) GetNode(context.Context, types.Address) (types.NodeIdentity, error) {
	return types.NodeIdentity{}, nil
}
func (f *fakeController) SubscribeDKGTask(context.Context) (<-chan types.DKGTask, error) {
	return nil, nil
}
func (f *fakeController) SubscribeNewBlock(context.Context) (<-chan uint64, error) {
	return nil, nil
}

type fakeControllerRelayer struct {
	relayedChainIDs []uint64
}

func (f *fakeControllerRelayer) RelayGroup(_ context.Context, relayedChainID uint64, _ int) error {
	f.relayedChainIDs = append(f.relayedChainIDs, relayedChainID)
	return nil
}
func (f *fakeControllerRelayer) RelayGroupConfirmation(context.Context, types.Task, []byte, []types.Address) error {
	return nil
}

func TestPostGroupingSubmitsPostProcessThenRelaysPerChain(t *testing.T) {
	groups := cache.NewGroupCache()
	groups.Set(types.GroupState{Index: 3, Epoch: 2, DKGStatus: types.DKGStatusWaitForPostProcess})

	controller := &fakeController{}
	relayer := &fakeControllerRelayer{}

	pg := &PostGrouping{
		Groups:            groups,
		Controller:        controller,
		ControllerRelayer: relayer,
		RelayedChainIDs:   []uint64{10, 11},
	}

	require.NoError(t, pg.Handle(eventbus.NewDKGPostProcessEvent(1, 3, 2)))

	assert.Equal(t, 1, controller.postProcessCalls)
	assert.Equal(t, []uint64{10, 11}, relayer.relayedChainIDs)

	g, ok := groups.Get(3)
	require.True(t, ok)
	assert.Equal(t, types.DKGStatusNone, g.DKGStatus)
}

type fakeAdapter struct {
	pending          bool
	fulfillCalls     int
	lastSignature    []byte
	lastParticipants []types.Address
}

func (f *fakeAdapter) RequestRandomness(context.Context, uint64, [32]byte, uint64, *big.Int) (types.RequestID, error) {
	return "", nil
}
func (f *fakeAdapter) FulfillRandomness(_ context.Context, _ types.Task, signature []byte, participants []types.Address) error {
	f.fulfillCalls++
	f.lastSignature = signature
	f.lastParticipants = participants
	return nil
}
func (f *fakeAdapter) GetSubscription(context.Context, uint64) (contract.Subscription, error) {
	return contract.Subscription{}, nil
}
func (f *fakeAdapter) SubscribeNewRandomnessTask(context.Context) (<-chan types.Task, error) {
	return nil, nil
}
func (f *fakeAdapter) IsTaskPending(context.Context, types.RequestID) (bool, error) {
	return f.pending, nil
}

func genShares(t *testing.T, n, threshold int) (shares []*share.PriShare, groupPublicKey []byte) {
	t.Helper()
	secret := bls.Suite.G2().Scalar().Pick(bls.Suite.RandomStream())
	priPoly := share.NewPriPoly(bls.Suite.G2(), threshold, secret, bls.Suite.RandomStream())
	pubPoly := priPoly.Commit(bls.Suite.G2().Point().Base())
	pubBytes, err := pubPoly.Commit().MarshalBinary()
	require.NoError(t, err)
	return priPoly.Shares(n), pubBytes
}

func TestRandomnessSignatureAggregationFulfillsWhenStillPending(t *testing.T) {
	const n, threshold = 3, 2
	shares, groupPublicKey := genShares(t, n, threshold)

	groups := cache.NewGroupCache()
	groups.Set(types.GroupState{Index: 0, Size: n, Threshold: threshold, Ready: true, GroupPublicKey: groupPublicKey})

	msg := []byte("randomness-task-message")
	task := types.Task{RequestID: types.NewRequestID([]byte("req-1")), GroupIndex: 0}

	partials := map[types.Address][]byte{}
	for i := 0; i < threshold; i++ {
		scalarBytes, err := shares[i].V.MarshalBinary()
		require.NoError(t, err)
		p, err := bls.PartialSign(shares[i].I, scalarBytes, msg)
		require.NoError(t, err)
		partials[addr(byte(i+1))] = p
	}

	entry := types.PartialSignatureCacheEntry{
		GroupIndex: 0,
		Task:       task,
		Message:    msg,
		Threshold:  threshold,
		Partials:   partials,
		State:      types.SignatureNotCommitted,
	}

	sigs := cache.NewSignatureCache()
	require.NoError(t, sigs.Insert(0, threshold, task, msg))
	for a, p := range partials {
		require.NoError(t, sigs.AddPartial(task.RequestID, a, msg, p))
	}

	adapter := &fakeAdapter{pending: true}
	sub := &RandomnessSignatureAggregation{Groups: groups, Signatures: sigs, Adapter: adapter}

	sub.fulfill(1, entry)

	require.Equal(t, 1, adapter.fulfillCalls)
	assert.NoError(t, bls.Verify(groupPublicKey, msg, adapter.lastSignature))
	assert.Len(t, adapter.lastParticipants, threshold)

	got, ok := sigs.Get(task.RequestID)
	require.True(t, ok)
	assert.Equal(t, types.SignatureCommitted, got.State)
	assert.Equal(t, 1, got.CommittedTimes)
}

func TestRandomnessSignatureAggregationSkipsWhenAlreadyFulfilled(t *testing.T) {
	const n, threshold = 3, 2
	shares, groupPublicKey := genShares(t, n, threshold)

	groups := cache.NewGroupCache()
	groups.Set(types.GroupState{Index: 0, Size: n, Threshold: threshold, Ready: true, GroupPublicKey: groupPublicKey})

	msg := []byte("m")
	task := types.Task{RequestID: types.NewRequestID([]byte("req-2")), GroupIndex: 0}

	partials := map[types.Address][]byte{}
	for i := 0; i < threshold; i++ {
		scalarBytes, err := shares[i].V.MarshalBinary()
		require.NoError(t, err)
		p, err := bls.PartialSign(shares[i].I, scalarBytes, msg)
		require.NoError(t, err)
		partials[addr(byte(i+1))] = p
	}

	sigs := cache.NewSignatureCache()
	require.NoError(t, sigs.Insert(0, threshold, task, msg))
	for a, p := range partials {
		require.NoError(t, sigs.AddPartial(task.RequestID, a, msg, p))
	}

	entry := types.PartialSignatureCacheEntry{
		GroupIndex: 0,
		Task:       task,
		Message:    msg,
		Threshold:  threshold,
		Partials:   partials,
	}

	adapter := &fakeAdapter{pending: false}
	sub := &RandomnessSignatureAggregation{Groups: groups, Signatures: sigs, Adapter: adapter}

	sub.fulfill(1, entry)

	assert.Equal(t, 0, adapter.fulfillCalls)
	got, ok := sigs.Get(task.RequestID)
	require.True(t, ok)
	assert.Equal(t, types.SignatureCommittedByOthers, got.State)
}
