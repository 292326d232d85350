package nodecontext

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arpa-network/randcast-node/config"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/types"
)

type fakeController struct{}

func (fakeController) NodeRegister(context.Context, types.NodeIdentity) error { return nil }
func (fakeController) NodeActivate(context.Context, types.Address) error     { return nil }
func (fakeController) CommitDKG(context.Context, int, int, types.DKGOutput) error {
	return nil
}
func (fakeController) PostProcessDKG(context.Context, int, int) error { return nil }
func (fakeController) GetGroup(context.Context, int) (types.GroupState, error) {
	return types.GroupState{}, nil
}
func (fakeController) GetNode(context.Context, types.Address) (types.NodeIdentity, error) {
	return types.NodeIdentity{}, nil
}
func (fakeController) SubscribeDKGTask(context.Context) (<-chan types.DKGTask, error) {
	return make(chan types.DKGTask), nil
}
func (fakeController) SubscribeNewBlock(context.Context) (<-chan uint64, error) {
	return make(chan uint64), nil
}

type fakeBoard struct{}

func (fakeBoard) Publish(context.Context, []byte) error          { return nil }
func (fakeBoard) Shares(context.Context) ([][]byte, error)       { return nil, nil }
func (fakeBoard) Responses(context.Context) ([][]byte, error)    { return nil, nil }
func (fakeBoard) Justifications(context.Context) ([][]byte, error) {
	return nil, nil
}
func (fakeBoard) Participants(context.Context) ([][]byte, error) { return nil, nil }
func (fakeBoard) DKGKeys(context.Context) (int, [][]byte, error) { return 0, nil, nil }
func (fakeBoard) InPhase(context.Context) (int8, error)          { return -1, nil }

type fakeAdapter struct{}

func (fakeAdapter) RequestRandomness(context.Context, uint64, [32]byte, uint64, *big.Int) (types.RequestID, error) {
	return "", nil
}
func (fakeAdapter) FulfillRandomness(context.Context, types.Task, []byte, []types.Address) error {
	return nil
}
func (fakeAdapter) GetSubscription(context.Context, uint64) (contract.Subscription, error) {
	return contract.Subscription{}, nil
}
func (fakeAdapter) SubscribeNewRandomnessTask(context.Context) (<-chan types.Task, error) {
	return make(chan types.Task), nil
}
func (fakeAdapter) IsTaskPending(context.Context, types.RequestID) (bool, error) {
	return false, nil
}

type fakeNodeRegistry struct{}

func (fakeNodeRegistry) IsRegistered(context.Context, types.Address) (bool, error) { return true, nil }
func (fakeNodeRegistry) IsActive(context.Context, types.Address) (bool, error)      { return true, nil }

type fakeControllerRelayer struct{}

func (fakeControllerRelayer) RelayGroup(context.Context, uint64, int) error { return nil }
func (fakeControllerRelayer) RelayGroupConfirmation(context.Context, types.Task, []byte, []types.Address) error {
	return nil
}

// fakeDialer returns a full, always-succeeding contract set unless
// failOnChainID matches, in which case Dial reports an error — used to
// exercise Deploy's per-chain error aggregation.
type fakeDialer struct {
	failOnChainID uint64
}

func (d fakeDialer) Dial(_ context.Context, cfg config.ChainConfig, isMainChain bool) (ChainContracts, error) {
	if d.failOnChainID != 0 && cfg.ChainID == d.failOnChainID {
		return ChainContracts{}, errDial
	}
	contracts := ChainContracts{Controller: fakeController{}, Adapter: fakeAdapter{}, Board: fakeBoard{}}
	if isMainChain {
		contracts.ControllerRelayer = fakeControllerRelayer{}
		contracts.NodeRegistry = fakeNodeRegistry{}
	}
	return contracts, nil
}

type dialError string

func (e dialError) Error() string { return string(e) }

const errDial = dialError("dial failed")

func testConfig(chainIDs ...uint64) *config.Config {
	cfg := config.DefaultConfig
	cfg.ManagementAddr = ""
	cfg.SQLitePath = ":memory:"
	cfg.Account = config.AccountConfig{PrivateKey: "aabbccdd"}
	for _, id := range chainIDs {
		cfg.Chains = append(cfg.Chains, config.ChainConfig{ChainID: id})
	}
	return &cfg
}

func TestDeployAssemblesEveryConfiguredChain(t *testing.T) {
	cfg := testConfig(1, 2)
	c, err := New(cfg, fakeDialer{})
	require.NoError(t, err)

	err = c.Deploy(context.Background())
	require.NoError(t, err)
	require.Len(t, c.chains, 2)
	require.NotNil(t, c.committerServer)
}

func TestDeployAggregatesPerChainErrors(t *testing.T) {
	cfg := testConfig(1, 2, 3)
	c, err := New(cfg, fakeDialer{failOnChainID: 2})
	require.NoError(t, err)

	err = c.Deploy(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "chain 2")
	require.Len(t, c.chains, 2)
}

func TestSubscribePersistenceSavesNewTasks(t *testing.T) {
	cfg := testConfig(7)
	c, err := New(cfg, fakeDialer{})
	require.NoError(t, err)
	require.NoError(t, c.Deploy(context.Background()))

	state := c.chains[0]
	task := types.Task{RequestID: types.NewRequestID([]byte("req-1")), GroupIndex: 0, Type: types.TaskRandomness}
	state.bus.Publish(eventbus.NewNewRandomnessTaskEvent(7, task))

	stored, err := c.store.Tasks(context.Background(), 7)
	require.NoError(t, err)
	found := false
	for _, s := range stored {
		if s.RequestID == task.RequestID {
			found = true
		}
	}
	require.True(t, found, "expected persisted task to be recoverable from the store")
}
