package chainassembly

import (
	"time"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/chain"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/dal"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/scheduler"
	"github.com/arpa-network/randcast-node/subscriber"
	"github.com/arpa-network/randcast-node/types"
)

// Params is everything Assemble needs to wire one chain. IsMainChain
// gates the node-activation and group-relay components: only the main
// chain runs node registration/activation and propagates group
// formations to relayed chains.
type Params struct {
	ChainID     uint64
	IsMainChain bool
	SelfAddr    types.Address

	Controller        contract.Controller
	Adapter           contract.Adapter
	ControllerRelayer contract.ControllerRelayer // required iff IsMainChain
	NodeRegistry      contract.NodeRegistry      // required iff IsMainChain
	Board             contract.CoordinatorBoard
	CommitterClient   subscriber.CommitterClient

	RelayedChainIDs []uint64 // main chain only

	BlockInterval           time.Duration
	DKGTaskPollInterval     time.Duration
	NodeActivationInterval  time.Duration
	PostGroupingInterval    time.Duration
	AggregationInterval     time.Duration
	ReadyToHandleInterval   time.Duration
	GroupRelayPollInterval  time.Duration
	UseJitter               bool

	Retry                     chain.Retry
	DKGTimeoutBlocks          uint64
	ExclusiveWindow           uint64
	WaitForPhaseInterval      time.Duration
	DKGShutdownCheckFrequency time.Duration

	Fixed   *scheduler.Fixed
	Dynamic *scheduler.Dynamic
	Bus     *eventbus.Bus

	Nodes      *cache.NodeCache
	Groups     *cache.GroupCache
	Blocks     *cache.BlockCache
	Tasks      *cache.TaskQueueCache
	Signatures *cache.SignatureCache
	Store      dal.TaskStore
}
