package subscriber

import (
	"context"

	"github.com/arpa-network/randcast-node/types"
)

// CommitterClient is the outbound half of the committer protocol:
// every member that signs a task forwards its partial
// to each committer, addressed by that committer's advertised RPC
// endpoint. The committer/ package supplies the concrete gRPC
// implementation; this interface is kept here, narrow, so subscriber
// does not import committer's transport machinery.
type CommitterClient interface {
	CommitPartialSignature(ctx context.Context, endpoint string, chainID uint64, taskType types.TaskType, id types.RequestID, message, partial []byte) error
}
