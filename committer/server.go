package committer

import (
	"context"
	"net"
	"strconv"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"

	"github.com/arpa-network/randcast-node/bls"
	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/metrics"
	"github.com/arpa-network/randcast-node/types"
)

// Server is the inbound half of the committer protocol: the
// CommitPartialSignature RPC. It is authenticated only by an
// inclusion check against the group's on-chain member set plus
// partial-signature verification — there is no separate transport-level
// auth.
type Server struct {
	SelfAddr   types.Address
	Groups     *cache.GroupCache
	Signatures *cache.SignatureCache

	grpcServer *grpc.Server
}

// NewServer builds the underlying *grpc.Server with the
// grpc-middleware/grpc-prometheus interceptor chain, then registers s
// against it.
func NewServer(s *Server) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
			grpc_prometheus.UnaryServerInterceptor,
		)),
	)
	registerCommitterServer(grpcServer, s)
	grpc_prometheus.Register(grpcServer)
	s.grpcServer = grpcServer
	return grpcServer
}

// Serve blocks accepting connections on lis until the server is
// stopped.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Stop gracefully drains in-flight RPCs then shuts the server down.
func (s *Server) Stop() {
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
}

// CommitPartialSignature implements the inbound RPC: verify the sender
// is a member of the already-known task's group with a registered
// partial public key (MemberNotExisted otherwise), verify its
// partial against its registered partial public key, and store it into
// the local signature cache. Rejections follow this taxonomy:
// TaskNotFound if this node has not yet seen the task itself
// (only a committer inserts an entry), NotCommitter if
// this node is not itself a committer for the task's group,
// GroupNotReady if the group is not ready, InvalidTaskMessage if the
// message does not match the cached task (delegated to
// SignatureCache.AddPartial).
func (s *Server) CommitPartialSignature(ctx context.Context, req *CommitPartialSignatureRequest) (*CommitPartialSignatureResponse, error) {
	id := types.NewRequestID(req.RequestId)
	sender := types.BytesToAddress(req.IdAddress)
	chainIDLabel := strconv.FormatUint(uint64(req.ChainId), 10)

	entry, ok := s.Signatures.Get(id)
	if !ok {
		metrics.PartialSignaturesRejected.WithLabelValues(chainIDLabel, "task_not_found").Inc()
		return nil, errs.New(errs.TaskNotFound, "committer.Server.CommitPartialSignature", nil)
	}

	if !s.Groups.IsCommitter(entry.GroupIndex, s.SelfAddr) {
		metrics.PartialSignaturesRejected.WithLabelValues(chainIDLabel, "not_committer").Inc()
		return nil, errs.New(errs.NotCommitter, "committer.Server.CommitPartialSignature", nil)
	}

	group, ok := s.Groups.Get(entry.GroupIndex)
	if !ok || !group.Ready {
		metrics.PartialSignaturesRejected.WithLabelValues(chainIDLabel, "group_not_ready").Inc()
		return nil, errs.New(errs.GroupNotReady, "committer.Server.CommitPartialSignature", nil)
	}

	member, ok := group.Members[sender]
	if !ok || len(member.PartialPublicKey) == 0 {
		metrics.PartialSignaturesRejected.WithLabelValues(chainIDLabel, "member_not_existed").Inc()
		return nil, errs.New(errs.MemberNotExisted, "committer.Server.CommitPartialSignature", nil)
	}

	if err := bls.PartialVerify(member.PartialPublicKey, req.Message, req.PartialSignature); err != nil {
		metrics.PartialSignaturesRejected.WithLabelValues(chainIDLabel, "bls_failure").Inc()
		return nil, errs.New(errs.BLSFailure, "committer.Server.CommitPartialSignature", err)
	}

	if err := s.Signatures.AddPartial(id, sender, req.Message, req.PartialSignature); err != nil {
		metrics.PartialSignaturesRejected.WithLabelValues(chainIDLabel, "invalid_task_message").Inc()
		return nil, err
	}

	logger.Debug("accepted partial signature", "requestId", id, "sender", sender, "groupIndex", entry.GroupIndex)
	return &CommitPartialSignatureResponse{Result: true}, nil
}
