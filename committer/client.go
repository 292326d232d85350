package committer

import (
	"context"
	"sync"
	"time"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	lru "github.com/hashicorp/golang-lru"
	"google.golang.org/grpc"

	"github.com/arpa-network/randcast-node/types"
)

// connCacheSize bounds how many peer connections Client keeps open at
// once; committer sets are small (group size), but a long-lived node
// accumulates membership across many groups over its lifetime.
const connCacheSize = 256

// dialTimeout bounds how long Client.dial blocks establishing a new
// connection before giving up and letting the caller's Retry wrapper
// try again.
const dialTimeout = 5 * time.Second

// Client is the outbound half of the committer protocol: it implements
// subscriber.CommitterClient against real peer endpoints, dialing
// lazily and caching connections in an LRU (hashicorp/golang-lru)
// rather than dialing fresh per call.
type Client struct {
	SelfAddr types.Address

	mu    sync.Mutex
	conns *lru.Cache
}

// NewClient builds a Client with an empty connection cache. Every
// outbound request is stamped with selfAddr so the receiving server
// can resolve the sender's registered partial public key.
func NewClient(selfAddr types.Address) *Client {
	conns, err := lru.NewWithEvict(connCacheSize, func(_ interface{}, value interface{}) {
		if conn, ok := value.(*grpc.ClientConn); ok {
			conn.Close()
		}
	})
	if err != nil {
		panic(err)
	}
	return &Client{SelfAddr: selfAddr, conns: conns}
}

// CommitPartialSignature dials endpoint (reusing a cached connection
// when one exists) and forwards this node's partial signature for id.
// Callers wrap this in chain.Retry — a single call here never retries
// on its own.
func (c *Client) CommitPartialSignature(ctx context.Context, endpoint string, chainID uint64, taskType types.TaskType, id types.RequestID, message, partial []byte) error {
	conn, err := c.dial(ctx, endpoint)
	if err != nil {
		return err
	}

	req := &CommitPartialSignatureRequest{
		IdAddress:        c.SelfAddr.Bytes(),
		ChainId:          uint32(chainID),
		TaskType:         int32(taskType),
		RequestId:        id.Bytes(),
		Message:          message,
		PartialSignature: partial,
	}

	resp, err := invokeCommitPartialSignature(ctx, conn, req)
	if err != nil {
		c.evict(endpoint)
		return err
	}
	if !resp.Result {
		return errCommitRejected
	}
	return nil
}

func (c *Client) dial(ctx context.Context, endpoint string) (*grpc.ClientConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.conns.Get(endpoint); ok {
		return v.(*grpc.ClientConn), nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(dialCtx, endpoint,
		grpc.WithInsecure(),
		grpc.WithBlock(),
		grpc.WithUnaryInterceptor(grpc_middleware.ChainUnaryClient(
			grpc_prometheus.UnaryClientInterceptor,
		)),
	)
	if err != nil {
		return nil, err
	}
	c.conns.Add(endpoint, conn)
	return conn, nil
}

func (c *Client) evict(endpoint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns.Remove(endpoint)
}
