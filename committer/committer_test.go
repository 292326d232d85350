package committer

import (
	"context"
	"testing"

	"github.com/drand/kyber/share"
	"github.com/stretchr/testify/require"

	"github.com/arpa-network/randcast-node/bls"
	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/types"
)

func addr(b byte) types.Address {
	var a types.Address
	a[len(a)-1] = b
	return a
}

// testGroup builds a 3-node/threshold-2 group with real BLS key
// material, self seated as a committer, one other member (peer) whose
// partial public key is derivable for PartialVerify.
func testGroup(t *testing.T, self, peer types.Address) (types.GroupState, *share.PriShare, *share.PriShare) {
	t.Helper()
	const n, threshold = 3, 2

	secret := bls.Suite.G2().Scalar().Pick(bls.Suite.RandomStream())
	priPoly := share.NewPriPoly(bls.Suite.G2(), threshold, secret, bls.Suite.RandomStream())
	pubPoly := priPoly.Commit(bls.Suite.G2().Point().Base())
	groupPub, err := pubPoly.Commit().MarshalBinary()
	require.NoError(t, err)

	shares := priPoly.Shares(n)
	selfShare, peerShare := shares[0], shares[1]

	selfPub, err := pubPoly.Eval(selfShare.I).V.MarshalBinary()
	require.NoError(t, err)
	peerPub, err := pubPoly.Eval(peerShare.I).V.MarshalBinary()
	require.NoError(t, err)

	g := types.GroupState{
		Index:          0,
		Size:           n,
		Threshold:      threshold,
		Ready:          true,
		GroupPublicKey: groupPub,
		Members: map[types.Address]types.Member{
			self: {Index: selfShare.I, Address: self, PartialPublicKey: selfPub},
			peer: {Index: peerShare.I, Address: peer, PartialPublicKey: peerPub},
		},
		Committers: []types.Address{self, peer},
	}
	return g, selfShare, peerShare
}

func TestServerAcceptsValidPartial(t *testing.T) {
	self, peer := addr(1), addr(2)
	g, _, peerShare := testGroup(t, self, peer)

	groups := cache.NewGroupCache()
	groups.Set(g)

	sigs := cache.NewSignatureCache()
	task := types.Task{RequestID: types.NewRequestID([]byte("req")), GroupIndex: 0}
	msg := []byte("message")
	require.NoError(t, sigs.Insert(0, g.Threshold, task, msg))

	scalarBytes, err := peerShare.V.MarshalBinary()
	require.NoError(t, err)
	partial, err := bls.PartialSign(peerShare.I, scalarBytes, msg)
	require.NoError(t, err)

	srv := &Server{SelfAddr: self, Groups: groups, Signatures: sigs}
	resp, err := srv.CommitPartialSignature(context.Background(), &CommitPartialSignatureRequest{
		IdAddress:        peer.Bytes(),
		RequestId:        task.RequestID.Bytes(),
		Message:          msg,
		PartialSignature: partial,
	})
	require.NoError(t, err)
	require.True(t, resp.Result)

	entry, ok := sigs.Get(task.RequestID)
	require.True(t, ok)
	_, got := entry.Partials[peer]
	require.True(t, got)
}

func TestServerRejectsMismatchedMessage(t *testing.T) {
	self, peer := addr(1), addr(2)
	g, _, peerShare := testGroup(t, self, peer)

	groups := cache.NewGroupCache()
	groups.Set(g)

	sigs := cache.NewSignatureCache()
	task := types.Task{RequestID: types.NewRequestID([]byte("req")), GroupIndex: 0}
	cachedMsg := []byte("m1")
	require.NoError(t, sigs.Insert(0, g.Threshold, task, cachedMsg))

	foreignMsg := []byte("m2")
	scalarBytes, err := peerShare.V.MarshalBinary()
	require.NoError(t, err)
	partial, err := bls.PartialSign(peerShare.I, scalarBytes, foreignMsg)
	require.NoError(t, err)

	srv := &Server{SelfAddr: self, Groups: groups, Signatures: sigs}
	_, err = srv.CommitPartialSignature(context.Background(), &CommitPartialSignatureRequest{
		IdAddress:        peer.Bytes(),
		RequestId:        task.RequestID.Bytes(),
		Message:          foreignMsg,
		PartialSignature: partial,
	})
	require.Error(t, err)

	entry, ok := sigs.Get(task.RequestID)
	require.True(t, ok)
	require.Equal(t, cachedMsg, entry.Message)
	_, got := entry.Partials[peer]
	require.False(t, got, "cache must be unchanged on rejection")
}

func TestServerRejectsUnknownTask(t *testing.T) {
	self, peer := addr(1), addr(2)
	g, _, peerShare := testGroup(t, self, peer)

	groups := cache.NewGroupCache()
	groups.Set(g)
	sigs := cache.NewSignatureCache()

	scalarBytes, err := peerShare.V.MarshalBinary()
	require.NoError(t, err)
	msg := []byte("m")
	partial, err := bls.PartialSign(peerShare.I, scalarBytes, msg)
	require.NoError(t, err)

	srv := &Server{SelfAddr: self, Groups: groups, Signatures: sigs}
	_, err = srv.CommitPartialSignature(context.Background(), &CommitPartialSignatureRequest{
		IdAddress:        peer.Bytes(),
		RequestId:        []byte("unknown-req"),
		Message:          msg,
		PartialSignature: partial,
	})
	require.Error(t, err)
}

func TestServerRejectsWhenSelfNotCommitter(t *testing.T) {
	self, peer := addr(1), addr(2)
	g, _, peerShare := testGroup(t, self, peer)
	g.Committers = []types.Address{peer} // self excluded

	groups := cache.NewGroupCache()
	groups.Set(g)

	sigs := cache.NewSignatureCache()
	task := types.Task{RequestID: types.NewRequestID([]byte("req")), GroupIndex: 0}
	msg := []byte("m")
	require.NoError(t, sigs.Insert(0, g.Threshold, task, msg))

	scalarBytes, err := peerShare.V.MarshalBinary()
	require.NoError(t, err)
	partial, err := bls.PartialSign(peerShare.I, scalarBytes, msg)
	require.NoError(t, err)

	srv := &Server{SelfAddr: self, Groups: groups, Signatures: sigs}
	_, err = srv.CommitPartialSignature(context.Background(), &CommitPartialSignatureRequest{
		IdAddress:        peer.Bytes(),
		RequestId:        task.RequestID.Bytes(),
		Message:          msg,
		PartialSignature: partial,
	})
	require.Error(t, err)
}
