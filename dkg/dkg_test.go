package dkg

import (
	"testing"

	"github.com/drand/kyber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genNodes(t *testing.T, n int) ([]Node, []kyber.Scalar) {
	t.Helper()
	nodes := make([]Node, n)
	keys := make([]kyber.Scalar, n)
	for i := 0; i < n; i++ {
		priv := group.Scalar().Pick(randomStream())
		pub := group.Point().Mul(priv, nil)
		nodes[i] = Node{Index: i, PublicKey: pub}
		keys[i] = priv
	}
	return nodes, keys
}

func TestDKGHappyPathNoDisputes(t *testing.T) {
	const n, threshold = 3, 2
	nodes, keys := genNodes(t, n)
	g := Group{Threshold: threshold, Nodes: nodes}

	sessions := make([]*session, n)
	for i := 0; i < n; i++ {
		sessions[i] = newSession(i, keys[i], g)
	}

	// Phase 0: every node deals a share to every node, itself included.
	deals := make([]Deal, n)
	for i, s := range sessions {
		deals[i] = s.runPhase0()
	}

	// Phase 1: every node verifies every deal, recording approvals.
	responses := make([]Response, n)
	for i, s := range sessions {
		responses[i] = s.runPhase1(deals)
		for dealer, approved := range responses[i].Approvals {
			assert.Truef(t, approved, "node %d rejected dealer %d's share", i, dealer)
		}
	}

	// Phase 2: no disputes recorded, so no Phase 3 round is needed.
	for _, s := range sessions {
		outcome := s.runPhase2(responses)
		assert.False(t, outcome.needsJustification)
	}

	var groupKeys [][]byte
	var partials [][]byte
	for _, s := range sessions {
		groupPub, partialPub, _, disqualified, err := s.finalize()
		require.NoError(t, err)
		assert.Empty(t, disqualified)

		b, _ := groupPub.MarshalBinary()
		groupKeys = append(groupKeys, b)

		pb, _ := partialPub.MarshalBinary()
		partials = append(partials, pb)
	}

	for i := 1; i < n; i++ {
		assert.Equal(t, groupKeys[0], groupKeys[i], "every node must agree on the group public key")
	}
	for i := 1; i < n; i++ {
		assert.NotEqual(t, partials[0], partials[i], "distinct nodes must not share a partial public key")
	}
}

func TestDKGPhase1RejectsTamperedShare(t *testing.T) {
	const n, threshold = 3, 2
	nodes, keys := genNodes(t, n)
	g := Group{Threshold: threshold, Nodes: nodes}

	dealer := newSession(0, keys[0], g)
	verifier := newSession(1, keys[1], g)

	deal := dealer.runPhase0()
	deal.EncryptedShares[1] = []byte("not a valid encrypted share")

	resp := verifier.runPhase1([]Deal{deal})
	assert.False(t, resp.Approvals[0])
}
