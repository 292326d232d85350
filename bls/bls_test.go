package bls

import (
	"testing"

	"github.com/drand/kyber/share"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// genGroup builds an (n, t) Shamir sharing of a fresh secret and
// returns each party's share scalar plus the group public key, mimicking
// what a successful DKG run hands back to the caches.
func genGroup(t *testing.T, n, threshold int) (shares []*share.PriShare, groupPublicKey []byte, partialPublicKeys [][]byte) {
	t.Helper()
	secret := Suite.G2().Scalar().Pick(Suite.RandomStream())
	priPoly := share.NewPriPoly(Suite.G2(), threshold, secret, Suite.RandomStream())
	pubPoly := priPoly.Commit(Suite.G2().Point().Base())

	priShares := priPoly.Shares(n)
	for _, s := range priShares {
		shares = append(shares, s)
		pub := pubPoly.Eval(s.I).V
		b, err := pub.MarshalBinary()
		require.NoError(t, err)
		partialPublicKeys = append(partialPublicKeys, b)
	}
	pubBytes, err := pubPoly.Commit().MarshalBinary()
	require.NoError(t, err)
	return shares, pubBytes, partialPublicKeys
}

func TestPartialSignVerifyAggregate(t *testing.T) {
	const n, threshold = 3, 2
	shares, groupPublicKey, partialPublicKeys := genGroup(t, n, threshold)

	msg := []byte("scenario-a-request-0x0102")

	var partials [][]byte
	for i, s := range shares {
		scalarBytes, err := s.V.MarshalBinary()
		require.NoError(t, err)

		partial, err := PartialSign(s.I, scalarBytes, msg)
		require.NoError(t, err)

		require.NoError(t, PartialVerify(partialPublicKeys[i], msg, partial))
		partials = append(partials, partial)
	}

	sig, err := Aggregate(groupPublicKey, msg, threshold, n, partials[:threshold])
	require.NoError(t, err)
	assert.NoError(t, Verify(groupPublicKey, msg, sig))
}

func TestPartialVerifyRejectsWrongMessage(t *testing.T) {
	shares, _, partialPublicKeys := genGroup(t, 3, 2)
	scalarBytes, err := shares[0].V.MarshalBinary()
	require.NoError(t, err)

	partial, err := PartialSign(shares[0].I, scalarBytes, []byte("m1"))
	require.NoError(t, err)

	assert.Error(t, PartialVerify(partialPublicKeys[0], []byte("m2"), partial))
}

func TestAggregationVerifyOnSameMsgLengthMismatch(t *testing.T) {
	err := AggregationVerifyOnSameMsg([][]byte{{1}}, []byte("m"), nil)
	assert.Error(t, err)
}
