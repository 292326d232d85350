package dkg

import (
	"crypto/sha256"

	"github.com/drand/kyber"
)

// sharedSecret derives a symmetric key from an ECDH exchange between
// this node's DKG private scalar and the recipient's DKG public point,
// the same shared-secret-then-stream-cipher shape drand's own
// encrypted-share exchange uses, rather than hand-rolling a
// pairing-based scheme from scratch.
func sharedSecret(priv kyber.Scalar, pub kyber.Point) []byte {
	point := group.Point().Mul(priv, pub)
	b, _ := point.MarshalBinary()
	sum := sha256.Sum256(b)
	return sum[:]
}

// encryptShare XORs plaintext (a marshaled PriShare.V) against a
// keystream derived from secret via repeated SHA-256 expansion. This is
// a one-time-pad over a fixed-length scalar encoding, not a
// general-purpose AEAD — sufficient for one share, never reused with
// the same secret twice.
func encryptShare(secret, plaintext []byte) []byte {
	stream := expand(secret, len(plaintext))
	out := make([]byte, len(plaintext))
	for i := range plaintext {
		out[i] = plaintext[i] ^ stream[i]
	}
	return out
}

// decryptShare is encryptShare's inverse (XOR is self-inverse).
func decryptShare(secret, ciphertext []byte) []byte {
	return encryptShare(secret, ciphertext)
}

func expand(secret []byte, n int) []byte {
	out := make([]byte, 0, n)
	block := secret
	for len(out) < n {
		sum := sha256.Sum256(block)
		out = append(out, sum[:]...)
		block = sum[:]
	}
	return out[:n]
}
