// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

package types

// NodeIdentity is this process's own identity: its on-chain address,
// the RPC endpoint it advertises to committee peers, and its DKG key
// pair. Exactly one cache owns a NodeIdentity per process (cache.NodeCache).
// Address is immutable once set; DKGPrivateKey/DKGPublicKey may be
// regenerated across DKG epochs.
type NodeIdentity struct {
	Address       Address
	RPCEndpoint   string
	DKGPrivateKey []byte // opaque kyber.Scalar encoding, owned by bls
	DKGPublicKey  []byte // opaque kyber.Point encoding, owned by bls
}

func (n *NodeIdentity) HasDKGKeyPair() bool {
	return len(n.DKGPrivateKey) > 0 && len(n.DKGPublicKey) > 0
}
