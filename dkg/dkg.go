// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

// Package dkg drives the joint-Feldman distributed key generation
// protocol, phase by phase, against a contract.CoordinatorBoard
// bulletin board: wait for a phase to open, publish this node's
// payload, wait for the phase to close, collect every participant's
// payload, and move on — running Phase 3 before the output only when
// Phase 2 recorded a complaint.
//
// The actual Shamir share arithmetic and point commitments are kyber's
// (github.com/drand/kyber/share), the same primitive the bls package
// uses for signing; this package is the orchestration around it rather
// than a from-scratch pairing-curve implementation.
package dkg

import (
	"bytes"
	"encoding/gob"

	"github.com/drand/kyber"
	"github.com/drand/kyber/share"

	"github.com/arpa-network/randcast-node/bls"
	"github.com/arpa-network/randcast-node/log"
)

var logger = log.NewModuleLogger(log.DKGCore)

// group is the kyber Group DKG shares are drawn over. drand's own key
// package shares the same choice: G2, the group public keys live in.
var group = bls.Suite.G2()

// Node is one DKG participant: its index in the group (the share
// index tbls.Sign/Recover key off of) and its long-lived DKG public
// key, used both to address encrypted deals to it and to verify its
// published payloads.
type Node struct {
	Index     int
	PublicKey kyber.Point
}

// Deal is Phase 0's output: the dealer's polynomial commitments (so
// recipients can verify their share without trusting the dealer) plus
// one encrypted share per recipient index.
type Deal struct {
	DealerIndex     int
	Commits         [][]byte          // marshaled kyber.Point, PubPoly commitments
	EncryptedShares map[int][]byte    // recipient index -> ECIES(shared secret, marshaled PriShare.V)
}

// Response is Phase 1's output: this node's verdict on every dealer's
// share to it — approved (true) or disputed (false). No reason is
// recorded for a dispute.
type Response struct {
	ReporterIndex int
	Approvals     map[int]bool
}

// Justification is Phase 2's output, published only when Phase 1
// recorded at least one dispute: the disputed dealer reveals its share
// to the disputing party in the clear so every other participant can
// independently verify the complaint.
type Justification struct {
	DealerIndex int
	Shares      map[int][]byte // disputer index -> marshaled PriShare.V, unencrypted
}

func marshalBundle(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshalBundle(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// randomStream is the DKG protocol's source of entropy for generating
// this node's secret polynomial; wrapped so tests can substitute a
// deterministic stream. Shares the suite's own stream, the same
// entropy source bls.NewKeyPair uses.
var randomStream = bls.Suite.RandomStream

// newPriPoly builds this node's degree-(threshold-1) secret sharing
// polynomial, optionally around a fixed secret (nil draws a fresh
// random one, the normal case — RunDKG never pins a secret).
func newPriPoly(threshold int, secret kyber.Scalar) *share.PriPoly {
	return share.NewPriPoly(group, threshold, secret, randomStream())
}
