// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.
//
// The randcast-node library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package bls is the node's single monomorphization of a "Curve" and
// "ThresholdScheme" boundary: one concrete pairing suite (BLS12-381,
// via drand/kyber-bls12381) and one concrete threshold scheme (BLS
// over G1 with shares in G2 produced by the dkg package), each wrapped
// behind plain byte-slice signatures so every other package treats
// keys/signatures as opaque blobs. Built on github.com/drand/kyber and
// github.com/drand/kyber-bls12381, the same pairing stack drand's own
// randomness beacon uses.
package bls

import (
	"github.com/drand/kyber"
	"github.com/drand/kyber/share"
	"github.com/drand/kyber/sign/bls"
	"github.com/drand/kyber/sign/tbls"
	bls12381 "github.com/drand/kyber-bls12381"

	"github.com/arpa-network/randcast-node/errs"
)

// Suite is the process-wide pairing suite. It is a package-level value,
// not a per-call generic parameter: every caller in the node shares
// this one chosen curve.
var Suite = bls12381.NewBLS12381Suite()

// NewKeyPair generates a fresh DKG scalar/point pair for this node,
// returned as opaque marshaled bytes (types.NodeIdentity stores them
// this way so it never needs to import kyber itself).
func NewKeyPair() (privateKey, publicKey []byte, err error) {
	scalar := Suite.G2().Scalar().Pick(Suite.RandomStream())
	point := Suite.G2().Point().Mul(scalar, nil)
	privateKey, err = scalar.MarshalBinary()
	if err != nil {
		return nil, nil, errs.New(errs.Serialization, "bls.NewKeyPair", err)
	}
	publicKey, err = point.MarshalBinary()
	if err != nil {
		return nil, nil, errs.New(errs.Serialization, "bls.NewKeyPair", err)
	}
	return privateKey, publicKey, nil
}

func unmarshalScalar(b []byte) (kyber.Scalar, error) {
	s := Suite.G2().Scalar()
	if err := s.UnmarshalBinary(b); err != nil {
		return nil, errs.New(errs.Serialization, "bls.unmarshalScalar", err)
	}
	return s, nil
}

func unmarshalPoint(b []byte) (kyber.Point, error) {
	p := Suite.G2().Point()
	if err := p.UnmarshalBinary(b); err != nil {
		return nil, errs.New(errs.Serialization, "bls.unmarshalPoint", err)
	}
	return p, nil
}

// PartialSign produces this node's contribution to a threshold
// signature over msg, given its share index and scalar share of the
// group private key. The returned bytes embed the share index (as
// tbls.SigShare requires) so Aggregate can recover which polynomial
// point each partial corresponds to.
func PartialSign(shareIndex int, shareScalar []byte, msg []byte) ([]byte, error) {
	scalar, err := unmarshalScalar(shareScalar)
	if err != nil {
		return nil, err
	}
	priShare := &share.PriShare{I: shareIndex, V: scalar}
	sig, err := tbls.Sign(Suite, priShare, msg)
	if err != nil {
		return nil, errs.New(errs.BLSFailure, "bls.PartialSign", err)
	}
	return sig, nil
}

// PartialVerify checks a partial signature against the sender's
// partial public key (that share's point on the group public
// polynomial, evaluated at its index) and msg. Callers must verify
// before accepting a partial into PartialSignatureCache; Aggregate
// itself performs no verification.
//
// partial is tbls.SigShare's wire format: a 2-byte big-endian share
// index followed by the raw BLS signature bytes. tbls.Verify reads the
// index itself and evaluates pubPoly at it, so a degree-0 polynomial
// whose only coefficient is the sender's own partial public key (the
// same construction Aggregate uses for the full group key) verifies
// the share regardless of which index it carries.
func PartialVerify(partialPublicKey []byte, msg []byte, partial []byte) error {
	point, err := unmarshalPoint(partialPublicKey)
	if err != nil {
		return err
	}
	pubPoly := share.NewPubPoly(Suite.G2(), Suite.G2().Point().Base(), []kyber.Point{point})
	if err := tbls.Verify(Suite, pubPoly, msg, partial); err != nil {
		return errs.New(errs.BLSFailure, "bls.PartialVerify", err)
	}
	return nil
}

// Aggregate combines threshold-or-more partial signatures into a full
// group signature. It performs no verification of its inputs; a
// malformed or unverified partial silently corrupts the output instead
// of being rejected — callers that want rejection must
// PartialVerify every input first.
func Aggregate(groupPublicKey []byte, msg []byte, threshold, size int, partials [][]byte) ([]byte, error) {
	pub, err := unmarshalPoint(groupPublicKey)
	if err != nil {
		return nil, err
	}
	pubPoly := share.NewPubPoly(Suite.G2(), Suite.G2().Point().Base(), []kyber.Point{pub})
	sig, err := tbls.Recover(Suite, pubPoly, msg, partials, threshold, size)
	if err != nil {
		return nil, errs.New(errs.ThresholdFailure, "bls.Aggregate", err)
	}
	return sig, nil
}

// Verify checks a full (aggregated) group signature.
func Verify(groupPublicKey []byte, msg []byte, sig []byte) error {
	pub, err := unmarshalPoint(groupPublicKey)
	if err != nil {
		return err
	}
	if err := bls.Verify(Suite, pub, msg, sig); err != nil {
		return errs.New(errs.BLSFailure, "bls.Verify", err)
	}
	return nil
}

// AggregationVerifyOnSameMsg batch-verifies a set of partials against
// their corresponding partial public keys, all over the same message —
// used by the committer server to validate every partial it receives
// before it touches the signature cache.
func AggregationVerifyOnSameMsg(partialPublicKeys [][]byte, msg []byte, partials [][]byte) error {
	if len(partialPublicKeys) != len(partials) {
		return errs.New(errs.Serialization, "bls.AggregationVerifyOnSameMsg", nil)
	}
	for i := range partials {
		if err := PartialVerify(partialPublicKeys[i], msg, partials[i]); err != nil {
			return err
		}
	}
	return nil
}
