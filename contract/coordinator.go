// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

// Package contract declares the outbound RPC surfaces this node needs
// for the coordinator board, controller, adapter, node registry and
// controller-relayer contracts. Wire encoding (ABI, ethclient dialing)
// is explicitly out of scope — these are narrow Go
// interfaces in the style of client.Client.CallContext
// wrappers (one method per RPC, context.Context first, typed result),
// so that dkg/listener/subscriber code can depend on an interface and
// a production implementation can be swapped in behind it without
// touching call sites.
package contract

import "context"

// CoordinatorBoard is the bulletin-board surface DKG participants write
// to and read from during phases 0-2: publish/get_shares/
// get_responses/get_justifications/get_participants/get_dkg_keys/
// in_phase.
type CoordinatorBoard interface {
	// Publish broadcasts this participant's phase payload.
	Publish(ctx context.Context, data []byte) error

	// Shares returns every participant's published deal shares.
	Shares(ctx context.Context) ([][]byte, error)

	// Responses returns every participant's published responses.
	Responses(ctx context.Context) ([][]byte, error)

	// Justifications returns every participant's published
	// justifications (phase 2, only present when a response disputed a
	// deal).
	Justifications(ctx context.Context) ([][]byte, error)

	// Participants returns the ordered set of DKG participant public
	// keys the board was constructed with.
	Participants(ctx context.Context) ([][]byte, error)

	// DKGKeys returns the threshold and the aggregated per-participant
	// public keys once phase 2 has produced them.
	DKGKeys(ctx context.Context) (threshold int, publicKeys [][]byte, err error)

	// InPhase reports which DKG phase the board currently considers
	// itself in (0, 1, 2, or a negative/out-of-range sentinel once
	// finalized or aborted).
	InPhase(ctx context.Context) (int8, error)
}
