// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.
//
// The randcast-node library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The randcast-node library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.

// Package errs defines the error-kind taxonomy shared by every package
// in the node: serialization/cryptographic failures out of bls and dkg,
// protocol invariant violations raised by the subscribers and the
// committer server, chain-interaction failures out of the contract
// clients, and the handful of data-access/operational kinds listed in
// the design. Kinds are comparable with errors.Is; wrapped errors keep
// their stack via github.com/pkg/errors.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an Error. The zero value is never produced by this
// package.
type Kind int

const (
	_ Kind = iota

	// Serialization: malformed coordinator bundle, partial signature or
	// group element.
	Serialization

	// Cryptographic: BLS verify failure, threshold aggregation failure,
	// DKG protocol failure.
	BLSFailure
	ThresholdFailure
	DKGFailure

	// Protocol invariant.
	NotCommitter
	InvalidTaskType
	InvalidTaskMessage
	GroupNotReady
	MemberNotExisted
	DKGNotStarted
	DKGEnded
	DKGGroupingTwisted
	RepeatedChainID

	// Chain interaction.
	ContractClientError
	ProviderError
	NoTransactionReceipt

	// Data access.
	CacheMiss
	DataAccess

	// Operational.
	RPCNotAvailable
	AddressFormatError

	// Scheduling.
	TaskAlreadyExisted
	TaskNotFound
)

var kindNames = map[Kind]string{
	Serialization:        "serialization",
	BLSFailure:           "bls",
	ThresholdFailure:     "threshold",
	DKGFailure:           "dkg",
	NotCommitter:         "not_committer",
	InvalidTaskType:      "invalid_task_type",
	InvalidTaskMessage:   "invalid_task_message",
	GroupNotReady:        "group_not_ready",
	MemberNotExisted:     "member_not_existed",
	DKGNotStarted:        "dkg_not_started",
	DKGEnded:             "dkg_ended",
	DKGGroupingTwisted:   "dkg_grouping_twisted",
	RepeatedChainID:      "repeated_chain_id",
	ContractClientError:  "contract_client",
	ProviderError:        "provider",
	NoTransactionReceipt: "no_transaction_receipt",
	CacheMiss:            "cache_miss",
	DataAccess:           "data_access",
	RPCNotAvailable:      "rpc_not_available",
	AddressFormatError:   "address_format",
	TaskAlreadyExisted:   "task_already_existed",
	TaskNotFound:         "task_not_found",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the taxonomy type every package in the node returns. Op names
// the failing operation (e.g. "dkg.Phase1", "committer.CommitPartialSignature")
// for log correlation; Err, when present, is the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, errs.New(Kind, "", nil)) to match any *Error
// with the same Kind, regardless of Op/Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error, wrapping err (if any) with a stack via pkg/errors
// so the original call site survives in logs.
func New(kind Kind, op string, err error) *Error {
	if err != nil {
		err = errors.WithStack(err)
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}

// Wrap annotates err with op, preserving err's Kind if it is already an
// *Error, otherwise tagging it DataAccess (the generic catch-all for
// errors that crossed a boundary this package does not classify).
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return New(e.Kind, op, e.Err)
	}
	return New(DataAccess, op, err)
}
