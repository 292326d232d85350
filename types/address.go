// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.
//
// The randcast-node library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package types

import (
	"encoding/hex"
	"strings"

	"github.com/arpa-network/randcast-node/errs"
)

// AddressLength is the byte length of an on-chain account address.
const AddressLength = 20

// Address is a 20-byte on-chain account identifier: node identities,
// group members, requesters and committers are all addressed this way.
type Address [AddressLength]byte

// BytesToAddress right-aligns b into an Address, truncating on the
// left if b is longer than AddressLength.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// HexToAddress parses a "0x"-prefixed or bare hex string.
func HexToAddress(s string) (Address, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, errs.New(errs.AddressFormatError, "HexToAddress", err)
	}
	if len(b) != AddressLength {
		return Address{}, errs.New(errs.AddressFormatError, "HexToAddress", nil)
	}
	return BytesToAddress(b), nil
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) IsZero() bool { return a == Address{} }
