// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

// Package chain holds per-chain identity (signer, provider endpoint,
// address book) and the retry descriptor every network-touching call
// in the node accepts explicitly, rather than reaching for a
// package-level default via globals.
package chain

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry is the first-class retry policy this node uses for contract
// transactions, contract views, listener reset loops, and the
// commit-partial-signature RPC: {base, factor, max_attempts, use_jitter}.
// It is a plain value, constructed fresh per call site from
// configuration — never read from a package-level default inside the
// call itself.
type Retry struct {
	Base         time.Duration
	Factor       float64
	MaxAttempts  uint64
	UseJitter    bool
}

// backoff builds a cenkalti/backoff/v4 policy from the descriptor,
// bounded to one initial try plus up to MaxAttempts retries.
func (r Retry) backoff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.Base
	eb.Multiplier = r.Factor
	if !r.UseJitter {
		eb.RandomizationFactor = 0
	}
	eb.MaxElapsedTime = 0 // bounded by attempt count below, not wall clock
	return backoff.WithMaxRetries(eb, r.MaxAttempts)
}

// Do runs op under the descriptor's policy, retrying on any error until
// it succeeds, MaxAttempts is exhausted, or ctx is done. It returns the
// last error seen if every attempt fails.
func (r Retry) Do(ctx context.Context, op func(ctx context.Context) error) error {
	return backoff.Retry(func() error {
		return op(ctx)
	}, backoff.WithContext(r.backoff(), ctx))
}

// DoNotify is Do plus a callback invoked after every failed attempt
// that will be retried (not after the final failed attempt), the hook
// listener loops use to log-and-continue.
func (r Retry) DoNotify(ctx context.Context, op func(ctx context.Context) error, notify func(err error, wait time.Duration)) error {
	return backoff.RetryNotify(func() error {
		return op(ctx)
	}, backoff.WithContext(r.backoff(), ctx), notify)
}
