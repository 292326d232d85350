// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

// Package committer is the gRPC-style committer protocol: a
// CommitPartialSignature RPC, inbound (server, verifying and
// caching peers' partials) and outbound (client, forwarding this
// node's own partial to every committer under retry). There is no
// protoc-generated stub here — the wire messages are hand-declared
// against the legacy github.com/golang/protobuf reflection-based
// codec (struct tags only, no generated marshal code), wired through
// google.golang.org/grpc plus the grpc-middleware and grpc-prometheus
// interceptor chains.
package committer

import (
	"github.com/pkg/errors"

	"github.com/arpa-network/randcast-node/log"
)

var logger = log.NewModuleLogger(log.Committer)

// errCommitRejected surfaces a structurally-successful RPC whose
// Result field reports false, which the legacy protobuf codec itself
// never treats as an error: the CommitPartialSignature RPC returns a
// boolean result rather than a bare status.
var errCommitRejected = errors.New("committer: peer rejected partial signature")
