// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.
//
// The randcast-node library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package nodecontext is the top-level assembly point: it turns a
// loaded config.Config plus a set of dialed per-chain contract clients
// into a running node — one eventbus.Bus, cache set, and
// chainassembly.Assemble call per configured chain, all sharing one
// process-wide fixed/dynamic scheduler pair, committer client/server,
// management server, and task store, in the spirit of node.Node
// (node/node.go) owning every long-lived service a process runs and
// starting them together from one place.
package nodecontext

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/multierr"

	"github.com/arpa-network/randcast-node/bls"
	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/chainassembly"
	"github.com/arpa-network/randcast-node/committer"
	"github.com/arpa-network/randcast-node/config"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/dal"
	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/log"
	"github.com/arpa-network/randcast-node/management"
	"github.com/arpa-network/randcast-node/scheduler"
	"github.com/arpa-network/randcast-node/types"
)

var logger = log.NewModuleLogger(log.ChainContext)

// ChainContracts is the set of on-chain RPC surfaces one configured
// chain needs. Wire encoding (ABI, RPC dialing) is explicitly out of
// scope (contract/*.go package doc): a Context never constructs these
// itself, it only wires whatever a Dialer hands back into
// chainassembly.Params.
type ChainContracts struct {
	Controller        contract.Controller
	Adapter           contract.Adapter           // nil on a chain with no randomness adapter deployed
	ControllerRelayer contract.ControllerRelayer // required iff this is the main chain
	NodeRegistry      contract.NodeRegistry      // required iff this is the main chain
	Board             contract.CoordinatorBoard
}

// Dialer is the external boundary a deployment supplies its own
// implementation of, establishing the RPC clients for one configured
// chain. No in-tree implementation exists: contract wire encoding is
// out of this repository's scope.
type Dialer interface {
	Dial(ctx context.Context, cfg config.ChainConfig, isMainChain bool) (ChainContracts, error)
}

// chainState is the per-chain half of a Context: everything
// chainassembly.Params needs that is not shared process-wide.
type chainState struct {
	cfg    config.ChainConfig
	bus    *eventbus.Bus
	groups *cache.GroupCache
	blocks *cache.BlockCache
	tasks  *cache.TaskQueueCache
	sigs   *cache.SignatureCache
}

// Context owns every long-lived service a node process runs: the
// shared fixed/dynamic schedulers, the single process-wide node
// identity, the committer client/server pair, the management HTTP
// server, the task store, and one chainState per configured chain.
type Context struct {
	cfg      *config.Config
	dialer   Dialer
	selfAddr types.Address

	fixed   *scheduler.Fixed
	dynamic *scheduler.Dynamic
	nodes   *cache.NodeCache

	committerClient *committer.Client
	committerServer *committer.Server
	management      *management.Server
	store           dal.TaskStore

	chains []*chainState
}

// New resolves the node's signing address, mints a fresh DKG key pair
// (on every start; the pair is held only in memory), and builds the shared process-wide
// services. It does not yet dial any chain or start anything —
// that is Deploy's job.
func New(cfg *config.Config, dialer Dialer) (*Context, error) {
	selfAddr, err := config.ResolveAddress(cfg.Account)
	if err != nil {
		return nil, err
	}

	store, err := dal.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	nodes := cache.NewNodeCache()
	priv, pub, err := bls.NewKeyPair()
	if err != nil {
		return nil, errs.New(errs.BLSFailure, "nodecontext.New", err)
	}
	nodes.Set(types.NodeIdentity{
		Address:       selfAddr,
		RPCEndpoint:   cfg.NodeRPCEndpoint,
		DKGPrivateKey: priv,
		DKGPublicKey:  pub,
	})

	committerClient := committer.NewClient(selfAddr)

	c := &Context{
		cfg:             cfg,
		dialer:          dialer,
		selfAddr:        selfAddr,
		fixed:           scheduler.NewFixed(),
		dynamic:         scheduler.NewDynamic(),
		nodes:           nodes,
		committerClient: committerClient,
		store:           store,
	}

	if cfg.ManagementAddr != "" {
		c.management = management.NewServer(cfg.ManagementAddr, c.fixed, cfg.ManagementToken)
	}

	return c, nil
}

// Deploy dials every configured chain's contracts, hydrates each
// chain's task-queue cache from the store, wires a committer RPC
// server on the main chain's identity, and assembles each chain.
// Per-chain dial/assembly failures are aggregated with multierr
// rather than aborting at the first failure, so one misconfigured
// relayed chain does not prevent the rest of the node from starting.
func (c *Context) Deploy(ctx context.Context) error {
	var errOut error

	for i, chainCfg := range c.cfg.Chains {
		isMainChain := i == 0
		state, err := c.deployChain(ctx, chainCfg, isMainChain)
		if err != nil {
			errOut = multierr.Append(errOut, fmt.Errorf("chain %d: %w", chainCfg.ChainID, err))
			continue
		}
		c.chains = append(c.chains, state)
	}

	return errOut
}

func (c *Context) deployChain(ctx context.Context, chainCfg config.ChainConfig, isMainChain bool) (*chainState, error) {
	contracts, err := c.dialer.Dial(ctx, chainCfg, isMainChain)
	if err != nil {
		return nil, err
	}
	if err := c.validateContracts(contracts, isMainChain); err != nil {
		return nil, err
	}

	state := &chainState{
		cfg:    chainCfg,
		bus:    eventbus.New(),
		groups: cache.NewGroupCache(),
		blocks: cache.NewBlockCache(),
		tasks:  cache.NewTaskQueueCache(),
		sigs:   cache.NewSignatureCache(),
	}

	if err := c.hydrateTasks(ctx, state); err != nil {
		return nil, err
	}
	c.subscribePersistence(state)

	var relayedChainIDs []uint64
	if isMainChain {
		for _, relayed := range c.cfg.RelayedChains() {
			relayedChainIDs = append(relayedChainIDs, relayed.ChainID)
		}
	}

	retry := chainCfg.Retry.ToRetry()
	limits := c.cfg.TimeLimits

	params := chainassembly.Params{
		ChainID:     chainCfg.ChainID,
		IsMainChain: isMainChain,
		SelfAddr:    c.selfAddr,

		Controller:        contracts.Controller,
		Adapter:           contracts.Adapter,
		ControllerRelayer: contracts.ControllerRelayer,
		NodeRegistry:      contracts.NodeRegistry,
		Board:             contracts.Board,
		CommitterClient:   c.committerClient,

		RelayedChainIDs: relayedChainIDs,

		BlockInterval:          c.cfg.ListenerInterval("Block", limits.BlockInterval()),
		DKGTaskPollInterval:    c.cfg.ListenerInterval("PreGrouping", limits.DKGTaskPollInterval()),
		NodeActivationInterval: c.cfg.ListenerInterval("NodeActivation", limits.NodeActivationInterval()),
		PostGroupingInterval:   c.cfg.ListenerInterval("PostGrouping", limits.PostGroupingInterval()),
		AggregationInterval:    c.cfg.ListenerInterval("RandomnessSignatureAggregation", limits.AggregationInterval()),
		ReadyToHandleInterval:  c.cfg.ListenerInterval("ReadyToHandleRandomnessTask", limits.ReadyToHandleInterval()),
		GroupRelayPollInterval: c.cfg.ListenerInterval("NewGroupRelayTask", limits.GroupRelayPollInterval()),
		UseJitter:              limits.UseJitter,

		Retry:                     retry,
		DKGTimeoutBlocks:          limits.DKGTimeoutBlocks,
		ExclusiveWindow:           limits.ExclusiveWindowBlocks,
		WaitForPhaseInterval:      limits.WaitForPhaseInterval(),
		DKGShutdownCheckFrequency: limits.DKGShutdownCheckFrequency(),

		Fixed:   c.fixed,
		Dynamic: c.dynamic,
		Bus:     state.bus,

		Nodes:      c.nodes,
		Groups:     state.groups,
		Blocks:     state.blocks,
		Tasks:      state.tasks,
		Signatures: state.sigs,
		Store:      c.store,
	}

	if err := chainassembly.Assemble(params); err != nil {
		return nil, err
	}

	if isMainChain {
		c.committerServer = &committer.Server{SelfAddr: c.selfAddr, Groups: state.groups, Signatures: state.sigs}
	}

	return state, nil
}

func (c *Context) validateContracts(contracts ChainContracts, isMainChain bool) error {
	if contracts.Controller == nil || contracts.Board == nil {
		return errs.New(errs.GroupNotReady, "nodecontext.Context.validateContracts", fmt.Errorf("controller and coordinator board are always required"))
	}
	if isMainChain && (contracts.ControllerRelayer == nil || contracts.NodeRegistry == nil) {
		return errs.New(errs.GroupNotReady, "nodecontext.Context.validateContracts", fmt.Errorf("main chain requires controller-relayer and node-registry clients"))
	}
	return nil
}

// hydrateTasks loads every task this node previously recorded for
// chainCfg.ChainID from the store into the freshly built cache, so a
// restarted node does not need to re-scan from genesis to recover its
// in-flight task set.
func (c *Context) hydrateTasks(ctx context.Context, state *chainState) error {
	tasks, err := c.store.Tasks(ctx, state.cfg.ChainID)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if err := state.tasks.Insert(task); err != nil && !errs.Is(err, errs.TaskAlreadyExisted) {
			logger.Error("failed to hydrate persisted task", "chainId", state.cfg.ChainID, "requestId", task.RequestID, "err", err)
		}
	}
	logger.Info("hydrated task queue from store", "chainId", state.cfg.ChainID, "count", len(tasks))
	return nil
}

// subscribePersistence installs a lightweight bus subscriber that
// persists every newly observed task so a restart can recover it via
// hydrateTasks above. The claim side is persisted separately:
// subscriber.ReadyToHandleRandomnessTask calls store.MarkClaimed
// directly once it wins the in-memory claim, since a claim is never
// itself published as a bus event.
func (c *Context) subscribePersistence(state *chainState) {
	persist := eventbus.SubscriberFunc(func(event eventbus.Event) error {
		var task types.Task
		switch e := event.(type) {
		case eventbus.NewRandomnessTaskEvent:
			task = e.Task
		case eventbus.NewGroupRelayTaskEvent:
			task = e.Task
		default:
			return nil
		}
		return c.store.SaveTask(context.Background(), state.cfg.ChainID, task)
	})
	state.bus.Subscribe(eventbus.NewRandomnessTask, persist)
	state.bus.Subscribe(eventbus.NewGroupRelayTask, persist)
}

// Serve starts the committer gRPC server (bound to the main chain's
// identity) and the management HTTP server, blocking until ctx is
// canceled. Both are stopped gracefully before Serve returns.
func (c *Context) Serve(ctx context.Context, committerListenAddr string) error {
	var errOut error

	if c.committerServer != nil {
		lis, err := net.Listen("tcp", committerListenAddr)
		if err != nil {
			return errs.New(errs.DataAccess, "nodecontext.Context.Serve", err)
		}
		committer.NewServer(c.committerServer)
		go func() {
			if err := c.committerServer.Serve(lis); err != nil {
				logger.Error("committer server stopped", "err", err)
			}
		}()
		defer c.committerServer.Stop()
	}

	if c.management != nil {
		go func() {
			if err := c.management.ListenAndServe(); err != nil {
				logger.Error("management server stopped", "err", err)
			}
		}()
		defer c.management.Shutdown(context.Background())
	}

	<-ctx.Done()
	c.fixed.Join()
	c.dynamic.Wait()
	return errOut
}
