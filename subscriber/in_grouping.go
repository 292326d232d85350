package subscriber

import (
	"context"
	"strconv"
	"time"

	"github.com/arpa-network/randcast-node/cache"
	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/dkg"
	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/log"
	"github.com/arpa-network/randcast-node/metrics"
	"github.com/arpa-network/randcast-node/scheduler"
	"github.com/arpa-network/randcast-node/types"
)

// InGrouping handles RunDKG: it spawns a dynamic worker that drives
// dkg.Runner.Run to completion, supervised by a shutdown predicate that
// aborts the worker the instant the group cache's epoch for this index
// diverges from the task's own epoch — a newer assignment
// supersedes an in-flight run before it ever reaches commit_dkg.
type InGrouping struct {
	ChainID              uint64
	Nodes                *cache.NodeCache
	Groups               *cache.GroupCache
	Controller           contract.Controller
	Board                contract.CoordinatorBoard
	WaitForPhaseInterval time.Duration
	ShutdownCheckFreq    time.Duration
	Workers              *scheduler.Dynamic
}

func (g *InGrouping) Handle(event eventbus.Event) error {
	e, ok := event.(eventbus.RunDKGEvent)
	if !ok {
		return nil
	}
	task := e.Task

	identity, ok := g.Nodes.Get()
	if !ok || !identity.HasDKGKeyPair() {
		logger.Error("no DKG key pair available, dropping RunDKG", "groupIndex", task.GroupIndex, "epoch", task.Epoch)
		return nil
	}

	checkFreq := g.ShutdownCheckFreq
	if checkFreq <= 0 {
		checkFreq = scheduler.DefaultShutdownCheckFrequency
	}

	predicate := func() bool {
		epoch, ok := g.Groups.Epoch(task.GroupIndex)
		return !ok || epoch != task.Epoch
	}

	fields := log.Fields{"chainId": g.ChainID, "groupIndex": task.GroupIndex, "epoch": task.Epoch}

	g.Workers.AddWithShutdownSignal(func(stop <-chan struct{}) {
		g.run(task, identity, stop)
	}, predicate, checkFreq, fields)

	return nil
}

func (g *InGrouping) run(task types.DKGTask, identity types.NodeIdentity, stop <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-stop:
			cancel()
		case <-done:
		}
	}()

	chainIDLabel := strconv.FormatUint(g.ChainID, 10)

	runner := &dkg.Runner{Board: g.Board, WaitForPhaseInterval: g.WaitForPhaseInterval}
	out, err := runner.Run(ctx, task, identity.DKGPrivateKey)
	if err != nil {
		logger.Error("DKG run failed", "groupIndex", task.GroupIndex, "epoch", task.Epoch, "err", err)
		metrics.DKGRunsCompleted.WithLabelValues(chainIDLabel, "failed").Inc()
		return
	}

	if err := g.Groups.ApplyDKGOutput(task.GroupIndex, out); err != nil {
		logger.Error("failed to apply DKG output to group cache", "groupIndex", task.GroupIndex, "epoch", task.Epoch, "err", err)
		metrics.DKGRunsCompleted.WithLabelValues(chainIDLabel, "failed").Inc()
		return
	}

	if err := g.Controller.CommitDKG(ctx, task.GroupIndex, task.Epoch, out); err != nil {
		logger.Error("failed to submit commit_dkg", "groupIndex", task.GroupIndex, "epoch", task.Epoch, "err", err)
		metrics.DKGRunsCompleted.WithLabelValues(chainIDLabel, "failed").Inc()
		return
	}

	logger.Info("commit_dkg submitted", "groupIndex", task.GroupIndex, "epoch", task.Epoch, "disqualified", len(out.Disqualified))
	metrics.DKGRunsCompleted.WithLabelValues(chainIDLabel, "committed").Inc()
}
