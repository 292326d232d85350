package chainassembly

import (
	"time"

	"github.com/arpa-network/randcast-node/eventbus"
	"github.com/arpa-network/randcast-node/listener"
	"github.com/arpa-network/randcast-node/log"
	"github.com/arpa-network/randcast-node/scheduler"
	"github.com/arpa-network/randcast-node/subscriber"
)

// Assemble registers every fixed-scheduler listener and every
// bus-subscribed subscriber this chain needs. It
// never blocks: listeners run their Loop under scheduler.Fixed's own
// goroutine.
func Assemble(p Params) error {
	if p.IsMainChain && (p.ControllerRelayer == nil || p.NodeRegistry == nil) {
		return errMissingMainChainDep
	}

	registerAlwaysOnSubscribers(p)
	if err := registerAlwaysOnListeners(p); err != nil {
		return err
	}
	registerGroupActivator(p)

	logger.Info("chain assembled", "chainId", p.ChainID, "mainChain", p.IsMainChain)
	return nil
}

func registerAlwaysOnSubscribers(p Params) {
	p.Bus.Subscribe(eventbus.NewBlock, &subscriber.Block{Blocks: p.Blocks})

	p.Bus.Subscribe(eventbus.ReadyToFulfillRandomnessTask, &subscriber.RandomnessSignatureAggregation{
		Groups:     p.Groups,
		Signatures: p.Signatures,
		Adapter:    p.Adapter,
	})

	if !p.IsMainChain {
		return
	}

	// DKG-phase subscribers: group state is relayed from the main
	// chain, so relayed chains never run DKG themselves.
	p.Bus.Subscribe(eventbus.NewDKGTask, &subscriber.PreGrouping{
		ChainID: p.ChainID,
		Groups:  p.Groups,
		Bus:     p.Bus,
	})

	p.Bus.Subscribe(eventbus.RunDKG, &subscriber.InGrouping{
		ChainID:              p.ChainID,
		Nodes:                p.Nodes,
		Groups:               p.Groups,
		Controller:           p.Controller,
		Board:                p.Board,
		WaitForPhaseInterval: p.WaitForPhaseInterval,
		ShutdownCheckFreq:    p.DKGShutdownCheckFrequency,
		Workers:              p.Dynamic,
	})

	p.Bus.Subscribe(eventbus.DKGSuccess, &subscriber.PostSuccessGrouping{
		SelfAddr:   p.SelfAddr,
		Groups:     p.Groups,
		Controller: p.Controller,
	})

	p.Bus.Subscribe(eventbus.DKGPostProcess, &subscriber.PostGrouping{
		Groups:            p.Groups,
		Controller:        p.Controller,
		ControllerRelayer: p.ControllerRelayer,
		RelayedChainIDs:   p.RelayedChainIDs,
	})

	p.Bus.Subscribe(eventbus.NodeActivation, &subscriber.NodeActivation{
		SelfAddr:   p.SelfAddr,
		Controller: p.Controller,
	})

	p.Bus.Subscribe(eventbus.NewGroupRelayTask, &subscriber.GroupRelayTaskHandler{
		ChainID:    p.ChainID,
		SelfAddr:   p.SelfAddr,
		Groups:     p.Groups,
		Signatures: p.Signatures,
		Committer:  p.CommitterClient,
		Retry:      p.Retry,
	})

	p.Bus.Subscribe(eventbus.ReadyToFulfillGroupRelayTask, &subscriber.GroupRelayConfirmationSignatureAggregation{
		Groups:            p.Groups,
		Signatures:        p.Signatures,
		ControllerRelayer: p.ControllerRelayer,
	})
}

func registerAlwaysOnListeners(p Params) error {
	block := &listener.Block{ChainID: p.ChainID, Controller: p.Controller, Bus: p.Bus}
	if err := addLoop(p, "Block", p.BlockInterval, block.Attempt); err != nil {
		return err
	}

	if p.IsMainChain {
		preGrouping := &listener.PreGrouping{
			ChainID:    p.ChainID,
			SelfAddr:   p.SelfAddr,
			Controller: p.Controller,
			Groups:     p.Groups,
			Bus:        p.Bus,
		}
		if err := addLoop(p, "PreGrouping", p.DKGTaskPollInterval, preGrouping.Attempt); err != nil {
			return err
		}
	}

	if p.Adapter != nil {
		newRandomnessTask := &listener.NewRandomnessTask{
			ChainID: p.ChainID,
			Adapter: p.Adapter,
			Tasks:   p.Tasks,
			Bus:     p.Bus,
		}
		if err := addLoop(p, "NewRandomnessTask", p.DKGTaskPollInterval, newRandomnessTask.Attempt); err != nil {
			return err
		}
	}

	if !p.IsMainChain {
		return nil
	}

	nodeActivation := &listener.NodeActivation{
		ChainID:      p.ChainID,
		SelfAddr:     p.SelfAddr,
		NodeRegistry: p.NodeRegistry,
		Bus:          p.Bus,
	}
	if err := addLoop(p, "NodeActivation", p.NodeActivationInterval, nodeActivation.Attempt); err != nil {
		return err
	}

	newGroupRelayTask := &listener.NewGroupRelayTask{
		ChainID:    p.ChainID,
		Controller: p.Controller,
		Tasks:      p.Tasks,
		Bus:        p.Bus,
	}
	return addLoop(p, "NewGroupRelayTask", p.GroupRelayPollInterval, newGroupRelayTask.Attempt)
}

// addLoop registers a fixed listener task under (chainID, Listener,
// variant), running the common polling Loop over attempt. Callers
// outside chainassembly never construct TaskKeys directly — this is
// the one place listener registration and key naming stay consistent.
func addLoop(p Params, variant scheduler.Variant, interval time.Duration, attempt listener.Attempt) error {
	key := scheduler.TaskKey{ChainID: p.ChainID, Kind: scheduler.Listener, Variant: variant}
	loop := listener.Loop{
		ChainID:   p.ChainID,
		Name:      string(variant),
		Interval:  interval,
		UseJitter: p.UseJitter,
		Retry:     p.Retry,
		Attempt:   attempt,
	}
	fields := log.Fields{"chainId": p.ChainID, "listener": string(variant)}
	return p.Fixed.Add(key, loop.Run, fields)
}

type assemblyError string

func (e assemblyError) Error() string { return string(e) }

var errMissingMainChainDep = assemblyError("main chain assembly requires ControllerRelayer and NodeRegistry")
