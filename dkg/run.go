package dkg

import (
	"context"
	"time"

	"github.com/drand/kyber"

	"github.com/arpa-network/randcast-node/contract"
	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/types"
)

// Runner drives one DKG run end to end against a coordinator board:
// wait for a phase, publish this node's payload, wait for the next
// phase, collect every
// participant's payload, repeat; Phase 3 runs, before the output, only
// when Phase 2 recorded a dispute.
type Runner struct {
	Board                  contract.CoordinatorBoard
	WaitForPhaseInterval   time.Duration
}

// waitForPhase polls board.InPhase until it reports a phase number
// greater than want. -1 means the coordinator has already concluded
// (DKGEnded), fatal for this run. 0 means the coordinator hasn't
// started yet: while waiting for phase 0 to close (want == 0) that just
// keeps polling; for any later want it is fatal (DKGNotStarted).
func (r *Runner) waitForPhase(ctx context.Context, want int8) error {
	ticker := time.NewTicker(r.WaitForPhaseInterval)
	defer ticker.Stop()

	for {
		phase, err := r.Board.InPhase(ctx)
		if err != nil {
			return errs.Wrap("dkg.Runner.waitForPhase", err)
		}
		if phase == 0 && want > 0 {
			return errs.New(errs.DKGNotStarted, "dkg.Runner.waitForPhase", nil)
		}
		if phase == -1 {
			return errs.New(errs.DKGEnded, "dkg.Runner.waitForPhase", nil)
		}
		if phase > want {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// fetchGroup reads the participant set and threshold from the board
// and filters out slots nobody registered a public key for.
func (r *Runner) fetchGroup(ctx context.Context) (Group, error) {
	threshold, pubKeys, err := r.Board.DKGKeys(ctx)
	if err != nil {
		return Group{}, errs.Wrap("dkg.Runner.fetchGroup", err)
	}

	nodes := make([]Node, 0, len(pubKeys))
	for i, raw := range pubKeys {
		if len(raw) == 0 {
			continue // did not register for this DKG round
		}
		p := group.Point()
		if err := p.UnmarshalBinary(raw); err != nil {
			return Group{}, errs.New(errs.Serialization, "dkg.Runner.fetchGroup", err)
		}
		nodes = append(nodes, Node{Index: i, PublicKey: p})
	}

	return Group{Threshold: threshold, Nodes: nodes}, nil
}

func (r *Runner) publish(ctx context.Context, v interface{}) error {
	data, err := marshalBundle(v)
	if err != nil {
		return errs.New(errs.Serialization, "dkg.Runner.publish", err)
	}
	if err := r.Board.Publish(ctx, data); err != nil {
		return errs.Wrap("dkg.Runner.publish", err)
	}
	return nil
}

func collectDeals(raw [][]byte) ([]Deal, error) {
	out := make([]Deal, 0, len(raw))
	for _, b := range raw {
		if len(b) == 0 {
			continue
		}
		var v Deal
		if err := unmarshalBundle(b, &v); err != nil {
			return nil, errs.New(errs.Serialization, "dkg.collectDeals", err)
		}
		out = append(out, v)
	}
	return out, nil
}

func collectResponses(raw [][]byte) ([]Response, error) {
	out := make([]Response, 0, len(raw))
	for _, b := range raw {
		if len(b) == 0 {
			continue
		}
		var v Response
		if err := unmarshalBundle(b, &v); err != nil {
			return nil, errs.New(errs.Serialization, "dkg.collectResponses", err)
		}
		out = append(out, v)
	}
	return out, nil
}

func collectJustifications(raw [][]byte) ([]Justification, error) {
	out := make([]Justification, 0, len(raw))
	for _, b := range raw {
		if len(b) == 0 {
			continue
		}
		var v Justification
		if err := unmarshalBundle(b, &v); err != nil {
			return nil, errs.New(errs.Serialization, "dkg.collectJustifications", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Run executes the full protocol for task, using dkgPrivateKey as this
// node's DKG scalar. It blocks until the run completes, fails
// permanently, or ctx is canceled — the shutdown predicate installed by
// InGroupingSubscriber cancels ctx the moment the group
// cache's (index, epoch) diverges from task's, so a superseded run
// never reaches CommitDKG.
func (r *Runner) Run(ctx context.Context, task types.DKGTask, dkgPrivateKey []byte) (types.DKGOutput, error) {
	myKey := group.Scalar()
	if err := myKey.UnmarshalBinary(dkgPrivateKey); err != nil {
		return types.DKGOutput{}, errs.New(errs.Serialization, "dkg.Runner.Run", err)
	}

	if err := r.waitForPhase(ctx, 0); err != nil {
		return types.DKGOutput{}, err
	}

	g, err := r.fetchGroup(ctx)
	if err != nil {
		return types.DKGOutput{}, err
	}

	myIndex, ok := indexOf(g, myKey)
	if !ok {
		return types.DKGOutput{}, errs.New(errs.MemberNotExisted, "dkg.Runner.Run", nil)
	}

	s := newSession(myIndex, myKey, g)

	logger.Info("running DKG phase 0", "groupIndex", task.GroupIndex, "epoch", task.Epoch, "threshold", g.Threshold, "size", g.Size())
	if err := r.publish(ctx, s.runPhase0()); err != nil {
		return types.DKGOutput{}, err
	}

	if err := r.waitForPhase(ctx, 1); err != nil {
		return types.DKGOutput{}, err
	}
	rawDeals, err := r.Board.Shares(ctx)
	if err != nil {
		return types.DKGOutput{}, errs.Wrap("dkg.Runner.Run", err)
	}
	deals, err := collectDeals(rawDeals)
	if err != nil {
		return types.DKGOutput{}, err
	}

	logger.Info("running DKG phase 1", "deals", len(deals))
	if err := r.publish(ctx, s.runPhase1(deals)); err != nil {
		return types.DKGOutput{}, err
	}

	if err := r.waitForPhase(ctx, 2); err != nil {
		return types.DKGOutput{}, err
	}
	rawResponses, err := r.Board.Responses(ctx)
	if err != nil {
		return types.DKGOutput{}, errs.Wrap("dkg.Runner.Run", err)
	}
	responses, err := collectResponses(rawResponses)
	if err != nil {
		return types.DKGOutput{}, err
	}

	logger.Info("running DKG phase 2", "responses", len(responses))
	outcome := s.runPhase2(responses)

	if outcome.needsJustification {
		logger.Info("disputes recorded, running DKG phase 3")
		if err := r.publish(ctx, s.runPhase3Justification()); err != nil {
			return types.DKGOutput{}, err
		}

		if err := r.waitForPhase(ctx, 3); err != nil {
			return types.DKGOutput{}, err
		}
		rawJustifications, err := r.Board.Justifications(ctx)
		if err != nil {
			return types.DKGOutput{}, errs.Wrap("dkg.Runner.Run", err)
		}
		justifications, err := collectJustifications(rawJustifications)
		if err != nil {
			return types.DKGOutput{}, err
		}
		s.runPhase3Resolve(justifications)
	}

	groupPub, partialPub, myShare, disqualified, err := s.finalize()
	if err != nil {
		return types.DKGOutput{}, err
	}

	groupPubBytes, _ := groupPub.MarshalBinary()
	partialPubBytes, _ := partialPub.MarshalBinary()
	shareBytes, _ := myShare.MarshalBinary()

	disqualifiedAddrs := make(map[types.Address]struct{}, len(disqualified))
	for idx := range disqualified {
		if idx >= 0 && idx < len(task.Members) {
			disqualifiedAddrs[task.Members[idx]] = struct{}{}
		}
	}

	logger.Info("DKG run complete", "groupIndex", task.GroupIndex, "epoch", task.Epoch, "disqualified", len(disqualifiedAddrs))

	return types.DKGOutput{
		GroupPublicKey:   groupPubBytes,
		Share:            shareBytes,
		PartialPublicKey: partialPubBytes,
		Disqualified:     disqualifiedAddrs,
	}, nil
}

func indexOf(g Group, myKey kyber.Scalar) (int, bool) {
	myPub := group.Point().Mul(myKey, nil)
	for _, n := range g.Nodes {
		if n.PublicKey.Equal(myPub) {
			return n.Index, true
		}
	}
	return 0, false
}
