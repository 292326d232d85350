package dkg

import (
	"github.com/drand/kyber"
	"github.com/drand/kyber/share"

	"github.com/arpa-network/randcast-node/errs"
)

// Group is the participant set a DKG run is instantiated over: every
// registered node's index and long-lived DKG public key, plus the
// reconstruction threshold.
type Group struct {
	Threshold int
	Nodes     []Node
}

func (g Group) Size() int { return len(g.Nodes) }

func (g Group) node(index int) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Index == index {
			return n, true
		}
	}
	return Node{}, false
}

// session holds one node's working state across the four phases of a
// single DKG run. It is not safe for concurrent use; RunDKG drives it
// from a single goroutine.
type session struct {
	myIndex int
	myKey   kyber.Scalar

	group Group

	priPoly *share.PriPoly
	pubPoly *share.PubPoly

	// dealerPubPoly/dealerShare hold, per dealer index, that dealer's
	// public commitments and the share it sent this node (decrypted and
	// verified in Phase 1, or revealed in Phase 3).
	dealerPubPoly map[int]*share.PubPoly
	dealerShare   map[int]kyber.Scalar

	disputed     map[int]map[int]bool // dealer index -> disputer index -> true
	disqualified map[int]struct{}
}

func newSession(myIndex int, myKey kyber.Scalar, g Group) *session {
	return &session{
		myIndex:       myIndex,
		myKey:         myKey,
		group:         g,
		priPoly:       newPriPoly(g.Threshold, nil),
		dealerPubPoly: make(map[int]*share.PubPoly),
		dealerShare:   make(map[int]kyber.Scalar),
		disputed:      make(map[int]map[int]bool),
		disqualified:  make(map[int]struct{}),
	}
}

// runPhase0 produces this node's Deal: its polynomial's public
// commitments, and one encrypted share per participant, this node
// included.
func (s *session) runPhase0() Deal {
	s.pubPoly = s.priPoly.Commit(group.Point().Base())
	_, commits := s.pubPoly.Info()

	marshaledCommits := make([][]byte, len(commits))
	for i, c := range commits {
		b, _ := c.MarshalBinary()
		marshaledCommits[i] = b
	}

	shares := s.priPoly.Shares(s.group.Size())
	encrypted := make(map[int][]byte, len(shares))
	for _, sh := range shares {
		recipient, ok := s.group.node(sh.I)
		if !ok {
			continue
		}
		plaintext, _ := sh.V.MarshalBinary()
		secret := sharedSecret(s.myKey, recipient.PublicKey)
		encrypted[sh.I] = encryptShare(secret, plaintext)
	}

	return Deal{DealerIndex: s.myIndex, Commits: marshaledCommits, EncryptedShares: encrypted}
}

// runPhase1 decrypts and verifies every received deal's share to this
// node, recording a Response with one verdict per dealer.
func (s *session) runPhase1(deals []Deal) Response {
	approvals := make(map[int]bool, len(deals))

	for _, deal := range deals {
		dealer, ok := s.group.node(deal.DealerIndex)
		if !ok {
			approvals[deal.DealerIndex] = false
			continue
		}

		commits := make([]kyber.Point, len(deal.Commits))
		valid := true
		for i, b := range deal.Commits {
			p := group.Point()
			if err := p.UnmarshalBinary(b); err != nil {
				valid = false
				break
			}
			commits[i] = p
		}
		if !valid {
			approvals[deal.DealerIndex] = false
			continue
		}
		pubPoly := share.NewPubPoly(group, group.Point().Base(), commits)

		ciphertext, ok := deal.EncryptedShares[s.myIndex]
		if !ok {
			approvals[deal.DealerIndex] = false
			continue
		}
		secret := sharedSecret(s.myKey, dealer.PublicKey)
		plaintext := decryptShare(secret, ciphertext)

		shareScalar := group.Scalar()
		if err := shareScalar.UnmarshalBinary(plaintext); err != nil {
			approvals[deal.DealerIndex] = false
			continue
		}

		expected := pubPoly.Eval(s.myIndex)
		candidate := group.Point().Mul(shareScalar, nil)
		if !candidate.Equal(expected.V) {
			approvals[deal.DealerIndex] = false
			continue
		}

		s.dealerPubPoly[deal.DealerIndex] = pubPoly
		s.dealerShare[deal.DealerIndex] = shareScalar
		approvals[deal.DealerIndex] = true
	}

	return Response{ReporterIndex: s.myIndex, Approvals: approvals}
}

// phase2Outcome reports whether Phase 2 can finalize directly (no
// disputes recorded against any dealer) or must proceed to Phase 3.
type phase2Outcome struct {
	needsJustification bool
}

// runPhase2 folds every participant's Response into the dispute table,
// returning whether any dealer was disputed.
func (s *session) runPhase2(responses []Response) phase2Outcome {
	for _, resp := range responses {
		for dealer, approved := range resp.Approvals {
			if approved {
				continue
			}
			if s.disputed[dealer] == nil {
				s.disputed[dealer] = make(map[int]bool)
			}
			s.disputed[dealer][resp.ReporterIndex] = true
		}
	}
	return phase2Outcome{needsJustification: len(s.disputed) > 0}
}

// runPhase3Justification reveals, if this node itself is a disputed
// dealer, every disputer's share in the clear. A node that no one
// disputed returns no justification.
func (s *session) runPhase3Justification() []Justification {
	var out []Justification

	disputers, disputedHere := s.disputed[s.myIndex]
	if disputedHere {
		shares := make(map[int][]byte)
		for disputer := range disputers {
			sh := s.priPoly.Eval(disputer)
			b, _ := sh.V.MarshalBinary()
			shares[disputer] = b
		}
		out = append(out, Justification{DealerIndex: s.myIndex, Shares: shares})
	}
	return out
}

// runPhase3Resolve applies every published Justification, verifying
// the revealed share against the dealer's commitments, and
// disqualifying dealers whose justification fails (or never arrives).
func (s *session) runPhase3Resolve(justifications []Justification) {
	for dealer, disputers := range s.disputed {
		pubPoly, known := s.dealerPubPoly[dealer]
		var j *Justification
		for i := range justifications {
			if justifications[i].DealerIndex == dealer {
				j = &justifications[i]
				break
			}
		}

		if j == nil {
			s.disqualified[dealer] = struct{}{}
			continue
		}
		if !known {
			// This node never received (or rejected) the dealer's
			// commitments in Phase 1 at all; without them there is
			// nothing to check the justification against.
			s.disqualified[dealer] = struct{}{}
			continue
		}

		ok := true
		for disputer := range disputers {
			b, present := j.Shares[disputer]
			if !present {
				ok = false
				break
			}
			sc := group.Scalar()
			if err := sc.UnmarshalBinary(b); err != nil {
				ok = false
				break
			}
			candidate := group.Point().Mul(sc, nil)
			if !candidate.Equal(pubPoly.Eval(disputer).V) {
				ok = false
				break
			}
			if disputer == s.myIndex {
				s.dealerShare[dealer] = sc
			}
		}
		if !ok {
			s.disqualified[dealer] = struct{}{}
		}
	}
}

// finalize combines every qualified dealer's contribution into the
// group's final output: the sum of their public polynomials gives the
// group public key and this node's partial public key; the sum of
// their shares to this node gives this node's share of the group
// private key. Dealers this node never validated a share for (rejected
// in Phase 1 and never justified in Phase 3) are excluded and reported
// as disqualified.
func (s *session) finalize() (groupPublicKey kyber.Point, partialPublicKey kyber.Point, myShare kyber.Scalar, disqualified map[int]struct{}, err error) {
	var total *share.PubPoly
	var totalShare kyber.Scalar

	for dealer, pubPoly := range s.dealerPubPoly {
		if _, bad := s.disqualified[dealer]; bad {
			continue
		}
		sh, ok := s.dealerShare[dealer]
		if !ok {
			s.disqualified[dealer] = struct{}{}
			continue
		}
		if total == nil {
			total = pubPoly
			totalShare = sh.Clone()
			continue
		}
		total, err = total.Add(pubPoly)
		if err != nil {
			return nil, nil, nil, nil, errs.New(errs.DKGFailure, "dkg.session.finalize", err)
		}
		totalShare = group.Scalar().Add(totalShare, sh)
	}

	if total == nil {
		return nil, nil, nil, nil, errs.New(errs.DKGFailure, "dkg.session.finalize", nil)
	}

	return total.Commit(), total.Eval(s.myIndex).V, totalShare, s.disqualified, nil
}
