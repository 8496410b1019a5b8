// Package fundingsession drives the interactive-tx contribution protocol
// used for dual-funded channel opening, splicing, and RBF (§4.4). A
// Session is a one-shot, single round: each party alternates contributing
// tx_add_input/tx_add_output/tx_remove_input/tx_remove_output messages,
// carrying an odd or even serial id depending on which side proposed it,
// until both sides have sent tx_complete back-to-back with no intervening
// addition.
package fundingsession

import (
	"github.com/btcsuite/btcd/wire"

	"github.com/lnchan/core/errset"
)

// Role identifies which side of the round this party is playing. The
// initiator uses even serial ids; the acceptor uses odd ones, per §4.4.
type Role uint8

const (
	RoleInitiator Role = iota
	RoleAcceptor
)

// Purpose names what kind of interactive-tx round this session runs,
// since splicing, RBF, and plain dual-funded opening share the same round
// structure but differ in what a completed round produces.
type Purpose uint8

const (
	PurposeOpen Purpose = iota
	PurposeSplice
	PurposeRBF
)

func (p Purpose) String() string {
	switch p {
	case PurposeOpen:
		return "open"
	case PurposeSplice:
		return "splice"
	case PurposeRBF:
		return "rbf"
	default:
		return "unknown purpose"
	}
}

// Phase is the session's own internal progress, distinct from
// channelstate's coarser splice/RBF sub-state.
type Phase uint8

const (
	// PhaseContributing is the round's steady state: either side may
	// still add or remove inputs/outputs.
	PhaseContributing Phase = iota

	// PhaseLocalComplete means this party has sent tx_complete and is
	// waiting for the peer's own tx_complete (or a new contribution,
	// which reopens the round).
	PhaseLocalComplete

	// PhaseSigning means both sides have sent tx_complete back-to-back;
	// the round's input/output set is now frozen and commit_sig /
	// tx_signatures exchange proceeds.
	PhaseSigning

	// PhaseAborted means the session failed and a tx_abort was sent or
	// received; no further messages are valid.
	PhaseAborted

	// PhaseDone means tx_signatures has been exchanged and the
	// resulting transaction is ready to publish.
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseContributing:
		return "contributing"
	case PhaseLocalComplete:
		return "local_complete"
	case PhaseSigning:
		return "signing"
	case PhaseAborted:
		return "aborted"
	case PhaseDone:
		return "done"
	default:
		return "unknown phase"
	}
}

// Input is one contributed transaction input, keyed by the serial id the
// contributing party assigned it.
type Input struct {
	SerialID      uint64
	PrevTxID      wire.OutPoint
	PrevOutAmount int64
	Sequence      uint32
	FromInitiator bool
}

// Output is one contributed transaction output.
type Output struct {
	SerialID      uint64
	Amount        int64
	Script        []byte
	FromInitiator bool
}

// Session is one interactive-tx round. It holds no chain or wire I/O;
// callers advance it by calling its Add*/Remove*/Complete/Abort methods as
// messages arrive, and read Contributions/Phase to decide what to send
// next — mirroring funding/manager.go's reservationWithCtx of tracking a
// single in-flight negotiation's mutable state in one place, generalized
// from a single-message request/response to a multi-round accumulation.
type Session struct {
	Purpose Purpose
	Role    Role

	// SharedInput and SharedOutput are set only for PurposeSplice, per
	// §4.4's requirement that a splice contain exactly one shared input
	// (the previous funding output) and one shared output (the new
	// funding output). They do not count against either party's serial
	// id bookkeeping.
	SharedInput  *Input
	SharedOutput *Output

	inputs  map[uint64]Input
	outputs map[uint64]Output

	phase Phase

	localComplete  bool
	remoteComplete bool

	feerate         chancfgFeeRate
	minFeerate      chancfgFeeRate
	dustLimit       int64
	reserveSats     int64

	// LiquidityPurchase is set once a request_funding/will_fund exchange
	// has been accepted for this round, per §4.4's liquidity purchase
	// flow.
	LiquidityPurchase *LiquidityPurchase

	// RBFOf, for PurposeRBF, is the FundingTxIndex of the pending
	// funding attempt this session is replacing.
	RBFOf uint64

	// requireLiquidityPurchase is set on an RBF session replacing an
	// attempt that itself carried a liquidity purchase, per §4.4's rule
	// that the purchase must be re-quoted on every subsequent RBF.
	requireLiquidityPurchase bool
}

// chancfgFeeRate avoids importing chancfg just for its FeeRate alias in a
// file that otherwise has no other need of the package.
type chancfgFeeRate = uint64

// NewSession starts a fresh interactive-tx round.
func NewSession(purpose Purpose, role Role, minFeerate, feerate uint64, dustLimit, reserveSats int64) *Session {
	return &Session{
		Purpose:     purpose,
		Role:        role,
		inputs:      make(map[uint64]Input),
		outputs:     make(map[uint64]Output),
		phase:       PhaseContributing,
		minFeerate:  minFeerate,
		feerate:     feerate,
		dustLimit:   dustLimit,
		reserveSats: reserveSats,
	}
}

// Phase returns the session's current progress.
func (s *Session) Phase() Phase { return s.phase }

// expectedParity is the serial-id parity the given role's contributions
// must carry: even for the initiator, odd for the acceptor.
func expectedParity(role Role) uint64 {
	if role == RoleInitiator {
		return 0
	}
	return 1
}

func (s *Session) validateSerialID(serialID uint64, fromInitiator bool) error {
	role := RoleAcceptor
	if fromInitiator {
		role = RoleInitiator
	}
	if serialID%2 != expectedParity(role) {
		return errset.New(errset.KindProtocolViolation, errset.CodeNonMonotonicID)
	}
	return nil
}

// AddInput records a tx_add_input contribution. fromInitiator identifies
// which party sent it, independent of this party's own Role, since a
// session observes both its own and the peer's contributions.
func (s *Session) AddInput(in Input, fromInitiator bool) error {
	if s.phase != PhaseContributing && s.phase != PhaseLocalComplete {
		return errset.New(errset.KindProtocolViolation, errset.CodeNonMonotonicID)
	}
	if err := s.validateSerialID(in.SerialID, fromInitiator); err != nil {
		return err
	}
	in.FromInitiator = fromInitiator
	s.inputs[in.SerialID] = in
	s.reopen()

	log.Debugf("interactive-tx round %v: added input %v (serial %d, "+
		"from_initiator=%v)", s.Purpose, in.PrevTxID, in.SerialID,
		fromInitiator)

	return nil
}

// AddOutput records a tx_add_output contribution, rejecting dust below the
// contributing party's dust limit per §4.4's below-dust-contribution error.
func (s *Session) AddOutput(out Output, fromInitiator bool) error {
	if s.phase != PhaseContributing && s.phase != PhaseLocalComplete {
		return errset.New(errset.KindProtocolViolation, errset.CodeNonMonotonicID)
	}
	if err := s.validateSerialID(out.SerialID, fromInitiator); err != nil {
		return err
	}
	if out.Amount < s.dustLimit {
		return errset.New(errset.KindProtocolViolation, errset.CodeBelowDustContribution)
	}
	out.FromInitiator = fromInitiator
	s.outputs[out.SerialID] = out
	s.reopen()
	return nil
}

// RemoveInput removes a previously contributed input by serial id.
func (s *Session) RemoveInput(serialID uint64) {
	delete(s.inputs, serialID)
	s.reopen()
}

// RemoveOutput removes a previously contributed output by serial id.
func (s *Session) RemoveOutput(serialID uint64) {
	delete(s.outputs, serialID)
	s.reopen()
}

// reopen reverts a completed side's tx_complete once a new contribution
// arrives, per §4.4's invariant that the round only enters signing once
// both tx_complete messages are sent "in succession with no new additions
// in between".
func (s *Session) reopen() {
	if s.phase == PhaseLocalComplete {
		s.phase = PhaseContributing
	}
	s.localComplete = false
	s.remoteComplete = false
}

// LocalComplete records that this party has sent tx_complete.
func (s *Session) LocalComplete() {
	s.localComplete = true
	s.advance()
}

// RemoteComplete records that the peer has sent tx_complete.
func (s *Session) RemoteComplete() {
	s.remoteComplete = true
	s.advance()
}

func (s *Session) advance() {
	switch {
	case s.localComplete && s.remoteComplete:
		s.phase = PhaseSigning
		log.Debugf("interactive-tx round %v: both sides complete, "+
			"entering signing with %d inputs, %d outputs",
			s.Purpose, len(s.inputs), len(s.outputs))
	case s.localComplete || s.remoteComplete:
		s.phase = PhaseLocalComplete
	}
}

// Abort transitions the session to PhaseAborted. No further contributions
// or completions are valid afterward.
func (s *Session) Abort() {
	from := s.phase
	s.phase = PhaseAborted
	log.Warnf("interactive-tx round %v aborted from phase %v", s.Purpose,
		from)
}

// MarkSigned transitions a session in PhaseSigning to PhaseDone once
// tx_signatures has been exchanged for every non-shared input.
func (s *Session) MarkSigned() error {
	if s.phase != PhaseSigning {
		return errset.New(errset.KindProtocolViolation, errset.CodeNonMonotonicID)
	}
	s.phase = PhaseDone
	return nil
}
