// Package forceclose implements the reaction engine that classifies an
// on-chain observation of a spend of the funding output (or a commitment
// output already published) and drives the claim transactions that
// observation requires (§4.5).
package forceclose

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/queue"

	"github.com/lnchan/core/chainiface"
	"github.com/lnchan/core/errset"
	"github.com/lnchan/core/htlc"
	"github.com/lnchan/core/input"
	"github.com/lnchan/core/shachain"
	"github.com/lnchan/core/txbuilder"
	"github.com/lnchan/core/updatelog"
)

// Case is one of the five on-chain observations the reactor distinguishes.
type Case uint8

const (
	// CaseOurCommitment is observation 1: our latest commitment,
	// published by us.
	CaseOurCommitment Case = iota

	// CaseRemoteCurrentCommitment is observation 2: the remote party's
	// current (not stale) commitment, published by the remote party.
	CaseRemoteCurrentCommitment

	// CaseRemoteNextCommitment is observation 3: the remote party's
	// next, not-yet-revoked commitment.
	CaseRemoteNextCommitment

	// CaseRemoteRevokedCommitment is observation 4: a commitment the
	// remote party has already revoked — the penalty path.
	CaseRemoteRevokedCommitment

	// CaseFutureCommitment is observation 5: a commitment from beyond
	// what this party has state for — passive recovery only.
	CaseFutureCommitment
)

func (c Case) String() string {
	switch c {
	case CaseOurCommitment:
		return "our_commitment"
	case CaseRemoteCurrentCommitment:
		return "remote_current_commitment"
	case CaseRemoteNextCommitment:
		return "remote_next_commitment"
	case CaseRemoteRevokedCommitment:
		return "remote_revoked_commitment"
	case CaseFutureCommitment:
		return "future_commitment"
	default:
		return "unknown case"
	}
}

// Observation is the fact the reactor is asked to classify: a transaction
// spending the funding output (or a commitment output this reactor already
// published against) confirmed or was seen in the mempool.
type Observation struct {
	// CommitmentIndex is the per-commitment secret chain index the
	// observed transaction's commitment number reveals, or 0 if it
	// could not be unobscured against any known commitment.
	CommitmentIndex uint64

	// RevocationSecret, if non-nil, is the per-commitment secret this
	// party holds for CommitmentIndex, proving the commitment was
	// already revoked (observation 4).
	RevocationSecret []byte

	// IsOurs reports whether the observed commitment matches one this
	// party holds in its own active/inactive commitment set (as opposed
	// to a remote commitment this party never signed locally).
	IsOurs bool

	// PublishedByUs reports whether this party is the one who broadcast
	// the observed transaction.
	PublishedByUs bool

	// KnownNextPoint, for a future commitment this party has no
	// revocation secret for, is the per-commitment point the remote
	// party previously sent via option_data_loss_protect, if any.
	KnownNextPoint []byte
}

// Classify determines which of the five §4.5 cases an observation falls
// into. It is a pure function of the observation's fields, grounded on
// contractcourt/channel_arbitrator.go's advanceState of mapping a chain
// event directly onto one branch of a closed case set.
func Classify(obs Observation) Case {
	switch {
	case obs.IsOurs && obs.PublishedByUs:
		return CaseOurCommitment

	case obs.RevocationSecret != nil:
		return CaseRemoteRevokedCommitment

	case !obs.IsOurs && obs.CommitmentIndex == 0 && obs.KnownNextPoint != nil:
		return CaseFutureCommitment

	case !obs.IsOurs:
		return CaseRemoteCurrentCommitment

	default:
		return CaseRemoteNextCommitment
	}
}

// ClaimKind names one on-chain claim transaction the reactor may need to
// publish for an output of the closing commitment.
type ClaimKind uint8

const (
	ClaimAnchor ClaimKind = iota
	ClaimMainDelayed
	ClaimMainDirect
	ClaimMainPenalty
	ClaimHtlcTimeout
	ClaimHtlcSuccess
	ClaimHtlcDirect
	ClaimHtlcPenalty
	ClaimSecondLevelDelayed
	ClaimSecondLevelPenalty
)

func (k ClaimKind) String() string {
	switch k {
	case ClaimAnchor:
		return "anchor"
	case ClaimMainDelayed:
		return "main_delayed"
	case ClaimMainDirect:
		return "main_direct"
	case ClaimMainPenalty:
		return "main_penalty"
	case ClaimHtlcTimeout:
		return "htlc_timeout"
	case ClaimHtlcSuccess:
		return "htlc_success"
	case ClaimHtlcDirect:
		return "htlc_direct"
	case ClaimHtlcPenalty:
		return "htlc_penalty"
	case ClaimSecondLevelDelayed:
		return "second_level_delayed"
	case ClaimSecondLevelPenalty:
		return "second_level_penalty"
	default:
		return "unknown claim kind"
	}
}

// Claim is one planned claim transaction: what it claims, against which
// HTLC (if any), and the fee-escalation target the publisher should use.
type Claim struct {
	Kind      ClaimKind
	Htlc      *htlc.HTLC
	Direction htlc.Direction
	Target    chainiface.ConfirmationTarget

	// Tx is the finalized, witness-ready claim transaction, populated by
	// Finalize once the closing commitment's txid and output set are
	// known. Nil until then, and permanently nil for a claim kind whose
	// parent (a second-stage transaction this party hasn't built or
	// observed yet) isn't available at planning time.
	Tx *wire.MsgTx

	// Published reports whether this claim has already been handed to
	// the publisher collaborator.
	Published bool
}

// Outcome is the classification decision for one observation, exposed
// separately from the side-effecting publish calls per SPEC_FULL.md's
// supplemented Reactor.Outcome() operation, so the classification can be
// asserted in a test without a real chain backend.
type Outcome struct {
	Case   Case
	Claims []Claim
}

// Reactor drives claim construction and publication for one channel's
// force-close, across however many commitments are still active when the
// observation arrives.
type Reactor struct {
	commitments *updatelog.CommitmentSet
	watcher     chainiface.ChainWatcher
	publisher   chainiface.Publisher

	watches *WatchSet
	outcome *Outcome

	// pending is the outbound publish queue, lazily created by
	// EnsurePendingQueue and drained by RunRetryLoop.
	pending *queue.BackpressureQueue[pendingPublish]

	// revocationStore and revocationBasePoint, when both set via
	// SetRevocationSource, let React derive the actual revocation public
	// key for a CaseRemoteRevokedCommitment claim from the counterparty's
	// revealed per-commitment secret rather than requiring the caller to
	// have already derived one.
	revocationStore     shachain.Store
	revocationBasePoint *btcec.PublicKey
}

// SetRevocationSource wires the reactor to the counterparty's secret chain
// and this party's revocation basepoint, so the penalty path in React can
// look a revealed secret up by index and turn it into the revocation key
// that identifies the revoked commitment's protected outputs, per §8's
// revocation-completeness property.
func (r *Reactor) SetRevocationSource(store shachain.Store, revocationBasePoint *btcec.PublicKey) {
	r.revocationStore = store
	r.revocationBasePoint = revocationBasePoint
}

// resolveRevocationKey looks obs.CommitmentIndex up in the reactor's secret
// chain and derives the revocation public key the revoked commitment's
// to_local and HTLC outputs were built against. It returns an error if no
// revocation source is configured or the index has no stored secret.
func (r *Reactor) resolveRevocationKey(obs Observation) (*btcec.PublicKey, error) {
	if r.revocationStore == nil || r.revocationBasePoint == nil {
		return nil, errNoRevocationSource
	}

	secret, err := r.revocationStore.LookUp(obs.CommitmentIndex)
	if err != nil {
		return nil, err
	}

	commitPoint := input.CommitmentPoint(secret[:])
	return input.RevocationKey(r.revocationBasePoint, commitPoint), nil
}

// NewReactor constructs a Reactor for the given commitment set, ready to
// classify an observation once the chain watcher reports one.
func NewReactor(commitments *updatelog.CommitmentSet, watcher chainiface.ChainWatcher, publisher chainiface.Publisher) *Reactor {
	indices := make([]uint64, 0, len(commitments.Active))
	for _, c := range commitments.Active {
		indices = append(indices, c.FundingTxIndex)
	}

	return &Reactor{
		commitments: commitments,
		watcher:     watcher,
		publisher:   publisher,
		watches:     NewWatchSet(indices),
	}
}

// ConfirmCommitment records that the commitment spending fundingTxIndex
// confirmed, switching the reactor to that commitment's output set and
// canceling watches on every sibling commitment that can no longer
// confirm — a second-stage transaction already built against a canceled
// sibling is unusable and must not be published, per §4.5's
// alternative-commit racing rule.
func (r *Reactor) ConfirmCommitment(fundingTxIndex uint64) (canceled []uint64) {
	canceled = r.watches.Confirm(fundingTxIndex)
	if len(canceled) > 0 {
		log.Debugf("commitment %d confirmed, canceling watches on "+
			"sibling commitments %v", fundingTxIndex, canceled)
	}
	return canceled
}

// Outcome returns the reactor's classification decision for the most
// recently processed observation, or nil if none has been processed yet.
func (r *Reactor) Outcome() *Outcome {
	return r.outcome
}

// React classifies obs and plans the claims §4.5 requires for that case,
// finalizing each into a witness-ready transaction via txbuilder against
// ctx's commitment output set, and storing the result for Outcome to
// return. It does not itself publish anything; call Publish for each
// Claim once PrePublicationCheck passes.
func (r *Reactor) React(obs Observation, spec htlc.CommitmentSpec, ctx ClaimContext) *Outcome {
	c := Classify(obs)
	hasAnchor := ctx.Format.HasAnchors()

	var claims []Claim
	switch c {
	case CaseOurCommitment:
		claims = planOurCommitmentClaims(spec, hasAnchor)
		ctx.MainKind, ctx.AnchorKind = txbuilder.ToLocal, txbuilder.AnchorLocal
	case CaseRemoteCurrentCommitment, CaseRemoteNextCommitment:
		claims = planRemoteCommitmentClaims(spec, hasAnchor)
		ctx.MainKind, ctx.AnchorKind = txbuilder.ToRemote, txbuilder.AnchorRemote
	case CaseRemoteRevokedCommitment:
		claims = planPenaltyClaims(spec, hasAnchor)
		ctx.MainKind, ctx.AnchorKind = txbuilder.ToLocal, txbuilder.AnchorRemote

		if key, err := r.resolveRevocationKey(obs); err != nil {
			log.Debugf("could not derive revocation key for "+
				"commitment %d from secret chain: %v",
				obs.CommitmentIndex, err)
		} else {
			ctx.Keys.RevocationKey = key
		}
	case CaseFutureCommitment:
		claims = planFutureRecoveryClaims()
	}

	if len(ctx.Outputs) > 0 {
		Finalize(claims, ctx)
	}

	log.Infof("force-close observation classified as %v, planned %d "+
		"claim(s)", c, len(claims))

	r.outcome = &Outcome{Case: c, Claims: claims}
	return r.outcome
}

func planOurCommitmentClaims(spec htlc.CommitmentSpec, hasAnchor bool) []Claim {
	var claims []Claim
	if hasAnchor {
		claims = append(claims, Claim{Kind: ClaimAnchor})
	}
	claims = append(claims, Claim{Kind: ClaimMainDelayed})

	for i := range spec.Offered() {
		h := spec.Offered()[i].HTLC
		claims = append(claims, Claim{
			Kind:      ClaimHtlcTimeout,
			Htlc:      &h,
			Direction: htlc.Outgoing,
			Target:    chainiface.ConfirmationTarget{Absolute: h.Expiry},
		})
		claims = append(claims, Claim{
			Kind: ClaimSecondLevelDelayed, Htlc: &h,
			Direction: htlc.Outgoing,
		})
	}
	for i := range spec.Received() {
		h := spec.Received()[i].HTLC
		claims = append(claims, Claim{
			Kind: ClaimHtlcSuccess, Htlc: &h,
			Direction: htlc.Incoming,
		})
		claims = append(claims, Claim{
			Kind: ClaimSecondLevelDelayed, Htlc: &h,
			Direction: htlc.Incoming,
		})
	}

	return claims
}

func planRemoteCommitmentClaims(spec htlc.CommitmentSpec, hasAnchor bool) []Claim {
	var claims []Claim
	if hasAnchor {
		claims = append(claims, Claim{Kind: ClaimAnchor})
	}
	claims = append(claims, Claim{Kind: ClaimMainDirect})

	for i := range spec.Htlcs {
		dh := spec.Htlcs[i]
		h := dh.HTLC
		claims = append(claims, Claim{
			Kind:      ClaimHtlcDirect,
			Htlc:      &h,
			Direction: dh.Direction,
			Target:    chainiface.ConfirmationTarget{Absolute: h.Expiry},
		})
	}

	return claims
}

func planPenaltyClaims(spec htlc.CommitmentSpec, hasAnchor bool) []Claim {
	var claims []Claim
	if hasAnchor {
		claims = append(claims, Claim{Kind: ClaimAnchor})
	}
	claims = append(claims, Claim{Kind: ClaimMainPenalty})

	for i := range spec.Htlcs {
		dh := spec.Htlcs[i]
		h := dh.HTLC
		claims = append(claims, Claim{
			Kind: ClaimHtlcPenalty, Htlc: &h,
			Direction: dh.Direction,
		})
	}

	return claims
}

func planFutureRecoveryClaims() []Claim {
	return []Claim{{Kind: ClaimMainDirect}}
}

var errNoRevocationSource = errors.New("forceclose: no revocation source configured")

// PrePublicationCheck enforces §4.5's three checks before a claim is
// published: the parent commitment must not already be confirmed, the
// output must not already be spent, and an HTLC-success claim requires a
// known preimage.
func PrePublicationCheck(claim Claim, parentConfirmed, outputSpent bool, knownPreimage bool) error {
	if parentConfirmed {
		return errset.New(errset.KindChainAnomaly, errset.CodeParentAlreadyConfirmed)
	}
	if outputSpent {
		return errset.New(errset.KindChainAnomaly, errset.CodeOutputAlreadySpent)
	}
	if claim.Kind == ClaimHtlcSuccess && !knownPreimage {
		return errset.New(errset.KindLivenessHazard, errset.CodePreimageUnknown)
	}
	return nil
}
