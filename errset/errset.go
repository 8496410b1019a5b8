// Package errset classifies every error this engine can raise into one of
// the six kinds named by the error taxonomy: protocol violations, transient
// local failures, transient remote failures, chain anomalies, liveness
// hazards, and fatal errors. Callers switch on Kind to decide propagation —
// log and continue, disconnect, or force-close — without parsing message
// text.
package errset

import "fmt"

// Kind discriminates the error taxonomy. It is not itself an error type;
// Error wraps a Kind with the underlying cause.
type Kind uint8

const (
	// KindProtocolViolation covers a signature mismatch, an invalid
	// sighash flag, a non-monotonic id, an amount below reserve, or a
	// dust violation. The channel may be kept open or force-closed
	// depending on severity.
	KindProtocolViolation Kind = iota

	// KindTransientLocal covers a local collaborator's inability to
	// service a request right now: the wallet cannot fund, or a feerate
	// estimate is unavailable. The in-flight session aborts; the channel
	// stays in its prior state.
	KindTransientLocal

	// KindTransientRemote covers an unexpected message in the current
	// state. A warning is sent and a disconnect is scheduled; the
	// channel resumes in its prior state on reconnect.
	KindTransientRemote

	// KindChainAnomaly covers a reorg past a prior confirmation, or an
	// unexplained spend of a tracked output.
	KindChainAnomaly

	// KindLivenessHazard covers an HTLC expiry approaching with no
	// cooperative resolution in sight.
	KindLivenessHazard

	// KindFatal covers the loss of a local signing key or other
	// unrecoverable local corruption.
	KindFatal
)

// String returns the taxonomy kind's name.
func (k Kind) String() string {
	switch k {
	case KindProtocolViolation:
		return "protocol_violation"
	case KindTransientLocal:
		return "transient_local"
	case KindTransientRemote:
		return "transient_remote"
	case KindChainAnomaly:
		return "chain_anomaly"
	case KindLivenessHazard:
		return "liveness_hazard"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is a taxonomy-tagged error. Code is a short machine-stable string
// (e.g. "dust_violation", "feerate_below_minimum") used by tests and by
// callers that need to match on a specific cause rather than just a Kind.
type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Code)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs a taxonomy-tagged error with no wrapped cause.
func New(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

// Wrap constructs a taxonomy-tagged error around an existing cause.
func Wrap(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

// Is reports whether err is an *Error of the given kind, unwrapping through
// any wrapping chain.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ee, ok := err.(*Error); ok {
			e = ee
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}

// Protocol violation codes named explicitly by §4.2/§4.4.
const (
	CodeSignatureMismatch  = "signature_mismatch"
	CodeInvalidSighash     = "invalid_sighash"
	CodeNonMonotonicID     = "non_monotonic_id"
	CodeBelowReserve       = "below_reserve"
	CodeDustViolation      = "dust_violation"
	CodeBatchSizeMismatch  = "commit_sig_batch_size_mismatch"
	CodeAddDuringSplice    = "add_htlc_during_splice"
	CodeBelowMinHtlc       = "below_min_htlc"
	CodeMaxAcceptedHtlcs   = "max_accepted_htlcs_exceeded"
	CodeMaxPendingAmount   = "max_pending_amount_exceeded"
	CodeInvalidExpiry      = "invalid_expiry"
	CodePreimageMismatch   = "preimage_mismatch"
)

// Interactive-funding-session error codes named explicitly by §4.4.
const (
	CodeFeerateBelowMinimum     = "feerate_below_minimum"
	CodeReserveViolation        = "reserve_violation"
	CodeBelowDustContribution   = "below_dust_contribution"
	CodeMissingLiquidityPurchase = "missing_liquidity_purchase_on_rbf"
	CodePriorFundingUnconfirmed  = "previous_funding_unconfirmed"
	CodeRBFOfConfirmedTx         = "rbf_of_confirmed_tx"
	CodeRBFOfZeroConfTx          = "rbf_of_zeroconf_tx"
)

// Force-close pre-publication check codes named explicitly by §4.5.
const (
	CodeParentAlreadyConfirmed = "parent_already_confirmed"
	CodeOutputAlreadySpent     = "output_already_spent"
	CodePreimageUnknown        = "preimage_unknown"
)
