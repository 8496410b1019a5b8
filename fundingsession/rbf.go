package fundingsession

import (
	"github.com/lnchan/core/errset"
)

// PriorAttempt describes the funding attempt an RBF session proposes to
// replace, enough of it for the validation rules in §4.4's error table.
type PriorAttempt struct {
	FundingTxIndex uint64
	Feerate        uint64
	Confirmed      bool
	ZeroConf       bool

	// LiquidityPurchased reports whether the prior attempt included a
	// liquidity purchase, which §4.4 requires be re-quoted on every RBF
	// of that attempt.
	LiquidityPurchased bool
}

// NewRBFSession starts a session replacing prior, validating the RBF
// preconditions from §4.4's error table before any contribution is
// accepted: a confirmed or 0-conf funding attempt may never be replaced,
// and a strictly higher feerate is required.
func NewRBFSession(role Role, prior PriorAttempt, minFeerate, feerate uint64, dustLimit, reserveSats int64) (*Session, error) {
	if prior.Confirmed {
		return nil, errset.New(errset.KindProtocolViolation, errset.CodeRBFOfConfirmedTx)
	}
	if prior.ZeroConf {
		return nil, errset.New(errset.KindProtocolViolation, errset.CodeRBFOfZeroConfTx)
	}
	if feerate <= prior.Feerate {
		return nil, errset.New(errset.KindProtocolViolation, errset.CodeFeerateBelowMinimum)
	}

	s := NewSession(PurposeRBF, role, minFeerate, feerate, dustLimit, reserveSats)
	s.RBFOf = prior.FundingTxIndex

	if prior.LiquidityPurchased {
		s.requireLiquidityPurchase = true
	}

	return s, nil
}

// ValidateLiquidityCarriedForward enforces §4.4's rule that a subsequent
// RBF of an attempt that included a liquidity purchase must itself include
// one, returning CodeMissingLiquidityPurchase if it does not.
func (s *Session) ValidateLiquidityCarriedForward() error {
	if s.requireLiquidityPurchase && s.LiquidityPurchase == nil {
		return errset.New(errset.KindProtocolViolation, errset.CodeMissingLiquidityPurchase)
	}
	return nil
}
