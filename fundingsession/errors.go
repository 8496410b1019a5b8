package fundingsession

import (
	"github.com/lnchan/core/errset"
)

// ValidateFeerate rejects a proposed feerate below the session's minimum
// relay feerate, per §4.4's feerate-below-minimum error.
func (s *Session) ValidateFeerate(proposed uint64) error {
	if proposed < s.minFeerate {
		return errset.New(errset.KindProtocolViolation, errset.CodeFeerateBelowMinimum)
	}
	return nil
}

// ValidateReserve rejects a party's post-round balance if it would fall
// below its channel reserve, per §4.4's reserve-violation error.
func (s *Session) ValidateReserve(postRoundBalance int64) error {
	if postRoundBalance < s.reserveSats {
		return errset.New(errset.KindProtocolViolation, errset.CodeReserveViolation)
	}
	return nil
}

// ValidatePriorFundingConfirmed rejects starting a new non-0-conf funding
// attempt while a previous attempt for the same channel remains
// unconfirmed, per §4.4's previous-funding-unconfirmed error.
func ValidatePriorFundingConfirmed(priorConfirmed, zeroConf bool) error {
	if !priorConfirmed && !zeroConf {
		return errset.New(errset.KindProtocolViolation, errset.CodePriorFundingUnconfirmed)
	}
	return nil
}
