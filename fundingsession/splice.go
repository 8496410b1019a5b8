package fundingsession

import (
	"github.com/lnchan/core/errset"
)

// SetSharedInput records the previous funding output as this splice's
// single shared input, per §4.4's requirement that a splice transaction
// contain exactly one shared input.
func (s *Session) SetSharedInput(in Input) error {
	if s.Purpose != PurposeSplice {
		return errset.New(errset.KindProtocolViolation, errset.CodeNonMonotonicID)
	}
	s.SharedInput = &in
	return nil
}

// SetSharedOutput records the new funding output as this splice's single
// shared output.
func (s *Session) SetSharedOutput(out Output) error {
	if s.Purpose != PurposeSplice {
		return errset.New(errset.KindProtocolViolation, errset.CodeNonMonotonicID)
	}
	s.SharedOutput = &out
	return nil
}

// ValidateSpliceComplete checks the invariants §4.4 requires before a
// splice session may leave PhaseContributing: exactly one shared input and
// one shared output must have been set.
func (s *Session) ValidateSpliceComplete() error {
	if s.Purpose != PurposeSplice {
		return nil
	}
	if s.SharedInput == nil || s.SharedOutput == nil {
		return errset.New(errset.KindProtocolViolation, errset.CodeNonMonotonicID)
	}
	return nil
}
