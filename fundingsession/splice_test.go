package fundingsession

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateSpliceCompleteRequiresSharedIO(t *testing.T) {
	s := NewSession(PurposeSplice, RoleInitiator, 253, 300, 354, 0)
	require.Error(t, s.ValidateSpliceComplete())

	require.NoError(t, s.SetSharedInput(Input{SerialID: 0}))
	require.Error(t, s.ValidateSpliceComplete())

	require.NoError(t, s.SetSharedOutput(Output{SerialID: 0}))
	require.NoError(t, s.ValidateSpliceComplete())
}

func TestSharedInputRejectedOutsideSplice(t *testing.T) {
	s := NewSession(PurposeOpen, RoleInitiator, 253, 300, 354, 0)
	require.Error(t, s.SetSharedInput(Input{SerialID: 0}))
}
