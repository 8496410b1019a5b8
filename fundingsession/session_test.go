package fundingsession

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func TestSessionSerialIDParity(t *testing.T) {
	s := NewSession(PurposeOpen, RoleInitiator, 253, 300, 354, 0)

	err := s.AddInput(Input{SerialID: 2, PrevTxID: wire.OutPoint{}}, true)
	require.NoError(t, err)

	err = s.AddInput(Input{SerialID: 2, PrevTxID: wire.OutPoint{}}, false)
	require.Error(t, err)

	err = s.AddInput(Input{SerialID: 3, PrevTxID: wire.OutPoint{}}, false)
	require.NoError(t, err)
}

func TestSessionCompletionRequiresBothSides(t *testing.T) {
	s := NewSession(PurposeOpen, RoleInitiator, 253, 300, 354, 0)

	s.LocalComplete()
	require.Equal(t, PhaseLocalComplete, s.Phase())

	s.RemoteComplete()
	require.Equal(t, PhaseSigning, s.Phase())
}

func TestSessionNewContributionReopensRound(t *testing.T) {
	s := NewSession(PurposeOpen, RoleInitiator, 253, 300, 354, 0)

	s.LocalComplete()
	require.Equal(t, PhaseLocalComplete, s.Phase())

	require.NoError(t, s.AddOutput(Output{SerialID: 4, Amount: 10000}, true))
	require.Equal(t, PhaseContributing, s.Phase())
}

func TestSessionRejectsDustOutput(t *testing.T) {
	s := NewSession(PurposeOpen, RoleInitiator, 253, 300, 354, 0)

	err := s.AddOutput(Output{SerialID: 0, Amount: 100}, true)
	require.Error(t, err)
}

func TestSessionSignAfterComplete(t *testing.T) {
	s := NewSession(PurposeOpen, RoleInitiator, 253, 300, 354, 0)
	s.LocalComplete()
	s.RemoteComplete()

	require.NoError(t, s.MarkSigned())
	require.Equal(t, PhaseDone, s.Phase())
}

func TestSessionAbort(t *testing.T) {
	s := NewSession(PurposeOpen, RoleInitiator, 253, 300, 354, 0)
	s.Abort()
	require.Equal(t, PhaseAborted, s.Phase())
}
