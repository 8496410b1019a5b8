package htlc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleSpec() CommitmentSpec {
	return CommitmentSpec{
		Htlcs: []DirectedHTLC{
			{HTLC: HTLC{ID: 1, AmountMsat: 1000}, Direction: Outgoing},
			{HTLC: HTLC{ID: 2, AmountMsat: 2000}, Direction: Incoming},
			{HTLC: HTLC{ID: 3, AmountMsat: 3000}, Direction: Outgoing},
		},
		LocalBalanceMsat:  50_000,
		RemoteBalanceMsat: 44_000,
	}
}

func TestHtlcSumMsat(t *testing.T) {
	spec := sampleSpec()
	require.Equal(t, uint64(6000), spec.HtlcSumMsat())
}

func TestOfferedAndReceived(t *testing.T) {
	spec := sampleSpec()
	require.Len(t, spec.Offered(), 2)
	require.Len(t, spec.Received(), 1)
	require.Equal(t, uint64(2), spec.Received()[0].ID)
}

func TestValidateCapacityInvariant(t *testing.T) {
	spec := sampleSpec()
	require.NoError(t, spec.Validate(100_000))

	require.True(t, errors.Is(spec.Validate(99_999), ErrCapacityInvariant))
}

func TestDirectionString(t *testing.T) {
	require.Equal(t, "incoming", Incoming.String())
	require.Equal(t, "outgoing", Outgoing.String())
}
