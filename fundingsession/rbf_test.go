package fundingsession

import (
	"testing"

	"github.com/lnchan/core/errset"
	"github.com/stretchr/testify/require"
)

func TestNewRBFSessionRejectsConfirmedPrior(t *testing.T) {
	_, err := NewRBFSession(RoleInitiator, PriorAttempt{
		Confirmed: true,
	}, 253, 1000, 354, 0)

	require.Error(t, err)
	require.True(t, errset.Is(err, errset.KindProtocolViolation))
}

func TestNewRBFSessionRejectsZeroConfPrior(t *testing.T) {
	_, err := NewRBFSession(RoleInitiator, PriorAttempt{
		ZeroConf: true,
	}, 253, 1000, 354, 0)

	require.Error(t, err)
}

func TestNewRBFSessionRequiresHigherFeerate(t *testing.T) {
	_, err := NewRBFSession(RoleInitiator, PriorAttempt{
		Feerate: 1000,
	}, 253, 900, 354, 0)

	require.Error(t, err)
}

func TestNewRBFSessionCarriesLiquidityRequirement(t *testing.T) {
	s, err := NewRBFSession(RoleInitiator, PriorAttempt{
		Feerate:            500,
		LiquidityPurchased: true,
	}, 253, 1000, 354, 0)
	require.NoError(t, err)

	err = s.ValidateLiquidityCarriedForward()
	require.Error(t, err)

	s.RequestFunding(100_000, 500)
	require.NoError(t, s.ValidateLiquidityCarriedForward())
}
