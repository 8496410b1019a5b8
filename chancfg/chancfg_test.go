package chancfg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommitmentFormatProperties(t *testing.T) {
	require.False(t, DefaultSegwit.HasAnchors())
	require.True(t, AnchorOutputs.HasAnchors())
	require.True(t, ZeroFeeAnchorOutputs.HasAnchors())
	require.True(t, ZeroFeeAnchorOutputs.ZeroFeeHtlcTx())
	require.False(t, AnchorOutputs.ZeroFeeHtlcTx())
	require.True(t, Taproot.IsTaproot())
	require.False(t, DefaultSegwit.IsTaproot())
}

func TestCommitmentFormatString(t *testing.T) {
	require.Equal(t, "anchor-outputs", AnchorOutputs.String())
	require.Equal(t, "unknown", CommitmentFormat(255).String())
}

func TestFeeRateFeeForWeight(t *testing.T) {
	var rate FeeRate = 253
	require.Equal(t, int64(253*724/1000), rate.FeeForWeight(724))
}
