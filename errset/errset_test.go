package errset

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAndError(t *testing.T) {
	err := New(KindProtocolViolation, CodeDustViolation)
	require.Equal(t, "protocol_violation: dust_violation", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("underlying failure")
	err := Wrap(KindTransientLocal, "wallet_unavailable", cause)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "underlying failure")
}

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	base := New(KindFatal, "signing_key_lost")
	wrapped := fmt.Errorf("closing channel: %w", base)

	require.True(t, Is(wrapped, KindFatal))
	require.False(t, Is(wrapped, KindChainAnomaly))
}

func TestIsFalseForPlainError(t *testing.T) {
	require.False(t, Is(errors.New("plain"), KindFatal))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "chain_anomaly", KindChainAnomaly.String())
	require.Equal(t, "unknown", Kind(255).String())
}
