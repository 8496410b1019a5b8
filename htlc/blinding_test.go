package htlc

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"github.com/lnchan/core/keychain"
)

func TestResolveBlindingSecretMatchesSenderECDH(t *testing.T) {
	hopPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	blindingPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	h := &HTLC{
		ID:            1,
		BlindingPoint: blindingPriv.PubKey().SerializeCompressed(),
	}

	hopECDH := &keychain.PrivKeyECDH{PrivKey: hopPriv}
	got, err := h.ResolveBlindingSecret(hopECDH)
	require.NoError(t, err)

	senderECDH := &keychain.PrivKeyECDH{PrivKey: blindingPriv}
	want, err := senderECDH.ECDH(hopPriv.PubKey())
	require.NoError(t, err)

	require.Equal(t, want, got)
}

func TestResolveBlindingSecretRejectsMissingPoint(t *testing.T) {
	hopPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	h := &HTLC{ID: 2}
	_, err = h.ResolveBlindingSecret(&keychain.PrivKeyECDH{PrivKey: hopPriv})
	require.Error(t, err)
}

func TestResolveBlindingSecretRejectsInvalidPoint(t *testing.T) {
	hopPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	h := &HTLC{ID: 3, BlindingPoint: []byte{0x01, 0x02}}
	_, err = h.ResolveBlindingSecret(&keychain.PrivKeyECDH{PrivKey: hopPriv})
	require.Error(t, err)
}
