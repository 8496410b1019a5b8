package fundingsession

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"

	"github.com/lnchan/core/wire"
)

func TestAcceptWillFundValidatesSignature(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("will_fund terms"))
	sig := ecdsa.Sign(priv, digest[:])

	compact, err := wire.NewSigFromSignature(sig)
	require.NoError(t, err)

	require.NoError(t, AcceptWillFund(compact, digest[:], priv.PubKey()))

	otherPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	require.Error(t, AcceptWillFund(compact, digest[:], otherPriv.PubKey()))
}
