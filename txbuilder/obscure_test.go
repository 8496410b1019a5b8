package txbuilder

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestObscureUnobscureRoundTrip(t *testing.T) {
	localPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	remotePriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	obf := DeriveObfuscator(localPriv.PubKey(), remotePriv.PubKey())

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{})

	const commitNumber uint64 = 42
	require.NoError(t, ObscureCommitmentNumber(tx, commitNumber, obf))

	require.Equal(t, commitNumber, UnobscureCommitmentNumber(tx, obf))
}

func TestObscureCommitmentNumberRejectsOverflow(t *testing.T) {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{})

	err := ObscureCommitmentNumber(tx, maxStateHint+1, Obfuscator{})
	require.Error(t, err)
}

func TestObscureCommitmentNumberRequiresSingleInput(t *testing.T) {
	tx := wire.NewMsgTx(2)

	err := ObscureCommitmentNumber(tx, 1, Obfuscator{})
	require.Error(t, err)
}

func TestObscureUnobscureRoundTripProperty(t *testing.T) {
	localPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	remotePriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	obf := DeriveObfuscator(localPriv.PubKey(), remotePriv.PubKey())

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Uint64Range(0, maxStateHint).Draw(t, "commitNumber")

		tx := wire.NewMsgTx(2)
		tx.AddTxIn(&wire.TxIn{})

		require.NoError(t, ObscureCommitmentNumber(tx, n, obf))
		require.Equal(t, n, UnobscureCommitmentNumber(tx, obf))
	})
}

func TestDeriveObfuscatorOrderMatters(t *testing.T) {
	priv1, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	priv2, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	obf1 := DeriveObfuscator(priv1.PubKey(), priv2.PubKey())
	obf2 := DeriveObfuscator(priv2.PubKey(), priv1.PubKey())

	require.NotEqual(t, obf1, obf2)
}
