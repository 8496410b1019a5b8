package txbuilder

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"

	"github.com/lnchan/core/chancfg"
)

func TestMakeHtlcTimeoutTxSetsLockTimeToExpiry(t *testing.T) {
	revoke := randTBPubKey(t)
	delay := randTBPubKey(t)

	tx, err := MakeHtlcTimeoutTx(
		chainhash.Hash{0x01}, 0, 100_000, 700_000, 144,
		chancfg.DefaultSegwit, revoke, delay,
	)
	require.NoError(t, err)
	require.Equal(t, uint32(700_000), tx.LockTime)
	require.Len(t, tx.TxOut, 1)
	require.Less(t, tx.TxOut[0].Value, int64(100_000))
}

func TestMakeHtlcSuccessTxZeroFeeFormatKeepsFullAmount(t *testing.T) {
	revoke := randTBPubKey(t)
	delay := randTBPubKey(t)

	tx, err := MakeHtlcSuccessTx(
		chainhash.Hash{0x02}, 1, 50_000, 144,
		chancfg.ZeroFeeAnchorOutputs, revoke, delay,
	)
	require.NoError(t, err)
	require.Equal(t, int64(50_000), tx.TxOut[0].Value)
}

func TestVerifyHtlcSigRejectsWrongSighashFlag(t *testing.T) {
	revoke := randTBPubKey(t)
	delay := randTBPubKey(t)

	tx, err := MakeHtlcTimeoutTx(
		chainhash.Hash{0x03}, 0, 100_000, 700_000, 144,
		chancfg.AnchorOutputs, revoke, delay,
	)
	require.NoError(t, err)

	err = VerifyHtlcSig(
		tx, nil, nil, 100_000, revoke, chancfg.AnchorOutputs,
		txscript.SigHashAll,
	)
	require.Error(t, err)
}
