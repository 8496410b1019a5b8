package txbuilder

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/lnchan/core/chancfg"
	"github.com/lnchan/core/htlc"
	"github.com/lnchan/core/input"
)

func testParams(t *testing.T, format chancfg.CommitmentFormat) *chancfg.ChannelParams {
	t.Helper()
	return &chancfg.ChannelParams{
		Format: format,
		Local: chancfg.Config{
			Constraints: chancfg.Constraints{DustLimit: 354},
			CsvDelay:    144,
			Basepoints:  chancfg.Basepoints{MultiSigKey: randTBPubKey(t)},
		},
		Remote: chancfg.Config{
			Constraints: chancfg.Constraints{DustLimit: 354},
			Basepoints:  chancfg.Basepoints{MultiSigKey: randTBPubKey(t)},
		},
	}
}

func TestMakeCommitTxOutputsTrimsDust(t *testing.T) {
	params := testParams(t, chancfg.DefaultSegwit)

	localPub := randTBPubKey(t)
	revokePub := randTBPubKey(t)
	remotePub := randTBPubKey(t)
	localHtlcPub := randTBPubKey(t)
	remoteHtlcPub := randTBPubKey(t)

	spec := &htlc.CommitmentSpec{
		LocalBalanceMsat:  100_000_000,
		RemoteBalanceMsat: 300_000,
		FeePerKw:          0,
	}

	outs, minerFee := MakeCommitTxOutputs(
		params, true, spec, localPub, revokePub, remotePub,
		localHtlcPub, remoteHtlcPub,
	)

	require.Len(t, outs, 1)
	require.Equal(t, ToLocal, outs[0].Kind)
	require.Greater(t, minerFee, int64(0))
}

func TestMakeCommitTxOutputsAddsAnchorsWhenFormatHasThem(t *testing.T) {
	params := testParams(t, chancfg.AnchorOutputs)

	localPub := randTBPubKey(t)
	revokePub := randTBPubKey(t)
	remotePub := randTBPubKey(t)
	localHtlcPub := randTBPubKey(t)
	remoteHtlcPub := randTBPubKey(t)

	spec := &htlc.CommitmentSpec{
		LocalBalanceMsat:  50_000_000,
		RemoteBalanceMsat: 50_000_000,
	}

	outs, _ := MakeCommitTxOutputs(
		params, true, spec, localPub, revokePub, remotePub,
		localHtlcPub, remoteHtlcPub,
	)

	var sawLocalAnchor, sawRemoteAnchor bool
	for _, o := range outs {
		switch o.Kind {
		case AnchorLocal:
			sawLocalAnchor = true
		case AnchorRemote:
			sawRemoteAnchor = true
		}
	}
	require.True(t, sawLocalAnchor)
	require.True(t, sawRemoteAnchor)
}

func TestMakeCommitTxOutputsOrdersAscendingByAmount(t *testing.T) {
	params := testParams(t, chancfg.DefaultSegwit)

	localPub := randTBPubKey(t)
	revokePub := randTBPubKey(t)
	remotePub := randTBPubKey(t)
	localHtlcPub := randTBPubKey(t)
	remoteHtlcPub := randTBPubKey(t)

	spec := &htlc.CommitmentSpec{
		LocalBalanceMsat:  30_000_000,
		RemoteBalanceMsat: 60_000_000,
	}

	outs, _ := MakeCommitTxOutputs(
		params, true, spec, localPub, revokePub, remotePub,
		localHtlcPub, remoteHtlcPub,
	)

	for i := 1; i < len(outs); i++ {
		require.LessOrEqual(t, outs[i-1].Amount, outs[i].Amount)
	}
}

func TestMakeCommitTxOutputsIncludesHtlcOutputs(t *testing.T) {
	params := testParams(t, chancfg.DefaultSegwit)

	localPub := randTBPubKey(t)
	revokePub := randTBPubKey(t)
	remotePub := randTBPubKey(t)
	localHtlcPub := randTBPubKey(t)
	remoteHtlcPub := randTBPubKey(t)

	mkHtlc := func(id uint64, dir htlc.Direction) htlc.DirectedHTLC {
		return htlc.DirectedHTLC{
			HTLC: htlc.HTLC{
				ID:         id,
				AmountMsat: 5_000_000,
				Expiry:     500_000,
			},
			Direction: dir,
		}
	}

	spec := &htlc.CommitmentSpec{
		LocalBalanceMsat:  40_000_000,
		RemoteBalanceMsat: 40_000_000,
		Htlcs: []htlc.DirectedHTLC{
			mkHtlc(0, htlc.Outgoing),
			mkHtlc(1, htlc.Outgoing),
			mkHtlc(2, htlc.Incoming),
			mkHtlc(3, htlc.Incoming),
		},
	}

	outs, _ := MakeCommitTxOutputs(
		params, true, spec, localPub, revokePub, remotePub,
		localHtlcPub, remoteHtlcPub,
	)

	var htlcOuts int
	for _, o := range outs {
		if o.Kind == HtlcOffered || o.Kind == HtlcReceived {
			htlcOuts++
			require.NotEmpty(t, o.Script)
		}
	}
	require.Equal(t, 4, htlcOuts)

	obf := DeriveObfuscator(localPub, remotePub)
	tx, err := MakeCommitTx(FundingInput{Value: 90_000_000}, 1, obf, outs)
	require.NoError(t, err)
	require.Len(t, tx.TxOut, len(outs))
}

func TestMakeCommitTxOutputsAnchorsCarryScripts(t *testing.T) {
	params := testParams(t, chancfg.AnchorOutputs)

	localPub := randTBPubKey(t)
	revokePub := randTBPubKey(t)
	remotePub := randTBPubKey(t)
	localHtlcPub := randTBPubKey(t)
	remoteHtlcPub := randTBPubKey(t)

	spec := &htlc.CommitmentSpec{
		LocalBalanceMsat:  50_000_000,
		RemoteBalanceMsat: 50_000_000,
	}

	outs, _ := MakeCommitTxOutputs(
		params, true, spec, localPub, revokePub, remotePub,
		localHtlcPub, remoteHtlcPub,
	)

	var sawAnchorScript int
	for _, o := range outs {
		if o.Kind == AnchorLocal || o.Kind == AnchorRemote {
			require.NotEmpty(t, o.Script)
			sawAnchorScript++
		}
	}
	require.Equal(t, 2, sawAnchorScript)
}

func TestMakeCommitTxAssemblesSingleInputWithObscuredLocktime(t *testing.T) {
	params := testParams(t, chancfg.DefaultSegwit)

	localPub := randTBPubKey(t)
	revokePub := randTBPubKey(t)
	remotePub := randTBPubKey(t)
	localHtlcPub := randTBPubKey(t)
	remoteHtlcPub := randTBPubKey(t)

	spec := &htlc.CommitmentSpec{
		LocalBalanceMsat:  30_000_000,
		RemoteBalanceMsat: 60_000_000,
	}

	outs, _ := MakeCommitTxOutputs(
		params, true, spec, localPub, revokePub, remotePub,
		localHtlcPub, remoteHtlcPub,
	)

	fundingInput := FundingInput{
		Outpoint: wire.OutPoint{Index: 0},
		Value:    90_000_000,
	}

	obf := DeriveObfuscator(localPub, remotePub)

	tx, err := MakeCommitTx(fundingInput, 5, obf, outs)
	require.NoError(t, err)
	require.Len(t, tx.TxIn, 1)
	require.Equal(t, uint64(5), UnobscureCommitmentNumber(tx, obf))
}

func TestMakeCommitTxOutputsConservesValueProperty(t *testing.T) {
	params := testParams(t, chancfg.DefaultSegwit)

	localPub := randTBPubKey(t)
	revokePub := randTBPubKey(t)
	remotePub := randTBPubKey(t)
	localHtlcPub := randTBPubKey(t)
	remoteHtlcPub := randTBPubKey(t)

	rapid.Check(t, func(t *rapid.T) {
		localMsat := rapid.Uint64Range(1_000_000, 10_000_000_000).Draw(t, "localMsat")
		remoteMsat := rapid.Uint64Range(1_000_000, 10_000_000_000).Draw(t, "remoteMsat")
		feePerKw := rapid.Uint64Range(0, 1_000).Draw(t, "feePerKw")

		spec := &htlc.CommitmentSpec{
			LocalBalanceMsat:  localMsat,
			RemoteBalanceMsat: remoteMsat,
			FeePerKw:          feePerKw,
		}

		outs, minerFee := MakeCommitTxOutputs(
			params, true, spec, localPub, revokePub, remotePub,
			localHtlcPub, remoteHtlcPub,
		)

		totalFee := int64(feePerKw) * input.CommitmentTxBaseWeight / 1000
		wantTotal := int64(localMsat/1000) - totalFee + int64(remoteMsat/1000)

		var gotTotal int64
		for _, o := range outs {
			gotTotal += o.Amount
		}
		gotTotal += minerFee

		require.Equal(t, wantTotal, gotTotal)
	})
}

func randTBPubKey(t *testing.T) *btcec.PublicKey {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return priv.PubKey()
}
