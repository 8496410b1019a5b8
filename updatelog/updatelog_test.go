package updatelog

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/lnchan/core/chancfg"
	"github.com/lnchan/core/htlc"
	"github.com/lnchan/core/txbuilder"
)

func TestPendingChangesProposeAndDrain(t *testing.T) {
	p := NewPendingChanges()
	p.Propose(LocalProposed, LogUpdate{LogIndex: 1, Kind: Add})
	p.Propose(LocalProposed, LogUpdate{LogIndex: 2, Kind: Add})

	require.Len(t, p.Bucket(LocalProposed), 2)

	drained := p.Drain(LocalProposed)
	require.Len(t, drained, 2)
	require.Empty(t, p.Bucket(LocalProposed))
}

func TestPendingChangesMove(t *testing.T) {
	p := NewPendingChanges()
	p.Propose(LocalProposed, LogUpdate{LogIndex: 1})

	p.Move(LocalProposed, LocalSigned)
	require.Empty(t, p.Bucket(LocalProposed))
	require.Len(t, p.Bucket(LocalSigned), 1)
}

func permissiveParams() *chancfg.ChannelParams {
	return &chancfg.ChannelParams{
		Local: chancfg.Config{
			Constraints: chancfg.Constraints{ChanReserve: 0},
		},
		Remote: chancfg.Config{
			Constraints: chancfg.Constraints{
				MinHtlc:          0,
				MaxAcceptedHtlcs: 5,
				MaxPendingAmount: 100_000,
			},
		},
	}
}

func TestApplyToActiveAppliesIndependently(t *testing.T) {
	cs := NewCommitmentSet()
	cs.Active = []*Commitment{
		{Index: 0, Spec: htlc.CommitmentSpec{LocalBalanceMsat: 60_000, RemoteBalanceMsat: 40_000}},
		{Index: 1, Spec: htlc.CommitmentSpec{LocalBalanceMsat: 60_000, RemoteBalanceMsat: 40_000}},
	}

	newHtlc := &htlc.HTLC{ID: 0, AmountMsat: 1_000, Expiry: 600_000}
	updates := []LogUpdate{{Kind: Add, Htlc: newHtlc}}
	params := permissiveParams()

	err := cs.ApplyToActive(updates, 100_000, func(spec *htlc.CommitmentSpec, u LogUpdate) error {
		if err := ApplyAdd(spec, u, htlc.Outgoing, params); err != nil {
			return err
		}
		spec.LocalBalanceMsat -= u.Htlc.AmountMsat
		return nil
	})
	require.NoError(t, err)

	for _, c := range cs.Active {
		require.Len(t, c.Spec.Htlcs, 1)
		require.Equal(t, uint64(59_000), c.Spec.LocalBalanceMsat)
	}
}

func TestApplyToActiveDoesNotShareBackingArray(t *testing.T) {
	shared := []htlc.DirectedHTLC{
		{HTLC: htlc.HTLC{ID: 0, AmountMsat: 1_000}, Direction: htlc.Outgoing},
		{HTLC: htlc.HTLC{ID: 1, AmountMsat: 2_000}, Direction: htlc.Outgoing},
	}
	baseSpec := htlc.CommitmentSpec{
		Htlcs: shared, LocalBalanceMsat: 60_000, RemoteBalanceMsat: 37_000,
	}

	cs := NewCommitmentSet()
	cs.Active = []*Commitment{
		{Index: 0, Spec: baseSpec},
		{Index: 1, Spec: baseSpec},
	}

	settle := LogUpdate{Kind: Fail, HtlcID: 0}
	err := cs.ApplyToActive([]LogUpdate{settle}, 100_000,
		func(spec *htlc.CommitmentSpec, u LogUpdate) error {
			return ApplySettle(spec, u, false)
		},
	)
	require.NoError(t, err)

	require.Len(t, cs.Active[0].Spec.Htlcs, 1)
	require.Len(t, cs.Active[1].Spec.Htlcs, 1)
	require.Len(t, shared, 2)
}

func TestApplyAddRejectsNonMonotonicID(t *testing.T) {
	spec := &htlc.CommitmentSpec{
		Htlcs: []htlc.DirectedHTLC{
			{HTLC: htlc.HTLC{ID: 5}, Direction: htlc.Outgoing},
		},
		LocalBalanceMsat: 100_000,
	}
	u := LogUpdate{Kind: Add, Htlc: &htlc.HTLC{ID: 5, AmountMsat: 1_000, Expiry: 500_000}}

	err := ApplyAdd(spec, u, htlc.Outgoing, permissiveParams())
	require.Error(t, err)
}

func TestApplyAddRejectsBelowMinHtlc(t *testing.T) {
	spec := &htlc.CommitmentSpec{LocalBalanceMsat: 100_000}
	params := permissiveParams()
	params.Remote.Constraints.MinHtlc = 2_000

	u := LogUpdate{Kind: Add, Htlc: &htlc.HTLC{ID: 0, AmountMsat: 1_000, Expiry: 500_000}}
	err := ApplyAdd(spec, u, htlc.Outgoing, params)
	require.Error(t, err)
}

func TestApplyAddRejectsExceedingMaxAcceptedHtlcs(t *testing.T) {
	spec := &htlc.CommitmentSpec{
		Htlcs: []htlc.DirectedHTLC{
			{HTLC: htlc.HTLC{ID: 0, AmountMsat: 1_000}, Direction: htlc.Outgoing},
		},
		LocalBalanceMsat: 100_000,
	}
	params := permissiveParams()
	params.Remote.Constraints.MaxAcceptedHtlcs = 1

	u := LogUpdate{Kind: Add, Htlc: &htlc.HTLC{ID: 1, AmountMsat: 1_000, Expiry: 500_000}}
	err := ApplyAdd(spec, u, htlc.Outgoing, params)
	require.Error(t, err)
}

func TestApplyAddRejectsExceedingMaxPendingAmount(t *testing.T) {
	spec := &htlc.CommitmentSpec{LocalBalanceMsat: 100_000}
	params := permissiveParams()
	params.Remote.Constraints.MaxPendingAmount = 500

	u := LogUpdate{Kind: Add, Htlc: &htlc.HTLC{ID: 0, AmountMsat: 1_000, Expiry: 500_000}}
	err := ApplyAdd(spec, u, htlc.Outgoing, params)
	require.Error(t, err)
}

func TestApplyAddRejectsWhenBelowReserve(t *testing.T) {
	spec := &htlc.CommitmentSpec{LocalBalanceMsat: 1_000}
	params := permissiveParams()
	params.Local.Constraints.ChanReserve = 900

	u := LogUpdate{Kind: Add, Htlc: &htlc.HTLC{ID: 0, AmountMsat: 500, Expiry: 500_000}}
	err := ApplyAdd(spec, u, htlc.Outgoing, params)
	require.Error(t, err)
}

func TestApplyAddRejectsZeroExpiry(t *testing.T) {
	spec := &htlc.CommitmentSpec{LocalBalanceMsat: 100_000}
	u := LogUpdate{Kind: Add, Htlc: &htlc.HTLC{ID: 0, AmountMsat: 1_000}}

	err := ApplyAdd(spec, u, htlc.Outgoing, permissiveParams())
	require.Error(t, err)
}

func TestApplyAddAcceptsValidHtlc(t *testing.T) {
	spec := &htlc.CommitmentSpec{LocalBalanceMsat: 100_000}
	u := LogUpdate{Kind: Add, Htlc: &htlc.HTLC{ID: 0, AmountMsat: 1_000, Expiry: 500_000}}

	err := ApplyAdd(spec, u, htlc.Outgoing, permissiveParams())
	require.NoError(t, err)
	require.Len(t, spec.Htlcs, 1)
}

func TestPruneSiblingsDemotesDoubleSpent(t *testing.T) {
	cs := NewCommitmentSet()
	cs.Active = []*Commitment{
		{Index: 0, FundingTxIndex: 5},
		{Index: 1, FundingTxIndex: 5},
		{Index: 2, FundingTxIndex: 6},
	}

	cs.PruneSiblings(0)

	require.Len(t, cs.Active, 2)
	require.Len(t, cs.Inactive, 1)
	require.Equal(t, uint64(1), cs.Inactive[0].Index)
}

func TestApplySettleFulfillCreditsBalance(t *testing.T) {
	preimage := [32]byte{0x01, 0x02, 0x03}
	spec := &htlc.CommitmentSpec{
		Htlcs: []htlc.DirectedHTLC{
			{
				HTLC: htlc.HTLC{
					ID: 7, AmountMsat: 5_000,
					PaymentHash: sha256.Sum256(preimage[:]),
				},
				Direction: htlc.Outgoing,
			},
		},
		LocalBalanceMsat: 10_000,
	}

	err := ApplySettle(spec, LogUpdate{
		Kind: Fulfill, HtlcID: 7, Preimage: preimage,
	}, true)
	require.NoError(t, err)
	require.Empty(t, spec.Htlcs)
	require.Equal(t, uint64(15_000), spec.LocalBalanceMsat)
}

func TestApplySettleRejectsPreimageMismatch(t *testing.T) {
	preimage := [32]byte{0x01, 0x02, 0x03}
	spec := &htlc.CommitmentSpec{
		Htlcs: []htlc.DirectedHTLC{
			{
				HTLC: htlc.HTLC{
					ID: 7, AmountMsat: 5_000,
					PaymentHash: sha256.Sum256(preimage[:]),
				},
				Direction: htlc.Outgoing,
			},
		},
		LocalBalanceMsat: 10_000,
	}

	wrongPreimage := [32]byte{0xff}
	err := ApplySettle(spec, LogUpdate{
		Kind: Fulfill, HtlcID: 7, Preimage: wrongPreimage,
	}, true)
	require.Error(t, err)
	require.Len(t, spec.Htlcs, 1)
	require.Equal(t, uint64(10_000), spec.LocalBalanceMsat)
}

func TestApplyFeeUpdateSetsFeerate(t *testing.T) {
	spec := &htlc.CommitmentSpec{}
	err := ApplyFeeUpdate(spec, LogUpdate{Kind: FeeUpdate, FeePerKw: 2000})
	require.NoError(t, err)
	require.Equal(t, uint64(2000), spec.FeePerKw)
}

func randTLKey(t *testing.T) *btcec.PublicKey {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return priv.PubKey()
}

func testFundingScript(t *testing.T, a, b *btcec.PublicKey) []byte {
	t.Helper()

	first, second := a, b
	if bytes.Compare(a.SerializeCompressed(), b.SerializeCompressed()) > 0 {
		first, second = b, a
	}

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_2)
	builder.AddData(first.SerializeCompressed())
	builder.AddData(second.SerializeCompressed())
	builder.AddOp(txscript.OP_2)
	builder.AddOp(txscript.OP_CHECKMULTISIG)

	script, err := builder.Script()
	require.NoError(t, err)
	return script
}

func signWitness(t *testing.T, tx *wire.MsgTx, script []byte, value int64,
	priv *btcec.PrivateKey) []byte {

	t.Helper()

	sigHashes := txscript.NewTxSigHashes(
		tx, txscript.NewCannedPrevOutputFetcher(script, value),
	)
	hash, err := txscript.CalcWitnessSigHash(
		script, sigHashes, txscript.SigHashAll, tx, 0, value,
	)
	require.NoError(t, err)

	return ecdsa.Sign(priv, hash).Serialize()
}

func TestApplyCommitSigStoresTxAndHtlcSignatures(t *testing.T) {
	localPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	remotePriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	delayPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	revokePriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	localHtlcPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	remoteHtlcPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	localPub, remotePub := localPriv.PubKey(), remotePriv.PubKey()
	localPaymentPub, remotePaymentPub := randTLKey(t), randTLKey(t)

	params := &chancfg.ChannelParams{
		Format: chancfg.DefaultSegwit,
		Local: chancfg.Config{
			Constraints: chancfg.Constraints{DustLimit: 354},
			CsvDelay:    144,
			Basepoints: chancfg.Basepoints{
				MultiSigKey:      localPub,
				PaymentBasePoint: localPaymentPub,
			},
		},
		Remote: chancfg.Config{
			Constraints: chancfg.Constraints{DustLimit: 354},
			Basepoints: chancfg.Basepoints{
				MultiSigKey:      remotePub,
				PaymentBasePoint: remotePaymentPub,
			},
		},
	}

	c := &Commitment{
		Index: 3,
		Spec: htlc.CommitmentSpec{
			LocalBalanceMsat:  40_000_000,
			RemoteBalanceMsat: 40_000_000,
			Htlcs: []htlc.DirectedHTLC{
				{
					HTLC: htlc.HTLC{
						ID: 0, AmountMsat: 5_000_000,
						Expiry: 500_000,
					},
					Direction: htlc.Outgoing,
				},
			},
		},
	}

	fundingScript := testFundingScript(t, localPub, remotePub)
	fundingInput := txbuilder.FundingInput{
		Outpoint: wire.OutPoint{Index: 0},
		Script:   fundingScript,
		Value:    80_000_000,
	}
	obf := txbuilder.DeriveObfuscator(localPaymentPub, remotePaymentPub)

	outs, _ := txbuilder.MakeCommitTxOutputs(
		params, true, &c.Spec, delayPriv.PubKey(), revokePriv.PubKey(),
		remotePub, localHtlcPriv.PubKey(), remoteHtlcPriv.PubKey(),
	)
	wantTx, err := txbuilder.MakeCommitTx(fundingInput, c.Index, obf, outs)
	require.NoError(t, err)

	commitSig := signWitness(
		t, wantTx, fundingScript, fundingInput.Value, remotePriv,
	)

	commitTxID := wantTx.TxHash()
	var htlcSigs [][]byte
	for i, o := range outs {
		if o.Kind != txbuilder.HtlcOffered && o.Kind != txbuilder.HtlcReceived {
			continue
		}
		htlcTx, err := txbuilder.MakeHtlcTimeoutTx(
			commitTxID, uint32(i), o.Amount, o.Htlc.Expiry,
			params.Local.CsvDelay, params.Format,
			revokePriv.PubKey(), delayPriv.PubKey(),
		)
		require.NoError(t, err)
		htlcSigs = append(htlcSigs, signWitness(
			t, htlcTx, o.Script, o.Amount, remoteHtlcPriv,
		))
	}

	err = ApplyCommitSig(c, CommitSigInputs{
		Params:             params,
		IsLocalCommit:      true,
		FundingInput:       fundingInput,
		CommitNumber:       c.Index,
		Obfuscator:         obf,
		CsvDelay:           params.Local.CsvDelay,
		LocalDelayKey:      delayPriv.PubKey(),
		LocalRevocationKey: revokePriv.PubKey(),
		RemoteKey:          remotePub,
		LocalHtlcKey:       localHtlcPriv.PubKey(),
		RemoteHtlcKey:      remoteHtlcPriv.PubKey(),
		FundingScript:      fundingScript,
		FundingValue:       fundingInput.Value,
		FundingPubKey:      remotePub,
		CommitSig:          commitSig,
		HtlcSigs:           htlcSigs,
	})
	require.NoError(t, err)

	require.NotNil(t, c.Tx)
	require.Equal(t, commitSig, c.RemoteSig)
	require.Len(t, c.HtlcTxs, 1)
	require.Equal(t, uint64(0), c.HtlcTxs[0].Htlc.ID)
	require.NotNil(t, c.HtlcTxs[0].Tx)
}

func TestApplyCommitSigRejectsWrongHtlcSignatureCount(t *testing.T) {
	localPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	remotePriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	delayPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	revokePriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	localHtlcPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	remoteHtlcPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	localPub, remotePub := localPriv.PubKey(), remotePriv.PubKey()
	localPaymentPub, remotePaymentPub := randTLKey(t), randTLKey(t)

	params := &chancfg.ChannelParams{
		Format: chancfg.DefaultSegwit,
		Local: chancfg.Config{
			Constraints: chancfg.Constraints{DustLimit: 354},
			CsvDelay:    144,
			Basepoints: chancfg.Basepoints{
				MultiSigKey:      localPub,
				PaymentBasePoint: localPaymentPub,
			},
		},
		Remote: chancfg.Config{
			Constraints: chancfg.Constraints{DustLimit: 354},
			Basepoints: chancfg.Basepoints{
				MultiSigKey:      remotePub,
				PaymentBasePoint: remotePaymentPub,
			},
		},
	}

	c := &Commitment{
		Index: 0,
		Spec: htlc.CommitmentSpec{
			LocalBalanceMsat:  40_000_000,
			RemoteBalanceMsat: 40_000_000,
			Htlcs: []htlc.DirectedHTLC{
				{
					HTLC: htlc.HTLC{
						ID: 1, AmountMsat: 5_000_000,
						Expiry: 500_000,
					},
					Direction: htlc.Outgoing,
				},
			},
		},
	}

	fundingScript := testFundingScript(t, localPub, remotePub)
	fundingInput := txbuilder.FundingInput{
		Outpoint: wire.OutPoint{Index: 0},
		Script:   fundingScript,
		Value:    80_000_000,
	}
	obf := txbuilder.DeriveObfuscator(localPaymentPub, remotePaymentPub)

	outs, _ := txbuilder.MakeCommitTxOutputs(
		params, true, &c.Spec, delayPriv.PubKey(), revokePriv.PubKey(),
		remotePub, localHtlcPriv.PubKey(), remoteHtlcPriv.PubKey(),
	)
	wantTx, err := txbuilder.MakeCommitTx(fundingInput, c.Index, obf, outs)
	require.NoError(t, err)

	commitSig := signWitness(
		t, wantTx, fundingScript, fundingInput.Value, remotePriv,
	)

	err = ApplyCommitSig(c, CommitSigInputs{
		Params:             params,
		IsLocalCommit:      true,
		FundingInput:       fundingInput,
		CommitNumber:       c.Index,
		Obfuscator:         obf,
		CsvDelay:           params.Local.CsvDelay,
		LocalDelayKey:      delayPriv.PubKey(),
		LocalRevocationKey: revokePriv.PubKey(),
		RemoteKey:          remotePub,
		LocalHtlcKey:       localHtlcPriv.PubKey(),
		RemoteHtlcKey:      remoteHtlcPriv.PubKey(),
		FundingScript:      fundingScript,
		FundingValue:       fundingInput.Value,
		FundingPubKey:      remotePub,
		CommitSig:          commitSig,
		HtlcSigs:           nil,
	})
	require.Error(t, err)
	require.Nil(t, c.Tx)
}
