package input

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr/musig2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/lnchan/core/keychain"
)

// fakeSigner returns a fixed, arbitrary signature for any input; it exists
// only to exercise WitnessType.GenWitnessFunc's dispatch, not to produce
// spendable witnesses.
type fakeSigner struct {
	priv *btcec.PrivateKey
}

func (f *fakeSigner) SignOutputRaw(tx *wire.MsgTx,
	signDesc *SignDescriptor) (Signature, error) {

	hash := []byte("digest-placeholder-000000000000")
	sig := ecdsa.Sign(f.priv, hash)
	return NewEcdsaSignature(sig), nil
}

func (f *fakeSigner) ComputeInputScript(tx *wire.MsgTx,
	signDesc *SignDescriptor) (*Script, error) {

	return &Script{Witness: wire.TxWitness{[]byte{0x01}}}, nil
}

func (f *fakeSigner) MuSig2CreateSession(keychain.KeyLocator,
	[]*btcec.PublicKey, *MuSig2Tweaks,
	[][musig2.PubNonceSize]byte) (*MuSig2SessionInfo, error) {
	return nil, nil
}

func (f *fakeSigner) MuSig2RegisterNonces(MuSig2SessionID,
	[][musig2.PubNonceSize]byte) (bool, error) {
	return false, nil
}

func (f *fakeSigner) MuSig2Sign(MuSig2SessionID, [32]byte,
	bool) (*musig2.PartialSignature, error) {
	return nil, nil
}

func (f *fakeSigner) MuSig2CombineSig(MuSig2SessionID,
	*musig2.PartialSignature) (bool, *[64]byte, error) {
	return false, nil, nil
}

func (f *fakeSigner) MuSig2Cleanup(MuSig2SessionID) error { return nil }

var _ Signer = (*fakeSigner)(nil)

func TestGenWitnessFuncCommitmentTimeLock(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	signer := &fakeSigner{priv: priv}

	desc := &SignDescriptor{
		WitnessScript: []byte{0x51},
		Output:        &wire.TxOut{Value: 1000, PkScript: []byte{0x00}},
	}

	genFn := CommitmentTimeLock.GenWitnessFunc(signer, desc)

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{})

	sigHashes := txscript.NewTxSigHashes(tx, txscript.NewCannedPrevOutputFetcher(
		nil, 0,
	))

	script, err := genFn(tx, sigHashes, 0)
	require.NoError(t, err)
	require.Len(t, script.Witness, 3)
}

func TestGenWitnessFuncUnknownType(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	signer := &fakeSigner{priv: priv}

	genFn := WitnessType(999).GenWitnessFunc(signer, &SignDescriptor{
		Output: &wire.TxOut{},
	})

	_, err = genFn(wire.NewMsgTx(2), nil, 0)
	require.Error(t, err)
}

func TestWitnessTypeString(t *testing.T) {
	require.Equal(t, "CommitmentRevoke", CommitmentRevoke.String())
}
