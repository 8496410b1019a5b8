package input

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lnchan/core/input/tweaks"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

const (
	// MaxHTLCNumber is the maximum number of HTLCs that is permitted to
	// exist on either commitment transaction for a channel at any given
	// time.
	MaxHTLCNumber = 966

	// AnchorSize is the value in satoshis of each anchor output.
	AnchorSize = 330
)

// CommitScriptToSelf constructs the public key script for the output on the
// commitment transaction paying to the channel owner ("to_local"). This
// output is spendable by the owner once the relative CSV delay has passed,
// or, if they broadcast a revoked commitment, immediately by the
// counterparty in possession of the revocation private key.
func CommitScriptToSelf(csvTimeout uint32, selfKey,
	revocationKey *btcec.PublicKey) ([]byte, error) {

	builder := txscript.NewScriptBuilder()

	builder.AddOp(txscript.OP_IF)
	builder.AddData(revocationKey.SerializeCompressed())
	builder.AddOp(txscript.OP_ELSE)
	builder.AddInt64(int64(csvTimeout))
	builder.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
	builder.AddOp(txscript.OP_DROP)
	builder.AddData(selfKey.SerializeCompressed())
	builder.AddOp(txscript.OP_ENDIF)
	builder.AddOp(txscript.OP_CHECKSIG)

	return builder.Script()
}

// CommitScriptUnencumbered constructs the public key script for the
// "to_remote" output on a pre-anchor commitment transaction. The output can
// be swept immediately by the owning party with no delay.
func CommitScriptUnencumbered(key *btcec.PublicKey) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(btcutilHash160(key.SerializeCompressed())).
		Script()
}

// CommitScriptToRemoteConfirmed constructs the to_remote output script used
// in the anchor commitment format. Unlike the non-anchor format, the
// recipient must wait for one confirmation (a relative CSV(1) delay) before
// the output can be spent, which prevents fee-sniping of a counterparty's
// unilateral close.
func CommitScriptToRemoteConfirmed(key *btcec.PublicKey) ([]byte, error) {
	builder := txscript.NewScriptBuilder()

	builder.AddData(key.SerializeCompressed())
	builder.AddOp(txscript.OP_CHECKSIGVERIFY)
	builder.AddOp(txscript.OP_1)
	builder.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)

	return builder.Script()
}

// CommitScriptAnchor constructs the script for an anchor output. Anchor
// outputs are unconditionally spendable by the channel owner, and become
// spendable by anyone 16 blocks after confirmation, which lets either party
// bump the fee of a stuck commitment transaction even if its owner has
// disappeared.
func CommitScriptAnchor(fundingKey *btcec.PublicKey) ([]byte, error) {
	builder := txscript.NewScriptBuilder()

	builder.AddData(fundingKey.SerializeCompressed())
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_NOTIF)
	builder.AddOp(txscript.OP_16)
	builder.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
	builder.AddOp(txscript.OP_ENDIF)

	return builder.Script()
}

// SenderHTLCScript constructs the public key script for an HTLC output on
// the commitment transaction of the HTLC's sender (the "offered HTLC"
// script). The script can be spent in three ways:
//
//   - by the receiver, presenting the payment preimage before the absolute
//     CLTV expiry;
//   - by the sender, after the absolute CLTV expiry has passed;
//   - by the receiver immediately, if the sender broadcasts a revoked
//     commitment and the receiver learns the revocation preimage.
func SenderHTLCScript(senderHtlcKey, receiverHtlcKey,
	revocationKey *btcec.PublicKey, paymentHash []byte,
	confirmedSpend bool) ([]byte, error) {

	builder := txscript.NewScriptBuilder()

	builder.AddOp(txscript.OP_DUP)
	builder.AddOp(txscript.OP_HASH160)
	builder.AddData(btcutilHash160(revocationKey.SerializeCompressed()))
	builder.AddOp(txscript.OP_EQUAL)
	builder.AddOp(txscript.OP_IF)
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ELSE)
	builder.AddData(receiverHtlcKey.SerializeCompressed())
	builder.AddOp(txscript.OP_SWAP)
	builder.AddOp(txscript.OP_SIZE)
	builder.AddInt64(32)
	builder.AddOp(txscript.OP_EQUAL)
	builder.AddOp(txscript.OP_NOTIF)
	builder.AddOp(txscript.OP_DROP)
	builder.AddInt64(2)
	builder.AddOp(txscript.OP_SWAP)
	builder.AddData(senderHtlcKey.SerializeCompressed())
	builder.AddInt64(2)
	builder.AddOp(txscript.OP_CHECKMULTISIG)
	builder.AddOp(txscript.OP_ELSE)
	builder.AddOp(txscript.OP_HASH160)
	builder.AddData(ripemd160H(paymentHash))
	builder.AddOp(txscript.OP_EQUALVERIFY)
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ENDIF)
	if confirmedSpend {
		builder.AddInt64(1)
		builder.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
		builder.AddOp(txscript.OP_DROP)
	}
	builder.AddOp(txscript.OP_ENDIF)

	return builder.Script()
}

// ReceiverHTLCScript constructs the public key script for an HTLC output on
// the commitment transaction of the HTLC's receiver (the "received HTLC"
// script). The script can be spent in three ways:
//
//   - by the receiver, presenting the payment preimage, any time before the
//     absolute CLTV expiry;
//   - by the sender, after the absolute CLTV expiry has passed;
//   - by the sender immediately, if the receiver broadcasts a revoked
//     commitment and the sender learns the revocation preimage.
func ReceiverHTLCScript(cltvExpiry uint32, senderHtlcKey, receiverHtlcKey,
	revocationKey *btcec.PublicKey, paymentHash []byte,
	confirmedSpend bool) ([]byte, error) {

	builder := txscript.NewScriptBuilder()

	builder.AddOp(txscript.OP_DUP)
	builder.AddOp(txscript.OP_HASH160)
	builder.AddData(btcutilHash160(revocationKey.SerializeCompressed()))
	builder.AddOp(txscript.OP_EQUAL)
	builder.AddOp(txscript.OP_IF)
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ELSE)
	builder.AddData(senderHtlcKey.SerializeCompressed())
	builder.AddOp(txscript.OP_SWAP)
	builder.AddOp(txscript.OP_SIZE)
	builder.AddInt64(32)
	builder.AddOp(txscript.OP_EQUAL)
	builder.AddOp(txscript.OP_IF)
	builder.AddOp(txscript.OP_HASH160)
	builder.AddData(ripemd160H(paymentHash))
	builder.AddOp(txscript.OP_EQUALVERIFY)
	builder.AddInt64(2)
	builder.AddOp(txscript.OP_SWAP)
	builder.AddData(receiverHtlcKey.SerializeCompressed())
	builder.AddInt64(2)
	builder.AddOp(txscript.OP_CHECKMULTISIG)
	builder.AddOp(txscript.OP_ELSE)
	builder.AddOp(txscript.OP_DROP)
	builder.AddInt64(int64(cltvExpiry))
	builder.AddOp(txscript.OP_CHECKLOCKTIMEVERIFY)
	builder.AddOp(txscript.OP_DROP)
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ENDIF)
	if confirmedSpend {
		builder.AddInt64(1)
		builder.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
		builder.AddOp(txscript.OP_DROP)
	}
	builder.AddOp(txscript.OP_ENDIF)

	return builder.Script()
}

// SecondLevelHtlcScript constructs the script for a second-level HTLC
// transaction's sole output (the output of an htlc-timeout or htlc-success
// transaction). This output can be swept immediately by the counterparty in
// possession of the revocation private key, or by the owner after the
// relative CSV delay.
func SecondLevelHtlcScript(revocationKey, delayKey *btcec.PublicKey,
	csvDelay uint32) ([]byte, error) {

	return CommitScriptToSelf(csvDelay, delayKey, revocationKey)
}

// HtlcSpendRevoke spends a second-level HTLC output for which we have the
// revocation private key, i.e. the counterparty broadcast a revoked
// commitment and we've confirmed our own second-level sweep on top of it.
func HtlcSpendRevoke(signer Signer, signDesc *SignDescriptor,
	sweepTx *wire.MsgTx) (wire.TxWitness, error) {

	sweepSig, err := signer.SignOutputRaw(sweepTx, signDesc)
	if err != nil {
		return nil, err
	}

	witnessStack := make(wire.TxWitness, 3)
	witnessStack[0] = append(sweepSig.Serialize(), byte(signDesc.HashType))
	witnessStack[1] = []byte{1}
	witnessStack[2] = signDesc.WitnessScript

	return witnessStack, nil
}

// HtlcSecondLevelSpend spends a confirmed second-level HTLC transaction's
// output after its relative CSV delay has matured.
func HtlcSecondLevelSpend(signer Signer, signDesc *SignDescriptor,
	sweepTx *wire.MsgTx) (wire.TxWitness, error) {

	sweepSig, err := signer.SignOutputRaw(sweepTx, signDesc)
	if err != nil {
		return nil, err
	}

	witnessStack := make(wire.TxWitness, 3)
	witnessStack[0] = append(sweepSig.Serialize(), byte(signDesc.HashType))
	witnessStack[1] = nil
	witnessStack[2] = signDesc.WitnessScript

	return witnessStack, nil
}

// CommitSpendTimeout spends a to_local commitment output after its relative
// CSV delay has matured.
func CommitSpendTimeout(signer Signer, signDesc *SignDescriptor,
	sweepTx *wire.MsgTx) (wire.TxWitness, error) {

	sweepSig, err := signer.SignOutputRaw(sweepTx, signDesc)
	if err != nil {
		return nil, err
	}

	witnessStack := make(wire.TxWitness, 3)
	witnessStack[0] = append(sweepSig.Serialize(), byte(signDesc.HashType))
	witnessStack[1] = nil
	witnessStack[2] = signDesc.WitnessScript

	return witnessStack, nil
}

// CommitSpendRevoke spends a to_local commitment output belonging to a
// counterparty who has broadcast a revoked commitment transaction, using the
// revocation private key derived from the divulged per-commitment secret.
func CommitSpendRevoke(signer Signer, signDesc *SignDescriptor,
	sweepTx *wire.MsgTx) (wire.TxWitness, error) {

	sweepSig, err := signer.SignOutputRaw(sweepTx, signDesc)
	if err != nil {
		return nil, err
	}

	witnessStack := make(wire.TxWitness, 3)
	witnessStack[0] = append(sweepSig.Serialize(), byte(signDesc.HashType))
	witnessStack[1] = []byte{1}
	witnessStack[2] = signDesc.WitnessScript

	return witnessStack, nil
}

// CommitSpendNoDelay spends a to_remote commitment output that requires no
// delay (the pre-anchor commitment format). If tweaklessKey is true, the key
// used is the raw payment basepoint with no per-commitment tweak applied, as
// is the case for the anchor commitment format's to_remote output.
func CommitSpendNoDelay(signer Signer, signDesc *SignDescriptor,
	sweepTx *wire.MsgTx, tweaklessKey bool) (wire.TxWitness, error) {

	sweepSig, err := signer.SignOutputRaw(sweepTx, signDesc)
	if err != nil {
		return nil, err
	}

	witnessStack := make(wire.TxWitness, 2)
	witnessStack[0] = append(sweepSig.Serialize(), byte(signDesc.HashType))
	if tweaklessKey {
		witnessStack[1] = signDesc.KeyDesc.PubKey.SerializeCompressed()
	} else {
		witnessStack[1] = tweaks.TweakPubKeyWithTweak(
			signDesc.KeyDesc.PubKey, signDesc.SingleTweak,
		).SerializeCompressed()
	}

	return witnessStack, nil
}

// SenderHtlcSpendRevoke spends an offered HTLC output on a revoked
// commitment transaction belonging to the sender, exploiting knowledge of
// the revocation preimage.
func SenderHtlcSpendRevoke(signer Signer, signDesc *SignDescriptor,
	sweepTx *wire.MsgTx) (wire.TxWitness, error) {

	sweepSig, err := signer.SignOutputRaw(sweepTx, signDesc)
	if err != nil {
		return nil, err
	}

	witnessStack := make(wire.TxWitness, 3)
	witnessStack[0] = append(sweepSig.Serialize(), byte(signDesc.HashType))
	witnessStack[1] = signDesc.KeyDesc.PubKey.SerializeCompressed()
	witnessStack[2] = signDesc.WitnessScript

	return witnessStack, nil
}

// ReceiverHtlcSpendRevoke spends an accepted HTLC output on a revoked
// commitment transaction belonging to the receiver, exploiting knowledge of
// the revocation preimage.
func ReceiverHtlcSpendRevoke(signer Signer, signDesc *SignDescriptor,
	sweepTx *wire.MsgTx) (wire.TxWitness, error) {

	return SenderHtlcSpendRevoke(signer, signDesc, sweepTx)
}

// ReceiverHtlcSpendTimeout spends an accepted HTLC output after its absolute
// CLTV expiry has passed, returning the funds to the party who offered it.
// If cltvExpiry is non-negative, the sweep transaction's lock time is set to
// it; pass -1 when the caller has already set the lock time itself.
func ReceiverHtlcSpendTimeout(signer Signer, signDesc *SignDescriptor,
	sweepTx *wire.MsgTx, cltvExpiry int32) (wire.TxWitness, error) {

	if cltvExpiry >= 0 {
		sweepTx.LockTime = uint32(cltvExpiry)
	}

	sweepSig, err := signer.SignOutputRaw(sweepTx, signDesc)
	if err != nil {
		return nil, err
	}

	witnessStack := make(wire.TxWitness, 3)
	witnessStack[0] = append(sweepSig.Serialize(), byte(signDesc.HashType))
	witnessStack[1] = nil
	witnessStack[2] = signDesc.WitnessScript

	return witnessStack, nil
}

// SenderHtlcSpendRedeem spends an offered HTLC output using the payment
// preimage, by the receiver, before the absolute CLTV expiry. This is used
// when sweeping an HTLC directly off of the counterparty's commitment
// transaction rather than the second-level route.
func SenderHtlcSpendRedeem(signer Signer, signDesc *SignDescriptor,
	sweepTx *wire.MsgTx, preimage []byte) (wire.TxWitness, error) {

	sweepSig, err := signer.SignOutputRaw(sweepTx, signDesc)
	if err != nil {
		return nil, err
	}

	witnessStack := make(wire.TxWitness, 3)
	witnessStack[0] = append(sweepSig.Serialize(), byte(signDesc.HashType))
	witnessStack[1] = preimage
	witnessStack[2] = signDesc.WitnessScript

	return witnessStack, nil
}

// VerifyCommitSig verifies an ECDSA signature over the commitment
// transaction's sighash against the counterparty's funding public key.
func VerifyCommitSig(commitTx *wire.MsgTx, sig *ecdsa.Signature,
	fundingScript []byte, fundingOutputValue int64,
	pubKey *btcec.PublicKey) error {

	sigHashes := txscript.NewTxSigHashes(commitTx, txscript.NewCannedPrevOutputFetcher(
		fundingScript, fundingOutputValue,
	))

	hash, err := txscript.CalcWitnessSigHash(
		fundingScript, sigHashes, txscript.SigHashAll, commitTx, 0,
		fundingOutputValue,
	)
	if err != nil {
		return err
	}

	if !sig.Verify(hash, pubKey) {
		return fmt.Errorf("invalid commitment signature")
	}

	return nil
}

// btcutilHash160 computes ripemd160(sha256(data)), the standard Bitcoin
// "hash160" used by P2WPKH-style scripts and by the revocation-key branch
// of the HTLC scripts below.
func btcutilHash160(data []byte) []byte {
	return btcutil.Hash160(data)
}

// ripemd160H returns the plain RIPEMD-160 digest of its input, with no
// leading SHA-256 pass. The HTLC scripts push RIPEMD160(payment_hash) as a
// constant; since payment_hash is already SHA-256(preimage), OP_HASH160
// applied to the witness-supplied preimage equals this value.
func ripemd160H(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	return h.Sum(nil)
}

// RevocationKey is a convenience re-export of the tweaks package's
// revocation-key derivation, kept here so callers building HTLC/commitment
// scripts don't need a second import for the common case.
func RevocationKey(revokeBase, commitPoint *btcec.PublicKey) *btcec.PublicKey {
	return tweaks.DeriveRevocationPubkey(revokeBase, commitPoint)
}

// CommitmentPoint re-exports the tweaks package's per-commitment-point
// derivation: the public key corresponding to a revealed per-commitment
// secret, treating the secret itself as the private scalar.
func CommitmentPoint(commitSecret []byte) *btcec.PublicKey {
	return tweaks.ComputeCommitmentPoint(commitSecret)
}
