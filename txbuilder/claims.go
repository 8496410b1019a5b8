package txbuilder

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lnchan/core/input"
)

// claimTx builds a single-input, single-output sweep transaction spending
// outpoint into sweepScript, deducting fee
// from the claimed amount and enforcing the dust floor.
func claimTx(outpoint wire.OutPoint, amt int64, fee int64,
	dustLimit int64, sweepScript []byte, sequence uint32,
	lockTime uint32) (*wire.MsgTx, error) {

	net := amt - fee
	if net < dustLimit {
		return nil, ErrAmountBelowDustLimit
	}

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: outpoint,
		Sequence:         sequence,
	})
	tx.AddTxOut(&wire.TxOut{
		Value:    net,
		PkScript: sweepScript,
	})
	tx.LockTime = lockTime

	return tx, nil
}

// MakeClaimMainDelayed builds the transaction claiming the local party's
// own to_local output after its CSV delay has matured.
func MakeClaimMainDelayed(commitTxID chainhash.Hash, outputIndex uint32,
	amt, fee, dustLimit int64, csvDelay uint32,
	sweepScript []byte) (*wire.MsgTx, error) {

	outpoint := wire.OutPoint{Hash: commitTxID, Index: outputIndex}
	return claimTx(outpoint, amt, fee, dustLimit, sweepScript, csvDelay, 0)
}

// MakeClaimRemoteMain builds the transaction claiming the remote party's
// to_remote output on their own published commitment.
func MakeClaimRemoteMain(commitTxID chainhash.Hash, outputIndex uint32,
	amt, fee, dustLimit int64, sequence uint32,
	sweepScript []byte) (*wire.MsgTx, error) {

	outpoint := wire.OutPoint{Hash: commitTxID, Index: outputIndex}
	return claimTx(outpoint, amt, fee, dustLimit, sweepScript, sequence, 0)
}

// MakeClaimHtlcSuccess builds the transaction the remote party uses to
// claim an offered HTLC directly off the counterparty's commitment
// transaction by presenting the preimage — no CSV delay required since the
// claimant isn't the commitment's owner.
func MakeClaimHtlcSuccess(commitTxID chainhash.Hash, outputIndex uint32,
	amt, fee, dustLimit int64, sweepScript []byte) (*wire.MsgTx, error) {

	outpoint := wire.OutPoint{Hash: commitTxID, Index: outputIndex}
	return claimTx(outpoint, amt, fee, dustLimit, sweepScript, 0, 0)
}

// MakeClaimHtlcTimeout builds the transaction the local party uses to claim
// its own offered HTLC output directly off the counterparty's commitment
// after the absolute CLTV expiry.
func MakeClaimHtlcTimeout(commitTxID chainhash.Hash, outputIndex uint32,
	amt, fee, dustLimit int64, expiry uint32,
	sweepScript []byte) (*wire.MsgTx, error) {

	outpoint := wire.OutPoint{Hash: commitTxID, Index: outputIndex}
	return claimTx(outpoint, amt, fee, dustLimit, sweepScript, 0, expiry)
}

// MakeMainPenalty builds the penalty transaction sweeping a revoked
// counterparty's to_local output via the revocation key, exploitable the
// instant the revocation secret for that commitment index is known.
func MakeMainPenalty(commitTxID chainhash.Hash, outputIndex uint32,
	amt, fee, dustLimit int64, sweepScript []byte) (*wire.MsgTx, error) {

	outpoint := wire.OutPoint{Hash: commitTxID, Index: outputIndex}
	return claimTx(outpoint, amt, fee, dustLimit, sweepScript, 0, 0)
}

// MakeHtlcPenalty builds the penalty transaction sweeping a revoked
// counterparty's HTLC output directly, via the revocation key.
func MakeHtlcPenalty(commitTxID chainhash.Hash, outputIndex uint32,
	amt, fee, dustLimit int64, sweepScript []byte) (*wire.MsgTx, error) {

	outpoint := wire.OutPoint{Hash: commitTxID, Index: outputIndex}
	return claimTx(outpoint, amt, fee, dustLimit, sweepScript, 0, 0)
}

// MakeClaimHtlcDelayedPenalty builds the penalty transaction sweeping the
// output of a second-stage HTLC transaction the counterparty published
// against a revoked commitment, via the revocation key, before the
// counterparty's own CSV delay matures.
func MakeClaimHtlcDelayedPenalty(htlcTxID chainhash.Hash, outputIndex uint32,
	amt, fee, dustLimit int64, sweepScript []byte) (*wire.MsgTx, error) {

	outpoint := wire.OutPoint{Hash: htlcTxID, Index: outputIndex}
	return claimTx(outpoint, amt, fee, dustLimit, sweepScript, 0, 0)
}

// MakeClaimAnchor builds the transaction sweeping a party's own anchor
// output, usable immediately and typically bundled with other inputs to
// bump a stuck commitment's effective feerate (child-pays-for-parent).
func MakeClaimAnchor(commitTxID chainhash.Hash, outputIndex uint32,
	sweepScript []byte) (*wire.MsgTx, error) {

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: commitTxID, Index: outputIndex},
	})
	tx.AddTxOut(&wire.TxOut{
		Value:    input.AnchorSize,
		PkScript: sweepScript,
	})

	return tx, nil
}
