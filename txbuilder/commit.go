// Package txbuilder implements the pure, I/O-free transaction-construction
// functions named in §4.1: commitment transactions, second-stage HTLC
// transactions, every third-stage claim/penalty transaction, and the mutual
// close transaction. Every function here is deterministic given its inputs
// and performs no signing itself beyond invoking an input.Signer.
package txbuilder

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/wire"
	"github.com/lnchan/core/chancfg"
	"github.com/lnchan/core/htlc"
	"github.com/lnchan/core/input"
)

// ErrOutputNotFound is returned by a make_claim_* function when the parent
// transaction has no output matching the claim being constructed.
var ErrOutputNotFound = fmt.Errorf("output not found on parent transaction")

// ErrAmountBelowDustLimit is returned when a claim's amount, after fee
// deduction, would fall below the dust limit.
var ErrAmountBelowDustLimit = fmt.Errorf("claim amount below dust limit")

// OutputKind discriminates the conditional commitment outputs.
type OutputKind uint8

const (
	ToLocal OutputKind = iota
	ToRemote
	HtlcOffered
	HtlcReceived
	AnchorLocal
	AnchorRemote
)

// CommitmentOutput is one output of a commitment transaction, tagged with
// enough metadata to later build the matching claim transaction.
type CommitmentOutput struct {
	Kind   OutputKind
	Amount int64
	Script []byte

	// Htlc is populated for HtlcOffered/HtlcReceived outputs.
	Htlc *htlc.DirectedHTLC
}

// FundingInput describes the outpoint and script the commitment transaction
// spends.
type FundingInput struct {
	Outpoint   wire.OutPoint
	Script     []byte
	Value      int64
	IsMultiSig bool
}

// htlcWeight returns the weight a single HTLC output adds to the
// commitment transaction, used for dust-trimming and fee computation.
func htlcWeight() int64 {
	return input.HtlcWeight
}

// MakeCommitTxOutputs builds the ordered, trimmed output set for a
// commitment transaction, per §4.1's output and ordering rules. Outputs
// below dust after fee deduction are omitted, with their value folded into
// minerFee. localHtlcKey and remoteHtlcKey are the per-commitment HTLC
// signing keys of the commitment owner and the other party, respectively.
// It never fails — every input is assumed valid.
func MakeCommitTxOutputs(params *chancfg.ChannelParams, isLocalCommit bool,
	spec *htlc.CommitmentSpec, localDelayKey, localRevocationKey,
	remoteKey, localHtlcKey, remoteHtlcKey *btcec.PublicKey) (outs []CommitmentOutput, minerFee int64) {

	var weight int64 = input.CommitmentTxBaseWeight
	for range spec.Htlcs {
		weight += htlcWeight()
	}

	totalFee := (int64(spec.FeePerKw) * weight) / 1000
	minerFee = 0

	localCfg, remoteCfg := params.Local, params.Remote
	if !isLocalCommit {
		localCfg, remoteCfg = params.Remote, params.Local
	}

	localAmt := int64(spec.LocalBalanceMsat / 1000)
	remoteAmt := int64(spec.RemoteBalanceMsat / 1000)

	if isLocalCommit {
		localAmt -= totalFee
	} else {
		remoteAmt -= totalFee
	}

	if localAmt >= localCfg.Constraints.DustLimit {
		script, err := input.CommitScriptToSelf(
			uint32(localCfg.CsvDelay), localDelayKey, localRevocationKey,
		)
		if err == nil {
			outs = append(outs, CommitmentOutput{
				Kind: ToLocal, Amount: localAmt, Script: script,
			})
		}
	} else {
		minerFee += localAmt
	}

	if remoteAmt >= remoteCfg.Constraints.DustLimit {
		var script []byte
		var err error
		if params.Format.HasAnchors() {
			script, err = input.CommitScriptToRemoteConfirmed(remoteKey)
		} else {
			script, err = input.CommitScriptUnencumbered(remoteKey)
		}
		if err == nil {
			outs = append(outs, CommitmentOutput{
				Kind: ToRemote, Amount: remoteAmt, Script: script,
			})
		}
	} else {
		minerFee += remoteAmt
	}

	for _, h := range spec.Htlcs {
		h := h
		amt := int64(h.AmountMsat / 1000)
		htlcWeightShare := htlcWeight()
		feeShare := (int64(spec.FeePerKw) * htlcWeightShare) / 1000
		net := amt - feeShare

		dustLimit := localCfg.Constraints.DustLimit
		if net < dustLimit {
			minerFee += amt
			continue
		}

		kind := HtlcOffered
		if h.Direction == htlc.Incoming {
			kind = HtlcReceived
		}

		// ownerOffered is true when the party who owns this commitment
		// transaction is the one who sent the HTLC, which selects
		// between the offered-HTLC and received-HTLC script templates.
		ownerOffered := (isLocalCommit && h.Direction == htlc.Outgoing) ||
			(!isLocalCommit && h.Direction == htlc.Incoming)

		var (
			script []byte
			err    error
		)
		if ownerOffered {
			script, err = input.SenderHTLCScript(
				localHtlcKey, remoteHtlcKey, localRevocationKey,
				h.PaymentHash[:], params.Format.HasAnchors(),
			)
		} else {
			script, err = input.ReceiverHTLCScript(
				h.Expiry, remoteHtlcKey, localHtlcKey, localRevocationKey,
				h.PaymentHash[:], params.Format.HasAnchors(),
			)
		}
		if err != nil {
			minerFee += amt
			continue
		}

		outs = append(outs, CommitmentOutput{
			Kind:   kind,
			Amount: amt,
			Script: script,
			Htlc:   &h,
		})
	}

	if params.Format.HasAnchors() {
		if localAmt > 0 || len(spec.Htlcs) > 0 {
			script, err := input.CommitScriptAnchor(localCfg.Basepoints.MultiSigKey)
			if err == nil {
				outs = append(outs, CommitmentOutput{
					Kind: AnchorLocal, Amount: input.AnchorSize,
					Script: script,
				})
			}
		}
		if remoteAmt > 0 || len(spec.Htlcs) > 0 {
			script, err := input.CommitScriptAnchor(remoteCfg.Basepoints.MultiSigKey)
			if err == nil {
				outs = append(outs, CommitmentOutput{
					Kind: AnchorRemote, Amount: input.AnchorSize,
					Script: script,
				})
			}
		}
	}

	sortCommitmentOutputs(outs)

	return outs, minerFee
}

// sortCommitmentOutputs applies §4.1's ordering rule: ascending amount,
// ties broken by ascending lexicographic script, ties of both broken by
// ascending CLTV expiry for same-hash/amount/direction HTLCs.
func sortCommitmentOutputs(outs []CommitmentOutput) {
	sort.SliceStable(outs, func(i, j int) bool {
		a, b := outs[i], outs[j]
		if a.Amount != b.Amount {
			return a.Amount < b.Amount
		}
		if cmp := bytes.Compare(a.Script, b.Script); cmp != 0 {
			return cmp < 0
		}
		if a.Htlc != nil && b.Htlc != nil {
			return a.Htlc.Expiry < b.Htlc.Expiry
		}
		return false
	})
}

// MakeCommitTx assembles the commitment transaction itself: the single
// funding input (with the commitment number obscured into its sequence
// field and the transaction's locktime) and the ordered output set.
func MakeCommitTx(fundingInput FundingInput, commitNumber uint64,
	obf Obfuscator, outputs []CommitmentOutput) (*wire.MsgTx, error) {

	tx := wire.NewMsgTx(2)

	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: fundingInput.Outpoint,
	})

	for _, out := range outputs {
		if out.Script == nil {
			continue
		}
		tx.AddTxOut(&wire.TxOut{
			Value:    out.Amount,
			PkScript: out.Script,
		})
	}

	if err := ObscureCommitmentNumber(tx, commitNumber, obf); err != nil {
		return nil, err
	}

	return tx, nil
}

// VerifyCommitSig checks the counterparty's ECDSA signature over the
// commitment transaction against the funding output script, rejecting any
// signature not covering the entire transaction (SIGHASH_ALL), per §4.1's
// signing semantics.
func VerifyCommitSig(commitTx *wire.MsgTx, sigBytes []byte,
	fundingScript []byte, fundingValue int64,
	fundingPubKey *btcec.PublicKey) error {

	sig, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return fmt.Errorf("invalid commit_sig encoding: %w", err)
	}

	return input.VerifyCommitSig(
		commitTx, sig, fundingScript, fundingValue, fundingPubKey,
	)
}
