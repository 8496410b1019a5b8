package forceclose

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/lnchan/core/chancfg"
	"github.com/lnchan/core/htlc"
	"github.com/lnchan/core/txbuilder"
)

// ClaimKeys carries the per-commitment keys and sweep destination Finalize
// needs to build the witness-ready transaction for any claim kind the
// reactor may have planned against one commitment.
type ClaimKeys struct {
	DelayKey      *btcec.PublicKey
	RevocationKey *btcec.PublicKey
	CsvDelay      uint32
	SweepScript   []byte
}

// ClaimContext is the confirmed commitment's own txid and output set (as
// returned by txbuilder.MakeCommitTxOutputs for that commitment's spec),
// plus the fee and dust parameters every claim transaction pays and the
// keys needed to build its witness script. MainKind and AnchorKind say
// which CommitmentOutput tag on that commitment is "ours" to sweep for
// ClaimMainDelayed/ClaimMainDirect/ClaimMainPenalty and ClaimAnchor
// respectively — they differ by Case since MakeCommitTxOutputs always
// tags a commitment's own owner's outputs ToLocal/AnchorLocal regardless
// of which party actually owns that commitment.
type ClaimContext struct {
	CommitTxID chainhash.Hash
	Outputs    []txbuilder.CommitmentOutput
	Format     chancfg.CommitmentFormat
	Keys       ClaimKeys
	Fee        int64
	DustLimit  int64

	MainKind   txbuilder.OutputKind
	AnchorKind txbuilder.OutputKind
}

// findOutput locates the CommitmentOutput of the given kind, additionally
// matched by HTLC id when h is non-nil, returning its index within ctx's
// output set.
func findOutput(outputs []txbuilder.CommitmentOutput, kind txbuilder.OutputKind,
	h *htlc.HTLC) (uint32, txbuilder.CommitmentOutput, bool) {

	for i, o := range outputs {
		if o.Kind != kind {
			continue
		}
		if h != nil && (o.Htlc == nil || o.Htlc.ID != h.ID) {
			continue
		}
		return uint32(i), o, true
	}
	return 0, txbuilder.CommitmentOutput{}, false
}

// htlcOutputKind returns the CommitmentOutput tag a claim's HTLC is
// carried under: HtlcOffered for an HTLC the local party sent,
// HtlcReceived otherwise, matching how MakeCommitTxOutputs tags HTLC
// outputs regardless of which commitment they appear on.
func htlcOutputKind(dir htlc.Direction) txbuilder.OutputKind {
	if dir == htlc.Incoming {
		return txbuilder.HtlcReceived
	}
	return txbuilder.HtlcOffered
}

// Finalize builds the concrete transaction for every claim in claims that
// ctx carries enough on-chain data for, setting each Claim's Tx field in
// place. Once every claim off the commitment itself is built, it pairs
// each ClaimSecondLevelDelayed claim with the second-stage transaction its
// sibling ClaimHtlcTimeout/ClaimHtlcSuccess claim just produced and
// finalizes it too. A claim whose parent transaction still isn't
// available — ClaimSecondLevelPenalty, which sweeps a second-stage
// transaction only the counterparty publishes, or any claim when
// ctx.Outputs is empty because this is a passive future-commitment
// recovery — is left with a nil Tx and logged at debug level rather than
// treated as an error.
func Finalize(claims []Claim, ctx ClaimContext) {
	secondStage := make(map[uint64]*wire.MsgTx)

	for i := range claims {
		tx, err := buildClaimTx(&claims[i], ctx)
		if err != nil {
			log.Debugf("could not finalize %v claim: %v",
				claims[i].Kind, err)
			continue
		}
		claims[i].Tx = tx

		if claims[i].Htlc == nil {
			continue
		}
		switch claims[i].Kind {
		case ClaimHtlcTimeout, ClaimHtlcSuccess:
			secondStage[claims[i].Htlc.ID] = tx
		}
	}

	for i := range claims {
		if claims[i].Kind != ClaimSecondLevelDelayed || claims[i].Htlc == nil {
			continue
		}
		htlcTx, ok := secondStage[claims[i].Htlc.ID]
		if !ok {
			continue
		}
		err := FinalizeSecondLevel(
			&claims[i], htlcTx.TxHash(), htlcTx.TxOut[0].Value, ctx,
		)
		if err != nil {
			log.Debugf("could not finalize %v claim: %v",
				claims[i].Kind, err)
		}
	}
}

func buildClaimTx(claim *Claim, ctx ClaimContext) (*wire.MsgTx, error) {
	switch claim.Kind {
	case ClaimAnchor:
		idx, _, ok := findOutput(ctx.Outputs, ctx.AnchorKind, nil)
		if !ok {
			return nil, txbuilder.ErrOutputNotFound
		}
		return txbuilder.MakeClaimAnchor(
			ctx.CommitTxID, idx, ctx.Keys.SweepScript,
		)

	case ClaimMainDelayed:
		idx, out, ok := findOutput(ctx.Outputs, ctx.MainKind, nil)
		if !ok {
			return nil, txbuilder.ErrOutputNotFound
		}
		return txbuilder.MakeClaimMainDelayed(
			ctx.CommitTxID, idx, out.Amount, ctx.Fee, ctx.DustLimit,
			ctx.Keys.CsvDelay, ctx.Keys.SweepScript,
		)

	case ClaimMainDirect:
		idx, out, ok := findOutput(ctx.Outputs, ctx.MainKind, nil)
		if !ok {
			return nil, txbuilder.ErrOutputNotFound
		}
		sequence := uint32(0)
		if ctx.Format.HasAnchors() {
			sequence = 1
		}
		return txbuilder.MakeClaimRemoteMain(
			ctx.CommitTxID, idx, out.Amount, ctx.Fee, ctx.DustLimit,
			sequence, ctx.Keys.SweepScript,
		)

	case ClaimMainPenalty:
		idx, out, ok := findOutput(ctx.Outputs, ctx.MainKind, nil)
		if !ok {
			return nil, txbuilder.ErrOutputNotFound
		}
		return txbuilder.MakeMainPenalty(
			ctx.CommitTxID, idx, out.Amount, ctx.Fee, ctx.DustLimit,
			ctx.Keys.SweepScript,
		)

	case ClaimHtlcTimeout:
		idx, out, ok := findOutput(
			ctx.Outputs, htlcOutputKind(claim.Direction), claim.Htlc,
		)
		if !ok {
			return nil, txbuilder.ErrOutputNotFound
		}
		return txbuilder.MakeHtlcTimeoutTx(
			ctx.CommitTxID, idx, out.Amount, claim.Htlc.Expiry,
			ctx.Keys.CsvDelay, ctx.Format, ctx.Keys.RevocationKey,
			ctx.Keys.DelayKey,
		)

	case ClaimHtlcSuccess:
		idx, out, ok := findOutput(
			ctx.Outputs, htlcOutputKind(claim.Direction), claim.Htlc,
		)
		if !ok {
			return nil, txbuilder.ErrOutputNotFound
		}
		return txbuilder.MakeHtlcSuccessTx(
			ctx.CommitTxID, idx, out.Amount, ctx.Keys.CsvDelay,
			ctx.Format, ctx.Keys.RevocationKey, ctx.Keys.DelayKey,
		)

	case ClaimHtlcDirect:
		kind := htlcOutputKind(claim.Direction)
		idx, out, ok := findOutput(ctx.Outputs, kind, claim.Htlc)
		if !ok {
			return nil, txbuilder.ErrOutputNotFound
		}
		if kind == txbuilder.HtlcOffered {
			return txbuilder.MakeClaimHtlcTimeout(
				ctx.CommitTxID, idx, out.Amount, ctx.Fee,
				ctx.DustLimit, claim.Htlc.Expiry,
				ctx.Keys.SweepScript,
			)
		}
		return txbuilder.MakeClaimHtlcSuccess(
			ctx.CommitTxID, idx, out.Amount, ctx.Fee, ctx.DustLimit,
			ctx.Keys.SweepScript,
		)

	case ClaimHtlcPenalty:
		idx, out, ok := findOutput(
			ctx.Outputs, htlcOutputKind(claim.Direction), claim.Htlc,
		)
		if !ok {
			return nil, txbuilder.ErrOutputNotFound
		}
		return txbuilder.MakeHtlcPenalty(
			ctx.CommitTxID, idx, out.Amount, ctx.Fee, ctx.DustLimit,
			ctx.Keys.SweepScript,
		)

	case ClaimSecondLevelDelayed, ClaimSecondLevelPenalty:
		// These sweep the output of a second-stage HTLC transaction,
		// whose txid only exists once that transaction has itself
		// been built (our own htlc-timeout/htlc-success, carried on
		// the paired ClaimHtlcTimeout/ClaimHtlcSuccess claim) or
		// observed on-chain (the counterparty's). FinalizeSecondLevel
		// builds these once that transaction is available.
		return nil, txbuilder.ErrOutputNotFound

	default:
		return nil, txbuilder.ErrOutputNotFound
	}
}

// FinalizeSecondLevel builds the transaction sweeping a second-stage HTLC
// transaction's sole output once that transaction's txid is known: our
// own htlc-timeout/htlc-success transaction after its CSV delay matures
// (ClaimSecondLevelDelayed), or a counterparty's, via the revocation key,
// before their CSV delay matures (ClaimSecondLevelPenalty).
func FinalizeSecondLevel(claim *Claim, htlcTxID chainhash.Hash,
	amt int64, ctx ClaimContext) error {

	switch claim.Kind {
	case ClaimSecondLevelDelayed:
		tx, err := txbuilder.MakeClaimMainDelayed(
			htlcTxID, 0, amt, ctx.Fee, ctx.DustLimit,
			ctx.Keys.CsvDelay, ctx.Keys.SweepScript,
		)
		if err != nil {
			return err
		}
		claim.Tx = tx

	case ClaimSecondLevelPenalty:
		tx, err := txbuilder.MakeClaimHtlcDelayedPenalty(
			htlcTxID, 0, amt, ctx.Fee, ctx.DustLimit,
			ctx.Keys.SweepScript,
		)
		if err != nil {
			return err
		}
		claim.Tx = tx

	default:
		return errUnsupportedSecondLevelClaim(claim.Kind)
	}

	return nil
}

func errUnsupportedSecondLevelClaim(kind ClaimKind) error {
	return &unsupportedSecondLevelClaimError{kind: kind}
}

type unsupportedSecondLevelClaimError struct {
	kind ClaimKind
}

func (e *unsupportedSecondLevelClaimError) Error() string {
	return "not a second-level claim kind: " + e.kind.String()
}
