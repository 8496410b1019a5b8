package txbuilder

import (
	"bytes"
	"sort"

	"github.com/btcsuite/btcd/wire"
)

// ClosingOutput is one side's output on a mutual close transaction.
type ClosingOutput struct {
	Script []byte
	Amount int64
}

// MakeClosingTx builds the mutual-close transaction spending the funding
// output, with zero, one, or two outputs depending on which side's balance
// survives the dust limit after the agreed fee is deducted from whichever
// party is paying it. Outputs are ordered by ascending script bytes, per
// §4.1's deterministic ordering rule.
func MakeClosingTx(fundingOutpoint wire.OutPoint, localScript,
	remoteScript []byte, localAmt, remoteAmt, fee, dustLimit int64,
	localPaysFee bool) (*wire.MsgTx, error) {

	if localPaysFee {
		localAmt -= fee
	} else {
		remoteAmt -= fee
	}

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: fundingOutpoint})

	var outs []ClosingOutput
	if localAmt >= dustLimit {
		outs = append(outs, ClosingOutput{Script: localScript, Amount: localAmt})
	}
	if remoteAmt >= dustLimit {
		outs = append(outs, ClosingOutput{Script: remoteScript, Amount: remoteAmt})
	}

	sort.SliceStable(outs, func(i, j int) bool {
		return bytes.Compare(outs[i].Script, outs[j].Script) < 0
	})

	for _, o := range outs {
		tx.AddTxOut(&wire.TxOut{Value: o.Amount, PkScript: o.Script})
	}

	return tx, nil
}
