// Package chainiface declares the interfaces this engine consumes from its
// chain-watcher and transaction-publisher collaborators. Both are external:
// nothing in this module implements them, and nothing here performs any
// chain I/O — these are pure interface/event type declarations, the same
// role contractcourt/interfaces.go plays for the force-close arbitrators.
package chainiface

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lnchan/core/chancfg"
)

// ConfirmationEvent is delivered when a watched transaction reaches its
// required confirmation depth.
type ConfirmationEvent struct {
	TxID        chainhash.Hash
	BlockHeight uint32
	BlockHash   chainhash.Hash
	TxIndex     uint32
}

// SpendEvent is delivered when a watched outpoint is spent on-chain.
type SpendEvent struct {
	Outpoint    wire.OutPoint
	SpendingTx  *wire.MsgTx
	BlockHeight uint32
}

// AlternativeCommitConfirmedEvent is delivered when one of several
// simultaneously-active commitment transactions (siblings during splicing
// or RBF) is the one that confirms, so the caller can cancel watches on the
// rest and switch its tracked output set.
type AlternativeCommitConfirmedEvent struct {
	TxID        chainhash.Hash
	BlockHeight uint32
}

// ChainWatcher is the set of operations this engine consumes from the chain
// notifier collaborator, per §6. Each Watch* call returns a channel that is
// closed (after sending, if applicable) once its event fires or the context
// is cancelled.
type ChainWatcher interface {
	// WatchFundingConfirmed watches for the funding transaction reaching
	// its configured confirmation depth.
	WatchFundingConfirmed(ctx context.Context,
		txid chainhash.Hash) (<-chan *ConfirmationEvent, error)

	// WatchFundingSpent watches for any spend of the funding outpoint,
	// additionally matching against altSet — the set of alternative
	// commitment transaction ids considered valid spends during
	// splicing/RBF racing.
	WatchFundingSpent(ctx context.Context, outpoint wire.OutPoint,
		altSet []chainhash.Hash) (<-chan *SpendEvent, error)

	// WatchOutputSpent watches an arbitrary outpoint (a second-stage
	// HTLC transaction's output, for instance) for a spend.
	WatchOutputSpent(ctx context.Context,
		outpoint wire.OutPoint) (<-chan *SpendEvent, error)

	// WatchTxConfirmed watches an arbitrary transaction id for
	// confirmation, independent of the funding/commitment bookkeeping.
	WatchTxConfirmed(ctx context.Context,
		txid chainhash.Hash) (<-chan *ConfirmationEvent, error)

	// WatchAlternativeCommitTxConfirmed watches a non-primary active
	// commitment (a splice or RBF sibling) for confirmation, so the
	// reactor can switch its chosen output set the instant a sibling
	// wins the race.
	WatchAlternativeCommitTxConfirmed(ctx context.Context,
		txid chainhash.Hash) (<-chan *AlternativeCommitConfirmedEvent, error)
}

// ConfirmationTarget names how urgently a replaceable transaction must
// confirm, per §4.5's HTLC timelock escalation.
type ConfirmationTarget struct {
	// Absolute, when non-zero, pins the target to a specific block
	// height — typically an HTLC's expiry.
	Absolute uint32

	// Priority is used when Absolute is zero.
	Priority Priority
}

// Priority is a relative fee-urgency hint for the publisher's fee
// estimator, used when no absolute block height applies.
type Priority uint8

const (
	PrioritySlow Priority = iota
	PriorityMedium
	PriorityFast
)

func (p Priority) String() string {
	switch p {
	case PrioritySlow:
		return "slow"
	case PriorityMedium:
		return "medium"
	case PriorityFast:
		return "fast"
	default:
		return "unknown"
	}
}

// PublishResult reports the outcome of a publish attempt.
type PublishResult struct {
	TxID chainhash.Hash
	Err  error
}

// Publisher is the set of operations this engine consumes from the
// transaction broadcaster collaborator, per §6. PublishReplaceableTx
// promises at-least-once publication with fee-bumping RBF until either
// confirmation or an explicit Cancel.
type Publisher interface {
	// PublishFinalTx broadcasts a transaction that will never be
	// fee-bumped or replaced — used for already fully-signed
	// transactions such as a cooperative close.
	PublishFinalTx(ctx context.Context, tx *wire.MsgTx) (*PublishResult, error)

	// PublishReplaceableTx broadcasts a transaction that the publisher
	// may rebuild at a higher feerate over time to meet target.
	PublishReplaceableTx(ctx context.Context, tx *wire.MsgTx,
		target ConfirmationTarget) (*PublishResult, error)

	// CancelReplaceableTx stops fee-bumping a previously submitted
	// replaceable transaction, e.g. because its parent commitment was
	// superseded by a sibling that confirmed instead.
	CancelReplaceableTx(ctx context.Context, txid chainhash.Hash) error
}

// FeeEstimator is consulted by the interactive funding session and the
// force-close reactor's escalation logic; it is intentionally minimal since
// the real estimator is an external collaborator (§1).
type FeeEstimator interface {
	EstimateFeePerKw(ctx context.Context,
		target ConfirmationTarget) (chancfg.FeeRate, error)
}
