package forceclose

import (
	"context"

	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/queue"
	"github.com/lightningnetwork/lnd/ticker"

	"github.com/lnchan/core/chainiface"
)

// pendingPublish pairs a planned Claim with the fully-signed (or
// signable-once-fee-bumped) transaction that satisfies it, the unit the
// reactor actually hands to the publisher collaborator.
type pendingPublish struct {
	claim Claim
	tx    *wire.MsgTx
}

// pendingQueueDepth bounds how many claims can be queued for publication
// before Enqueue starts blocking; a force-close resolves a bounded number of
// outputs (main + one pair of transactions per HTLC), so this comfortably
// covers even a channel at its max-accepted-htlcs limit.
const pendingQueueDepth = 64

// replaceable reports whether kind should be submitted through
// PublishReplaceableTx (and therefore fee-bumped by the publisher until it
// confirms) rather than PublishFinalTx. Anchor sweeps, the second-stage
// HTLC transactions, direct HTLC claims and the claims on second-stage
// outputs are replaceable; every other kind, including the delayed to_local
// claim and the penalties on commitment outputs, is published final.
func replaceable(kind ClaimKind) bool {
	switch kind {
	case ClaimAnchor, ClaimHtlcTimeout, ClaimHtlcSuccess, ClaimHtlcDirect,
		ClaimSecondLevelDelayed, ClaimSecondLevelPenalty:
		return true
	default:
		return false
	}
}

// Publish hands one claim's transaction to the publisher collaborator,
// choosing PublishFinalTx or PublishReplaceableTx per its urgency, and marks
// the Claim published on success.
func (r *Reactor) Publish(ctx context.Context, claim *Claim, tx *wire.MsgTx) (*chainiface.PublishResult, error) {
	var (
		res *chainiface.PublishResult
		err error
	)

	if replaceable(claim.Kind) {
		res, err = r.publisher.PublishReplaceableTx(ctx, tx, claim.Target)
	} else {
		res, err = r.publisher.PublishFinalTx(ctx, tx)
	}
	if err != nil {
		log.Errorf("failed publishing %v claim: %v", claim.Kind, err)
		return nil, err
	}

	claim.Published = true
	log.Infof("published %v claim, txid %v", claim.Kind, res.TxID)

	return res, nil
}

// EnsurePendingQueue lazily creates the reactor's outbound publish queue,
// serializing claim submissions so a burst of observations (e.g. several
// HTLCs expiring in the same block) doesn't fire concurrent, possibly
// conflicting calls into the publisher collaborator.
func (r *Reactor) EnsurePendingQueue() *queue.BackpressureQueue[pendingPublish] {
	if r.pending == nil {
		r.pending = queue.NewBackpressureQueue[pendingPublish](
			pendingQueueDepth,
			func(int, pendingPublish) bool { return false },
		)
	}
	return r.pending
}

// QueuePublish enqueues claim/tx for submission by the retry loop started
// with RunRetryLoop, instead of publishing inline.
func (r *Reactor) QueuePublish(ctx context.Context, claim Claim, tx *wire.MsgTx) error {
	return r.EnsurePendingQueue().Enqueue(ctx, pendingPublish{claim: claim, tx: tx})
}

// RunRetryLoop drains the pending-publish queue on every tick of t until ctx
// is canceled, giving a claim that failed to publish (mempool eviction, a
// feerate that fell below the current relay minimum) another attempt without
// the caller having to track individual timers per claim.
func (r *Reactor) RunRetryLoop(ctx context.Context, t ticker.Ticker) {
	q := r.EnsurePendingQueue()
	t.Resume()
	defer t.Stop()

	for {
		select {
		case <-t.Ticks():
			result := q.Dequeue(ctx)
			item, err := result.Unpack()
			if err != nil {
				continue
			}

			if _, pubErr := r.Publish(ctx, &item.claim, item.tx); pubErr != nil {
				requeueErr := q.Enqueue(ctx, item)
				if requeueErr != nil {
					log.Warnf("dropping %v claim after "+
						"failed requeue: %v",
						item.claim.Kind, requeueErr)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
