package chainiface

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/lnchan/core/chancfg"
)

// fakeWatcher is a minimal in-memory ChainWatcher used only to exercise the
// interface's shape; it is not a collaborator implementation this module
// ships.
type fakeWatcher struct{}

func (fakeWatcher) WatchFundingConfirmed(ctx context.Context, txid chainhash.Hash) (<-chan *ConfirmationEvent, error) {
	ch := make(chan *ConfirmationEvent, 1)
	ch <- &ConfirmationEvent{TxID: txid, BlockHeight: 100}
	close(ch)
	return ch, nil
}

func (fakeWatcher) WatchFundingSpent(ctx context.Context, outpoint wire.OutPoint, altSet []chainhash.Hash) (<-chan *SpendEvent, error) {
	ch := make(chan *SpendEvent)
	close(ch)
	return ch, nil
}

func (fakeWatcher) WatchOutputSpent(ctx context.Context, outpoint wire.OutPoint) (<-chan *SpendEvent, error) {
	ch := make(chan *SpendEvent)
	close(ch)
	return ch, nil
}

func (fakeWatcher) WatchTxConfirmed(ctx context.Context, txid chainhash.Hash) (<-chan *ConfirmationEvent, error) {
	ch := make(chan *ConfirmationEvent)
	close(ch)
	return ch, nil
}

func (fakeWatcher) WatchAlternativeCommitTxConfirmed(ctx context.Context, txid chainhash.Hash) (<-chan *AlternativeCommitConfirmedEvent, error) {
	ch := make(chan *AlternativeCommitConfirmedEvent)
	close(ch)
	return ch, nil
}

func TestChainWatcherInterfaceSatisfied(t *testing.T) {
	var w ChainWatcher = fakeWatcher{}

	ch, err := w.WatchFundingConfirmed(context.Background(), chainhash.Hash{})
	require.NoError(t, err)

	ev := <-ch
	require.Equal(t, uint32(100), ev.BlockHeight)
}

func TestPriorityString(t *testing.T) {
	require.Equal(t, "fast", PriorityFast.String())
	require.Equal(t, "unknown", Priority(255).String())
}

type fakeFeeEstimator struct{}

func (fakeFeeEstimator) EstimateFeePerKw(ctx context.Context, target ConfirmationTarget) (chancfg.FeeRate, error) {
	if target.Priority == PriorityFast {
		return 1000, nil
	}
	return 253, nil
}

func TestFeeEstimatorInterfaceSatisfied(t *testing.T) {
	var e FeeEstimator = fakeFeeEstimator{}

	rate, err := e.EstimateFeePerKw(context.Background(), ConfirmationTarget{Priority: PriorityFast})
	require.NoError(t, err)
	require.Equal(t, chancfg.FeeRate(1000), rate)
}
