package forceclose

// WatchSet tracks the chain watches this reactor holds open, one per
// active commitment, while splicing leaves more than one commitment able
// to confirm (§4.5's alternative-commit racing).
type WatchSet struct {
	byFundingTxIndex map[uint64]bool

	// Winner is the FundingTxIndex of the commitment that has confirmed,
	// once one has. It is also zero before any commitment has confirmed,
	// so zero alone does not tell that state apart from the original
	// funding output (index 0) confirming.
	Winner uint64
}

// NewWatchSet returns a WatchSet watching every funding transaction index
// in indices.
func NewWatchSet(indices []uint64) *WatchSet {
	ws := &WatchSet{byFundingTxIndex: make(map[uint64]bool, len(indices))}
	for _, idx := range indices {
		ws.byFundingTxIndex[idx] = true
	}
	return ws
}

// Active reports whether fundingTxIndex is still being watched.
func (ws *WatchSet) Active(fundingTxIndex uint64) bool {
	return ws.byFundingTxIndex[fundingTxIndex]
}

// Confirm records that fundingTxIndex's commitment confirmed, canceling
// the watches on every sibling and recording the winner. It returns the
// set of funding transaction indices whose watches were just canceled, so
// the caller knows which chain-watcher subscriptions to tear down and
// which previously-planned second-stage claims are now unusable.
func (ws *WatchSet) Confirm(fundingTxIndex uint64) []uint64 {
	var canceled []uint64
	for idx := range ws.byFundingTxIndex {
		if idx == fundingTxIndex {
			continue
		}
		canceled = append(canceled, idx)
		delete(ws.byFundingTxIndex, idx)
	}

	ws.Winner = fundingTxIndex
	return canceled
}
