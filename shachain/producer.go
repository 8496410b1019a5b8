package shachain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Producer is the generating side of the per-commitment secret chain: given
// a 32-byte seed it derives the secret for any commitment index in O(1),
// without needing to remember secrets it has already handed out. The
// counterpart RevocationStore is the consuming side: it remembers only
// O(log n) of the secrets it is given and can still answer LookUp for any
// previously-seen index.
type Producer struct {
	seed [32]byte
}

// NewRevocationProducer creates a producer seeded with the given 32-byte
// value. The seed is normally derived by the caller from a wallet-level
// master secret combined with the channel's funding outpoint, so that two
// channels never share a chain.
func NewRevocationProducer(seed [32]byte) *Producer {
	return &Producer{seed: seed}
}

// AtIndex derives the per-commitment secret for the given commitment index.
// Commitment indexes are assigned in ascending order starting at zero, but
// internally the chain is walked from the maximum index down to zero, so
// this function maps the caller's ascending index onto the chain's
// descending index space before deriving.
func (p *Producer) AtIndex(commitIndex uint64) (*chainhash.Hash, error) {
	root := element{
		index: startIndex,
		hash:  chainhash.Hash(p.seed),
	}

	target, err := root.derive(newIndex(commitIndex))
	if err != nil {
		return nil, err
	}

	return &target.hash, nil
}

