package wire

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/btcsuite/btcd/wire"
)

// ChannelID uniquely identifies a channel, derived by XOR-folding the
// funding outpoint's txid with its output index, matching BOLT-2.
type ChannelID [32]byte

// ConnectionWideID is an all-zero ChannelID, used for messages intended for
// every channel with a given peer (e.g. a connection-level warning).
var ConnectionWideID = ChannelID{}

// NewChanIDFromOutPoint derives a ChannelID from a funding outpoint.
func NewChanIDFromOutPoint(op wire.OutPoint) ChannelID {
	var cid ChannelID
	copy(cid[:], op.Hash[:])

	var idx [2]byte
	binary.BigEndian.PutUint16(idx[:], uint16(op.Index))
	cid[30] ^= idx[0]
	cid[31] ^= idx[1]

	return cid
}

func (c ChannelID) String() string {
	return hex.EncodeToString(c[:])
}
