// Package persistence defines the versioned on-disk shape of a channel
// record, per §6. It is data and interface definitions only — the database
// itself is an external collaborator (§1); nothing here performs I/O.
package persistence

import (
	"github.com/lnchan/core/chancfg"
	"github.com/lnchan/core/htlc"
	"github.com/lnchan/core/shachain"
	"github.com/lnchan/core/updatelog"
)

// RecordVersion discriminates the on-disk layout of Record, matching
// channeldb's single-byte version-discriminant idiom so a future layout
// change can be introduced without an in-place migration of every existing
// record.
type RecordVersion uint8

const (
	// RecordVersionV1 is the only layout this engine currently writes.
	RecordVersionV1 RecordVersion = 1
)

// HTLCOrigin carries the upstream circuit/onion bookkeeping needed to fail
// or fulfill an incoming HTLC correctly after a restart. This engine owns
// the origin map's lifecycle; the onion payload's contents belong to the
// payment router (an external collaborator, §1).
type HTLCOrigin struct {
	HtlcID       uint64
	CircuitKey   [8]byte
	OnionPayload []byte
}

// FundingRecord captures the per-commitment confirmation bookkeeping
// needed to decide when channel_ready/splice_locked may be sent, per the
// min-depth gating SPEC_FULL.md's data model supplement describes.
type FundingRecord struct {
	FundingTxIndex  uint64
	ConfirmedHeight uint32
	OutputIndex     uint32
}

// CommitmentRecord is the persisted form of one signed commitment.
type CommitmentRecord struct {
	Commitment  updatelog.Commitment
	CommitTx    []byte
	CommitSig   []byte
	HtlcSigs    [][]byte
	Funding     FundingRecord
}

// Record is one versioned, persisted channel. A database collaborator
// implementing Store below is responsible for turning this into bytes and
// back — this package only names the shape.
type Record struct {
	Version RecordVersion

	ChannelID [32]byte
	TempChannelID [32]byte

	Params chancfg.ChannelParams

	Active   []CommitmentRecord
	Inactive []CommitmentRecord

	PendingChanges updatelog.PendingChanges

	RevocationProducer shachain.Producer
	RevocationStore    shachain.Store

	HtlcOrigins []HTLCOrigin

	// SubState names the channel state machine's current top-level state
	// and any splice/RBF sub-state, encoded by the channelstate package
	// (kept opaque here so that persistence does not import
	// channelstate).
	SubState []byte
}

// Store is the persistence collaborator's contract: load and save one
// versioned channel record, and enumerate every record for a given peer.
// No method here performs any actual I/O; concrete implementations are an
// external collaborator per §1.
type Store interface {
	PutChannel(rec *Record) error
	GetChannel(channelID [32]byte) (*Record, error)
	DeleteChannel(channelID [32]byte) error
	ListChannels(peerPubKey [33]byte) ([]*Record, error)
}

// HTLCCommitmentSpec is a convenience alias used by callers that need to
// pass a commitment's spec alongside its record without importing htlc
// directly.
type HTLCCommitmentSpec = htlc.CommitmentSpec
