// Package chancfg defines the immutable per-channel parameters agreed at
// channel opening, and the commitment-format discriminant that selects the
// output script shapes, sighash flags, anchor presence, and signing scheme
// used for every transaction built against a channel.
package chancfg

import (
	"github.com/btcsuite/btcd/btcec/v2"
)

// CommitmentFormat enumerates the output/sighash/anchor/signing variants a
// channel may use. It's fixed for the lifetime of a channel.
type CommitmentFormat uint8

const (
	// DefaultSegwit is the original p2wsh/p2wpkh commitment format with
	// no anchor outputs.
	DefaultSegwit CommitmentFormat = iota

	// AnchorOutputs adds a 330-satoshi anchor output per party and
	// CSV(1)-delays the to_remote output.
	AnchorOutputs

	// ZeroFeeAnchorOutputs is AnchorOutputs with second-stage HTLC
	// transactions carrying zero absolute fee, relying on
	// child-pays-for-parent for confirmation.
	ZeroFeeAnchorOutputs

	// Taproot uses a MuSig2 aggregate key for the funding output and
	// BIP-341 script-path HTLC/anchor scripts for every commitment
	// output.
	Taproot
)

// String returns a human readable name for the commitment format.
func (f CommitmentFormat) String() string {
	switch f {
	case DefaultSegwit:
		return "default-segwit"
	case AnchorOutputs:
		return "anchor-outputs"
	case ZeroFeeAnchorOutputs:
		return "zero-fee-anchor-outputs"
	case Taproot:
		return "taproot"
	default:
		return "unknown"
	}
}

// HasAnchors reports whether the format carries per-party anchor outputs.
func (f CommitmentFormat) HasAnchors() bool {
	return f == AnchorOutputs || f == ZeroFeeAnchorOutputs || f == Taproot
}

// ZeroFeeHtlcTx reports whether second-stage HTLC transactions should carry
// zero absolute fee under this format.
func (f CommitmentFormat) ZeroFeeHtlcTx() bool {
	return f == ZeroFeeAnchorOutputs
}

// IsTaproot reports whether the format uses a MuSig2 funding output and
// BIP-341 script-path commitment outputs.
func (f CommitmentFormat) IsTaproot() bool {
	return f == Taproot
}

// FeeRate is a commitment or second-stage transaction feerate expressed in
// satoshis per 1,000 weight units, matching the unit BOLT-3 specifies for
// `feerate_per_kw`.
type FeeRate uint64

// FeeForWeight returns the fee, in satoshis, for a transaction of the given
// weight at this feerate.
func (f FeeRate) FeeForWeight(weight int64) int64 {
	return (int64(f) * weight) / 1000
}

// Basepoints holds the four static per-party public keys from which every
// per-commitment key is derived, plus the funding multisig key.
type Basepoints struct {
	// MultiSigKey is the 2-of-2 (or MuSig2 signer) key for the funding
	// output.
	MultiSigKey *btcec.PublicKey

	// RevocationBasePoint is tweaked with the counterparty's
	// per-commitment point to produce the revocation key on each
	// commitment the counterparty holds.
	RevocationBasePoint *btcec.PublicKey

	// PaymentBasePoint is tweaked per-commitment to produce the
	// to_remote spending key on the counterparty's commitment.
	PaymentBasePoint *btcec.PublicKey

	// DelayBasePoint is tweaked per-commitment to produce the to_local
	// spending key on the owner's own commitment.
	DelayBasePoint *btcec.PublicKey

	// HtlcBasePoint is tweaked per-commitment to produce the HTLC
	// signing key used in both offered and received HTLC scripts.
	HtlcBasePoint *btcec.PublicKey
}

// Constraints bounds the HTLCs a party may propose or accept.
type Constraints struct {
	// DustLimit is the minimum non-dust output value, in satoshis, for
	// outputs owned by this party.
	DustLimit int64

	// ChanReserve is the minimum balance, in millisatoshi, this party
	// must keep on its side of the channel at all times.
	ChanReserve uint64

	// MaxPendingAmount is the maximum aggregate millisatoshi value of
	// in-flight HTLCs this party will accept.
	MaxPendingAmount uint64

	// MaxAcceptedHtlcs is the maximum number of in-flight HTLCs this
	// party will accept.
	MaxAcceptedHtlcs uint16

	// MinHtlc is the minimum millisatoshi value of any HTLC this party
	// will accept.
	MinHtlc uint64
}

// Config is the full set of immutable parameters for one party of a
// channel, agreed during opening and never mutated thereafter.
type Config struct {
	// Basepoints are this party's static derivation basepoints.
	Basepoints Basepoints

	// Constraints bounds this party's accepted HTLCs and reserve.
	Constraints Constraints

	// CsvDelay is the number of blocks this party must wait before
	// spending its to_local output on its own commitment.
	CsvDelay uint16
}

// ChannelParams bundles both parties' configs with the channel-wide
// constants agreed at opening.
type ChannelParams struct {
	Local  Config
	Remote Config

	// Format is the commitment-format discriminant for this channel.
	Format CommitmentFormat

	// CapacityMsat is the channel's total capacity in millisatoshi,
	// fixed at opening and updated only by a successful splice.
	CapacityMsat uint64

	// Initiator is true if the local party opened the channel and is
	// therefore the only party permitted to send update_fee.
	Initiator bool
}
