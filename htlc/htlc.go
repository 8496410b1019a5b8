// Package htlc defines the in-flight payment obligations carried by a
// channel's commitments, and the commitment specification — the triple of
// HTLC set, feerate, and balances — that the transaction library signs.
package htlc

import "fmt"

// Direction tags an HTLC from the local party's point of view.
type Direction uint8

const (
	// Outgoing is an HTLC the local party offered to the remote party.
	Outgoing Direction = iota

	// Incoming is an HTLC the remote party offered to the local party.
	Incoming
)

// String returns a human readable direction name.
func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// HTLC is a single in-flight conditional payment.
type HTLC struct {
	// ID is the per-direction, strictly increasing identifier assigned
	// by the party that offered the HTLC.
	ID uint64

	// AmountMsat is the HTLC's value in millisatoshi.
	AmountMsat uint64

	// PaymentHash is SHA256(preimage); the HTLC is fulfilled by
	// revealing a preimage that hashes to this value.
	PaymentHash [32]byte

	// Expiry is the absolute block height after which the offering
	// party may time out the HTLC.
	Expiry uint32

	// OnionBlob is the opaque payload for the downstream hop; this
	// package never interprets its contents.
	OnionBlob []byte

	// BlindingPoint is the optional route-blinding ephemeral key
	// forwarded alongside the HTLC.
	BlindingPoint []byte
}

// DirectedHTLC pairs an HTLC with the direction it flows relative to the
// local party for a specific commitment.
type DirectedHTLC struct {
	HTLC

	Direction Direction
}

// ErrCapacityInvariant is returned by CommitmentSpec.Validate when the
// balances and HTLC amounts don't sum to capacity.
var ErrCapacityInvariant = fmt.Errorf("commitment spec violates capacity invariant")

// CommitmentSpec is the unsigned content of one commitment: which HTLCs it
// carries, at what feerate, and the resulting balances. It's the input to
// every `make_*` transaction-construction function.
type CommitmentSpec struct {
	// Htlcs is the set of directed HTLCs this commitment carries.
	Htlcs []DirectedHTLC

	// FeePerKw is the commitment feerate in satoshi per 1000 weight
	// units.
	FeePerKw uint64

	// LocalBalanceMsat is the local party's to_local balance, excluding
	// HTLC amounts and before the transaction library deducts any fee.
	LocalBalanceMsat uint64

	// RemoteBalanceMsat is the remote party's to_remote balance.
	RemoteBalanceMsat uint64
}

// HtlcSumMsat returns the aggregate millisatoshi value of every HTLC in the
// spec.
func (c *CommitmentSpec) HtlcSumMsat() uint64 {
	var sum uint64
	for _, h := range c.Htlcs {
		sum += h.AmountMsat
	}
	return sum
}

// Validate checks the capacity invariant: LocalBalanceMsat +
// RemoteBalanceMsat + sum(htlcs) must equal capacityMsat.
func (c *CommitmentSpec) Validate(capacityMsat uint64) error {
	total := c.LocalBalanceMsat + c.RemoteBalanceMsat + c.HtlcSumMsat()
	if total != capacityMsat {
		return fmt.Errorf("%w: have %d want %d", ErrCapacityInvariant,
			total, capacityMsat)
	}
	return nil
}

// Offered returns the subset of HTLCs offered by the local party (outgoing
// from the local point of view).
func (c *CommitmentSpec) Offered() []DirectedHTLC {
	return c.filter(Outgoing)
}

// Received returns the subset of HTLCs offered by the remote party
// (incoming from the local point of view).
func (c *CommitmentSpec) Received() []DirectedHTLC {
	return c.filter(Incoming)
}

func (c *CommitmentSpec) filter(dir Direction) []DirectedHTLC {
	out := make([]DirectedHTLC, 0, len(c.Htlcs))
	for _, h := range c.Htlcs {
		if h.Direction == dir {
			out = append(out, h)
		}
	}
	return out
}
