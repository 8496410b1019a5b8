package fundingsession

import (
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Contributions summarizes one party's current stake in an in-progress
// round: how much it has put in, how much it has taken out, and the
// weight those inputs/outputs add to the final transaction. Supplemented
// per SPEC_FULL.md so a caller (or a test) can assert the fee-share math
// mid-round without waiting for tx_complete.
type Contributions struct {
	InputSats  int64
	OutputSats int64
	Weight     int64
}

// inputWeight and outputWeight approximate the marginal weight added by one
// P2WPKH-shaped contribution; a real implementation would inspect the
// actual witness/script, but the round accounting only needs a
// conservative per-contribution estimate to reject a below-minimum-feerate
// proposal early.
const (
	inputWeight  int64 = 68 * 4
	outputWeight int64 = 31 * 4
)

// mapValues copies a map's values into a slice, since fn's slice combinators
// have nothing to say about ranging over a map directly.
func mapValues[K comparable, V any](m map[K]V) []V {
	vals := make([]V, 0, len(m))
	for _, v := range m {
		vals = append(vals, v)
	}
	return vals
}

// Contributions returns the current weight and fee accounting of every
// input/output contributed by the given party so far in this round.
func (s *Session) Contributions(fromInitiator bool) Contributions {
	fromParty := func(from bool) bool { return from == fromInitiator }

	ownInputs := fn.Filter(
		mapValues(s.inputs),
		func(in Input) bool { return fromParty(in.FromInitiator) },
	)
	ownOutputs := fn.Filter(
		mapValues(s.outputs),
		func(out Output) bool { return fromParty(out.FromInitiator) },
	)

	inputSats := fn.Sum(fn.Map(ownInputs, func(in Input) int64 {
		return in.PrevOutAmount
	}))
	outputSats := fn.Sum(fn.Map(ownOutputs, func(out Output) int64 {
		return out.Amount
	}))

	return Contributions{
		InputSats:  inputSats,
		OutputSats: outputSats,
		Weight:     int64(len(ownInputs))*inputWeight + int64(len(ownOutputs))*outputWeight,
	}
}

// FeeShare returns this party's share of the round's mining fee at the
// session's negotiated feerate, proportional to the weight it contributed.
// The initiator additionally covers the shared input/output's weight,
// since it proposed the round.
func (s *Session) FeeShare(fromInitiator bool) int64 {
	c := s.Contributions(fromInitiator)
	weight := c.Weight

	if fromInitiator && s.Purpose == PurposeSplice {
		weight += sharedWeight
	}

	return (int64(s.feerate) * weight) / 1000
}

const sharedWeight int64 = (41 + 43) * 4

// BalanceChange returns the signed change to the given party's commitment
// balance for this round: contributed inputs minus contributed outputs
// minus that party's share of the mining fee, per §4.4's splice balance
// formula.
func (s *Session) BalanceChange(fromInitiator bool) int64 {
	c := s.Contributions(fromInitiator)
	fee := s.FeeShare(fromInitiator)

	change := c.InputSats - c.OutputSats - fee
	if s.LiquidityPurchase != nil && s.LiquidityPurchase.PurchasedBy == fromInitiator {
		change -= s.LiquidityPurchase.FeeSats
	}
	return change
}
