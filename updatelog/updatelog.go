// Package updatelog holds the six-bucket pending-change log and the active
// and inactive commitment lists that together form a channel's commitment
// set, per the update protocol of the commitment-and-HTLC engine.
package updatelog

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/lnchan/core/chancfg"
	"github.com/lnchan/core/errset"
	"github.com/lnchan/core/htlc"
	"github.com/lnchan/core/input"
	"github.com/lnchan/core/txbuilder"
)

// UpdateKind tags a LogUpdate with which of the five update messages
// produced it.
type UpdateKind uint8

const (
	// Add corresponds to update_add_htlc.
	Add UpdateKind = iota

	// Fulfill corresponds to update_fulfill_htlc.
	Fulfill

	// Fail corresponds to update_fail_htlc.
	Fail

	// FailMalformed corresponds to update_fail_malformed_htlc.
	FailMalformed

	// FeeUpdate corresponds to update_fee.
	FeeUpdate
)

// LogUpdate is one entry in the update log: a tagged variant over the five
// kinds of change a party may propose between signing rounds.
type LogUpdate struct {
	// LogIndex is the monotonically increasing position of this update
	// within its owner's log, assigned when the update is proposed.
	LogIndex uint64

	// Kind discriminates which of the five update types this is.
	Kind UpdateKind

	// HtlcID identifies the affected HTLC for Fulfill, Fail, and
	// FailMalformed updates; for Add it is the newly assigned id.
	HtlcID uint64

	// Htlc is populated for Add updates.
	Htlc *htlc.HTLC

	// Preimage is populated for Fulfill updates.
	Preimage [32]byte

	// FailReason is the opaque, onion-encrypted failure payload for Fail
	// updates.
	FailReason []byte

	// FailCode is populated for FailMalformed updates.
	FailCode uint16

	// FeePerKw is populated for FeeUpdate updates.
	FeePerKw uint64
}

// Bucket identifies one of the six pending-change buckets a commitment set
// tracks between signing rounds.
type Bucket uint8

const (
	LocalProposed Bucket = iota
	LocalSigned
	LocalAcked
	RemoteProposed
	RemoteAcked
	RemoteSigned
)

// PendingChanges holds, per bucket, the LogUpdates that have not yet been
// folded into every active commitment's spec.
type PendingChanges struct {
	buckets map[Bucket][]LogUpdate
}

// NewPendingChanges returns an empty set of pending changes.
func NewPendingChanges() *PendingChanges {
	return &PendingChanges{buckets: make(map[Bucket][]LogUpdate)}
}

// Propose appends an update to the given bucket.
func (p *PendingChanges) Propose(b Bucket, u LogUpdate) {
	p.buckets[b] = append(p.buckets[b], u)
}

// Bucket returns the updates currently held in the given bucket.
func (p *PendingChanges) Bucket(b Bucket) []LogUpdate {
	return p.buckets[b]
}

// Move transfers every update in the from bucket into the to bucket,
// emptying from. This models the LocalProposed -> LocalSigned -> LocalAcked
// (and the remote-side mirror) progression a change passes through as
// commit_sig/revoke_and_ack round trips complete.
func (p *PendingChanges) Move(from, to Bucket) {
	p.buckets[to] = append(p.buckets[to], p.buckets[from]...)
	delete(p.buckets, from)
}

// Drain returns, and clears, every update in the given bucket, so that a
// signing round can claim the exact set of changes it must apply to every
// active commitment (see CommitmentSet.ApplyToActive).
func (p *PendingChanges) Drain(b Bucket) []LogUpdate {
	updates := p.buckets[b]
	delete(p.buckets, b)
	return updates
}

// SignedHtlc pairs one non-dust HTLC's second-stage transaction with the
// counterparty's verified signature over it.
type SignedHtlc struct {
	Htlc      htlc.HTLC
	Tx        *wire.MsgTx
	RemoteSig []byte
}

// Commitment is one signed state of the channel: an index, the spec it
// commits to, and, once a commit_sig has been applied, the fully-assembled
// commitment transaction with the counterparty's verified signature and a
// second-stage transaction for every non-dust HTLC.
type Commitment struct {
	// Index is this commitment's position in its owner's per-commitment
	// secret chain.
	Index uint64

	// Spec is the unsigned content (HTLC set, feerate, balances) this
	// commitment reflects.
	Spec htlc.CommitmentSpec

	// FundingTxIndex identifies which funding output (original, or a
	// post-splice replacement) this commitment spends. Multiple active
	// commitments may share a FundingTxIndex during RBF.
	FundingTxIndex uint64

	// Tx is the assembled commitment transaction, populated by
	// ApplyCommitSig once the counterparty's commit_sig has been verified
	// against it.
	Tx *wire.MsgTx

	// RemoteSig is the counterparty's verified signature over Tx.
	RemoteSig []byte

	// HtlcTxs holds, for each non-dust HTLC carried by Spec, the
	// second-stage transaction spending its commitment output and the
	// counterparty's verified signature over that transaction.
	HtlcTxs []SignedHtlc
}

// CommitSigInputs bundles everything ApplyCommitSig needs, beyond the
// commitment itself, to rebuild the commitment transaction and verify a
// commit_sig against it: the channel's static parameters, the
// per-commitment keys derived for this index, the funding outpoint being
// spent, and the counterparty's signatures.
type CommitSigInputs struct {
	Params        *chancfg.ChannelParams
	IsLocalCommit bool
	FundingInput  txbuilder.FundingInput
	CommitNumber  uint64
	Obfuscator    txbuilder.Obfuscator
	CsvDelay      uint32

	LocalDelayKey, LocalRevocationKey, RemoteKey *btcec.PublicKey
	LocalHtlcKey, RemoteHtlcKey                  *btcec.PublicKey

	FundingScript []byte
	FundingValue  int64
	FundingPubKey *btcec.PublicKey

	CommitSig []byte
	HtlcSigs  [][]byte
}

// ApplyCommitSig builds c's commitment transaction from its spec via
// txbuilder.MakeCommitTxOutputs/MakeCommitTx, verifies the counterparty's
// commit_sig against it, and for every non-dust HTLC output builds the
// matching second-stage transaction and verifies its paired
// htlc_signature, storing everything on c only once every signature
// checks out. This is the data-flow §2 describes as the commitment set
// calling into the transaction library to construct and sign a state.
func ApplyCommitSig(c *Commitment, in CommitSigInputs) error {
	outs, _ := txbuilder.MakeCommitTxOutputs(
		in.Params, in.IsLocalCommit, &c.Spec,
		in.LocalDelayKey, in.LocalRevocationKey, in.RemoteKey,
		in.LocalHtlcKey, in.RemoteHtlcKey,
	)

	tx, err := txbuilder.MakeCommitTx(
		in.FundingInput, in.CommitNumber, in.Obfuscator, outs,
	)
	if err != nil {
		return fmt.Errorf("commitment %d: %w", c.Index, err)
	}

	if err := txbuilder.VerifyCommitSig(
		tx, in.CommitSig, in.FundingScript, in.FundingValue,
		in.FundingPubKey,
	); err != nil {
		return fmt.Errorf("commitment %d: commit_sig: %w", c.Index, err)
	}

	type htlcOutput struct {
		index  uint32
		output txbuilder.CommitmentOutput
	}

	var htlcOuts []htlcOutput
	for i, o := range outs {
		if o.Kind == txbuilder.HtlcOffered || o.Kind == txbuilder.HtlcReceived {
			htlcOuts = append(htlcOuts, htlcOutput{uint32(i), o})
		}
	}

	if len(in.HtlcSigs) != len(htlcOuts) {
		return fmt.Errorf("commitment %d: got %d htlc_signatures, "+
			"want %d", c.Index, len(in.HtlcSigs), len(htlcOuts))
	}

	commitTxID := tx.TxHash()
	signed := make([]SignedHtlc, 0, len(htlcOuts))
	for i, ho := range htlcOuts {
		var (
			htlcTx *wire.MsgTx
			err    error
		)
		if ho.output.Kind == txbuilder.HtlcOffered {
			htlcTx, err = txbuilder.MakeHtlcTimeoutTx(
				commitTxID, ho.index, ho.output.Amount,
				ho.output.Htlc.Expiry, in.CsvDelay,
				in.Params.Format, in.LocalRevocationKey,
				in.LocalDelayKey,
			)
		} else {
			htlcTx, err = txbuilder.MakeHtlcSuccessTx(
				commitTxID, ho.index, ho.output.Amount,
				in.CsvDelay, in.Params.Format,
				in.LocalRevocationKey, in.LocalDelayKey,
			)
		}
		if err != nil {
			return fmt.Errorf("commitment %d: htlc %d: %w",
				c.Index, ho.output.Htlc.ID, err)
		}

		// The counterparty's htlc_signature is expected to cover the
		// second-stage transaction under the sighash flag §4.1
		// mandates for the channel's commitment format.
		wantHashType := txbuilder.SecondStageSigHash(in.Params.Format)
		if err := txbuilder.VerifyHtlcSig(
			htlcTx, in.HtlcSigs[i], ho.output.Script,
			ho.output.Amount, in.RemoteHtlcKey, in.Params.Format,
			wantHashType,
		); err != nil {
			return fmt.Errorf("commitment %d: htlc %d: "+
				"htlc_signature: %w", c.Index,
				ho.output.Htlc.ID, err)
		}

		signed = append(signed, SignedHtlc{
			Htlc:      ho.output.Htlc.HTLC,
			Tx:        htlcTx,
			RemoteSig: in.HtlcSigs[i],
		})
	}

	c.Tx = tx
	c.RemoteSig = in.CommitSig
	c.HtlcTxs = signed

	return nil
}

// CommitmentSet holds the active and inactive commitments for a channel,
// plus the six-bucket pending-change log.
type CommitmentSet struct {
	// Active are commitments whose funding output has not yet been
	// superseded by a locked-in later one; each may still confirm.
	Active []*Commitment

	// Inactive are commitments superseded by a locked funding output,
	// retained only to answer on-chain reactions if their funding output
	// resurfaces (e.g. a reorg of the splice).
	Inactive []*Commitment

	Pending *PendingChanges
}

// NewCommitmentSet returns an empty commitment set ready to hold the first
// commitment produced during channel opening.
func NewCommitmentSet() *CommitmentSet {
	return &CommitmentSet{Pending: NewPendingChanges()}
}

// ApplyToActive applies the given updates to every active commitment's spec
// independently, per the invariant that active commitments share no mutable
// state. It returns an error if the capacity invariant would be violated
// for any commitment.
func (cs *CommitmentSet) ApplyToActive(updates []LogUpdate,
	capacityMsat uint64, apply func(*htlc.CommitmentSpec, LogUpdate) error) error {

	for _, c := range cs.Active {
		spec := c.Spec
		spec.Htlcs = append([]htlc.DirectedHTLC(nil), c.Spec.Htlcs...)
		for _, u := range updates {
			if err := apply(&spec, u); err != nil {
				return fmt.Errorf("commitment %d: %w",
					c.Index, err)
			}
		}
		if err := spec.Validate(capacityMsat); err != nil {
			return fmt.Errorf("commitment %d: %w", c.Index, err)
		}
		c.Spec = spec
	}

	return nil
}

// PruneSiblings removes every active commitment other than the one
// identified by keepIndex that shares its FundingTxIndex, moving them to
// Inactive. This implements the "prune on first confirmation" rule for RBF
// siblings and splice predecessors: once one attempt at a given
// FundingTxIndex confirms, the double-spent siblings can never confirm and
// are demoted rather than deleted outright, so a deep reorg can still
// resurrect one from Inactive.
func (cs *CommitmentSet) PruneSiblings(keepIndex uint64) {
	found := fn.Find(cs.Active, func(c *Commitment) bool {
		return c.Index == keepIndex
	})
	if found.IsNone() {
		return
	}
	keep := found.UnsafeFromSome()

	isSibling := func(c *Commitment) bool {
		return c.FundingTxIndex == keep.FundingTxIndex && c.Index != keep.Index
	}

	cs.Inactive = append(cs.Inactive, fn.Filter(cs.Active, isSibling)...)
	cs.Active = fn.Filter(cs.Active, func(c *Commitment) bool {
		return !isSibling(c)
	})
}

// ValidateAddHtlc runs the receiver-side checks update_add_htlc requires
// before an offered HTLC may be folded into a commitment spec: the id must
// be strictly greater than every id already carried in that direction, the
// amount must clear the receiving party's minimum, the offering party must
// stay at or above its own reserve after the commitment fee and this HTLC
// are deducted from its balance, the resulting in-flight count and
// aggregate value must stay within the receiving party's accepted limits,
// and the expiry must be non-zero. dir is Outgoing if the local party is
// the one offering (so params.Remote is the receiver) or Incoming if the
// remote party is offering (so params.Local is the receiver).
func ValidateAddHtlc(spec *htlc.CommitmentSpec, u LogUpdate, dir htlc.Direction,
	params *chancfg.ChannelParams) error {

	if u.Kind != Add || u.Htlc == nil {
		return fmt.Errorf("not an add update")
	}
	h := u.Htlc

	if h.Expiry == 0 {
		return errset.New(errset.KindProtocolViolation, errset.CodeInvalidExpiry)
	}

	for _, existing := range spec.Htlcs {
		if existing.Direction == dir && existing.ID >= h.ID {
			return errset.New(
				errset.KindProtocolViolation, errset.CodeNonMonotonicID,
			)
		}
	}

	receiver, offerer := params.Remote, params.Local
	offererBalance := &spec.LocalBalanceMsat
	if dir == htlc.Incoming {
		receiver, offerer = params.Local, params.Remote
		offererBalance = &spec.RemoteBalanceMsat
	}

	if h.AmountMsat < receiver.Constraints.MinHtlc {
		return errset.New(errset.KindProtocolViolation, errset.CodeBelowMinHtlc)
	}

	pendingCount := 0
	var pendingValue uint64
	for _, existing := range spec.Htlcs {
		if existing.Direction != dir {
			continue
		}
		pendingCount++
		pendingValue += existing.AmountMsat
	}
	if uint16(pendingCount+1) > receiver.Constraints.MaxAcceptedHtlcs {
		return errset.New(errset.KindProtocolViolation, errset.CodeMaxAcceptedHtlcs)
	}
	if pendingValue+h.AmountMsat > receiver.Constraints.MaxPendingAmount {
		return errset.New(errset.KindProtocolViolation, errset.CodeMaxPendingAmount)
	}

	weight := input.CommitmentTxBaseWeight +
		int64(len(spec.Htlcs)+1)*input.HtlcWeight
	feeMsat := uint64((int64(spec.FeePerKw)*weight)/1000) * 1000

	spent := h.AmountMsat + feeMsat
	if spent > *offererBalance || *offererBalance-spent < offerer.Constraints.ChanReserve {
		return errset.New(errset.KindProtocolViolation, errset.CodeBelowReserve)
	}

	return nil
}

// ApplyAdd validates an Add update via ValidateAddHtlc and, if it passes,
// folds the HTLC into a commitment spec in the direction implied by
// whether the update originated locally.
func ApplyAdd(spec *htlc.CommitmentSpec, u LogUpdate, dir htlc.Direction,
	params *chancfg.ChannelParams) error {

	if err := ValidateAddHtlc(spec, u, dir, params); err != nil {
		return err
	}

	spec.Htlcs = append(spec.Htlcs, htlc.DirectedHTLC{
		HTLC:      *u.Htlc,
		Direction: dir,
	})
	return nil
}

// ApplySettle removes the HTLC identified by a Fulfill or Fail update from
// the spec. For Fulfill it moves the HTLC's value to the settling party's
// balance; for Fail and FailMalformed it returns the value to the party
// that offered the HTLC.
func ApplySettle(spec *htlc.CommitmentSpec, u LogUpdate, toLocal bool) error {
	idx := -1
	for i, h := range spec.Htlcs {
		if h.ID == u.HtlcID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("htlc %d not found", u.HtlcID)
	}

	removed := spec.Htlcs[idx]

	if u.Kind == Fulfill {
		if sha256.Sum256(u.Preimage[:]) != removed.PaymentHash {
			return errset.New(
				errset.KindProtocolViolation, errset.CodePreimageMismatch,
			)
		}
	}

	spec.Htlcs = append(spec.Htlcs[:idx], spec.Htlcs[idx+1:]...)

	if u.Kind == Fulfill {
		if toLocal {
			spec.LocalBalanceMsat += removed.AmountMsat
		} else {
			spec.RemoteBalanceMsat += removed.AmountMsat
		}
	} else if removed.Direction == htlc.Outgoing {
		spec.LocalBalanceMsat += removed.AmountMsat
	} else {
		spec.RemoteBalanceMsat += removed.AmountMsat
	}

	return nil
}

// ApplyFeeUpdate sets the spec's commitment feerate from a FeeUpdate.
func ApplyFeeUpdate(spec *htlc.CommitmentSpec, u LogUpdate) error {
	if u.Kind != FeeUpdate {
		return fmt.Errorf("not a fee update")
	}
	spec.FeePerKw = u.FeePerKw
	return nil
}
