package channelstate

// LocalReestablishView is the local state a chanReestablishSync call needs
// to decide what the peer's channel_reestablish is asking for. It mirrors
// the fields channel_reestablish itself carries, from this party's side.
type LocalReestablishView struct {
	// NextCommitHeight is the commitment number of the next commit_sig
	// this party expects to send.
	NextCommitHeight uint64

	// NextRevocationHeight is the commitment number of the next
	// revoke_and_ack this party expects to send.
	NextRevocationHeight uint64

	// LastCommitSig, if non-nil, is the commit_sig this party most
	// recently sent, kept around solely so it can be retransmitted.
	LastCommitSig []byte

	// LastRevokeAndAck, if non-nil, is the revoke_and_ack this party
	// most recently sent, kept around solely for retransmission.
	LastRevokeAndAck []byte

	// KnownFundingTxID, if non-nil, is the pending splice funding
	// transaction id this party knows about (has seen tx_complete for),
	// if any.
	KnownFundingTxID *[32]byte

	// SentTxSignatures reports whether this party has already sent
	// tx_signatures for KnownFundingTxID.
	SentTxSignatures bool

	// SentSpliceLocked reports whether this party has already sent
	// splice_locked for the now-confirmed splice.
	SentSpliceLocked bool

	// PeerAckedSpliceLocked reports whether the peer has acknowledged
	// (by exchanging its own splice_locked, per BOLT-2's mutual
	// requirement) this party's splice_locked.
	PeerAckedSpliceLocked bool
}

// PeerReestablishClaim is what the peer's channel_reestablish asserted,
// translated out of wire.ChannelReestablish's raw fields.
type PeerReestablishClaim struct {
	NextLocalCommitmentNumber  uint64
	NextRemoteRevocationNumber uint64
	NextFundingTxID            *[32]byte
}

// RetransmitAction is one action the retransmission table (§4.3) says this
// party must take in response to a peer's channel_reestablish.
type RetransmitAction uint8

const (
	RetransmitCommitSig RetransmitAction = iota
	RetransmitRevokeAndAck
	RetransmitTxSignatures
	RetransmitSpliceLocked
	AbortSplice
)

func (a RetransmitAction) String() string {
	switch a {
	case RetransmitCommitSig:
		return "RetransmitCommitSig"
	case RetransmitRevokeAndAck:
		return "RetransmitRevokeAndAck"
	case RetransmitTxSignatures:
		return "RetransmitTxSignatures"
	case RetransmitSpliceLocked:
		return "RetransmitSpliceLocked"
	case AbortSplice:
		return "AbortSplice"
	default:
		return "unknown retransmit action"
	}
}

// ChanReestablishSync implements the §4.3 retransmission table as a total
// function of local state and the peer's claim, rather than as an ad hoc
// branch tree scattered across the state machine — grounded on
// funding/manager.go's stateStep pattern of returning every applicable
// action for the current situation instead of acting on the first match.
func ChanReestablishSync(local LocalReestablishView, peer PeerReestablishClaim) []RetransmitAction {
	var actions []RetransmitAction

	// The peer claims our last commit_sig was lost if the commitment
	// number it says it expects to receive next still trails the one we
	// expect to send next.
	if peer.NextLocalCommitmentNumber < local.NextCommitHeight &&
		local.LastCommitSig != nil {

		actions = append(actions, RetransmitCommitSig)
	}

	// The peer claims our last revoke_and_ack was lost if the revocation
	// number it says it expects to receive next still trails the one we
	// expect to send next.
	if peer.NextRemoteRevocationNumber < local.NextRevocationHeight &&
		local.LastRevokeAndAck != nil {

		actions = append(actions, RetransmitRevokeAndAck)
	}

	if peer.NextFundingTxID != nil {
		switch {
		case local.KnownFundingTxID == nil ||
			*local.KnownFundingTxID != *peer.NextFundingTxID:

			actions = append(actions, AbortSplice)

		case local.SentTxSignatures:
			actions = append(actions, RetransmitTxSignatures)
			if local.SentSpliceLocked {
				actions = append(actions, RetransmitSpliceLocked)
			}
		}
	}

	if local.SentSpliceLocked && !local.PeerAckedSpliceLocked {
		already := false
		for _, a := range actions {
			if a == RetransmitSpliceLocked {
				already = true
			}
		}
		if !already {
			actions = append(actions, RetransmitSpliceLocked)
		}
	}

	return actions
}
