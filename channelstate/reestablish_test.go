package channelstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChanReestablishSyncRetransmitCommitSig(t *testing.T) {
	local := LocalReestablishView{
		NextCommitHeight:     5,
		NextRevocationHeight: 4,
		LastCommitSig:        []byte{0xaa},
	}
	peer := PeerReestablishClaim{
		NextLocalCommitmentNumber:  4,
		NextRemoteRevocationNumber: 4,
	}

	actions := ChanReestablishSync(local, peer)
	require.Contains(t, actions, RetransmitCommitSig)
	require.NotContains(t, actions, RetransmitRevokeAndAck)
}

func TestChanReestablishSyncRetransmitRevokeAndAck(t *testing.T) {
	local := LocalReestablishView{
		NextCommitHeight:     5,
		NextRevocationHeight: 4,
		LastRevokeAndAck:     []byte{0xbb},
	}
	peer := PeerReestablishClaim{
		NextLocalCommitmentNumber:  5,
		NextRemoteRevocationNumber: 3,
	}

	actions := ChanReestablishSync(local, peer)
	require.Contains(t, actions, RetransmitRevokeAndAck)
	require.NotContains(t, actions, RetransmitCommitSig)
}

func TestChanReestablishSyncAbortsUnknownSplice(t *testing.T) {
	txid := [32]byte{1, 2, 3}
	local := LocalReestablishView{
		NextCommitHeight:     1,
		NextRevocationHeight: 1,
	}
	peer := PeerReestablishClaim{
		NextLocalCommitmentNumber:  1,
		NextRemoteRevocationNumber: 1,
		NextFundingTxID:            &txid,
	}

	actions := ChanReestablishSync(local, peer)
	require.Contains(t, actions, AbortSplice)
}

func TestChanReestablishSyncRetransmitsTxSignaturesAndSpliceLocked(t *testing.T) {
	txid := [32]byte{1, 2, 3}
	local := LocalReestablishView{
		NextCommitHeight:     1,
		NextRevocationHeight: 1,
		KnownFundingTxID:     &txid,
		SentTxSignatures:     true,
		SentSpliceLocked:     true,
	}
	peer := PeerReestablishClaim{
		NextLocalCommitmentNumber:  1,
		NextRemoteRevocationNumber: 1,
		NextFundingTxID:            &txid,
	}

	actions := ChanReestablishSync(local, peer)
	require.Contains(t, actions, RetransmitTxSignatures)
	require.Contains(t, actions, RetransmitSpliceLocked)
	require.NotContains(t, actions, AbortSplice)
}

func TestChanReestablishSyncRetransmitsUnackedSpliceLocked(t *testing.T) {
	local := LocalReestablishView{
		NextCommitHeight:      1,
		NextRevocationHeight:  1,
		SentSpliceLocked:      true,
		PeerAckedSpliceLocked: false,
	}
	peer := PeerReestablishClaim{
		NextLocalCommitmentNumber:  1,
		NextRemoteRevocationNumber: 1,
	}

	actions := ChanReestablishSync(local, peer)
	require.Contains(t, actions, RetransmitSpliceLocked)
}

func TestChanReestablishSyncNoActionsWhenInSync(t *testing.T) {
	local := LocalReestablishView{
		NextCommitHeight:      3,
		NextRevocationHeight:  3,
		PeerAckedSpliceLocked: true,
	}
	peer := PeerReestablishClaim{
		NextLocalCommitmentNumber:  3,
		NextRemoteRevocationNumber: 3,
	}

	require.Empty(t, ChanReestablishSync(local, peer))
}
