package wire

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func TestNewChanIDFromOutPointFoldsIndex(t *testing.T) {
	txid := chainhash.Hash{0xaa}
	cid0 := NewChanIDFromOutPoint(wire.OutPoint{Hash: txid, Index: 0})
	cid1 := NewChanIDFromOutPoint(wire.OutPoint{Hash: txid, Index: 1})

	require.NotEqual(t, cid0, cid1)
	require.Equal(t, txid[:30], cid0[:30])
}

func encodeDecode(t *testing.T, m Message, out Message) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))
	require.NoError(t, out.Decode(&buf))
}

func TestUpdateAddHTLCRoundTripWithoutBlindingPoint(t *testing.T) {
	in := &UpdateAddHTLC{
		ChanID:      ChannelID{1},
		ID:          42,
		Amount:      100_000,
		PaymentHash: [32]byte{2},
		Expiry:      700_000,
	}

	var out UpdateAddHTLC
	encodeDecode(t, in, &out)

	require.Equal(t, in.ChanID, out.ChanID)
	require.Equal(t, in.ID, out.ID)
	require.Equal(t, in.Amount, out.Amount)
	require.Equal(t, in.PaymentHash, out.PaymentHash)
	require.Equal(t, in.Expiry, out.Expiry)
	require.Nil(t, out.BlindingPoint)
}

func TestUpdateAddHTLCRoundTripWithBlindingPoint(t *testing.T) {
	in := &UpdateAddHTLC{
		ChanID:        ChannelID{1},
		ID:            7,
		BlindingPoint: []byte{0x02, 0x01, 0x02, 0x03},
	}

	var out UpdateAddHTLC
	encodeDecode(t, in, &out)

	require.Equal(t, in.BlindingPoint, out.BlindingPoint)
}

func TestCommitSigRoundTripWithoutBatchSize(t *testing.T) {
	in := &CommitSig{
		ChanID:   ChannelID{3},
		HtlcSigs: []Sig{{0x01}, {0x02}},
	}

	var out CommitSig
	encodeDecode(t, in, &out)

	require.Nil(t, out.BatchSize)
	require.Len(t, out.HtlcSigs, 2)
}

func TestCommitSigRoundTripWithBatchSize(t *testing.T) {
	batch := uint16(3)
	in := &CommitSig{
		ChanID:    ChannelID{3},
		BatchSize: &batch,
	}

	var out CommitSig
	encodeDecode(t, in, &out)

	require.NotNil(t, out.BatchSize)
	require.Equal(t, batch, *out.BatchSize)
}

func TestChannelReestablishRoundTripWithOptionalFields(t *testing.T) {
	secret := [32]byte{0x09}
	txid := chainhash.Hash{0x0a}

	in := &ChannelReestablish{
		ChanID:                      ChannelID{4},
		NextLocalCommitmentNumber:   5,
		NextRemoteRevocationNumber:  4,
		YourLastPerCommitmentSecret: &secret,
		MyCurrentPerCommitmentPoint: make([]byte, 33),
		NextFundingTxID:             &txid,
	}

	var out ChannelReestablish
	encodeDecode(t, in, &out)

	require.Equal(t, in.NextLocalCommitmentNumber, out.NextLocalCommitmentNumber)
	require.NotNil(t, out.YourLastPerCommitmentSecret)
	require.Equal(t, secret, *out.YourLastPerCommitmentSecret)
	require.NotNil(t, out.NextFundingTxID)
	require.Equal(t, txid, *out.NextFundingTxID)
}

func TestChannelReestablishRoundTripWithoutOptionalFields(t *testing.T) {
	in := &ChannelReestablish{
		ChanID:                      ChannelID{5},
		NextLocalCommitmentNumber:   1,
		NextRemoteRevocationNumber:  1,
		MyCurrentPerCommitmentPoint: make([]byte, 33),
	}

	var out ChannelReestablish
	encodeDecode(t, in, &out)

	require.Nil(t, out.YourLastPerCommitmentSecret)
	require.Nil(t, out.NextFundingTxID)
}

func TestWarningRoundTrip(t *testing.T) {
	in := &Warning{ChanID: ConnectionWideID, Data: []byte("reconnect")}

	var out Warning
	encodeDecode(t, in, &out)

	require.Equal(t, in.Data, out.Data)
	require.Equal(t, ConnectionWideID, out.ChanID)
}

func TestRevokeAndAckRoundTrip(t *testing.T) {
	in := &RevokeAndAck{
		ChanID:          ChannelID{6},
		Revocation:      [32]byte{0x11},
		NextCommitPoint: make([]byte, 33),
	}

	var out RevokeAndAck
	encodeDecode(t, in, &out)

	require.Equal(t, in.Revocation, out.Revocation)
	require.Equal(t, in.NextCommitPoint, out.NextCommitPoint)
}

func TestMessageTypeString(t *testing.T) {
	require.Equal(t, "commit_sig", MsgCommitSig.String())
}
