package wire

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/tlv"
)

const nextFundingTxIDType tlv.Type = 0

// ChannelReestablish is exchanged on reconnection for every channel
// established between the two peers, carrying enough state for both sides
// to determine what, if anything, needs to be retransmitted per §4.3's
// retransmission table.
type ChannelReestablish struct {
	ChanID ChannelID

	// NextLocalCommitmentNumber is the commitment number of the next
	// commit_sig this party expects to receive.
	NextLocalCommitmentNumber uint64

	// NextRemoteRevocationNumber is the commitment number of the next
	// revoke_and_ack this party expects to receive.
	NextRemoteRevocationNumber uint64

	// YourLastPerCommitmentSecret, if non-nil, is the secret this party
	// believes it last sent the counterparty — present so the
	// counterparty can detect stale local state (option_data_loss_protect).
	YourLastPerCommitmentSecret *[32]byte

	// MyCurrentPerCommitmentPoint, if non-nil, is this party's current
	// (not-yet-revoked) per-commitment point, so the counterparty can
	// still build a penalty claim if it turns out this party is behind
	// (option_data_loss_protect).
	MyCurrentPerCommitmentPoint []byte

	// NextFundingTxID, if non-nil, is the pending splice funding
	// transaction id this party last signed for, per §4.3's splice
	// retransmission rule.
	NextFundingTxID *chainhash.Hash

	ExtraData ExtraOpaqueData
}

func (m *ChannelReestablish) MsgType() MessageType { return MsgChannelReestablish }
func (m *ChannelReestablish) Channel() ChannelID   { return m.ChanID }

func (m *ChannelReestablish) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, m.NextLocalCommitmentNumber); err != nil {
		return err
	}
	if err := writeUint64(w, m.NextRemoteRevocationNumber); err != nil {
		return err
	}

	var secret [32]byte
	if m.YourLastPerCommitmentSecret != nil {
		secret = *m.YourLastPerCommitmentSecret
	}
	if _, err := w.Write(secret[:]); err != nil {
		return err
	}

	point := m.MyCurrentPerCommitmentPoint
	if len(point) == 0 {
		point = make([]byte, 33)
	}
	if _, err := w.Write(point); err != nil {
		return err
	}

	var tlvBuf bytes.Buffer
	var recs []tlv.Record
	if m.NextFundingTxID != nil {
		var id [32]byte
		copy(id[:], m.NextFundingTxID[:])
		recs = append(recs, tlv.MakePrimitiveRecord(
			nextFundingTxIDType, &id,
		))
	}
	if len(recs) > 0 {
		stream, err := tlv.NewStream(recs...)
		if err != nil {
			return err
		}
		if err := stream.Encode(&tlvBuf); err != nil {
			return err
		}
	}

	return writeVarBytes(w, append(tlvBuf.Bytes(), m.ExtraData...))
}

func (m *ChannelReestablish) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.NextLocalCommitmentNumber, err = readUint64(r); err != nil {
		return err
	}
	if m.NextRemoteRevocationNumber, err = readUint64(r); err != nil {
		return err
	}

	var secret [32]byte
	if _, err := io.ReadFull(r, secret[:]); err != nil {
		return err
	}
	if secret != [32]byte{} {
		m.YourLastPerCommitmentSecret = &secret
	}

	point := make([]byte, 33)
	if _, err := io.ReadFull(r, point); err != nil {
		return err
	}
	m.MyCurrentPerCommitmentPoint = point

	rest, err := readExtraData(r)
	if err != nil {
		return err
	}

	var fundingTxID [32]byte
	rec := tlv.MakePrimitiveRecord(nextFundingTxIDType, &fundingTxID)
	if present, err := decodeTLVStream(rest, rec); err == nil && present {
		hash := chainhash.Hash(fundingTxID)
		m.NextFundingTxID = &hash
	}
	m.ExtraData = rest

	return nil
}
