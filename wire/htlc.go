package wire

import (
	"bytes"
	"io"

	"github.com/lightningnetwork/lnd/tlv"
)

const blindingPointType tlv.Type = 0

// UpdateAddHTLC proposes a new HTLC.
type UpdateAddHTLC struct {
	ChanID        ChannelID
	ID            uint64
	Amount        uint64
	PaymentHash   [32]byte
	Expiry        uint32
	OnionBlob     [1366]byte
	BlindingPoint []byte
	ExtraData     ExtraOpaqueData
}

func (m *UpdateAddHTLC) MsgType() MessageType { return MsgUpdateAddHTLC }
func (m *UpdateAddHTLC) Channel() ChannelID   { return m.ChanID }

func (m *UpdateAddHTLC) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, m.ID); err != nil {
		return err
	}
	if err := writeUint64(w, m.Amount); err != nil {
		return err
	}
	if _, err := w.Write(m.PaymentHash[:]); err != nil {
		return err
	}
	if err := writeUint32(w, m.Expiry); err != nil {
		return err
	}
	if _, err := w.Write(m.OnionBlob[:]); err != nil {
		return err
	}

	var tlvBuf bytes.Buffer
	if len(m.BlindingPoint) > 0 {
		blindingPoint := m.BlindingPoint
		rec := tlv.MakePrimitiveRecord(blindingPointType, &blindingPoint)
		stream, err := tlv.NewStream(rec)
		if err != nil {
			return err
		}
		if err := stream.Encode(&tlvBuf); err != nil {
			return err
		}
	}

	return writeVarBytes(w, append(tlvBuf.Bytes(), m.ExtraData...))
}

func (m *UpdateAddHTLC) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.ID, err = readUint64(r); err != nil {
		return err
	}
	if m.Amount, err = readUint64(r); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, m.PaymentHash[:]); err != nil {
		return err
	}
	if m.Expiry, err = readUint32(r); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, m.OnionBlob[:]); err != nil {
		return err
	}

	rest, err := readExtraData(r)
	if err != nil {
		return err
	}

	var blindingPoint []byte
	rec := tlv.MakePrimitiveRecord(blindingPointType, &blindingPoint)
	if present, err := decodeTLVStream(rest, rec); err == nil && present {
		m.BlindingPoint = blindingPoint
	}
	m.ExtraData = rest

	return nil
}

// UpdateFulfillHTLC supplies a preimage resolving an offered HTLC.
type UpdateFulfillHTLC struct {
	ChanID    ChannelID
	ID        uint64
	Preimage  [32]byte
	ExtraData ExtraOpaqueData
}

func (m *UpdateFulfillHTLC) MsgType() MessageType { return MsgUpdateFulfillHTLC }
func (m *UpdateFulfillHTLC) Channel() ChannelID   { return m.ChanID }

func (m *UpdateFulfillHTLC) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, m.ID); err != nil {
		return err
	}
	if _, err := w.Write(m.Preimage[:]); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *UpdateFulfillHTLC) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.ID, err = readUint64(r); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, m.Preimage[:]); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// UpdateFailHTLC terminates an HTLC unsuccessfully with an onion-encrypted
// reason.
type UpdateFailHTLC struct {
	ChanID    ChannelID
	ID        uint64
	Reason    []byte
	ExtraData ExtraOpaqueData
}

func (m *UpdateFailHTLC) MsgType() MessageType { return MsgUpdateFailHTLC }
func (m *UpdateFailHTLC) Channel() ChannelID   { return m.ChanID }

func (m *UpdateFailHTLC) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, m.ID); err != nil {
		return err
	}
	if err := writeVarBytes(w, m.Reason); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *UpdateFailHTLC) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.ID, err = readUint64(r); err != nil {
		return err
	}
	if m.Reason, err = readVarBytes(r); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// UpdateFailMalformedHTLC terminates an HTLC whose onion the receiver could
// not even parse, carrying the SHA256 of the onion blob and a BOLT-4
// failure code rather than an onion-encrypted reason.
type UpdateFailMalformedHTLC struct {
	ChanID       ChannelID
	ID           uint64
	ShaOnionBlob [32]byte
	FailureCode  uint16
	ExtraData    ExtraOpaqueData
}

func (m *UpdateFailMalformedHTLC) MsgType() MessageType { return MsgUpdateFailMalformedHTLC }
func (m *UpdateFailMalformedHTLC) Channel() ChannelID   { return m.ChanID }

func (m *UpdateFailMalformedHTLC) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, m.ID); err != nil {
		return err
	}
	if _, err := w.Write(m.ShaOnionBlob[:]); err != nil {
		return err
	}
	if err := writeUint16(w, m.FailureCode); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *UpdateFailMalformedHTLC) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.ID, err = readUint64(r); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, m.ShaOnionBlob[:]); err != nil {
		return err
	}
	if m.FailureCode, err = readUint16(r); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// UpdateFee changes the commitment feerate. Only the channel opener may
// send this.
type UpdateFee struct {
	ChanID    ChannelID
	FeePerKw  uint32
	ExtraData ExtraOpaqueData
}

func (m *UpdateFee) MsgType() MessageType { return MsgUpdateFee }
func (m *UpdateFee) Channel() ChannelID   { return m.ChanID }

func (m *UpdateFee) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint32(w, m.FeePerKw); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *UpdateFee) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.FeePerKw, err = readUint32(r); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// CommitSig signs the counterparty's next commitment, with one HTLC
// signature per non-dust HTLC output. BatchSize, carried as an optional
// TLV record, tells the receiver how many CommitSig messages form this
// logical batch — one per active commitment during splicing — matching
// how the teacher's CommitSig carries its optional PartialSig TLV.
type CommitSig struct {
	ChanID    ChannelID
	CommitSig Sig
	HtlcSigs  []Sig
	BatchSize *uint16
	ExtraData ExtraOpaqueData
}

const commitSigBatchSizeType tlv.Type = 0x1

func (m *CommitSig) MsgType() MessageType { return MsgCommitSig }
func (m *CommitSig) Channel() ChannelID   { return m.ChanID }

func (m *CommitSig) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if _, err := w.Write(m.CommitSig[:]); err != nil {
		return err
	}
	if err := writeUint16(w, uint16(len(m.HtlcSigs))); err != nil {
		return err
	}
	for _, s := range m.HtlcSigs {
		if _, err := w.Write(s[:]); err != nil {
			return err
		}
	}

	var tlvBuf bytes.Buffer
	if m.BatchSize != nil {
		batch := *m.BatchSize
		rec := tlv.MakePrimitiveRecord(commitSigBatchSizeType, &batch)
		stream, err := tlv.NewStream(rec)
		if err != nil {
			return err
		}
		if err := stream.Encode(&tlvBuf); err != nil {
			return err
		}
	}

	return writeVarBytes(w, append(tlvBuf.Bytes(), m.ExtraData...))
}

func (m *CommitSig) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if _, err := io.ReadFull(r, m.CommitSig[:]); err != nil {
		return err
	}
	n, err := readUint16(r)
	if err != nil {
		return err
	}
	m.HtlcSigs = make([]Sig, n)
	for i := range m.HtlcSigs {
		if _, err := io.ReadFull(r, m.HtlcSigs[i][:]); err != nil {
			return err
		}
	}

	rest, err := readExtraData(r)
	if err != nil {
		return err
	}

	var batch uint16
	batchRec := tlv.MakePrimitiveRecord(commitSigBatchSizeType, &batch)
	if present, err := decodeTLVStream(rest, batchRec); err == nil && present {
		m.BatchSize = &batch
	}
	m.ExtraData = rest

	return nil
}

// RevokeAndAck reveals the per-commitment secret for the now-superseded
// commitment index and the per-commitment point for the next one.
type RevokeAndAck struct {
	ChanID         ChannelID
	Revocation     [32]byte
	NextCommitPoint []byte
	ExtraData      ExtraOpaqueData
}

func (m *RevokeAndAck) MsgType() MessageType { return MsgRevokeAndAck }
func (m *RevokeAndAck) Channel() ChannelID   { return m.ChanID }

func (m *RevokeAndAck) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if _, err := w.Write(m.Revocation[:]); err != nil {
		return err
	}
	if _, err := w.Write(m.NextCommitPoint); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *RevokeAndAck) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if _, err := io.ReadFull(r, m.Revocation[:]); err != nil {
		return err
	}
	m.NextCommitPoint = make([]byte, 33)
	if _, err := io.ReadFull(r, m.NextCommitPoint); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}
