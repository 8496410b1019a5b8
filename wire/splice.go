package wire

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Stfu ("steady full update") is the quiescence marker that forbids new
// update_add_htlc messages from either side until the splice or RBF
// negotiation it guards resolves.
type Stfu struct {
	ChanID    ChannelID
	Initiator bool
	ExtraData ExtraOpaqueData
}

func (m *Stfu) MsgType() MessageType { return MsgStfu }
func (m *Stfu) Channel() ChannelID   { return m.ChanID }

func (m *Stfu) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeBool(w, m.Initiator); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *Stfu) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.Initiator, err = readBool(r); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// SpliceInit opens a splice negotiation, proposing the signed capacity
// change and the feerate for the new funding transaction.
type SpliceInit struct {
	ChanID             ChannelID
	RelativeSatoshis   int64
	FundingFeerate     uint32
	LockTime           uint32
	FundingKey         []byte
	RequestFundingSats *uint64
	ExtraData          ExtraOpaqueData
}

func (m *SpliceInit) MsgType() MessageType { return MsgSpliceInit }
func (m *SpliceInit) Channel() ChannelID   { return m.ChanID }

func (m *SpliceInit) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(m.RelativeSatoshis)); err != nil {
		return err
	}
	if err := writeUint32(w, m.FundingFeerate); err != nil {
		return err
	}
	if err := writeUint32(w, m.LockTime); err != nil {
		return err
	}
	if err := writeVarBytes(w, m.FundingKey); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *SpliceInit) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid

	sats, err := readUint64(r)
	if err != nil {
		return err
	}
	m.RelativeSatoshis = int64(sats)

	if m.FundingFeerate, err = readUint32(r); err != nil {
		return err
	}
	if m.LockTime, err = readUint32(r); err != nil {
		return err
	}
	if m.FundingKey, err = readVarBytes(r); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// SpliceAck accepts a proposed splice, contributing its own balance change
// and funding key.
type SpliceAck struct {
	ChanID           ChannelID
	RelativeSatoshis int64
	FundingKey       []byte
	ExtraData        ExtraOpaqueData
}

func (m *SpliceAck) MsgType() MessageType { return MsgSpliceAck }
func (m *SpliceAck) Channel() ChannelID   { return m.ChanID }

func (m *SpliceAck) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(m.RelativeSatoshis)); err != nil {
		return err
	}
	if err := writeVarBytes(w, m.FundingKey); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *SpliceAck) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid

	sats, err := readUint64(r)
	if err != nil {
		return err
	}
	m.RelativeSatoshis = int64(sats)

	if m.FundingKey, err = readVarBytes(r); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// SpliceLocked announces that the new splice funding transaction has
// reached min-depth and both the old and new funding outputs agree on the
// channel's go-forward state.
type SpliceLocked struct {
	ChanID    ChannelID
	TxID      chainhash.Hash
	ExtraData ExtraOpaqueData
}

func (m *SpliceLocked) MsgType() MessageType { return MsgSpliceLocked }
func (m *SpliceLocked) Channel() ChannelID   { return m.ChanID }

func (m *SpliceLocked) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if _, err := w.Write(m.TxID[:]); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *SpliceLocked) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if _, err := io.ReadFull(r, m.TxID[:]); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}
