package wire

import (
	"bytes"
	"io"
)

// Shutdown initiates or continues a cooperative close negotiation,
// proposing the script this party's balance should be paid to.
type Shutdown struct {
	ChanID    ChannelID
	Address   []byte
	ExtraData ExtraOpaqueData
}

func (m *Shutdown) MsgType() MessageType { return MsgShutdown }
func (m *Shutdown) Channel() ChannelID   { return m.ChanID }

func (m *Shutdown) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeVarBytes(w, m.Address); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *Shutdown) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.Address, err = readVarBytes(r); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// ClosingSigned proposes (or counter-proposes) a fee for the mutual close
// transaction, signing the resulting transaction at that fee.
type ClosingSigned struct {
	ChanID     ChannelID
	FeeSatoshis uint64
	Signature  Sig
	ExtraData  ExtraOpaqueData
}

func (m *ClosingSigned) MsgType() MessageType { return MsgClosingSigned }
func (m *ClosingSigned) Channel() ChannelID   { return m.ChanID }

func (m *ClosingSigned) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, m.FeeSatoshis); err != nil {
		return err
	}
	if _, err := w.Write(m.Signature[:]); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *ClosingSigned) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.FeeSatoshis, err = readUint64(r); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, m.Signature[:]); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}
