package wire

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// TxAddInput contributes one input to an in-progress interactive-tx round.
type TxAddInput struct {
	ChanID        ChannelID
	SerialID      uint64
	PrevTx        []byte
	PrevTxVout    uint32
	SequenceNum   uint32
	ExtraData     ExtraOpaqueData
}

func (m *TxAddInput) MsgType() MessageType { return MsgTxAddInput }
func (m *TxAddInput) Channel() ChannelID   { return m.ChanID }

func (m *TxAddInput) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, m.SerialID); err != nil {
		return err
	}
	if err := writeVarBytes(w, m.PrevTx); err != nil {
		return err
	}
	if err := writeUint32(w, m.PrevTxVout); err != nil {
		return err
	}
	if err := writeUint32(w, m.SequenceNum); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *TxAddInput) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.SerialID, err = readUint64(r); err != nil {
		return err
	}
	if m.PrevTx, err = readVarBytes(r); err != nil {
		return err
	}
	if m.PrevTxVout, err = readUint32(r); err != nil {
		return err
	}
	if m.SequenceNum, err = readUint32(r); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// TxAddOutput contributes one output to an in-progress interactive-tx
// round.
type TxAddOutput struct {
	ChanID    ChannelID
	SerialID  uint64
	Amount    uint64
	Script    []byte
	ExtraData ExtraOpaqueData
}

func (m *TxAddOutput) MsgType() MessageType { return MsgTxAddOutput }
func (m *TxAddOutput) Channel() ChannelID   { return m.ChanID }

func (m *TxAddOutput) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, m.SerialID); err != nil {
		return err
	}
	if err := writeUint64(w, m.Amount); err != nil {
		return err
	}
	if err := writeVarBytes(w, m.Script); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *TxAddOutput) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.SerialID, err = readUint64(r); err != nil {
		return err
	}
	if m.Amount, err = readUint64(r); err != nil {
		return err
	}
	if m.Script, err = readVarBytes(r); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// TxRemoveInput withdraws a previously contributed input, identified by its
// serial id.
type TxRemoveInput struct {
	ChanID    ChannelID
	SerialID  uint64
	ExtraData ExtraOpaqueData
}

func (m *TxRemoveInput) MsgType() MessageType { return MsgTxRemoveInput }
func (m *TxRemoveInput) Channel() ChannelID   { return m.ChanID }

func (m *TxRemoveInput) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, m.SerialID); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *TxRemoveInput) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.SerialID, err = readUint64(r); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// TxRemoveOutput withdraws a previously contributed output, identified by
// its serial id.
type TxRemoveOutput struct {
	ChanID    ChannelID
	SerialID  uint64
	ExtraData ExtraOpaqueData
}

func (m *TxRemoveOutput) MsgType() MessageType { return MsgTxRemoveOutput }
func (m *TxRemoveOutput) Channel() ChannelID   { return m.ChanID }

func (m *TxRemoveOutput) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, m.SerialID); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *TxRemoveOutput) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.SerialID, err = readUint64(r); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// TxComplete signals the sender has no more contributions for this round.
// Two consecutive TxComplete messages with no contribution in between end
// the round and move to signing.
type TxComplete struct {
	ChanID    ChannelID
	ExtraData ExtraOpaqueData
}

func (m *TxComplete) MsgType() MessageType { return MsgTxComplete }
func (m *TxComplete) Channel() ChannelID   { return m.ChanID }

func (m *TxComplete) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *TxComplete) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	m.ExtraData, err = readExtraData(r)
	return err
}

// TxSignatures carries the sender's witnesses for its own contributed
// inputs, concluding the interactive-tx round.
type TxSignatures struct {
	ChanID    ChannelID
	TxID      chainhash.Hash
	Witnesses [][]byte
	ExtraData ExtraOpaqueData
}

func (m *TxSignatures) MsgType() MessageType { return MsgTxSignatures }
func (m *TxSignatures) Channel() ChannelID   { return m.ChanID }

func (m *TxSignatures) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if _, err := w.Write(m.TxID[:]); err != nil {
		return err
	}
	if err := writeUint16(w, uint16(len(m.Witnesses))); err != nil {
		return err
	}
	for _, wit := range m.Witnesses {
		if err := writeVarBytes(w, wit); err != nil {
			return err
		}
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *TxSignatures) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if _, err := io.ReadFull(r, m.TxID[:]); err != nil {
		return err
	}
	n, err := readUint16(r)
	if err != nil {
		return err
	}
	m.Witnesses = make([][]byte, n)
	for i := range m.Witnesses {
		if m.Witnesses[i], err = readVarBytes(r); err != nil {
			return err
		}
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// TxInitRBF proposes replacing the latest unconfirmed interactive-tx
// attempt with a higher-feerate version.
type TxInitRBF struct {
	ChanID        ChannelID
	LockTime      uint32
	Feerate       uint32
	ExtraData     ExtraOpaqueData
}

func (m *TxInitRBF) MsgType() MessageType { return MsgTxInitRBF }
func (m *TxInitRBF) Channel() ChannelID   { return m.ChanID }

func (m *TxInitRBF) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint32(w, m.LockTime); err != nil {
		return err
	}
	if err := writeUint32(w, m.Feerate); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *TxInitRBF) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.LockTime, err = readUint32(r); err != nil {
		return err
	}
	if m.Feerate, err = readUint32(r); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// TxAckRBF accepts a proposed RBF round.
type TxAckRBF struct {
	ChanID    ChannelID
	ExtraData ExtraOpaqueData
}

func (m *TxAckRBF) MsgType() MessageType { return MsgTxAckRBF }
func (m *TxAckRBF) Channel() ChannelID   { return m.ChanID }

func (m *TxAckRBF) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *TxAckRBF) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	m.ExtraData, err = readExtraData(r)
	return err
}

// TxAbort cancels an in-progress interactive-tx round, carrying a
// human-readable reason.
type TxAbort struct {
	ChanID  ChannelID
	Message []byte
}

func (m *TxAbort) MsgType() MessageType { return MsgTxAbort }
func (m *TxAbort) Channel() ChannelID   { return m.ChanID }

func (m *TxAbort) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	return writeVarBytes(w, m.Message)
}

func (m *TxAbort) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	m.Message, err = readVarBytes(r)
	return err
}
