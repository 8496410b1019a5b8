package wire

import (
	"bytes"
	"io"
)

// RequestFunding is sent by a splice initiator asking the acceptor to
// contribute liquidity at a quoted feerate, per §4.4's liquidity-purchase
// flow.
type RequestFunding struct {
	ChanID         ChannelID
	RequestedSats  uint64
	FundingFeerate uint32
	ExtraData      ExtraOpaqueData
}

func (m *RequestFunding) MsgType() MessageType { return MsgRequestFunding }
func (m *RequestFunding) Channel() ChannelID   { return m.ChanID }

func (m *RequestFunding) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, m.RequestedSats); err != nil {
		return err
	}
	if err := writeUint32(w, m.FundingFeerate); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *RequestFunding) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.RequestedSats, err = readUint64(r); err != nil {
		return err
	}
	if m.FundingFeerate, err = readUint32(r); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// WillFund responds to a RequestFunding with the acceptor's commitment to
// contribute, authenticated by a signature from the acceptor's node key.
// An invalid signature fails the entire interactive-tx session, per §4.4.
type WillFund struct {
	ChanID        ChannelID
	FundingSats   uint64
	ChannelFeeMsat uint64
	NodeSig       Sig
	ExtraData     ExtraOpaqueData
}

func (m *WillFund) MsgType() MessageType { return MsgWillFund }
func (m *WillFund) Channel() ChannelID   { return m.ChanID }

func (m *WillFund) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if err := writeUint64(w, m.FundingSats); err != nil {
		return err
	}
	if err := writeUint64(w, m.ChannelFeeMsat); err != nil {
		return err
	}
	if _, err := w.Write(m.NodeSig[:]); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *WillFund) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if m.FundingSats, err = readUint64(r); err != nil {
		return err
	}
	if m.ChannelFeeMsat, err = readUint64(r); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, m.NodeSig[:]); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}
