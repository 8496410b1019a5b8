package wire

import (
	"bytes"
	"io"
)

// Warning reports a recoverable protocol violation. The channel named by
// ChanID (or every channel with the peer, if ChanID is ConnectionWideID) is
// not force-closed, but a disconnect should typically follow.
type Warning struct {
	ChanID ChannelID
	Data   []byte
}

func (m *Warning) MsgType() MessageType { return MsgWarning }
func (m *Warning) Channel() ChannelID   { return m.ChanID }

func (m *Warning) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	return writeVarBytes(w, m.Data)
}

func (m *Warning) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	m.Data, err = readVarBytes(r)
	return err
}

// Error reports a fatal protocol violation. The channel named by ChanID (or
// every channel with the peer, if ChanID is ConnectionWideID) must be
// considered force-closed once this message is sent or received.
type Error struct {
	ChanID ChannelID
	Data   []byte
}

func (m *Error) MsgType() MessageType { return MsgError }
func (m *Error) Channel() ChannelID   { return m.ChanID }

func (m *Error) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	return writeVarBytes(w, m.Data)
}

func (m *Error) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	m.Data, err = readVarBytes(r)
	return err
}
