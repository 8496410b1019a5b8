package wire

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// OpenChannel is the legacy single-funder channel-open proposal.
type OpenChannel struct {
	ChainHash       chainhash.Hash
	TempChanID      ChannelID
	FundingAmount   uint64
	PushAmount      uint64
	DustLimit       uint64
	MaxPendingAmount uint64
	ChannelReserve  uint64
	MinHtlc         uint64
	FeePerKw        uint32
	CsvDelay        uint16
	MaxAcceptedHtlcs uint16
	FundingKey      *btcec.PublicKey
	RevocationPoint *btcec.PublicKey
	PaymentPoint    *btcec.PublicKey
	DelayedPaymentPoint *btcec.PublicKey
	HtlcPoint       *btcec.PublicKey
	FirstCommitPoint *btcec.PublicKey
	ChannelFlags    byte
	ExtraData       ExtraOpaqueData
}

func (m *OpenChannel) MsgType() MessageType { return MsgOpenChannel }

func (m *OpenChannel) Channel() ChannelID { return m.TempChanID }

func (m *OpenChannel) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChainHash[:]); err != nil {
		return err
	}
	if _, err := w.Write(m.TempChanID[:]); err != nil {
		return err
	}
	for _, v := range []uint64{
		m.FundingAmount, m.PushAmount, m.DustLimit,
		m.MaxPendingAmount, m.ChannelReserve, m.MinHtlc,
	} {
		if err := writeUint64(w, v); err != nil {
			return err
		}
	}
	if err := writeUint32(w, m.FeePerKw); err != nil {
		return err
	}
	if err := writeUint16(w, m.CsvDelay); err != nil {
		return err
	}
	if err := writeUint16(w, m.MaxAcceptedHtlcs); err != nil {
		return err
	}
	for _, k := range []*btcec.PublicKey{
		m.FundingKey, m.RevocationPoint, m.PaymentPoint,
		m.DelayedPaymentPoint, m.HtlcPoint, m.FirstCommitPoint,
	} {
		if _, err := w.Write(k.SerializeCompressed()); err != nil {
			return err
		}
	}
	if err := w.WriteByte(m.ChannelFlags); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *OpenChannel) Decode(r io.Reader) error {
	if _, err := io.ReadFull(r, m.ChainHash[:]); err != nil {
		return err
	}
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.TempChanID = cid

	vals := make([]*uint64, 6)
	vals[0], vals[1], vals[2] = &m.FundingAmount, &m.PushAmount, &m.DustLimit
	vals[3], vals[4], vals[5] = &m.MaxPendingAmount, &m.ChannelReserve, &m.MinHtlc
	for _, v := range vals {
		*v, err = readUint64(r)
		if err != nil {
			return err
		}
	}
	if m.FeePerKw, err = readUint32(r); err != nil {
		return err
	}
	if m.CsvDelay, err = readUint16(r); err != nil {
		return err
	}
	if m.MaxAcceptedHtlcs, err = readUint16(r); err != nil {
		return err
	}

	keys := make([]**btcec.PublicKey, 6)
	keys[0], keys[1], keys[2] = &m.FundingKey, &m.RevocationPoint, &m.PaymentPoint
	keys[3], keys[4], keys[5] = &m.DelayedPaymentPoint, &m.HtlcPoint, &m.FirstCommitPoint
	for _, k := range keys {
		var raw [33]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return err
		}
		pk, err := btcec.ParsePubKey(raw[:])
		if err != nil {
			return err
		}
		*k = pk
	}

	var flags [1]byte
	if _, err := io.ReadFull(r, flags[:]); err != nil {
		return err
	}
	m.ChannelFlags = flags[0]

	m.ExtraData, err = readExtraData(r)
	return err
}

// AcceptChannel is the legacy single-funder channel-open acceptance.
type AcceptChannel struct {
	TempChanID       ChannelID
	DustLimit        uint64
	MaxPendingAmount uint64
	ChannelReserve   uint64
	MinHtlc          uint64
	MinDepth         uint32
	CsvDelay         uint16
	MaxAcceptedHtlcs uint16
	FundingKey       *btcec.PublicKey
	RevocationPoint  *btcec.PublicKey
	PaymentPoint     *btcec.PublicKey
	DelayedPaymentPoint *btcec.PublicKey
	HtlcPoint        *btcec.PublicKey
	FirstCommitPoint *btcec.PublicKey
	ExtraData        ExtraOpaqueData
}

func (m *AcceptChannel) MsgType() MessageType { return MsgAcceptChannel }
func (m *AcceptChannel) Channel() ChannelID   { return m.TempChanID }

func (m *AcceptChannel) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.TempChanID[:]); err != nil {
		return err
	}
	for _, v := range []uint64{m.DustLimit, m.MaxPendingAmount, m.ChannelReserve, m.MinHtlc} {
		if err := writeUint64(w, v); err != nil {
			return err
		}
	}
	if err := writeUint32(w, m.MinDepth); err != nil {
		return err
	}
	if err := writeUint16(w, m.CsvDelay); err != nil {
		return err
	}
	if err := writeUint16(w, m.MaxAcceptedHtlcs); err != nil {
		return err
	}
	for _, k := range []*btcec.PublicKey{
		m.FundingKey, m.RevocationPoint, m.PaymentPoint,
		m.DelayedPaymentPoint, m.HtlcPoint, m.FirstCommitPoint,
	} {
		if _, err := w.Write(k.SerializeCompressed()); err != nil {
			return err
		}
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *AcceptChannel) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.TempChanID = cid

	vals := []*uint64{&m.DustLimit, &m.MaxPendingAmount, &m.ChannelReserve, &m.MinHtlc}
	for _, v := range vals {
		*v, err = readUint64(r)
		if err != nil {
			return err
		}
	}
	if m.MinDepth, err = readUint32(r); err != nil {
		return err
	}
	if m.CsvDelay, err = readUint16(r); err != nil {
		return err
	}
	if m.MaxAcceptedHtlcs, err = readUint16(r); err != nil {
		return err
	}

	keys := []**btcec.PublicKey{
		&m.FundingKey, &m.RevocationPoint, &m.PaymentPoint,
		&m.DelayedPaymentPoint, &m.HtlcPoint, &m.FirstCommitPoint,
	}
	for _, k := range keys {
		var raw [33]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return err
		}
		pk, err := btcec.ParsePubKey(raw[:])
		if err != nil {
			return err
		}
		*k = pk
	}

	m.ExtraData, err = readExtraData(r)
	return err
}

// FundingCreated carries the funding outpoint and the opener's first
// commitment signature.
type FundingCreated struct {
	TempChanID ChannelID
	FundingTxID chainhash.Hash
	FundingOutputIndex uint16
	CommitSig  Sig
	ExtraData  ExtraOpaqueData
}

func (m *FundingCreated) MsgType() MessageType { return MsgFundingCreated }
func (m *FundingCreated) Channel() ChannelID   { return m.TempChanID }

func (m *FundingCreated) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.TempChanID[:]); err != nil {
		return err
	}
	if _, err := w.Write(m.FundingTxID[:]); err != nil {
		return err
	}
	if err := writeUint16(w, m.FundingOutputIndex); err != nil {
		return err
	}
	if _, err := w.Write(m.CommitSig[:]); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *FundingCreated) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.TempChanID = cid
	if _, err := io.ReadFull(r, m.FundingTxID[:]); err != nil {
		return err
	}
	if m.FundingOutputIndex, err = readUint16(r); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, m.CommitSig[:]); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// FundingSigned carries the accepter's first commitment signature.
type FundingSigned struct {
	ChanID    ChannelID
	CommitSig Sig
	ExtraData ExtraOpaqueData
}

func (m *FundingSigned) MsgType() MessageType { return MsgFundingSigned }
func (m *FundingSigned) Channel() ChannelID   { return m.ChanID }

func (m *FundingSigned) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if _, err := w.Write(m.CommitSig[:]); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *FundingSigned) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid
	if _, err := io.ReadFull(r, m.CommitSig[:]); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// ChannelReady announces that the funding transaction has reached the
// agreed confirmation depth and the channel is ready for use.
type ChannelReady struct {
	ChanID            ChannelID
	NextPerCommitPoint *btcec.PublicKey
	ExtraData         ExtraOpaqueData
}

func (m *ChannelReady) MsgType() MessageType { return MsgChannelReady }
func (m *ChannelReady) Channel() ChannelID   { return m.ChanID }

func (m *ChannelReady) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChanID[:]); err != nil {
		return err
	}
	if _, err := w.Write(m.NextPerCommitPoint.SerializeCompressed()); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *ChannelReady) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.ChanID = cid

	var raw [33]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return err
	}
	if m.NextPerCommitPoint, err = btcec.ParsePubKey(raw[:]); err != nil {
		return err
	}
	m.ExtraData, err = readExtraData(r)
	return err
}

// OpenChannel2 is the dual-funding channel-open proposal: unlike
// OpenChannel it carries no push amount or funding amount commitment
// pre-decided by one side — contributions are negotiated via the
// interactive-tx round that follows.
type OpenChannel2 struct {
	ChainHash        chainhash.Hash
	TempChanID       ChannelID
	FundingFeerate   uint32
	CommitFeerate    uint32
	FundingAmount    uint64
	DustLimit        uint64
	MaxPendingAmount uint64
	ChannelReserve   uint64
	MinHtlc          uint64
	MaxAcceptedHtlcs uint16
	CsvDelay         uint16
	LockTime         uint32
	FundingKey       *btcec.PublicKey
	RevocationPoint  *btcec.PublicKey
	PaymentPoint     *btcec.PublicKey
	DelayedPaymentPoint *btcec.PublicKey
	HtlcPoint        *btcec.PublicKey
	FirstCommitPoint *btcec.PublicKey
	SecondCommitPoint *btcec.PublicKey
	ChannelFlags     byte
	ExtraData        ExtraOpaqueData
}

func (m *OpenChannel2) MsgType() MessageType { return MsgOpenChannel2 }
func (m *OpenChannel2) Channel() ChannelID   { return m.TempChanID }

func (m *OpenChannel2) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.ChainHash[:]); err != nil {
		return err
	}
	if _, err := w.Write(m.TempChanID[:]); err != nil {
		return err
	}
	for _, v := range []uint32{m.FundingFeerate, m.CommitFeerate} {
		if err := writeUint32(w, v); err != nil {
			return err
		}
	}
	for _, v := range []uint64{
		m.FundingAmount, m.DustLimit, m.MaxPendingAmount,
		m.ChannelReserve, m.MinHtlc,
	} {
		if err := writeUint64(w, v); err != nil {
			return err
		}
	}
	if err := writeUint16(w, m.MaxAcceptedHtlcs); err != nil {
		return err
	}
	if err := writeUint16(w, m.CsvDelay); err != nil {
		return err
	}
	if err := writeUint32(w, m.LockTime); err != nil {
		return err
	}
	for _, k := range []*btcec.PublicKey{
		m.FundingKey, m.RevocationPoint, m.PaymentPoint,
		m.DelayedPaymentPoint, m.HtlcPoint, m.FirstCommitPoint,
		m.SecondCommitPoint,
	} {
		if _, err := w.Write(k.SerializeCompressed()); err != nil {
			return err
		}
	}
	if err := w.WriteByte(m.ChannelFlags); err != nil {
		return err
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *OpenChannel2) Decode(r io.Reader) error {
	if _, err := io.ReadFull(r, m.ChainHash[:]); err != nil {
		return err
	}
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.TempChanID = cid

	if m.FundingFeerate, err = readUint32(r); err != nil {
		return err
	}
	if m.CommitFeerate, err = readUint32(r); err != nil {
		return err
	}

	u64s := []*uint64{
		&m.FundingAmount, &m.DustLimit, &m.MaxPendingAmount,
		&m.ChannelReserve, &m.MinHtlc,
	}
	for _, v := range u64s {
		*v, err = readUint64(r)
		if err != nil {
			return err
		}
	}
	if m.MaxAcceptedHtlcs, err = readUint16(r); err != nil {
		return err
	}
	if m.CsvDelay, err = readUint16(r); err != nil {
		return err
	}
	if m.LockTime, err = readUint32(r); err != nil {
		return err
	}

	keys := []**btcec.PublicKey{
		&m.FundingKey, &m.RevocationPoint, &m.PaymentPoint,
		&m.DelayedPaymentPoint, &m.HtlcPoint, &m.FirstCommitPoint,
		&m.SecondCommitPoint,
	}
	for _, k := range keys {
		var raw [33]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return err
		}
		pk, err := btcec.ParsePubKey(raw[:])
		if err != nil {
			return err
		}
		*k = pk
	}

	var flags [1]byte
	if _, err := io.ReadFull(r, flags[:]); err != nil {
		return err
	}
	m.ChannelFlags = flags[0]

	m.ExtraData, err = readExtraData(r)
	return err
}

// AcceptChannel2 is the dual-funding acceptance counterpart to
// OpenChannel2.
type AcceptChannel2 struct {
	TempChanID       ChannelID
	FundingAmount    uint64
	DustLimit        uint64
	MaxPendingAmount uint64
	ChannelReserve   uint64
	MinHtlc          uint64
	MinDepth         uint32
	MaxAcceptedHtlcs uint16
	CsvDelay         uint16
	FundingKey       *btcec.PublicKey
	RevocationPoint  *btcec.PublicKey
	PaymentPoint     *btcec.PublicKey
	DelayedPaymentPoint *btcec.PublicKey
	HtlcPoint        *btcec.PublicKey
	FirstCommitPoint *btcec.PublicKey
	SecondCommitPoint *btcec.PublicKey
	ExtraData        ExtraOpaqueData
}

func (m *AcceptChannel2) MsgType() MessageType { return MsgAcceptChannel2 }
func (m *AcceptChannel2) Channel() ChannelID   { return m.TempChanID }

func (m *AcceptChannel2) Encode(w *bytes.Buffer) error {
	if _, err := w.Write(m.TempChanID[:]); err != nil {
		return err
	}
	for _, v := range []uint64{
		m.FundingAmount, m.DustLimit, m.MaxPendingAmount,
		m.ChannelReserve, m.MinHtlc,
	} {
		if err := writeUint64(w, v); err != nil {
			return err
		}
	}
	if err := writeUint32(w, m.MinDepth); err != nil {
		return err
	}
	if err := writeUint16(w, m.MaxAcceptedHtlcs); err != nil {
		return err
	}
	if err := writeUint16(w, m.CsvDelay); err != nil {
		return err
	}
	for _, k := range []*btcec.PublicKey{
		m.FundingKey, m.RevocationPoint, m.PaymentPoint,
		m.DelayedPaymentPoint, m.HtlcPoint, m.FirstCommitPoint,
		m.SecondCommitPoint,
	} {
		if _, err := w.Write(k.SerializeCompressed()); err != nil {
			return err
		}
	}
	return writeVarBytes(w, m.ExtraData)
}

func (m *AcceptChannel2) Decode(r io.Reader) error {
	cid, err := readChannelID(r)
	if err != nil {
		return err
	}
	m.TempChanID = cid

	u64s := []*uint64{
		&m.FundingAmount, &m.DustLimit, &m.MaxPendingAmount,
		&m.ChannelReserve, &m.MinHtlc,
	}
	for _, v := range u64s {
		*v, err = readUint64(r)
		if err != nil {
			return err
		}
	}
	if m.MinDepth, err = readUint32(r); err != nil {
		return err
	}
	if m.MaxAcceptedHtlcs, err = readUint16(r); err != nil {
		return err
	}
	if m.CsvDelay, err = readUint16(r); err != nil {
		return err
	}

	keys := []**btcec.PublicKey{
		&m.FundingKey, &m.RevocationPoint, &m.PaymentPoint,
		&m.DelayedPaymentPoint, &m.HtlcPoint, &m.FirstCommitPoint,
		&m.SecondCommitPoint,
	}
	for _, k := range keys {
		var raw [33]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return err
		}
		pk, err := btcec.ParsePubKey(raw[:])
		if err != nil {
			return err
		}
		*k = pk
	}

	m.ExtraData, err = readExtraData(r)
	return err
}
