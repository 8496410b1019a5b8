package wire

import (
	"bytes"
	"encoding/asn1"
	"encoding/binary"
	"errors"
	"io"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/lightningnetwork/lnd/tlv"
)

// ErrMsgTooLarge is returned when a decoded variable-length field exceeds
// MaxSliceLength.
var ErrMsgTooLarge = errors.New("wire: field exceeds max slice length")

// MaxSliceLength bounds every variable-length byte field decoded from the
// wire, matching the transport's own maximum message size budget.
const MaxSliceLength = 65535

// ExtraOpaqueData is the trailing TLV extension area every message carries,
// named after lnwire.ExtraOpaqueData. Unlike lnwire, every message here
// writes it behind a 2-byte length prefix.
type ExtraOpaqueData []byte

// Sig is a fixed 64-byte compact ECDSA signature, matching lnwire.Sig.
type Sig [64]byte

// derSignature is the ASN.1 shape of an ECDSA signature's DER encoding,
// used only to recover r and s from ecdsa.Signature.Serialize(), which
// exposes no other accessor for them.
type derSignature struct {
	R, S *big.Int
}

// NewSigFromSignature compact-encodes an ecdsa.Signature into a Sig as
// 32-byte big-endian r followed by 32-byte big-endian s, matching
// lnwire.Sig's fixed 64-byte layout.
func NewSigFromSignature(sig *ecdsa.Signature) (Sig, error) {
	var s Sig

	var parsed derSignature
	if _, err := asn1.Unmarshal(sig.Serialize(), &parsed); err != nil {
		return s, err
	}

	rBytes := parsed.R.Bytes()
	sBytes := parsed.S.Bytes()
	if len(rBytes) > 32 || len(sBytes) > 32 {
		return s, errors.New("wire: signature component too large for compact Sig")
	}

	copy(s[32-len(rBytes):32], rBytes)
	copy(s[64-len(sBytes):64], sBytes)

	return s, nil
}

// ToSignature reconstructs an ecdsa.Signature from a compact Sig's
// 32-byte r and 32-byte s halves, the inverse of NewSigFromSignature.
func (s Sig) ToSignature() *ecdsa.Signature {
	var r, ss btcec.ModNScalar
	r.SetByteSlice(s[:32])
	ss.SetByteSlice(s[32:])
	return ecdsa.NewSignature(&r, &ss)
}

func writeUint16(w *bytes.Buffer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeUint32(w *bytes.Buffer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeUint64(w *bytes.Buffer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeBool(w *bytes.Buffer, v bool) error {
	var b byte
	if v {
		b = 1
	}
	return w.WriteByte(b)
}

func writeVarBytes(w *bytes.Buffer, b []byte) error {
	if len(b) > MaxSliceLength {
		return ErrMsgTooLarge
	}
	if err := writeUint16(w, uint16(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func readBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func readVarBytes(r io.Reader) ([]byte, error) {
	n, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	if int(n) > MaxSliceLength {
		return nil, ErrMsgTooLarge
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readChannelID(r io.Reader) (ChannelID, error) {
	var c ChannelID
	_, err := io.ReadFull(r, c[:])
	return c, err
}

// readExtraData reads the trailing extension area, which every Encode in
// this package writes with a 2-byte length prefix. A message that ends
// before the prefix decodes with no extension data.
func readExtraData(r io.Reader) (ExtraOpaqueData, error) {
	rest, err := readVarBytes(r)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(rest) == 0 {
		return nil, nil
	}
	return ExtraOpaqueData(rest), nil
}

// decodeTLVStream decodes raw into the given TLV record and reports whether
// that record's type was actually present in the stream — a record's
// decoder runs only when its type appears, so a plain Decode call cannot
// distinguish "present with zero value" from "absent". Mirrors the
// teacher's use of tlv.Stream for CommitSig's PartialSig and similar
// optional TLV fields.
func decodeTLVStream(raw []byte, rec tlv.Record) (bool, error) {
	stream, err := tlv.NewStream(rec)
	if err != nil {
		return false, err
	}
	parsed, err := stream.DecodeWithParsedTypes(bytes.NewReader(raw))
	if err != nil {
		return false, err
	}
	_, ok := parsed[rec.Type()]
	return ok, nil
}
