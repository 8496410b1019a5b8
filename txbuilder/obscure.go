package txbuilder

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
)

const (
	// stateHintSize is the number of bytes of the commitment number
	// obfuscated into a commitment transaction's sequence/locktime
	// fields.
	stateHintSize = 6

	// maxStateHint is the largest commitment number encodable in 48
	// bits.
	maxStateHint uint64 = (1 << 48) - 1

	// timelockShift pushes the transaction's locktime above the block
	// height/timestamp boundary (500,000,000) so it's always interpreted
	// as a Unix timestamp, and below the current time, so nodes never
	// reject the commitment transaction as having a locktime in the
	// future.
	timelockShift = uint32(1 << 29)
)

// Obfuscator is the 6-byte value XORed into a channel's commitment number
// before it's encoded into a commitment transaction's sequence/locktime
// fields, derived once per channel from both parties' payment basepoints.
type Obfuscator [stateHintSize]byte

// DeriveObfuscator computes the per-channel commitment-number obfuscator
// from the two parties' payment basepoints, per §4.1 and matching the
// teacher's DeriveStateHintObfuscator. The last six bytes (the lower 48
// bits) of SHA256(localPaymentBasePoint || remotePaymentBasePoint) are
// used. Note
// that the funding multisig keys are NOT the input here, even though a
// funding-key input would still round-trip correctly since the mask is
// symmetric.
func DeriveObfuscator(localPaymentBasePoint,
	remotePaymentBasePoint *btcec.PublicKey) Obfuscator {

	h := sha256.New()
	h.Write(localPaymentBasePoint.SerializeCompressed())
	h.Write(remotePaymentBasePoint.SerializeCompressed())
	sum := h.Sum(nil)

	var obf Obfuscator
	copy(obf[:], sum[26:])
	return obf
}

// ObscureCommitmentNumber XOR-masks the given 48-bit commitment number
// against the obfuscator and writes the result into the input sequence and
// locktime's high bytes, per §4.1's obscured-commitment-number scheme. It
// fails if n exceeds the 48-bit encoding space.
func ObscureCommitmentNumber(commitTx *wire.MsgTx, n uint64,
	obf Obfuscator) error {

	if n > maxStateHint {
		return fmt.Errorf("commitment number %d exceeds 48-bit "+
			"encoding space", n)
	}
	if len(commitTx.TxIn) != 1 {
		return fmt.Errorf("commitment tx must have exactly 1 input, "+
			"has %d", len(commitTx.TxIn))
	}

	masked := n ^ obfuscatorUint64(obf)

	commitTx.TxIn[0].Sequence = uint32(masked>>24) |
		wire.SequenceLockTimeDisabled
	commitTx.LockTime = uint32(masked&0xFFFFFF) | timelockShift

	return nil
}

// UnobscureCommitmentNumber recovers the commitment number previously
// encoded by ObscureCommitmentNumber.
func UnobscureCommitmentNumber(commitTx *wire.MsgTx, obf Obfuscator) uint64 {
	masked := uint64(commitTx.TxIn[0].Sequence&0xFFFFFF) << 24
	masked |= uint64(commitTx.LockTime & 0xFFFFFF)

	return masked ^ obfuscatorUint64(obf)
}

func obfuscatorUint64(obf Obfuscator) uint64 {
	var buf [8]byte
	copy(buf[2:], obf[:])
	return binary.BigEndian.Uint64(buf[:])
}
