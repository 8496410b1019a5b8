package input

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr/musig2"
	"github.com/lnchan/core/keychain"
)

// MuSig2PartialSigSize is the size of a MuSig2 partial signature. Because a
// partial signature is just the s value, this corresponds to the length of
// a scalar.
const MuSig2PartialSigSize = 32

// MuSig2SessionID identifies a single in-progress two-round MuSig2 signing
// session. It's derived from the aggregate key and the local nonce so that a
// signer can reference the right session when the remote party's nonce and
// partial signature arrive out of order relative to other sessions.
type MuSig2SessionID [sha256.Size]byte

// NewMuSig2SessionID hashes the aggregate public key and the local public
// nonce to produce a stable session identifier.
func NewMuSig2SessionID(combinedKey *btcec.PublicKey,
	localNonce [musig2.PubNonceSize]byte) MuSig2SessionID {

	var id MuSig2SessionID
	h := sha256.New()
	h.Write(combinedKey.SerializeCompressed())
	h.Write(localNonce[:])
	copy(id[:], h.Sum(nil))

	return id
}

// MuSig2Tweaks describes the (optional) tweaks that must be applied to an
// aggregate MuSig2 key before it's used as the funding output's key. The
// funding output for a Taproot channel is a key-path-only output, so in
// practice only a BIP-86 tweak is ever applied, but the taproot merkle-root
// tweak is exposed too for the benefit of script-tree-bearing shared
// outputs a future commitment format might introduce.
type MuSig2Tweaks struct {
	// TaprootTweak, if non-empty, is the merkle root of a script tree to
	// mix into the output-key tweak.
	TaprootTweak []byte

	// TaprootBIP0086 indicates the aggregate key should receive a plain
	// BIP-86 tweak (no script path exists) rather than TaprootTweak.
	TaprootBIP0086 bool
}

// MuSig2Signer is implemented by anything able to carry out the two-round
// MuSig2 protocol on behalf of a single local signing key: nonce generation,
// partial signature production, and combination of partial signatures into
// a final Schnorr signature.
type MuSig2Signer interface {
	// MuSig2CreateSession starts a new session for the local key
	// identified by the key locator, given the complete set of signer
	// public keys (including the local one). Nonces already known for
	// other signers may be supplied up front to avoid an extra
	// round-trip once they're received.
	MuSig2CreateSession(keychain.KeyLocator, []*btcec.PublicKey,
		*MuSig2Tweaks,
		[][musig2.PubNonceSize]byte) (*MuSig2SessionInfo, error)

	// MuSig2RegisterNonces registers one or more public nonces of other
	// signing parties for an existing session. It returns true once
	// nonces for every signer have been registered, meaning a partial
	// signature can now be produced.
	MuSig2RegisterNonces(MuSig2SessionID,
		[][musig2.PubNonceSize]byte) (bool, error)

	// MuSig2Sign produces a partial signature for the given session
	// using the session's local key. All signers' nonces must already
	// be registered unless final is false, in which case the signer is
	// allowed to produce a non-final, speculative partial signature.
	MuSig2Sign(MuSig2SessionID, [32]byte,
		bool) (*musig2.PartialSignature, error)

	// MuSig2CombineSig combines the given partial signature with the
	// ones already known for the session. It returns the final signature
	// once all parties' partial signatures have been combined.
	MuSig2CombineSig(MuSig2SessionID,
		*musig2.PartialSignature) (bool, *[64]byte, error)

	// MuSig2Cleanup removes a session's nonces from memory once it's no
	// longer needed; nonce reuse across sessions is catastrophic, so
	// sessions are never retried, only discarded and recreated.
	MuSig2Cleanup(MuSig2SessionID) error
}

// MuSig2SessionInfo carries everything a caller needs in order to exchange
// the local nonce with the remote party and eventually verify/assemble the
// final signature.
type MuSig2SessionInfo struct {
	// SessionID identifies this session for later calls to
	// MuSig2RegisterNonces/MuSig2Sign/MuSig2CombineSig.
	SessionID MuSig2SessionID

	// PublicNonce is the local signer's public nonce, to be sent to the
	// remote party as part of the first MuSig2 round.
	PublicNonce [musig2.PubNonceSize]byte

	// CombinedKey is the aggregate public key produced by combining all
	// signer public keys (and applying any tweaks).
	CombinedKey *btcec.PublicKey

	// TaprootTweak is true if CombinedKey had a taproot tweak applied,
	// meaning it is an output key rather than a plain aggregate key.
	TaprootTweak bool

	// HaveAllNonces is true if, at session-creation time, the caller
	// already supplied every other signer's nonce.
	HaveAllNonces bool
}

// MuSig2CombineKeys aggregates the given set of signer public keys,
// applying the tweaks described by the MuSig2Tweaks struct (if any). This
// is a pure function of the public keys and is used by both signers and by
// any party that merely needs to derive the funding output's key (e.g. to
// verify a `tx_signatures` witness without holding a private key).
func MuSig2CombineKeys(pubKeys []*btcec.PublicKey,
	tweaks *MuSig2Tweaks) (*btcec.PublicKey, error) {

	var opts []musig2.KeyAggOption
	if tweaks != nil {
		switch {
		case tweaks.TaprootBIP0086:
			opts = append(opts, musig2.WithBIP86KeyTweak())
		case len(tweaks.TaprootTweak) > 0:
			opts = append(opts, musig2.WithTaprootKeyTweak(
				tweaks.TaprootTweak,
			))
		}
	}

	combinedKey, _, _, err := musig2.AggregateKeys(pubKeys, true, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to combine musig2 keys: %w",
			err)
	}

	return combinedKey.FinalKey, nil
}

// GenMuSig2Nonces generates a fresh pair of MuSig2 nonces for the given
// private key and combined key. Nonces must never be reused across sessions
// and must never be persisted to stable storage.
func GenMuSig2Nonces(privKey *btcec.PrivateKey,
	combinedKey *btcec.PublicKey) (*musig2.Nonces, error) {

	return musig2.GenNonces(
		musig2.WithPublicKey(privKey.PubKey()),
		musig2.WithNonceCombinedKeyAux(combinedKey),
	)
}
