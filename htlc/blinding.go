package htlc

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/lnchan/core/keychain"
)

// ResolveBlindingSecret derives the ECDH shared secret an HTLC's
// BlindingPoint implies for a hop on a blinded route: the hop's own key
// (wrapped in ecdh) combined with the ephemeral point forwarded alongside
// the HTLC. The result feeds the same onion-shared-secret derivation used
// for an unblinded hop; this package stops at the shared secret and never
// interprets the onion payload itself.
func (h *HTLC) ResolveBlindingSecret(ecdh keychain.SingleKeyECDH) ([32]byte, error) {
	if len(h.BlindingPoint) == 0 {
		return [32]byte{}, fmt.Errorf("htlc %d carries no blinding point", h.ID)
	}

	blindingPub, err := btcec.ParsePubKey(h.BlindingPoint)
	if err != nil {
		return [32]byte{}, fmt.Errorf("invalid blinding point: %w", err)
	}

	return ecdh.ECDH(blindingPub)
}
