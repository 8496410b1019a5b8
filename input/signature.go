package input

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// Signature is a generic interface for a signature generated by the Signer
// interface. A signature can come in one of two forms: a DER-encoded ECDSA
// signature, or a 64-byte fixed-size Schnorr signature, depending on the
// output being spent.
type Signature interface {
	// Serialize returns a DER-encoded ECDSA signature, or a 64-byte
	// Schnorr signature depending on the underlying concrete type.
	Serialize() []byte

	// Verify returns true if the signature is valid for the passed
	// message digest under the given public key.
	Verify(hash []byte, pubKey *btcec.PublicKey) bool
}

// ecdsaSignature wraps ecdsa.Signature so it satisfies Signature.
type ecdsaSignature struct {
	*ecdsa.Signature
}

// NewEcdsaSignature wraps an ECDSA signature so it implements the Signature
// interface used throughout this package.
func NewEcdsaSignature(sig *ecdsa.Signature) Signature {
	return &ecdsaSignature{Signature: sig}
}

// schnorrSignature wraps schnorr.Signature so it satisfies Signature.
type schnorrSignature struct {
	*schnorr.Signature
}

// NewSchnorrSignature wraps a Schnorr signature so it implements the
// Signature interface used throughout this package.
func NewSchnorrSignature(sig *schnorr.Signature) Signature {
	return &schnorrSignature{Signature: sig}
}
