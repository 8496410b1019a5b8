package fundingsession

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/lnchan/core/errset"
	"github.com/lnchan/core/wire"
)

// LiquidityPurchase records an accepted request_funding/will_fund
// exchange: the acceptor supplies RequestedSats of inbound liquidity, and
// FeeSats is deducted from the initiator's to-local balance, per §4.4.
type LiquidityPurchase struct {
	RequestedSats int64
	FeeSats       int64

	// PurchasedBy is true if the initiator is the one paying the fee
	// (the common case: the initiator requested liquidity from the
	// acceptor). BalanceChange consults this to know whose balance the
	// fee is deducted from.
	PurchasedBy bool
}

// RequestFunding records the initiator's liquidity request for this
// session. It does not itself validate the acceptor's response; call
// AcceptWillFund once the acceptor's witness has been verified.
func (s *Session) RequestFunding(requestedSats int64, feeSats int64) {
	s.LiquidityPurchase = &LiquidityPurchase{
		RequestedSats: requestedSats,
		FeeSats:       feeSats,
		PurchasedBy:   true,
	}
}

// AcceptWillFund verifies the acceptor's will_fund witness against the
// quoted terms and the acceptor's node public key, finalizing the
// liquidity purchase for this round. An invalid signature fails the
// entire session, per §4.4.
func AcceptWillFund(sig wire.Sig, digest []byte, acceptorNodeKey *btcec.PublicKey) error {
	if !sig.ToSignature().Verify(digest, acceptorNodeKey) {
		return errset.New(errset.KindProtocolViolation, errset.CodeSignatureMismatch)
	}
	return nil
}
