package fundingsession

import (
	"github.com/btcsuite/btcd/btcutil/psbt"

	"github.com/lnchan/core/chancfg"
	"github.com/lnchan/core/input"
)

// FundingOutputMetadata builds the set of PSBT unknown key-value pairs a
// wallet needs attached to a session's funding (or splice shared) output
// so that a later signing request can reconstruct the output's script
// without re-deriving the channel's negotiated parameters, per the same
// scheme the teacher's wallet-signing path uses for single-funder opens.
func FundingOutputMetadata(params chancfg.ChannelParams, initiator bool) []*psbt.Unknown {
	opts := []input.UnknownOption{
		input.ChannelType(uint64(params.Format)),
		input.Initiator(initiator),
		input.CsvDelay(uint32(params.Local.CsvDelay)),
		input.RemoteMultiSigKey(params.Remote.Basepoints.MultiSigKey),
		input.RemoteRevocationBasePoint(params.Remote.Basepoints.RevocationBasePoint),
		input.RemotePaymentBasePoint(params.Remote.Basepoints.PaymentBasePoint),
		input.RemoteDelayBasePoint(params.Remote.Basepoints.DelayBasePoint),
		input.RemoteHtlcBasePoint(params.Remote.Basepoints.HtlcBasePoint),
	}

	return input.UnknownOptions(opts...)
}
