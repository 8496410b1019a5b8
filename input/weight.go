package input

// The weight constants below are the standard BOLT-3 witness-weight figures
// for the anchor commitment format, along with the corresponding
// non-witness base sizes. txbuilder uses them for fee computation and dust
// trimming for every commitment format it builds; its tests check the
// commitment fee against CommitmentTxBaseWeight.
const (
	// CommitmentTxBaseWeight is the weight of the fixed portions of a
	// commitment transaction: version, input count, the funding input
	// (with an empty witness placeholder), locktime, and the two
	// to_local/to_remote outputs and anchor outputs the anchor commitment
	// format always carries, not counting any HTLC outputs.
	CommitmentTxBaseWeight = 1124

	// WitnessCommitmentTxWeight is the weight contributed by the funding
	// input's 2-of-2 multisig witness.
	WitnessCommitmentTxWeight = 224

	// HtlcWeight is the weight added to a commitment transaction by each
	// HTLC output (32-byte payment hash script plus output header).
	HtlcWeight = 172

	// HtlcTimeoutWeight is the weight of a fully-witnessed HTLC-timeout
	// second-level transaction for the anchor channel type.
	HtlcTimeoutWeight = 666

	// HtlcSuccessWeight is the weight of a fully-witnessed HTLC-success
	// second-level transaction for the anchor channel type.
	HtlcSuccessWeight = 706

	// AnchorCommitmentTxWeight is the base weight of an anchor-format
	// commitment transaction with zero HTLCs: the funding input, the
	// to_local and to_remote outputs, and the two anchor outputs.
	AnchorCommitmentTxWeight = 1124

	// HtlcTimeoutWeightConfirmed and HtlcSuccessWeightConfirmed are the
	// second-level transaction weights when the optional
	// `option_anchors_zero_fee_htlc_tx` CSV(1) to_remote confirmation
	// requirement bumps the witness by one extra relative-locktime push;
	// they're identical to the anchor weights above since that bump
	// applies only to the first-stage to_remote output, not to the
	// second-level transactions.
	HtlcTimeoutWeightConfirmed = HtlcTimeoutWeight
	HtlcSuccessWeightConfirmed = HtlcSuccessWeight
)
