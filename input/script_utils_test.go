package input

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"
)

func randPubKey(t *testing.T) *btcec.PublicKey {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return priv.PubKey()
}

func TestCommitScriptToSelfParses(t *testing.T) {
	self := randPubKey(t)
	revoke := randPubKey(t)

	script, err := CommitScriptToSelf(144, self, revoke)
	require.NoError(t, err)
	require.NotEmpty(t, script)

	_, err = txscript.ParseScript(script)
	require.NoError(t, err)
}

func TestCommitScriptAnchorContainsCSV16(t *testing.T) {
	fundingKey := randPubKey(t)

	script, err := CommitScriptAnchor(fundingKey)
	require.NoError(t, err)

	tokenizer := txscript.MakeScriptTokenizer(0, script)
	var sawCSV bool
	for tokenizer.Next() {
		if tokenizer.Opcode() == txscript.OP_CHECKSEQUENCEVERIFY {
			sawCSV = true
		}
	}
	require.NoError(t, tokenizer.Err())
	require.True(t, sawCSV)
}

func TestSenderAndReceiverHTLCScriptsDiffer(t *testing.T) {
	senderKey := randPubKey(t)
	receiverKey := randPubKey(t)
	revokeKey := randPubKey(t)
	paymentHash := bytesOfLen(32, 0x5a)

	sent, err := SenderHTLCScript(
		senderKey, receiverKey, revokeKey, paymentHash, false,
	)
	require.NoError(t, err)

	received, err := ReceiverHTLCScript(
		500_000, senderKey, receiverKey, revokeKey, paymentHash, false,
	)
	require.NoError(t, err)

	require.NotEqual(t, sent, received)
}

func TestReceiverHTLCScriptConfirmedSpendAddsCSV(t *testing.T) {
	senderKey := randPubKey(t)
	receiverKey := randPubKey(t)
	revokeKey := randPubKey(t)
	paymentHash := bytesOfLen(32, 0x11)

	plain, err := ReceiverHTLCScript(
		100, senderKey, receiverKey, revokeKey, paymentHash, false,
	)
	require.NoError(t, err)

	confirmed, err := ReceiverHTLCScript(
		100, senderKey, receiverKey, revokeKey, paymentHash, true,
	)
	require.NoError(t, err)

	require.Greater(t, len(confirmed), len(plain))
}

func TestSecondLevelHtlcScriptMatchesCommitScriptToSelf(t *testing.T) {
	revoke := randPubKey(t)
	delay := randPubKey(t)

	a, err := SecondLevelHtlcScript(revoke, delay, 144)
	require.NoError(t, err)

	b, err := CommitScriptToSelf(144, delay, revoke)
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func bytesOfLen(n int, fill byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return b
}
