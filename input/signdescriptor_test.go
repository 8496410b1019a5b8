package input

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/lnchan/core/keychain"
)

func TestSignDescriptorRoundTripWithPubKey(t *testing.T) {
	pub := randPubKey(t)

	in := &SignDescriptor{
		KeyDesc: keychain.KeyDescriptor{
			KeyLocator: keychain.KeyLocator{
				Family: keychain.KeyFamilyHtlcBase,
				Index:  3,
			},
			PubKey: pub,
		},
		SingleTweak:   bytesOfLen(32, 0x02),
		WitnessScript: []byte{0x51, 0x52},
		Output: &wire.TxOut{
			Value:    50_000,
			PkScript: []byte{0x00, 0x20},
		},
		HashType: txscript.SigHashAll,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSignDescriptor(&buf, in))

	var out SignDescriptor
	require.NoError(t, ReadSignDescriptor(&buf, &out))

	require.Equal(t, in.KeyDesc.Family, out.KeyDesc.Family)
	require.Equal(t, in.KeyDesc.Index, out.KeyDesc.Index)
	require.Equal(t, in.SingleTweak, out.SingleTweak)
	require.Nil(t, out.DoubleTweak)
	require.Equal(t, in.WitnessScript, out.WitnessScript)
	require.Equal(t, in.Output.Value, out.Output.Value)
	require.Equal(t, in.HashType, out.HashType)
	require.True(t, pub.IsEqual(out.KeyDesc.PubKey))
}

func TestSignDescriptorRoundTripWithDoubleTweak(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	in := &SignDescriptor{
		DoubleTweak: priv,
		Output: &wire.TxOut{
			Value:    1000,
			PkScript: []byte{0x00},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSignDescriptor(&buf, in))

	var out SignDescriptor
	require.NoError(t, ReadSignDescriptor(&buf, &out))

	require.Nil(t, out.SingleTweak)
	require.NotNil(t, out.DoubleTweak)
	require.True(t, priv.PubKey().IsEqual(out.DoubleTweak.PubKey()))
}
