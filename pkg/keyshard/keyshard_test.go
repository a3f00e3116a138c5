package keyshard

import (
	"crypto/ed25519"
	"testing"

	"github.com/cyphar-go/paperback/pkg/shamir"
	"github.com/cyphar-go/paperback/pkg/wire"
	"github.com/stretchr/testify/require"
)

func testShard(t *testing.T) shamir.Shard {
	t.Helper()
	dealer, err := shamir.NewDealer(3, []byte("shard secret"))
	require.NoError(t, err)
	s, err := dealer.NextShard()
	require.NoError(t, err)
	return s
}

func TestWireRoundTrip(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	chksum := wire.SumBlake2b256([]byte("a document's worth of bytes"))
	ks := New(chksum, testShard(t), priv)

	require.True(t, ks.Verify())
	require.Equal(t, uint32(3), ks.QuorumSize())
	require.Equal(t, chksum, ks.DocumentChecksum())

	r := wire.NewReader(ks.Bytes())
	got, err := Decode(r)
	require.NoError(t, err)
	require.NoError(t, r.Done())
	require.True(t, got.Verify())
	require.Equal(t, ks.ID(), got.ID())
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	chksum := wire.SumBlake2b256([]byte("another document"))
	ks := New(chksum, testShard(t), priv)

	enc, words, err := ks.Encrypt()
	require.NoError(t, err)
	require.Len(t, words, 24)

	got, err := enc.Decrypt(words)
	require.NoError(t, err)
	require.True(t, got.Verify())
	require.Equal(t, ks.ID(), got.ID())
}

func TestDecryptRejectsWrongCodewords(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	chksum := wire.SumBlake2b256([]byte("yet another document"))
	ks := New(chksum, testShard(t), priv)

	enc, words, err := ks.Encrypt()
	require.NoError(t, err)

	wrong := append([]string(nil), words...)
	wrong[0], wrong[1] = wrong[1], wrong[0]

	_, err = enc.Decrypt(wrong)
	require.Error(t, err)
}

func TestEncryptedWireRoundTrip(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	chksum := wire.SumBlake2b256([]byte("checksum stability check"))
	ks := New(chksum, testShard(t), priv)

	enc, words, err := ks.Encrypt()
	require.NoError(t, err)

	r := wire.NewReader(enc.Bytes())
	got, err := DecodeEncryptedKeyShard(r)
	require.NoError(t, err)
	require.NoError(t, r.Done())
	require.Equal(t, enc.Checksum(), got.Checksum())

	decoded, err := got.Decrypt(words)
	require.NoError(t, err)
	require.True(t, decoded.Verify())
}
