package document

import (
	"crypto/ed25519"
	"testing"

	"github.com/cyphar-go/paperback/pkg/envelope"
	"github.com/cyphar-go/paperback/pkg/wire"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) [envelope.DocKeySize]byte {
	t.Helper()
	var k [envelope.DocKeySize]byte
	copy(k[:], []byte("0123456789abcdef0123456789abcde"))
	return k
}

func TestNewDecryptRoundTrip(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	plaintext := []byte("the secret under the floorboards")
	doc, err := New(5, plaintext, testKey(t), priv)
	require.NoError(t, err)

	require.True(t, doc.Verify())
	require.Equal(t, uint32(0), doc.Version())
	require.Equal(t, uint32(5), doc.QuorumSize())

	got, err := doc.Decrypt(testKey(t))
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	doc, err := New(3, []byte("hello"), testKey(t), priv)
	require.NoError(t, err)

	var wrongKey [envelope.DocKeySize]byte
	copy(wrongKey[:], []byte("different-key-different-key-123"))

	_, err = doc.Decrypt(wrongKey)
	require.Error(t, err)
}

func TestWireRoundTrip(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	doc, err := New(2, []byte("round trip me"), testKey(t), priv)
	require.NoError(t, err)

	r := wire.NewReader(doc.Bytes())
	got, err := Decode(r)
	require.NoError(t, err)
	require.NoError(t, r.Done())
	require.True(t, got.Verify())
	require.Equal(t, doc.Checksum(), got.Checksum())
}

func TestMultibaseRoundTrip(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	doc, err := New(2, []byte("paper backup"), testKey(t), priv)
	require.NoError(t, err)

	s := doc.ToMultibase()
	got, err := DecodeMultibase(s)
	require.NoError(t, err)
	require.Equal(t, doc.Checksum(), got.Checksum())
}

func TestIDIsEightCharacters(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	doc, err := New(2, []byte("id length check"), testKey(t), priv)
	require.NoError(t, err)

	require.Len(t, doc.ID(), IDLength)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	doc, err := New(2, []byte("tamper test"), testKey(t), priv)
	require.NoError(t, err)

	doc.Identity.Signature[0] ^= 0xff
	require.False(t, doc.Verify())
}
