package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaggedRoundTrip(t *testing.T) {
	w := NewWriter()
	w.Tagged(TagChaCha20Poly1305Key, []byte{1, 2, 3, 4})

	r := NewReader(w.Bytes())
	got, err := r.TaggedFixed(TagChaCha20Poly1305Key, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, got)
	require.NoError(t, r.Done())
}

func TestLengthPrefixedRoundTrip(t *testing.T) {
	w := NewWriter()
	payload := []byte("ciphertext goes here")
	w.LengthPrefixed(TagChaCha20Poly1305Ciphertext, payload)

	r := NewReader(w.Bytes())
	got, err := r.TaggedLengthPrefixed(TagChaCha20Poly1305Ciphertext)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestExpectTagMismatch(t *testing.T) {
	w := NewWriter()
	w.Uvarint(TagEd25519PublicKey)
	r := NewReader(w.Bytes())
	err := r.ExpectTag(TagEd25519Signature)
	require.Error(t, err)
}

func TestDoneRejectsTrailingBytes(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	require.Error(t, r.Done())
}

func TestBase32ZRoundTrip(t *testing.T) {
	for _, data := range [][]byte{
		{},
		{0x00},
		{0xff},
		{0xde, 0xad, 0xbe, 0xef},
		[]byte("the quick brown fox jumps over the lazy dog"),
	} {
		encoded := EncodeBase32Z(data)
		decoded, err := DecodeBase32Z(encoded)
		require.NoError(t, err)
		require.Equal(t, data, decoded)
	}
}

func TestMultibaseRoundTrip(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	s := ToMultibase(data)
	require.Equal(t, byte('h'), s[0])

	got, err := FromMultibase(s)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestFromMultibaseRejectsWrongPrefix(t *testing.T) {
	_, err := FromMultibase("ztotally-different-base")
	require.Error(t, err)
}

func TestFromMultibaseStripsWhitespaceAndHyphens(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	s := ToMultibase(data)

	wrapped := s[:3] + "-\n " + s[3:]
	got, err := FromMultibase(wrapped)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestMultihashRoundTrip(t *testing.T) {
	mh := Multihash{Code: CodeBlake2b256, Digest: make([]byte, 32)}
	for i := range mh.Digest {
		mh.Digest[i] = byte(i)
	}

	r := NewReader(mh.Bytes())
	got, err := DecodeMultihash(r)
	require.NoError(t, err)
	require.True(t, mh.Equal(got))
	require.NoError(t, r.Done())
}

func FuzzBase32ZRoundTrip(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x00, 0xff, 0x10})

	f.Fuzz(func(t *testing.T, data []byte) {
		decoded, err := DecodeBase32Z(EncodeBase32Z(data))
		require.NoError(t, err)
		require.Equal(t, data, decoded)
	})
}
