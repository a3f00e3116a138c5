package mnemonic

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	entropy := make([]byte, EntropySize)
	_, err := rand.Read(entropy)
	require.NoError(t, err)

	words, err := Encode(entropy)
	require.NoError(t, err)
	require.Len(t, words, WordCount)

	got, err := Decode(words)
	require.NoError(t, err)
	require.Equal(t, entropy, got)
}

func TestDecodeCaseInsensitive(t *testing.T) {
	entropy := make([]byte, EntropySize)
	_, err := rand.Read(entropy)
	require.NoError(t, err)

	words, err := Encode(entropy)
	require.NoError(t, err)

	upper := make([]string, len(words))
	for i, w := range words {
		upper[i] = w
		if len(w) > 0 {
			upper[i] = string(w[0]-32) + w[1:]
		}
	}

	got, err := Decode(upper)
	require.NoError(t, err)
	require.Equal(t, entropy, got)
}

func TestEncodeRejectsWrongLength(t *testing.T) {
	_, err := Encode(make([]byte, 16))
	require.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]string{"not", "a", "valid", "mnemonic", "phrase", "at", "all"})
	require.Error(t, err)
}

func FuzzRoundTrip(f *testing.F) {
	seed := make([]byte, EntropySize)
	f.Add(seed)

	f.Fuzz(func(t *testing.T, entropy []byte) {
		if len(entropy) != EntropySize {
			t.Skip()
		}
		words, err := Encode(entropy)
		require.NoError(t, err)
		got, err := Decode(words)
		require.NoError(t, err)
		require.Equal(t, entropy, got)
	})
}
