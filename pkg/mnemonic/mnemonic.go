// Package mnemonic wraps github.com/tyler-smith/go-bip39 behind paperback's
// own narrow API: 32 bytes of entropy in, 24 English codewords out, and
// back. Isolating the third-party call surface here means a future swap of
// mnemonic library only touches this one file.
package mnemonic

import (
	"fmt"
	"strings"

	"github.com/cyphar-go/paperback/pkg/config"
	"github.com/tyler-smith/go-bip39"
	"github.com/tyler-smith/go-bip39/wordlists"
)

// EntropySize is the width of the ChaCha20-Poly1305 key paperback encodes as
// a mnemonic: 32 bytes of entropy produces exactly 24 BIP-39 words.
const EntropySize = 32

// WordCount is the number of codewords a 32-byte entropy value encodes to.
const WordCount = 24

// Language is the BIP-39 wordlist this package encodes/decodes against.
// Only config.MnemonicLanguageEnglish is wired up; go-bip39 ships other
// wordlists, but paperback's glossary only documents English codewords.
const Language = config.MnemonicLanguageEnglish

func init() {
	switch Language {
	case config.MnemonicLanguageEnglish:
		bip39.SetWordList(wordlists.English)
	default:
		panic(fmt.Sprintf("mnemonic: unsupported language %q", Language))
	}
}

// Encode renders entropy as its 24 English BIP-39 words, one word per slice
// element.
func Encode(entropy []byte) ([]string, error) {
	if len(entropy) != EntropySize {
		return nil, fmt.Errorf("mnemonic: entropy must be %d bytes, got %d", EntropySize, len(entropy))
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("mnemonic: encoding entropy: %w", err)
	}
	return strings.Fields(phrase), nil
}

// Decode recovers the 32 bytes of entropy from codewords. Matching is
// case-insensitive; codewords with mismatched checksums or unrecognised
// words are rejected.
func Decode(codewords []string) ([]byte, error) {
	phrase := strings.ToLower(strings.Join(codewords, " "))
	if !bip39.IsMnemonicValid(phrase) {
		return nil, fmt.Errorf("mnemonic: %q is not a valid BIP-39 phrase", phrase)
	}
	entropy, err := bip39.EntropyFromMnemonic(phrase)
	if err != nil {
		return nil, fmt.Errorf("mnemonic: decoding phrase: %w", err)
	}
	if len(entropy) != EntropySize {
		return nil, fmt.Errorf("mnemonic: decoded entropy must be %d bytes, got %d", EntropySize, len(entropy))
	}
	return entropy, nil
}
