package wire

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cyphar-go/paperback/pkg/config"
)

// base32zAlphabet is the z-base-32 alphabet (Zooko Wilcox-O'Hearn's
// human-friendly base32 variant, also used by Tahoe-LAFS). Bits are packed
// identically to RFC 4648 base32 (5 bits per symbol, most significant bit
// first); only the alphabet differs.
const base32zAlphabet = "ybndrfg8ejkmcpqxot1uwisza345h769"

// base32zPrefix is this encoding's multibase prefix character, resolved
// from config.MultibaseEncodingBase32Z rather than hardcoded so the two can
// never drift apart.
var base32zPrefix = func() byte {
	prefix, err := config.MultibaseEncodingBase32Z.MultibasePrefix()
	if err != nil {
		panic(fmt.Sprintf("wire: %v", err))
	}
	return prefix
}()

var base32zDecodeTable = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(base32zAlphabet); i++ {
		t[base32zAlphabet[i]] = int8(i)
	}
	return t
}()

// EncodeBase32Z encodes data as z-base-32, with no padding.
func EncodeBase32Z(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	out := make([]byte, 0, (len(data)*8+4)/5)
	var acc uint32
	var bits int
	for _, b := range data {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out = append(out, base32zAlphabet[(acc>>uint(bits))&0x1f])
		}
	}
	if bits > 0 {
		out = append(out, base32zAlphabet[(acc<<uint(5-bits))&0x1f])
	}
	return string(out)
}

// DecodeBase32Z decodes a z-base-32 string with no padding.
func DecodeBase32Z(s string) ([]byte, error) {
	var acc uint32
	var bits int
	out := make([]byte, 0, len(s)*5/8+1)
	for i := 0; i < len(s); i++ {
		v := base32zDecodeTable[s[i]]
		if v < 0 {
			return nil, fmt.Errorf("wire: invalid base32z character %q", s[i])
		}
		acc = acc<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(acc>>uint(bits)))
		}
	}
	return out, nil
}

// ToMultibase prepends the Base32Z prefix character to the z-base-32
// encoding of data, producing a single self-describing string suitable for
// printing on paper.
func ToMultibase(data []byte) string {
	return string(base32zPrefix) + EncodeBase32Z(data)
}

// stripMultibase removes whitespace and (except for URL-base64, which this
// package doesn't implement) '-' before decoding, so a user re-typing a
// line-wrapped paper backup doesn't need to strip the wrapping by hand.
func stripMultibase(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, s)
}

// FromMultibase strips whitespace/hyphens and the Base32Z prefix character
// and decodes the remainder.
func FromMultibase(s string) ([]byte, error) {
	s = stripMultibase(s)
	if len(s) == 0 || s[0] != base32zPrefix {
		return nil, fmt.Errorf("wire: multibase string must use the Base32Z ('%c') prefix", base32zPrefix)
	}
	return DecodeBase32Z(s[1:])
}
