// Package codepage converts UTF-8 text to the single-byte code page used by
// receipt printers.
package codepage

import "golang.org/x/text/encoding/charmap"

// Replacement is written for runes the code page cannot represent.
const Replacement = '?'

// Encode437 maps s onto code page 437. Control characters are dropped.
func Encode437(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		if b, ok := charmap.CodePage437.EncodeRune(r); ok {
			out = append(out, b)

			continue
		}
		out = append(out, Replacement)
	}

	return out
}

// IsPrintableASCII reports whether every byte of s is in 0x20..0x7e.
func IsPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}

	return true
}
