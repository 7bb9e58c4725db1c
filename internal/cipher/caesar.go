package cipher

import "strings"

// CaesarEncode shifts every letter forward by shift positions, preserving
// case. Non-letters pass through unchanged.
func CaesarEncode(plain string, shift int) string {
	shift = ((shift % 26) + 26) % 26
	var b strings.Builder
	b.Grow(len(plain))
	for _, r := range plain {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune('A' + (r-'A'+rune(shift))%26)
		case r >= 'a' && r <= 'z':
			b.WriteRune('a' + (r-'a'+rune(shift))%26)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CaesarDecode inverts CaesarEncode: decode(c, s) == encode(c, 26-s mod 26).
func CaesarDecode(ciphertext string, shift int) string {
	return CaesarEncode(ciphertext, 26-((shift%26)+26)%26)
}
