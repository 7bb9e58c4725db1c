package cipher

import "strings"

// Monoalphabetic substitutes letters through a mixed alphabet derived from a
// keyword: deduplicated keyword letters first, then the rest of the alphabet
// in order. The derivation is deterministic, so the keyword alone recreates
// the full table.
type Monoalphabetic struct {
	forward [26]byte
	reverse [26]byte
}

// NewMonoalphabetic builds the substitution tables for a keyword.
func NewMonoalphabetic(keyword string) *Monoalphabetic {
	var mixed []byte
	seen := [26]bool{}
	for _, r := range OnlyLetters(keyword) {
		idx := r - 'A'
		if !seen[idx] {
			seen[idx] = true
			mixed = append(mixed, byte(r))
		}
	}
	for c := byte('A'); c <= 'Z'; c++ {
		if !seen[c-'A'] {
			mixed = append(mixed, c)
		}
	}

	m := &Monoalphabetic{}
	for i, c := range mixed {
		m.forward[i] = c
		m.reverse[c-'A'] = byte('A' + i)
	}
	return m
}

// MixedAlphabet returns the 26-letter substitution alphabet for display.
func (m *Monoalphabetic) MixedAlphabet() string {
	return string(m.forward[:])
}

// Encode maps plain letters into the mixed alphabet, preserving case.
func (m *Monoalphabetic) Encode(plain string) string {
	return m.substitute(plain, m.forward)
}

// Decode maps cipher letters back to the plain alphabet, preserving case.
func (m *Monoalphabetic) Decode(ciphertext string) string {
	return m.substitute(ciphertext, m.reverse)
}

func (m *Monoalphabetic) substitute(s string, table [26]byte) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteByte(table[r-'A'])
		case r >= 'a' && r <= 'z':
			b.WriteByte(table[r-'a'] - 'A' + 'a')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
