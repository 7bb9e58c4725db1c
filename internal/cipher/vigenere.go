package cipher

import "strings"

// VigenereEncode shifts each letter by the alphabet index of the matching key
// letter. The key repeats cyclically over letters only: non-letters pass
// through without consuming a key position.
func VigenereEncode(plain, key string) string {
	return vigenere(plain, key, false)
}

// VigenereDecode reverses VigenereEncode with the same key.
func VigenereDecode(ciphertext, key string) string {
	return vigenere(ciphertext, key, true)
}

func vigenere(text, key string, decode bool) string {
	key = OnlyLetters(key)
	if key == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	ki := 0
	for _, r := range text {
		var base rune
		switch {
		case r >= 'A' && r <= 'Z':
			base = 'A'
		case r >= 'a' && r <= 'z':
			base = 'a'
		default:
			b.WriteRune(r)
			continue
		}
		shift := int(key[ki%len(key)] - 'A')
		if decode {
			shift = 26 - shift
		}
		b.WriteRune(base + (r-base+rune(shift))%26)
		ki++
	}
	return b.String()
}
