// Package cipher implements the classical teaching ciphers used to build quiz
// questions. None of these are secure; they exist to be solved by hand.
package cipher

import "strings"

// Topic is a closed set of cipher families. Dispatching over Topic instead of
// raw strings keeps the set exhaustiveness-checkable.
type Topic int

const (
	TopicCaesar Topic = iota
	TopicVigenere
	TopicBase64
	TopicXor
	TopicHill
	TopicMonoalphabetic
	TopicPlayfair
	TopicTransposition
)

// Topics lists every cipher family in declaration order.
var Topics = []Topic{TopicCaesar, TopicVigenere, TopicBase64, TopicXor, TopicHill, TopicMonoalphabetic, TopicPlayfair, TopicTransposition}

func (t Topic) String() string {
	switch t {
	case TopicCaesar:
		return "Caesar"
	case TopicVigenere:
		return "Vigenere"
	case TopicBase64:
		return "Base64"
	case TopicXor:
		return "Xor"
	case TopicHill:
		return "Hill"
	case TopicMonoalphabetic:
		return "Monoalphabetic"
	case TopicPlayfair:
		return "Playfair"
	case TopicTransposition:
		return "Transposition"
	default:
		return "Unknown"
	}
}

// ParseTopic resolves a topic name case-insensitively. The second return is
// false for names outside the closed set.
func ParseTopic(name string) (Topic, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "caesar":
		return TopicCaesar, true
	case "vigenere":
		return TopicVigenere, true
	case "base64":
		return TopicBase64, true
	case "xor":
		return TopicXor, true
	case "hill":
		return TopicHill, true
	case "monoalphabetic":
		return TopicMonoalphabetic, true
	case "playfair":
		return TopicPlayfair, true
	case "transposition":
		return TopicTransposition, true
	default:
		return 0, false
	}
}

// OnlyLetters strips everything outside A-Z after uppercasing.
func OnlyLetters(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
