package question

import (
	"strings"

	"cipherquiz-service/internal/cipher"
)

// CompareAnswer checks a submitted answer against the expected one. Both
// sides are trimmed. Matching is case-insensitive except for Base64
// questions whose expected answer contains a lowercase letter: Base64
// output is case-significant, so those compare exactly.
func CompareAnswer(topic, expected, answer string) bool {
	expected = strings.TrimSpace(expected)
	answer = strings.TrimSpace(answer)

	if t, ok := cipher.ParseTopic(topic); ok && t == cipher.TopicBase64 && hasLower(expected) {
		return expected == answer
	}
	return strings.EqualFold(expected, answer)
}

func hasLower(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return true
		}
	}
	return false
}
