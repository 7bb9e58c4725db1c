package cipher

import (
	"encoding/base64"
	"strings"
)

// InvalidBase64 is the sentinel answer produced when decoding malformed
// input. Generation never fails on bad custom text; the question simply
// expects this sentinel.
const InvalidBase64 = "INVALID BASE64"

// Base64Encode encodes the UTF-8 bytes of plain with standard encoding.
func Base64Encode(plain string) string {
	return base64.StdEncoding.EncodeToString([]byte(plain))
}

// Base64Decode decodes standard Base64. Malformed input yields the
// InvalidBase64 sentinel instead of an error.
func Base64Decode(encoded string) string {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return InvalidBase64
	}
	return string(raw)
}
