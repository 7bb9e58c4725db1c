package cipher

import (
	"fmt"
	"strconv"
)

// Xor combines two byte-range values. Display may use any base; comparison
// and scoring always use the decimal value.
func Xor(a, b int) int {
	return (a & 0xFF) ^ (b & 0xFF)
}

// XorBases are the display formats a generated operand may use.
var XorBases = []string{"dec", "hex", "bin"}

// FormatXorOperand renders v in the requested base ("dec", "hex" or "bin").
func FormatXorOperand(v int, base string) string {
	switch base {
	case "hex":
		return fmt.Sprintf("0x%X", v)
	case "bin":
		return fmt.Sprintf("%08b", v)
	default:
		return strconv.Itoa(v)
	}
}
