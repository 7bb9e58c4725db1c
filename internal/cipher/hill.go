package cipher

import (
	"fmt"
	"math/rand"
	"strings"
)

// HillKey is a 2x2 matrix [[A B] [C D]] over Z26. Only matrices whose
// determinant is coprime with 26 are usable; everything else has no inverse
// mod 26 and cannot decrypt.
type HillKey struct {
	A, B, C, D int
}

// Determinant returns (AD - BC) mod 26, normalized to [0,25].
func (k HillKey) Determinant() int {
	return mod26(k.A*k.D - k.B*k.C)
}

// Invertible reports whether the key matrix has an inverse mod 26.
func (k HillKey) Invertible() bool {
	return gcd(k.Determinant(), 26) == 1
}

// RandomHillKey draws matrices until one is invertible mod 26.
func RandomHillKey(rnd *rand.Rand) HillKey {
	for {
		k := HillKey{
			A: rnd.Intn(26),
			B: rnd.Intn(26),
			C: rnd.Intn(26),
			D: rnd.Intn(26),
		}
		if k.Invertible() {
			return k
		}
	}
}

// HillEncode encrypts the letters of plain (uppercased, non-letters dropped,
// padded to even length with X) in digraphs.
func HillEncode(plain string, key HillKey) string {
	text := padEven(OnlyLetters(plain))
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i += 2 {
		p1, p2 := int(text[i]-'A'), int(text[i+1]-'A')
		b.WriteByte(byte(mod26(key.A*p1+key.B*p2)) + 'A')
		b.WriteByte(byte(mod26(key.C*p1+key.D*p2)) + 'A')
	}
	return b.String()
}

// HillDecode inverts HillEncode using the modular inverse matrix.
func HillDecode(ciphertext string, key HillKey) (string, error) {
	det := key.Determinant()
	detInv, err := modInverse(det, 26)
	if err != nil {
		return "", fmt.Errorf("hill key not invertible: det=%d", det)
	}
	inv := HillKey{
		A: mod26(detInv * key.D),
		B: mod26(detInv * -key.B),
		C: mod26(detInv * -key.C),
		D: mod26(detInv * key.A),
	}
	return HillEncode(ciphertext, inv), nil
}

func padEven(s string) string {
	if len(s)%2 != 0 {
		return s + "X"
	}
	return s
}

func mod26(v int) int {
	return ((v % 26) + 26) % 26
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// modInverse finds x with (a*x) mod m == 1 by scanning Z_m; m is always 26
// here, so the linear scan is fine.
func modInverse(a, m int) (int, error) {
	a = ((a % m) + m) % m
	for x := 1; x < m; x++ {
		if (a*x)%m == 1 {
			return x, nil
		}
	}
	return 0, fmt.Errorf("no modular inverse for %d mod %d", a, m)
}
