package cipher

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaesarRoundTripAllShifts(t *testing.T) {
	plain := "ATTACK AT DAWN, keep Quiet!"
	for shift := 1; shift <= 25; shift++ {
		enc := CaesarEncode(plain, shift)
		assert.Equal(t, plain, CaesarDecode(enc, shift), "shift %d", shift)
	}
}

func TestCaesarKnownVector(t *testing.T) {
	assert.Equal(t, "KHOOR", CaesarEncode("HELLO", 3))
	assert.Equal(t, "HELLO", CaesarDecode("KHOOR", 3))
}

func TestCaesarPreservesCaseAndPunctuation(t *testing.T) {
	assert.Equal(t, "Dwwdfn dw gdzq!", CaesarEncode("Attack at dawn!", 3))
}

func TestVigenereRoundTrip(t *testing.T) {
	plain := "DEFEND THE EAST WALL of the castle"
	enc := VigenereEncode(plain, "LEMON")
	assert.NotEqual(t, plain, enc)
	assert.Equal(t, plain, VigenereDecode(enc, "LEMON"))
}

func TestVigenereNonLettersDoNotConsumeKey(t *testing.T) {
	// "AB CD" with key "BB" must shift every letter by 1, spaces untouched.
	assert.Equal(t, "BC DE", VigenereEncode("AB CD", "BB"))
}

func TestVigenereKnownVector(t *testing.T) {
	assert.Equal(t, "LXFOPVEFRNHR", VigenereEncode("ATTACKATDAWN", "LEMON"))
}

func TestBase64RoundTripAndSentinel(t *testing.T) {
	enc := Base64Encode("Merhaba Dünya")
	assert.Equal(t, "Merhaba Dünya", Base64Decode(enc))
	assert.Equal(t, InvalidBase64, Base64Decode("!!!not-base64!!!"))
}

func TestXor(t *testing.T) {
	assert.Equal(t, 0, Xor(170, 170))
	assert.Equal(t, 255, Xor(0xF0, 0x0F))
	assert.Equal(t, "0xFF", FormatXorOperand(255, "hex"))
	assert.Equal(t, "00000101", FormatXorOperand(5, "bin"))
	assert.Equal(t, "42", FormatXorOperand(42, "dec"))
}

func TestHillRandomKeysAreInvertible(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		k := RandomHillKey(rnd)
		require.True(t, k.Invertible())
		require.Equal(t, 1, gcd(k.Determinant(), 26))
	}
}

func TestHillRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		k := RandomHillKey(rnd)
		plain := "SECRETMEETING" // odd length, padded to SECRETMEETINGX
		enc := HillEncode(plain, k)
		dec, err := HillDecode(enc, k)
		require.NoError(t, err)
		assert.Equal(t, "SECRETMEETINGX", dec)
	}
}

func TestHillRejectsNonInvertibleKey(t *testing.T) {
	k := HillKey{A: 2, B: 4, C: 6, D: 8} // det = -8 mod 26 = 18, gcd 2
	require.False(t, k.Invertible())
	_, err := HillDecode("ABCD", k)
	assert.Error(t, err)
}

func TestMonoalphabeticTableDerivation(t *testing.T) {
	m := NewMonoalphabetic("KEYWORD")
	assert.Equal(t, "KEYWORDABCFGHIJLMNPQSTUVXZ", m.MixedAlphabet())
}

func TestMonoalphabeticRoundTrip(t *testing.T) {
	m := NewMonoalphabetic("ZEBRAS")
	plain := "Flee at once, we are discovered"
	enc := m.Encode(plain)
	assert.Equal(t, plain, m.Decode(enc))
}

func TestPlayfairGrid(t *testing.T) {
	p := NewPlayfair("MONARCHY")
	assert.Equal(t, "M O N A R\nC H Y B D\nE F G I K\nL P Q S T\nU V W X Z", p.MatrixString())
}

func TestPlayfairKnownVector(t *testing.T) {
	// Classic example: INSTRUMENTS with key MONARCHY, padded to INSTRUMENTSX.
	p := NewPlayfair("MONARCHY")
	assert.Equal(t, "GATLMZCLRQXA", p.Encode("INSTRUMENTS"))
}

func TestPlayfairRoundTrip(t *testing.T) {
	p := NewPlayfair("SECURITY")
	plain := p.Normalize("HIDE THE GOLD IN THE TREE STUMP")
	assert.Equal(t, plain, p.Decode(p.Encode(plain)))
}

func TestTranspositionPermutation(t *testing.T) {
	// ZEBRA sorts to A(4) B(2) E(1) R(3) Z(0).
	tr := NewTransposition("ZEBRA")
	assert.Equal(t, []int{4, 2, 1, 3, 0}, tr.perm)
}

func TestTranspositionRoundTripExactMultiple(t *testing.T) {
	tr := NewTransposition("SECRET") // 6 columns
	plain := "WEAREDISCOVEREDFLEEATONCE??!" // 25 letters -> not multiple; use exact
	exact := OnlyLetters(plain)[:24]
	assert.Equal(t, exact, tr.Decode(tr.Encode(exact)))
}

func TestTranspositionTrimsTrailingFiller(t *testing.T) {
	tr := NewTransposition("KEY")
	// 5 letters in 3 columns: one X of padding is stripped on decode.
	assert.Equal(t, "HELLO", tr.Decode(tr.Encode("HELLO")))
}

func TestTranspositionKeywordFallback(t *testing.T) {
	tr := NewTransposition("123 !?")
	assert.Equal(t, "KEY", tr.Keyword())
}

func TestParseTopicClosedSet(t *testing.T) {
	for _, topic := range Topics {
		parsed, ok := ParseTopic(topic.String())
		require.True(t, ok)
		assert.Equal(t, topic, parsed)
	}
	_, ok := ParseTopic("rot13")
	assert.False(t, ok)
}
