package cipher

import (
	"sort"
	"strings"
)

// Transposition is a columnar transposition cipher. The keyword only matters
// through the column permutation derived from it: columns are read in the
// order of the keyword's letters sorted alphabetically, ties broken by
// original column index. That derived permutation is the real secret.
type Transposition struct {
	keyword string
	perm    []int
}

// NewTransposition derives the column permutation from a keyword. Keywords
// without letters fall back to "KEY".
func NewTransposition(keyword string) *Transposition {
	kw := OnlyLetters(keyword)
	if kw == "" {
		kw = "KEY"
	}
	perm := make([]int, len(kw))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return kw[perm[a]] < kw[perm[b]]
	})
	return &Transposition{keyword: kw, perm: perm}
}

// Keyword returns the normalized keyword in use.
func (t *Transposition) Keyword() string {
	return t.keyword
}

// Encode writes the letters-only plaintext row-major into a grid padded with
// X to a multiple of the column count, then reads columns in permutation
// order.
func (t *Transposition) Encode(plain string) string {
	text := OnlyLetters(plain)
	if text == "" {
		return ""
	}
	cols := len(t.keyword)
	rows := (len(text) + cols - 1) / cols
	padded := text + strings.Repeat("X", rows*cols-len(text))

	var b strings.Builder
	b.Grow(len(padded))
	for _, c := range t.perm {
		for r := 0; r < rows; r++ {
			b.WriteByte(padded[r*cols+c])
		}
	}
	return b.String()
}

// Decode places the ciphertext back column by column in permutation order,
// reads row-major and trims trailing X padding. Genuine trailing X letters in
// the original plaintext are indistinguishable from padding and are stripped
// too; callers have to live with that.
func (t *Transposition) Decode(ciphertext string) string {
	text := OnlyLetters(ciphertext)
	if text == "" {
		return ""
	}
	cols := len(t.keyword)
	rows := (len(text) + cols - 1) / cols
	padded := text + strings.Repeat("X", rows*cols-len(text))

	grid := make([]byte, rows*cols)
	idx := 0
	for _, c := range t.perm {
		for r := 0; r < rows; r++ {
			grid[r*cols+c] = padded[idx]
			idx++
		}
	}
	return strings.TrimRight(string(grid), "X")
}
