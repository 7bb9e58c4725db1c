package cipher

import "strings"

// Playfair works on a 5x5 key grid: keyword letters first (J merged into I,
// duplicates dropped), then the remaining alphabet. Digraphs are substituted
// with the standard rules; decode reverses the shift directions.
type Playfair struct {
	grid [25]byte
	row  [26]int
	col  [26]int
}

// NewPlayfair builds the key grid for a keyword.
func NewPlayfair(keyword string) *Playfair {
	p := &Playfair{}
	var cells []byte
	seen := [26]bool{}
	add := func(c byte) {
		if c == 'J' {
			c = 'I'
		}
		if !seen[c-'A'] {
			seen[c-'A'] = true
			cells = append(cells, c)
		}
	}
	for i := 0; i < len(keyword); i++ {
		c := keyword[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c >= 'A' && c <= 'Z' {
			add(c)
		}
	}
	for c := byte('A'); c <= 'Z'; c++ {
		if c != 'J' {
			add(c)
		}
	}

	copy(p.grid[:], cells)
	for i, c := range p.grid {
		p.row[c-'A'] = i / 5
		p.col[c-'A'] = i % 5
	}
	p.row['J'-'A'] = p.row['I'-'A']
	p.col['J'-'A'] = p.col['I'-'A']
	return p
}

// Normalize prepares text for digraph substitution: uppercase, J merged into
// I, non-letters stripped, odd length padded with X.
func (p *Playfair) Normalize(text string) string {
	s := strings.ReplaceAll(OnlyLetters(text), "J", "I")
	if len(s)%2 != 0 {
		s += "X"
	}
	return s
}

// MatrixString renders the 5x5 grid row by row for display.
func (p *Playfair) MatrixString() string {
	var rows []string
	for r := 0; r < 5; r++ {
		cells := make([]string, 5)
		for c := 0; c < 5; c++ {
			cells[c] = string(p.grid[r*5+c])
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return strings.Join(rows, "\n")
}

// Encode substitutes normalized plaintext digraph by digraph.
func (p *Playfair) Encode(plain string) string {
	return p.transform(p.Normalize(plain), 1)
}

// Decode reverses Encode. Input is normalized the same way, so the even
// length is guaranteed.
func (p *Playfair) Decode(ciphertext string) string {
	return p.transform(p.Normalize(ciphertext), 4)
}

// transform shifts same-row pairs by step columns and same-column pairs by
// step rows; step is 1 for encode and 4 (== -1 mod 5) for decode. Rectangle
// pairs swap columns in both directions.
func (p *Playfair) transform(text string, step int) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i+1 < len(text); i += 2 {
		a, c := text[i], text[i+1]
		r1, c1 := p.row[a-'A'], p.col[a-'A']
		r2, c2 := p.row[c-'A'], p.col[c-'A']
		switch {
		case r1 == r2:
			b.WriteByte(p.grid[r1*5+(c1+step)%5])
			b.WriteByte(p.grid[r2*5+(c2+step)%5])
		case c1 == c2:
			b.WriteByte(p.grid[((r1+step)%5)*5+c1])
			b.WriteByte(p.grid[((r2+step)%5)*5+c2])
		default:
			b.WriteByte(p.grid[r1*5+c2])
			b.WriteByte(p.grid[r2*5+c1])
		}
	}
	return b.String()
}
