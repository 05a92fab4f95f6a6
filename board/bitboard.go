package board

import "math/bits"

// A Bitboard is a set of board cells packed into two words, enough for every
// supported geometry. The zero value is the empty set. Square arguments must
// be on the board; NoSquare is not a member of any set.
type Bitboard [2]uint64

func (b Bitboard) Test(sq Square) bool {
	return b[sq>>6]&(1<<(uint64(sq)&63)) != 0
}

func (b *Bitboard) Set(sq Square) {
	b[sq>>6] |= 1 << (uint64(sq) & 63)
}

func (b *Bitboard) Clear(sq Square) {
	b[sq>>6] &^= 1 << (uint64(sq) & 63)
}

func (b Bitboard) Count() int {
	return bits.OnesCount64(b[0]) + bits.OnesCount64(b[1])
}

func (b Bitboard) IsEmpty() bool {
	return b[0] == 0 && b[1] == 0
}

func (b Bitboard) And(o Bitboard) Bitboard {
	return Bitboard{b[0] & o[0], b[1] & o[1]}
}

func (b Bitboard) Or(o Bitboard) Bitboard {
	return Bitboard{b[0] | o[0], b[1] | o[1]}
}

// AndNot returns the cells of b that are not in o.
func (b Bitboard) AndNot(o Bitboard) Bitboard {
	return Bitboard{b[0] &^ o[0], b[1] &^ o[1]}
}

// Squares returns the member cells in ascending index order.
func (b Bitboard) Squares() []Square {
	sqs := make([]Square, 0, b.Count())
	for w := range b {
		word := b[w]
		for word != 0 {
			sqs = append(sqs, Square(w<<6+bits.TrailingZeros64(word)))
			word &= word - 1
		}
	}
	return sqs
}
