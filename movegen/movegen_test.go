package movegen

import (
	"testing"

	"github.com/matryer/is"

	"github.com/soledad-ai/soledad/board"
	"github.com/soledad-ai/soledad/move"
)

func TestLegalKnight(t *testing.T) {
	is := is.New(t)
	g := board.MustGeometry(3, 3)
	var occupied board.Bitboard
	occupied.Set(0)
	occupied.Set(8)

	// From the top-left corner of a 3x3 board only the ESE and SSE steps
	// stay on the board, landing on (1,2) and (2,1).
	moves := Legal(g, occupied, 0)
	is.Equal(moves, []move.Move{move.New(0, 5), move.New(0, 7)})

	// Block (1,2): only (2,1) remains.
	occupied.Set(5)
	is.Equal(Legal(g, occupied, 0), []move.Move{move.New(0, 7)})
	is.Equal(Mobility(g, occupied, 0), 1)
	is.True(HasMove(g, occupied, 0))

	occupied.Set(7)
	is.Equal(len(Legal(g, occupied, 0)), 0)
	is.Equal(Mobility(g, occupied, 0), 0)
	is.True(!HasMove(g, occupied, 0))
}

func TestLegalNeverTargetsOccupiedOrOffBoard(t *testing.T) {
	is := is.New(t)
	g := board.Default()
	var occupied board.Bitboard
	for _, sq := range []board.Square{4, 17, 30, 55, 80, 98} {
		occupied.Set(sq)
	}
	for sq := board.Square(0); int(sq) < g.NumCells(); sq++ {
		for _, m := range Legal(g, occupied, sq) {
			is.True(g.OnBoard(m.To))
			is.True(!occupied.Test(m.To))
			is.Equal(m.From, sq)
		}
		is.Equal(len(Legal(g, occupied, sq)), Mobility(g, occupied, sq))
	}
}

func TestLegalPlacements(t *testing.T) {
	is := is.New(t)
	g := board.MustGeometry(3, 3)
	var occupied board.Bitboard
	occupied.Set(4)

	moves := Legal(g, occupied, board.NoSquare)
	is.Equal(len(moves), 8)
	for i, m := range moves {
		is.True(m.IsPlacement())
		is.True(!occupied.Test(m.To))
		if i > 0 {
			is.True(m.To > moves[i-1].To) // cell-index order
		}
	}
	is.Equal(Mobility(g, occupied, board.NoSquare), 8)
	is.True(HasMove(g, occupied, board.NoSquare))

	full := g.AllCells()
	is.Equal(len(Legal(g, full, board.NoSquare)), 0)
	is.True(!HasMove(g, full, board.NoSquare))
}
