// Package move defines the Move type the generator produces and the search
// engine selects among.
package move

import (
	"fmt"

	"github.com/soledad-ai/soledad/board"
)

// A Move carries a player from one square to another. While a player has not
// entered the board yet its moves are placements, marked by From ==
// board.NoSquare. Moves are plain values; equality is field equality, which
// best-move bookkeeping relies on.
type Move struct {
	From board.Square
	To   board.Square
}

func New(from, to board.Square) Move {
	return Move{From: from, To: to}
}

// Placement returns the entry move onto sq.
func Placement(to board.Square) Move {
	return Move{From: board.NoSquare, To: to}
}

func (m Move) IsPlacement() bool {
	return m.From == board.NoSquare
}

func (m Move) Equals(o Move) bool {
	return m == o
}

// ShortDescription renders the move in coordinate notation, "b3-d4" for a
// knight step or ">d4" for a placement.
func (m Move) ShortDescription(g *board.Geometry) string {
	if m.IsPlacement() {
		return ">" + g.SquareName(m.To)
	}
	return fmt.Sprintf("%s-%s", g.SquareName(m.From), g.SquareName(m.To))
}
