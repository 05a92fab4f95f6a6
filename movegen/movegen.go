// Package movegen enumerates legal moves and counts mobility. It works
// directly on the geometry's precomputed masks so that mobility queries, the
// hot path of every evaluator, never materialize successor states.
package movegen

import (
	"github.com/soledad-ai/soledad/board"
	"github.com/soledad-ai/soledad/move"
)

// Legal enumerates the moves available to a player standing at from, given
// the occupied set. A player not yet on the board enters at any open cell, in
// cell-index order. A placed player steps like a knight, in the offset order
// fixed by the geometry tables. Callers own the returned slice.
func Legal(g *board.Geometry, occupied board.Bitboard, from board.Square) []move.Move {
	if from == board.NoSquare {
		open := g.AllCells().AndNot(occupied)
		moves := make([]move.Move, 0, open.Count())
		for _, sq := range open.Squares() {
			moves = append(moves, move.Placement(sq))
		}
		return moves
	}
	dests := g.KnightDests(from)
	moves := make([]move.Move, 0, len(dests))
	for _, to := range dests {
		if !occupied.Test(to) {
			moves = append(moves, move.New(from, to))
		}
	}
	return moves
}

// Mobility counts the moves Legal would return, bitwise.
func Mobility(g *board.Geometry, occupied board.Bitboard, from board.Square) int {
	if from == board.NoSquare {
		return g.NumCells() - occupied.Count()
	}
	return g.KnightMask(from).AndNot(occupied).Count()
}

// HasMove reports whether the player at from has any move at all.
func HasMove(g *board.Geometry, occupied board.Bitboard, from board.Square) bool {
	if from == board.NoSquare {
		return occupied.Count() < g.NumCells()
	}
	return !g.KnightMask(from).AndNot(occupied).IsEmpty()
}
