// Package zobrist implements position hashing for the transposition table.
package zobrist

import (
	"lukechampine.com/frand"

	"github.com/soledad-ai/soledad/board"
	"github.com/soledad-ai/soledad/game"
	"github.com/soledad-ai/soledad/move"
)

const bignum = 1<<63 - 2

// Zobrist hashes positions incrementally. Every occupied cell, every player
// location (including "not entered yet") and the side to move contribute an
// independent random key; XOR composes and undoes them.
type Zobrist struct {
	theirTurn uint64

	occupiedTable []uint64
	locTable      [2][]uint64
	unplaced      [2]uint64
}

// Initialize generates the random tables for a board of the given cell count.
func (z *Zobrist) Initialize(numCells int) {
	z.theirTurn = frand.Uint64n(bignum) + 1
	z.occupiedTable = make([]uint64, numCells)
	for i := range z.occupiedTable {
		z.occupiedTable[i] = frand.Uint64n(bignum) + 1
	}
	for p := 0; p < 2; p++ {
		z.locTable[p] = make([]uint64, numCells)
		for i := range z.locTable[p] {
			z.locTable[p][i] = frand.Uint64n(bignum) + 1
		}
		z.unplaced[p] = frand.Uint64n(bignum) + 1
	}
}

func (z *Zobrist) locKey(p game.PlayerID, sq board.Square) uint64 {
	if sq == board.NoSquare {
		return z.unplaced[p]
	}
	return z.locTable[p][sq]
}

// Hash computes a position key from scratch.
func (z *Zobrist) Hash(s game.State) uint64 {
	var key uint64
	for _, sq := range s.Occupied().Squares() {
		key ^= z.occupiedTable[sq]
	}
	key ^= z.locKey(game.Player1, s.PlayerLocation(game.Player1))
	key ^= z.locKey(game.Player2, s.PlayerLocation(game.Player2))
	if s.OnTurn() == game.Player2 {
		key ^= z.theirTurn
	}
	return key
}

// AddMove advances key by one move made by p. Destinations become occupied
// and never vacate, so only the new cell, the mover's location and the turn
// toggle.
func (z *Zobrist) AddMove(key uint64, p game.PlayerID, m move.Move) uint64 {
	key ^= z.occupiedTable[m.To]
	key ^= z.locKey(p, m.From)
	key ^= z.locKey(p, m.To)
	key ^= z.theirTurn
	return key
}
