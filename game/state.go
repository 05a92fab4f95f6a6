// Package game models knight's isolation: two players on a grid, knight
// steps, every visited cell a permanent obstacle, and the first player with
// no move loses. The central type is State, an immutable snapshot of one ply.
package game

import (
	"errors"
	"fmt"

	"github.com/soledad-ai/soledad/board"
	"github.com/soledad-ai/soledad/move"
	"github.com/soledad-ai/soledad/movegen"
)

// Infinity is a shockingly large number. Terminal utilities are scored at
// plus or minus Infinity so that any mobility-style heuristic value stays
// strictly inside the range.
const Infinity = float32(10000000)

var (
	// ErrInvalidMove means a move was applied to a state whose legal-move
	// set does not contain it. It indicates a bug in the caller or in move
	// generation; searches abort on it rather than recover.
	ErrInvalidMove = errors.New("move is not legal in this state")

	// ErrNoLegalMoves means a move was requested for a terminal state.
	ErrNoLegalMoves = errors.New("no legal moves in this state")
)

// PlayerID numbers the two players.
type PlayerID uint8

const (
	Player1 PlayerID = 0
	Player2 PlayerID = 1
)

func (p PlayerID) Opponent() PlayerID {
	return p ^ 1
}

func (p PlayerID) String() string {
	return fmt.Sprintf("p%d", p+1)
}

// A State is one ply of a game: the blocked cells, both player locations and
// whose turn it is. States are immutable values. Result builds a child and
// never touches its parent, so a search frame can hold its state by value
// and forget it when the frame returns. The zero State is not playable;
// start from NewInitialState or NewStateFromPosition.
type State struct {
	geo      *board.Geometry
	occupied board.Bitboard
	locs     [2]board.Square
	onturn   PlayerID
	ply      int
}

// NewInitialState returns the empty board with both players yet to enter.
func NewInitialState(g *board.Geometry) State {
	return State{geo: g, locs: [2]board.Square{board.NoSquare, board.NoSquare}}
}

// NewStateFromPosition builds a mid-game snapshot. Player locations may be
// board.NoSquare for a player that has not entered yet; placed locations are
// added to the occupied set if missing.
func NewStateFromPosition(g *board.Geometry, occupied board.Bitboard,
	loc1, loc2 board.Square, onturn PlayerID) (State, error) {

	locs := [2]board.Square{loc1, loc2}
	for p, loc := range locs {
		if loc == board.NoSquare {
			continue
		}
		if !g.OnBoard(loc) {
			return State{}, fmt.Errorf("p%d location %d is off the %dx%d board",
				p+1, loc, g.Width(), g.Height())
		}
		occupied.Set(loc)
	}
	if loc1 != board.NoSquare && loc1 == loc2 {
		return State{}, fmt.Errorf("both players on %s", g.SquareName(loc1))
	}
	if occupied.AndNot(g.AllCells()).Count() != 0 {
		return State{}, fmt.Errorf("occupied cells outside the %dx%d board",
			g.Width(), g.Height())
	}
	return State{
		geo:      g,
		occupied: occupied,
		locs:     locs,
		onturn:   onturn,
		ply:      occupied.Count(),
	}, nil
}

func (s State) Geometry() *board.Geometry { return s.geo }

// Occupied returns the set of blocked cells, player locations included.
func (s State) Occupied() board.Bitboard { return s.occupied }

// PlayerLocation returns p's square, or board.NoSquare before p has entered.
func (s State) PlayerLocation(p PlayerID) board.Square { return s.locs[p] }

// OnTurn returns the player to move.
func (s State) OnTurn() PlayerID { return s.onturn }

// Ply returns how many moves have been applied since the empty board.
func (s State) Ply() int { return s.ply }

// OpenCount returns the number of unblocked cells, which is also the longest
// possible continuation in plies.
func (s State) OpenCount() int {
	return s.geo.NumCells() - s.occupied.Count()
}

// Actions enumerates the legal moves for the player on turn. The order is
// deterministic (see movegen.Legal) and downstream tie-breaks depend on it.
func (s State) Actions() []move.Move {
	return movegen.Legal(s.geo, s.occupied, s.locs[s.onturn])
}

// Result applies m for the player on turn and returns the successor: the
// destination becomes permanently blocked, the mover stands on it, and the
// turn flips. Moves not in the legal set fail with ErrInvalidMove.
func (s State) Result(m move.Move) (State, error) {
	if !s.legal(m) {
		return State{}, fmt.Errorf("%w: %s by %s at ply %d",
			ErrInvalidMove, m.ShortDescription(s.geo), s.onturn, s.ply)
	}
	child := s
	child.occupied.Set(m.To)
	child.locs[s.onturn] = m.To
	child.onturn = s.onturn.Opponent()
	child.ply++
	return child, nil
}

func (s State) legal(m move.Move) bool {
	if !s.geo.OnBoard(m.To) || s.occupied.Test(m.To) {
		return false
	}
	from := s.locs[s.onturn]
	if m.From != from {
		return false
	}
	if from == board.NoSquare {
		return true
	}
	return s.geo.KnightMask(from).Test(m.To)
}

// Terminal reports whether the player on turn is stuck. Computed bitwise,
// without building the move list.
func (s State) Terminal() bool {
	return !movegen.HasMove(s.geo, s.occupied, s.locs[s.onturn])
}

// Utility returns the game value of s for p: -Infinity when p is the stuck
// player on turn, +Infinity for the opponent, and 0 while the game is still
// open.
func (s State) Utility(p PlayerID) float32 {
	if !s.Terminal() {
		return 0
	}
	if p == s.onturn {
		return -Infinity
	}
	return Infinity
}

// Mobility counts p's legal destinations.
func (s State) Mobility(p PlayerID) int {
	return movegen.Mobility(s.geo, s.occupied, s.locs[p])
}
