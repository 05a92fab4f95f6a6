package game

import (
	"math/rand"
	"testing"

	"github.com/matryer/is"

	"github.com/soledad-ai/soledad/board"
	"github.com/soledad-ai/soledad/move"
)

func TestInitialState(t *testing.T) {
	is := is.New(t)
	g := board.MustGeometry(3, 3)
	s := NewInitialState(g)
	is.Equal(s.OnTurn(), Player1)
	is.Equal(s.Ply(), 0)
	is.Equal(s.PlayerLocation(Player1), board.NoSquare)
	is.Equal(s.PlayerLocation(Player2), board.NoSquare)
	is.Equal(s.OpenCount(), 9)
	is.True(!s.Terminal())

	actions := s.Actions()
	is.Equal(len(actions), 9)
	for _, m := range actions {
		is.True(m.IsPlacement())
	}
}

func TestResultBasics(t *testing.T) {
	is := is.New(t)
	g := board.MustGeometry(3, 3)
	s := NewInitialState(g)

	s1, err := s.Result(move.Placement(4))
	is.NoErr(err)
	// The parent is untouched.
	is.Equal(s.Occupied().Count(), 0)
	is.Equal(s.OnTurn(), Player1)
	// The child gained exactly one blocked cell and the turn flipped once.
	is.Equal(s1.Occupied().Count(), 1)
	is.True(s1.Occupied().Test(4))
	is.Equal(s1.PlayerLocation(Player1), board.Square(4))
	is.Equal(s1.OnTurn(), Player2)
	is.Equal(s1.Ply(), 1)

	s2, err := s1.Result(move.Placement(0))
	is.NoErr(err)
	is.Equal(s2.Occupied().Count(), 2)
	is.Equal(s2.OnTurn(), Player1)

	// p1 at e.g. (1,1) has no knight moves on 3x3: center is dead.
	is.True(s2.Terminal())
}

func TestResultRejectsIllegalMoves(t *testing.T) {
	is := is.New(t)
	g := board.MustGeometry(3, 3)
	var occ board.Bitboard
	s, err := NewStateFromPosition(g, occ, 0, 8, Player1)
	is.NoErr(err)

	for _, m := range []move.Move{
		move.New(0, 8),                // occupied by the opponent
		move.New(0, 100),              // off the board
		move.New(0, board.NoSquare),   // not a destination at all
		move.New(0, 4),                // not a knight step
		move.New(5, 7),                // not where p1 stands
		move.Placement(5),             // p1 already entered
	} {
		_, err := s.Result(m)
		is.True(err != nil)
	}

	next, err := s.Result(move.New(0, 5))
	is.NoErr(err)
	is.Equal(next.PlayerLocation(Player1), board.Square(5))
	is.True(next.Occupied().Test(0)) // the old cell stays blocked
}

func TestThreeByThreeScenario(t *testing.T) {
	is := is.New(t)
	g := board.MustGeometry(3, 3)
	var occ board.Bitboard
	s, err := NewStateFromPosition(g, occ, 0, 8, Player1)
	is.NoErr(err)

	actions := s.Actions()
	is.Equal(actions, []move.Move{move.New(0, 5), move.New(0, 7)})
	for _, m := range actions {
		is.True(g.OnBoard(m.To))
		is.True(m.To != 8)
	}
}

func TestOneMoveLeftScenario(t *testing.T) {
	is := is.New(t)
	g := board.MustGeometry(3, 3)
	var occ board.Bitboard
	occ.Set(1)
	occ.Set(3)
	occ.Set(5)
	// p1 at a1 has one open destination (b3); p2 at c3 is walled off from
	// both of its targets (b1 and a2).
	s, err := NewStateFromPosition(g, occ, 0, 8, Player1)
	is.NoErr(err)
	is.Equal(s.Utility(Player1), float32(0)) // not terminal yet

	actions := s.Actions()
	is.Equal(len(actions), 1)
	next, err := s.Result(actions[0])
	is.NoErr(err)
	is.True(next.Terminal())
	is.Equal(next.Utility(Player2), -Infinity)
	is.Equal(next.Utility(Player1), Infinity)
}

func TestNewStateFromPositionValidation(t *testing.T) {
	is := is.New(t)
	g := board.MustGeometry(3, 3)
	var occ board.Bitboard

	_, err := NewStateFromPosition(g, occ, 42, board.NoSquare, Player1)
	is.True(err != nil)

	_, err = NewStateFromPosition(g, occ, 4, 4, Player1)
	is.True(err != nil)

	var outside board.Bitboard
	outside.Set(99)
	_, err = NewStateFromPosition(g, outside, 0, 8, Player1)
	is.True(err != nil)

	// Locations are folded into the occupied set and set the ply count.
	occ.Set(2)
	s, err := NewStateFromPosition(g, occ, 0, 8, Player2)
	is.NoErr(err)
	is.True(s.Occupied().Test(0))
	is.True(s.Occupied().Test(8))
	is.Equal(s.Occupied().Count(), 3)
	is.Equal(s.Ply(), 3)
	is.Equal(s.OnTurn(), Player2)
}

func TestRandomPlayoutInvariants(t *testing.T) {
	is := is.New(t)
	g := board.MustGeometry(5, 5)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		s := NewInitialState(g)
		for !s.Terminal() {
			actions := s.Actions()
			is.True(len(actions) > 0)
			for _, m := range actions {
				is.True(g.OnBoard(m.To))
				is.True(!s.Occupied().Test(m.To))
			}
			parentOcc := s.Occupied().Count()
			parentTurn := s.OnTurn()
			next, err := s.Result(actions[rng.Intn(len(actions))])
			is.NoErr(err)
			is.Equal(next.Occupied().Count(), parentOcc+1)
			is.Equal(next.OnTurn(), parentTurn.Opponent())
			is.Equal(next.Ply(), s.Ply()+1)
			s = next
		}
		is.Equal(s.Utility(s.OnTurn()), -Infinity)
		is.Equal(s.Utility(s.OnTurn().Opponent()), Infinity)
		is.Equal(len(s.Actions()), 0)
	}
}

func TestMobility(t *testing.T) {
	is := is.New(t)
	g := board.Default()
	s := NewInitialState(g)
	// Before entering, a player can go anywhere open.
	is.Equal(s.Mobility(Player1), 99)

	var occ board.Bitboard
	s, err := NewStateFromPosition(g, occ, g.Index(4, 5), g.Index(0, 0), Player1)
	is.NoErr(err)
	is.Equal(s.Mobility(Player1), 8)
	is.Equal(s.Mobility(Player2), 2)
}
